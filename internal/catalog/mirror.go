package catalog

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// MirrorPageSize matches the upstream catalog's page size.
const MirrorPageSize = 20

// Mirror serves a fixed set of upstream-shaped characters with the same
// paging, name search and 404 behaviour as the real catalog. Records are
// served byte-for-byte as loaded.
type Mirror struct {
	records []mirrorRecord
}

type mirrorRecord struct {
	id   int64
	name string
	raw  json.RawMessage
}

// LoadMirror reads a JSON array of character objects.
func LoadMirror(path string) (*Mirror, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mirror %s: %w", path, err)
	}
	return ParseMirror(b)
}

func ParseMirror(b []byte) (*Mirror, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("mirror invalid JSON: %w", err)
	}

	m := &Mirror{records: make([]mirrorRecord, 0, len(items))}
	for i, item := range items {
		var head struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		}
		if err := json.Unmarshal(item, &head); err != nil {
			return nil, fmt.Errorf("mirror item %d: %w", i, err)
		}
		m.records = append(m.records, mirrorRecord{id: head.ID, name: head.Name, raw: item})
	}
	return m, nil
}

// RegisterRoutes mounts GET /character and GET /character/:id on rg.
func (m *Mirror) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/character", m.list)
	rg.GET("/character/:id", m.get)
}

func (m *Mirror) list(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	// upstream name search is case-insensitive
	name := strings.ToLower(strings.TrimSpace(c.Query("name")))
	matched := make([]json.RawMessage, 0)
	for _, r := range m.records {
		if name == "" || strings.Contains(strings.ToLower(r.name), name) {
			matched = append(matched, r.raw)
		}
	}

	pages := (len(matched) + MirrorPageSize - 1) / MirrorPageSize
	if page > pages {
		c.JSON(http.StatusNotFound, gin.H{"error": "There is nothing here"})
		return
	}

	start := (page - 1) * MirrorPageSize
	end := min(start+MirrorPageSize, len(matched))

	info := Info{Count: len(matched), Pages: pages}
	if page < pages {
		info.Next = pageURL(c, page+1)
	}
	if page > 1 {
		info.Prev = pageURL(c, page-1)
	}

	c.JSON(http.StatusOK, gin.H{"info": info, "results": matched[start:end]})
}

func (m *Mirror) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Hey! you must provide an id"})
		return
	}
	for _, r := range m.records {
		if r.id == id {
			c.Data(http.StatusOK, "application/json", r.raw)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "Character not found"})
}

func pageURL(c *gin.Context, page int) string {
	u := *c.Request.URL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	u.Scheme = "http"
	u.Host = c.Request.Host
	return u.String()
}
