package character

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"characterhub/internal/catalog"
	"characterhub/internal/sync"
	"characterhub/pkg/models"
)

type Handler struct {
	Svc *Service
	Hub *sync.Hub
	Log *zap.Logger
}

func NewHandler(svc *Service, hub *sync.Hub, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Svc: svc, Hub: hub, Log: logger.Named("character.http")}
}

// RegisterRoutes mounts the catalog under rg. writeMiddleware guards the
// mutating routes only.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, writeMiddleware ...gin.HandlerFunc) {
	rg.GET("", h.list)    // GET /characters?page=N&name=S
	rg.GET("/:id", h.get) // GET /characters/:id

	writes := rg.Group("")
	writes.Use(writeMiddleware...)
	writes.POST("", h.create)
	writes.PATCH("/:id", h.update)
	writes.DELETE("/:id", h.remove)
}

func (h *Handler) list(c *gin.Context) {
	page, err := strconv.Atoi(strings.TrimSpace(c.DefaultQuery("page", "1")))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "page must be a positive integer"})
		return
	}

	res, err := h.Svc.List(c.Request.Context(), ListQuery{Page: page, Name: c.Query("name")})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results": res.Results,
		"info":    res.Info,
	})
}

func (h *Handler) get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	ch, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ch)
}

func (h *Handler) create(c *gin.Context) {
	var raw models.RawCharacter
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}

	ch, err := h.Svc.Create(c.Request.Context(), raw)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.publish(sync.EventCreate, ch)
	c.JSON(http.StatusCreated, ch)
}

func (h *Handler) update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var patch models.CharacterPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}

	ch, created, err := h.Svc.Update(c.Request.Context(), id, patch)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.publish(sync.EventUpdate, ch)
	if created {
		c.JSON(http.StatusCreated, ch)
		return
	}
	c.JSON(http.StatusOK, ch)
}

func (h *Handler) remove(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	ch, err := h.Svc.Delete(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.publish(sync.EventDelete, ch)
	c.JSON(http.StatusOK, ch)
}

func (h *Handler) publish(kind string, ch models.Character) {
	if h.Hub == nil {
		return
	}
	ev := sync.CharacterEvent{
		Type:      kind,
		ID:        ch.ID,
		Name:      ch.Name,
		Source:    ch.Source,
		DeletedAt: ch.DeletedAt,
		At:        time.Now().UTC(),
	}
	h.Hub.BroadcastJSON(ev)
}

// writeError maps service errors onto status codes. Unexpected failures
// surface their raw message.
func (h *Handler) writeError(c *gin.Context, err error) {
	var (
		validation *ValidationError
		deleted    *AlreadyDeletedError
		upstream   *catalog.UpstreamError
	)

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"message": validation.Error()})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Character not found"})
	case errors.As(err, &deleted):
		c.JSON(http.StatusBadRequest, gin.H{
			"message":    "Character is already deleted",
			"deleted_at": deleted.DeletedAt,
		})
	case errors.As(err, &upstream):
		status := http.StatusInternalServerError
		if upstream.Status >= 400 {
			status = upstream.Status
		}
		h.Log.Warn("remote catalog unavailable", zap.Int("status", upstream.Status), zap.Error(err))
		c.JSON(status, gin.H{"message": upstream.Error()})
	default:
		h.Log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
	}
}

func parseID(c *gin.Context) (int64, bool) {
	raw := strings.TrimSpace(c.Param("id"))
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Character ID is required"})
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Character ID must be an integer"})
		return 0, false
	}
	return id, true
}
