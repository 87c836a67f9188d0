// Package catalog reads the remote, read-only character catalog.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"characterhub/pkg/models"
)

// ErrNotFound is returned by FetchByID when the catalog has no such character.
var ErrNotFound = errors.New("catalog: character not found")

// UpstreamError is any catalog failure other than a 404. Status is the
// upstream HTTP status, or 0 when no response was received.
type UpstreamError struct {
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("remote catalog request failed with status code %d", e.Status)
	}
	return fmt.Sprintf("remote catalog request failed: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Info is the upstream pagination metadata.
type Info struct {
	Count int    `json:"count"`
	Pages int    `json:"pages"`
	Next  string `json:"next,omitempty"`
	Prev  string `json:"prev,omitempty"`
}

// Page is one page of a catalog listing. Found is false when the upstream
// search matched nothing; that is a normal outcome, not an error.
type Page struct {
	Records []models.RawCharacter
	Found   bool
	Info    Info
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
	Log     *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
		Log:     logger.Named("catalog"),
	}
}

type pageResponse struct {
	Info    Info                  `json:"info"`
	Results []models.RawCharacter `json:"results"`
}

// FetchPage loads one page, optionally filtered by the catalog's own name matching.
func (c *Client) FetchPage(ctx context.Context, page int, name string) (Page, error) {
	u, err := url.Parse(c.BaseURL + "/character")
	if err != nil {
		return Page{}, &UpstreamError{Err: fmt.Errorf("build url: %w", err)}
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	if name != "" {
		q.Set("name", name)
	}
	u.RawQuery = q.Encode()

	status, body, err := c.get(ctx, u.String())
	if err != nil {
		return Page{}, err
	}

	switch {
	case status == http.StatusNotFound:
		c.Log.Debug("catalog page empty", zap.Int("page", page), zap.String("name", name))
		return Page{Records: []models.RawCharacter{}, Found: false}, nil
	case status != http.StatusOK:
		return Page{}, &UpstreamError{Status: status, Err: fmt.Errorf("list: %s", snippet(body))}
	}

	var resp pageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Page{}, &UpstreamError{Err: fmt.Errorf("decode page: %w", err)}
	}
	if resp.Results == nil {
		resp.Results = []models.RawCharacter{}
	}
	return Page{Records: resp.Results, Found: true, Info: resp.Info}, nil
}

// FetchByID loads a single character or returns ErrNotFound.
func (c *Client) FetchByID(ctx context.Context, id int64) (models.RawCharacter, error) {
	status, body, err := c.get(ctx, fmt.Sprintf("%s/character/%d", c.BaseURL, id))
	if err != nil {
		return models.RawCharacter{}, err
	}

	switch {
	case status == http.StatusNotFound:
		return models.RawCharacter{}, ErrNotFound
	case status != http.StatusOK:
		return models.RawCharacter{}, &UpstreamError{Status: status, Err: fmt.Errorf("get %d: %s", id, snippet(body))}
	}

	var raw models.RawCharacter
	if err := json.Unmarshal(body, &raw); err != nil {
		return models.RawCharacter{}, &UpstreamError{Err: fmt.Errorf("decode character %d: %w", id, err)}
	}
	return raw, nil
}

func (c *Client) get(ctx context.Context, rawURL string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, nil, &UpstreamError{Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		c.Log.Warn("catalog request failed", zap.String("url", rawURL), zap.Error(err))
		return 0, nil, &UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &UpstreamError{Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	c.Log.Debug("catalog request",
		zap.String("url", rawURL),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)
	return resp.StatusCode, body, nil
}

func snippet(b []byte) string {
	const max = 256
	s := strings.TrimSpace(string(b))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
