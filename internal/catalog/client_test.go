package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pageOne = `{
  "info": {"count": 826, "pages": 42, "next": "https://example.test/api/character?page=2", "prev": null},
  "results": [
    {"id": 1, "name": "Rick Sanchez", "status": "Alive", "species": "Human", "type": "", "gender": "Male",
     "origin": {"name": "Earth (C-137)", "url": ""}, "location": {"name": "Citadel of Ricks", "url": ""},
     "image": "https://example.test/avatar/1.jpeg", "episode": [], "url": "", "created": ""}
  ]
}`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", 2*time.Second, nil)
}

func TestFetchPage(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/character", r.URL.Path)
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(pageOne))
	})

	page, err := c.FetchPage(context.Background(), 1, "rick")
	require.NoError(t, err)

	assert.Equal(t, "name=rick&page=1", gotQuery)
	assert.True(t, page.Found)
	assert.Equal(t, 42, page.Info.Pages)
	assert.Empty(t, page.Info.Prev)
	require.Len(t, page.Records, 1)
	assert.Equal(t, "Earth (C-137)", page.Records[0].Origin.Name)
}

func TestFetchPageOmitsEmptyName(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "page=3", r.URL.RawQuery)
		_, _ = w.Write([]byte(`{"info":{},"results":[]}`))
	})

	page, err := c.FetchPage(context.Background(), 3, "")
	require.NoError(t, err)
	assert.True(t, page.Found)
	assert.Empty(t, page.Records)
}

func TestFetchPageNotFoundIsNotAnError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"There is nothing here"}`))
	})

	page, err := c.FetchPage(context.Background(), 1, "zzz")
	require.NoError(t, err)
	assert.False(t, page.Found)
	assert.NotNil(t, page.Records)
	assert.Empty(t, page.Records)
}

func TestFetchPageUpstreamFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.FetchPage(context.Background(), 1, "")
	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusBadGateway, ue.Status)
	assert.Contains(t, err.Error(), "502")
}

func TestFetchPageMalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	})

	_, err := c.FetchPage(context.Background(), 1, "")
	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Zero(t, ue.Status)
}

func TestFetchByID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/character/2":
			_, _ = w.Write([]byte(`{"id":2,"name":"Morty Smith","origin":"unknown","location":null}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	raw, err := c.FetchByID(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Morty Smith", raw.Name)
	assert.Equal(t, "unknown", raw.Origin.Name)
	assert.False(t, raw.Location.Valid)

	_, err = c.FetchByID(context.Background(), 9999)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFetchByIDTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, time.Second, nil)
	_, err := c.FetchByID(context.Background(), 1)

	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Zero(t, ue.Status)
	assert.False(t, errors.Is(err, ErrNotFound))
}
