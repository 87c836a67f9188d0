package character

import (
	"context"
	"sort"
	"strings"
	"sync"

	"characterhub/internal/catalog"
	"characterhub/pkg/models"
)

type memStore struct {
	mu      sync.Mutex
	rows    map[int64]models.Character
	puts    int
	scanErr error
	putErr  error
}

func newMemStore(seed ...models.Character) *memStore {
	s := &memStore{rows: make(map[int64]models.Character)}
	for _, c := range seed {
		s.rows[c.ID] = c
	}
	return s
}

func (s *memStore) GetByID(_ context.Context, id int64) (*models.Character, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *memStore) Scan(_ context.Context, q ScanQuery) ([]models.Character, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scanErr != nil {
		return nil, s.scanErr
	}
	out := make([]models.Character, 0)
	for _, c := range s.rows {
		if c.Source != q.Source {
			continue
		}
		if !q.IncludeDeleted && !c.Live() {
			continue
		}
		if q.Name != "" && !strings.Contains(c.Name, q.Name) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) Put(_ context.Context, c models.Character) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.rows[c.ID] = c
	s.puts++
	return nil
}

func (s *memStore) get(id int64) (models.Character, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.rows[id]
	return c, ok
}

type fakeCatalog struct {
	mu      sync.Mutex
	pages   map[int][]models.RawCharacter
	byID    map[int64]models.RawCharacter
	pageErr error
	idErr   error
	calls   []string
}

func newFakeCatalog(records ...models.RawCharacter) *fakeCatalog {
	f := &fakeCatalog{pages: map[int][]models.RawCharacter{}, byID: map[int64]models.RawCharacter{}}
	for _, r := range records {
		f.byID[r.ID] = r
	}
	return f
}

// FetchPage mimics the upstream: name filtering is case-insensitive and an
// empty result is reported as not found.
func (f *fakeCatalog) FetchPage(_ context.Context, page int, name string) (catalog.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "page")
	if f.pageErr != nil {
		return catalog.Page{}, f.pageErr
	}
	var out []models.RawCharacter
	for _, r := range f.pages[page] {
		if name == "" || strings.Contains(strings.ToLower(r.Name), strings.ToLower(name)) {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return catalog.Page{Records: []models.RawCharacter{}, Found: false}, nil
	}
	return catalog.Page{Records: out, Found: true, Info: catalog.Info{Count: len(out), Pages: len(f.pages)}}, nil
}

func (f *fakeCatalog) FetchByID(_ context.Context, id int64) (models.RawCharacter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "id")
	if f.idErr != nil {
		return models.RawCharacter{}, f.idErr
	}
	r, ok := f.byID[id]
	if !ok {
		return models.RawCharacter{}, catalog.ErrNotFound
	}
	return r, nil
}

func rawChar(id int64, name, origin string) models.RawCharacter {
	return models.RawCharacter{
		ID:       id,
		Name:     name,
		Status:   "Alive",
		Species:  "Human",
		Gender:   "Male",
		Origin:   models.PlaceFromName(origin),
		Location: models.PlaceFromName("Earth"),
		Image:    "https://example.test/avatar.jpeg",
	}
}
