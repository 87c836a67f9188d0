package character

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"characterhub/internal/catalog"
	"characterhub/pkg/models"
)

// Store is the overlay the service reads and writes.
type Store interface {
	GetByID(ctx context.Context, id int64) (*models.Character, error)
	Scan(ctx context.Context, q ScanQuery) ([]models.Character, error)
	Put(ctx context.Context, c models.Character) error
}

// Catalog is the read-only remote feed.
type Catalog interface {
	FetchPage(ctx context.Context, page int, name string) (catalog.Page, error)
	FetchByID(ctx context.Context, id int64) (models.RawCharacter, error)
}

// deletedAtLayout matches JavaScript's Date.toISOString (UTC, millis).
const deletedAtLayout = "2006-01-02T15:04:05.000Z"

var baseRequiredFields = []string{"name", "status", "species", "gender", "origin", "location"}

// Service merges the remote catalog with the local overlay and owns the
// create/update/delete lifecycle of overlay records.
type Service struct {
	Store   Store
	Catalog Catalog
	IDs     *Minter
	Log     *zap.Logger
	Now     func() time.Time

	// RequireImage makes "image" mandatory on Create.
	RequireImage bool
}

func NewService(store Store, cat Catalog, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		Store:   store,
		Catalog: cat,
		IDs:     NewMinter(),
		Log:     logger.Named("character"),
		Now:     time.Now,
	}
}

type ListQuery struct {
	Page int
	Name string
}

type ListResult struct {
	Results []models.Character
	Info    catalog.Info
}

// Get returns the overlay record when present, otherwise the remote one.
// Remote hits are not written back to the overlay.
func (s *Service) Get(ctx context.Context, id int64) (models.Character, error) {
	local, err := s.Store.GetByID(ctx, id)
	if err != nil {
		return models.Character{}, fmt.Errorf("get overlay %d: %w", id, err)
	}
	if local != nil {
		if !local.Live() {
			return models.Character{}, ErrNotFound
		}
		return *local, nil
	}
	return s.fetchCanonical(ctx, id)
}

// List assembles one page of the unified collection.
//
// The remote page, the canonical overrides and (on page 1) the filler
// records are loaded concurrently. Every leg runs to completion; the first
// error fails the request.
func (s *Service) List(ctx context.Context, q ListQuery) (ListResult, error) {
	if q.Page < 1 {
		q.Page = 1
	}

	var (
		page      catalog.Page
		overrides []models.Character
		fillers   []models.Character
		g         errgroup.Group
	)

	g.Go(func() error {
		p, err := s.Catalog.FetchPage(ctx, q.Page, q.Name)
		if err != nil {
			return fmt.Errorf("fetch page %d: %w", q.Page, err)
		}
		page = p
		return nil
	})
	g.Go(func() error {
		// unfiltered: an override may have been renamed away from the name
		// the remote record still matches on
		o, err := s.Store.Scan(ctx, ScanQuery{Source: models.SourceCanonical, IncludeDeleted: true})
		if err != nil {
			return fmt.Errorf("scan overrides: %w", err)
		}
		overrides = o
		return nil
	})
	if q.Page == 1 {
		g.Go(func() error {
			f, err := s.Store.Scan(ctx, ScanQuery{Source: models.SourceFiller, Name: q.Name})
			if err != nil {
				return fmt.Errorf("scan fillers: %w", err)
			}
			fillers = f
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return ListResult{}, err
	}

	var merged []models.RawCharacter
	if !page.Found && q.Name != "" {
		// upstream has nothing for this search: show only local matches
		merged = liveRaw(matchingName(overrides, q.Name))
		s.Log.Debug("remote search empty, serving overlay matches",
			zap.String("name", q.Name), zap.Int("matches", len(merged)))
	} else {
		merged = mergePage(page.Records, overrides, q.Name)
	}

	if len(fillers) > 0 {
		merged = append(liveRaw(fillers), merged...)
	}

	return ListResult{Results: NormalizeAll(merged), Info: page.Info}, nil
}

// mergePage substitutes overlay versions for remote records sharing an id
// and drops anything tombstoned. An override whose current name no longer
// matches the search is dropped too; the remote matched on its old name.
func mergePage(remote []models.RawCharacter, overrides []models.Character, name string) []models.RawCharacter {
	byID := make(map[int64]models.Character, len(overrides))
	for _, o := range overrides {
		byID[o.ID] = o
	}

	out := make([]models.RawCharacter, 0, len(remote))
	for _, r := range remote {
		candidate := r
		if o, ok := byID[r.ID]; ok {
			if name != "" && !strings.Contains(strings.ToLower(o.Name), strings.ToLower(name)) {
				continue
			}
			candidate = o.Raw()
		} else {
			candidate.Source = models.SourceCanonical
		}
		if candidate.DeletedAt != "" {
			continue
		}
		out = append(out, candidate)
	}
	return out
}

// matchingName keeps records whose name contains name, case-sensitively,
// the same way the overlay store filters.
func matchingName(cs []models.Character, name string) []models.Character {
	out := make([]models.Character, 0, len(cs))
	for _, c := range cs {
		if strings.Contains(c.Name, name) {
			out = append(out, c)
		}
	}
	return out
}

func liveRaw(cs []models.Character) []models.RawCharacter {
	out := make([]models.RawCharacter, 0, len(cs))
	for _, c := range cs {
		if c.Live() {
			out = append(out, c.Raw())
		}
	}
	return out
}

// Create validates and stores a new filler character under a freshly minted id.
func (s *Service) Create(ctx context.Context, raw models.RawCharacter) (models.Character, error) {
	if missing := s.missingFields(raw); len(missing) > 0 {
		return models.Character{}, &ValidationError{Fields: missing}
	}

	id, err := s.mintFreeID(ctx)
	if err != nil {
		return models.Character{}, err
	}
	raw.ID = id
	raw.Source = models.SourceFiller
	raw.DeletedAt = ""

	c := Normalize(raw)
	if err := s.Store.Put(ctx, c); err != nil {
		return models.Character{}, fmt.Errorf("create character: %w", err)
	}

	s.Log.Info("filler character created", zap.Int64("id", c.ID), zap.String("name", c.Name))
	return c, nil
}

// mintFreeID re-mints when the overlay already holds the minted id. The
// check and the later Put are not atomic, so concurrent creates in the same
// millisecond can still collide.
func (s *Service) mintFreeID(ctx context.Context) (int64, error) {
	const attempts = 3
	var id int64
	for i := 0; i < attempts; i++ {
		id = s.IDs.Mint()
		existing, err := s.Store.GetByID(ctx, id)
		if err != nil {
			return 0, fmt.Errorf("check minted id: %w", err)
		}
		if existing == nil {
			return id, nil
		}
		s.Log.Warn("minted id collision", zap.Int64("id", id), zap.Int("attempt", i+1))
	}
	return 0, fmt.Errorf("mint id: %d consecutive collisions", attempts)
}

func (s *Service) missingFields(raw models.RawCharacter) []string {
	present := map[string]bool{
		"name":     raw.Name != "",
		"status":   raw.Status != "",
		"species":  raw.Species != "",
		"gender":   raw.Gender != "",
		"origin":   raw.Origin.Present,
		"location": raw.Location.Present,
		"image":    raw.Image != "",
	}

	required := baseRequiredFields
	if s.RequireImage {
		required = append(append([]string{}, baseRequiredFields...), "image")
	}

	var missing []string
	for _, f := range required {
		if !present[f] {
			missing = append(missing, f)
		}
	}
	return missing
}

// Update merges patch over the stored record. A record missing from the
// overlay is first materialized from the catalog, or started empty when the
// catalog has no such id either; created reports both cases.
func (s *Service) Update(ctx context.Context, id int64, patch models.CharacterPatch) (c models.Character, created bool, err error) {
	existing, err := s.Store.GetByID(ctx, id)
	if err != nil {
		return models.Character{}, false, fmt.Errorf("get overlay %d: %w", id, err)
	}

	var base models.Character
	switch {
	case existing == nil:
		base, err = s.fetchCanonical(ctx, id)
		if errors.Is(err, ErrNotFound) {
			base, err = models.Character{ID: id, Source: models.SourceCanonical}, nil
		}
		if err != nil {
			return models.Character{}, false, err
		}
		created = true
	case !existing.Live():
		return models.Character{}, false, &AlreadyDeletedError{ID: id, DeletedAt: existing.DeletedAt}
	default:
		base = *existing
	}

	c = patch.Apply(base)
	c.ID = id

	if err := s.Store.Put(ctx, c); err != nil {
		return models.Character{}, false, fmt.Errorf("update character: %w", err)
	}

	s.Log.Info("character updated",
		zap.Int64("id", id), zap.String("source", c.Source), zap.Bool("materialized", created))
	return c, created, nil
}

// Delete tombstones a record. Canonical records not yet in the overlay are
// materialized from the catalog so the tombstone has something to suppress.
func (s *Service) Delete(ctx context.Context, id int64) (models.Character, error) {
	existing, err := s.Store.GetByID(ctx, id)
	if err != nil {
		return models.Character{}, fmt.Errorf("get overlay %d: %w", id, err)
	}

	var target models.Character
	if existing != nil {
		if !existing.Live() {
			return models.Character{}, &AlreadyDeletedError{ID: id, DeletedAt: existing.DeletedAt}
		}
		target = *existing
	} else {
		target, err = s.fetchCanonical(ctx, id)
		if err != nil {
			return models.Character{}, err
		}
	}

	target.DeletedAt = s.Now().UTC().Format(deletedAtLayout)
	if err := s.Store.Put(ctx, target); err != nil {
		return models.Character{}, fmt.Errorf("delete character: %w", err)
	}

	s.Log.Info("character tombstoned", zap.Int64("id", id), zap.String("source", target.Source))
	return target, nil
}

func (s *Service) fetchCanonical(ctx context.Context, id int64) (models.Character, error) {
	raw, err := s.Catalog.FetchByID(ctx, id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return models.Character{}, ErrNotFound
		}
		return models.Character{}, fmt.Errorf("fetch character %d: %w", id, err)
	}
	raw.ID = id
	raw.Source = models.SourceCanonical
	raw.DeletedAt = ""
	return Normalize(raw), nil
}
