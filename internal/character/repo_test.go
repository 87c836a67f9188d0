package character

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"characterhub/pkg/database"
	"characterhub/pkg/models"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "overlay.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))
	return NewRepo(db)
}

func TestRepoGetMissing(t *testing.T) {
	repo := newTestRepo(t)
	c, err := repo.GetByID(context.Background(), 404)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestRepoPutReplacesWholeRecord(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	first := models.Character{
		ID: 1, Name: "Rick Sanchez", Status: "Alive", Species: "Human", Gender: "Male",
		Origin: "Earth (C-137)", Location: "Citadel of Ricks", Image: "1.jpeg", Source: models.SourceCanonical,
	}
	require.NoError(t, repo.Put(ctx, first))

	second := models.Character{ID: 1, Name: "Rick", Source: models.SourceCanonical}
	require.NoError(t, repo.Put(ctx, second))

	got, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, second, *got)
}

func TestRepoScan(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	seed := []models.Character{
		{ID: 30, Name: "Rick Prime", Source: models.SourceCanonical},
		{ID: 10, Name: "Morty", Source: models.SourceCanonical, DeletedAt: "2024-01-01T00:00:00.000Z"},
		{ID: 20, Name: "rick lowercase", Source: models.SourceCanonical},
		{ID: 1700000000000001, Name: "Rick Filler", Source: models.SourceFiller},
		{ID: 1700000000000002, Name: "Gone Rick", Source: models.SourceFiller, DeletedAt: "2024-01-01T00:00:00.000Z"},
	}
	for _, c := range seed {
		require.NoError(t, repo.Put(ctx, c))
	}

	ids := func(cs []models.Character) []int64 {
		out := make([]int64, 0, len(cs))
		for _, c := range cs {
			out = append(out, c.ID)
		}
		return out
	}

	all, err := repo.Scan(ctx, ScanQuery{Source: models.SourceCanonical, IncludeDeleted: true})
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 20, 30}, ids(all))

	live, err := repo.Scan(ctx, ScanQuery{Source: models.SourceCanonical})
	require.NoError(t, err)
	assert.Equal(t, []int64{20, 30}, ids(live))

	// case-sensitive contains
	named, err := repo.Scan(ctx, ScanQuery{Source: models.SourceCanonical, IncludeDeleted: true, Name: "Rick"})
	require.NoError(t, err)
	assert.Equal(t, []int64{30}, ids(named))

	fillers, err := repo.Scan(ctx, ScanQuery{Source: models.SourceFiller, Name: "Rick"})
	require.NoError(t, err)
	assert.Equal(t, []int64{1700000000000001}, ids(fillers))
}

func TestBuildScanSQL(t *testing.T) {
	sqlStr, args := buildScanSQL(ScanQuery{Source: models.SourceFiller, Name: "Rick"})
	assert.Contains(t, sqlStr, "source = ?")
	assert.Contains(t, sqlStr, "deleted_at IS NULL")
	assert.Contains(t, sqlStr, "instr(name, ?) > 0")
	assert.Equal(t, []any{models.SourceFiller, "Rick"}, args)

	sqlStr, args = buildScanSQL(ScanQuery{Source: models.SourceCanonical, IncludeDeleted: true})
	assert.NotContains(t, sqlStr, "deleted_at IS NULL")
	assert.Equal(t, []any{models.SourceCanonical}, args)
}
