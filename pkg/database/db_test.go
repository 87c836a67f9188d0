package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigHonoursEnv(t *testing.T) {
	t.Setenv("CHARACTERHUB_DB_PATH", "/tmp/custom.db")
	assert.Equal(t, "/tmp/custom.db", DefaultConfig().Path)
}

func TestOpenAndMigrate(t *testing.T) {
	cfg := Config{Path: filepath.Join(t.TempDir(), "nested", "data.db")}

	db, err := Open(cfg)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db))
	// second run must be a no-op
	require.NoError(t, Migrate(db))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM characters`).Scan(&n))
	assert.Zero(t, n)

	_, err = db.Exec(`INSERT INTO characters (id, name, source) VALUES (1, 'Rick', 'bogus')`)
	assert.Error(t, err, "source check constraint")
}
