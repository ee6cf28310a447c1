package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAndMigrate(t *testing.T) {
	cfg := Config{Path: filepath.Join(t.TempDir(), "sub", "data.db")}

	db, err := OpenAndMigrate(cfg)
	require.NoError(t, err)
	defer db.Close()

	// idempotent
	require.NoError(t, Migrate(db))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM movies`).Scan(&n))
	assert.Zero(t, n)
}
