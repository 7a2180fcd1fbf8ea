package migrations

import (
	"database/sql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"path/filepath"
	"testing"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "prefs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func storedVersion(t *testing.T, db *sql.DB) (uint, bool) {
	t.Helper()

	var version uint
	var dirty bool
	require.NoError(t, db.QueryRow("select version, dirty from schema_migrations").Scan(&version, &dirty))

	return version, dirty
}

func TestMigrateIsRepeatable(t *testing.T) {
	db := openDB(t)
	log := zaptest.NewLogger(t).Sugar()

	require.NoError(t, Migrate(db, log))
	version, dirty := storedVersion(t, db)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	require.NoError(t, Migrate(db, log))
	version, _ = storedVersion(t, db)
	assert.Equal(t, uint(1), version)
}

func TestMigrateRefusesDirtySchema(t *testing.T) {
	db := openDB(t)
	log := zaptest.NewLogger(t).Sugar()

	require.NoError(t, Migrate(db, log))
	_, err := db.Exec("update schema_migrations set dirty = 1")
	require.NoError(t, err)

	err = Migrate(db, log)
	assert.ErrorIs(t, err, ErrDirtySchema)
}
