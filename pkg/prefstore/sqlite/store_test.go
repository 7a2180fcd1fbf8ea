package sqlite

import (
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"path/filepath"
	"strings"
	"testing"
)

func TestPreferenceStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.db")
	log := zaptest.NewLogger(t).Sugar()

	store, err := NewPreferenceStore(path, log)
	require.NoError(t, err)

	_, ok, err := store.GetPreference("last_non_latin_source")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SetPreference("last_non_latin_source", "pinyin"))
	require.NoError(t, store.SetPreference("last_non_latin_source", "com.apple.inputmethod.Kotoeri"))

	value, ok, err := store.GetPreference("last_non_latin_source")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "com.apple.inputmethod.Kotoeri", value)
	require.NoError(t, store.Close())

	// migrations are idempotent and data survives a reopen
	store, err = NewPreferenceStore(path, log)
	require.NoError(t, err)
	defer store.Close()

	value, ok, err = store.GetPreference("last_non_latin_source")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "com.apple.inputmethod.Kotoeri", value)
}

func TestDumpTables(t *testing.T) {
	store, err := NewPreferenceStore(filepath.Join(t.TempDir(), "prefs.db"), zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	defer store.Close()

	tables, err := New(store.db).DumpTables(context.Background())
	require.NoError(t, err)

	var found bool
	for _, stmt := range tables {
		if stmt != nil && strings.Contains(*stmt, "create table preferences") {
			found = true
		}
	}
	assert.True(t, found, "preferences table missing from schema dump")
}
