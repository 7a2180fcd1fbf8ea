package escswitch

import (
	"codeberg.org/miketth/escswitch/pkg/prefstore/memory"
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

type brokenStore struct{}

func (brokenStore) GetPreference(string) (string, bool, error) {
	return "", false, errors.New("disk gone")
}

func (brokenStore) SetPreference(string, string) error {
	return errors.New("disk gone")
}

func TestPreferences(t *testing.T) {
	prefs := NewPreferences(memory.NewPreferenceStore())

	_, ok, err := prefs.LastNonLatinSource()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, prefs.SetLastNonLatinSource("pinyin"))
	id, ok, err := prefs.LastNonLatinSource()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "pinyin", id)

	enabled, err := prefs.ShiftSwitch(true)
	require.NoError(t, err)
	assert.True(t, enabled)

	require.NoError(t, prefs.SetShiftSwitch(false))
	enabled, err = prefs.ShiftSwitch(true)
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestPreferencesErrors(t *testing.T) {
	prefs := NewPreferences(brokenStore{})

	_, _, err := prefs.LastNonLatinSource()
	assert.Error(t, err)

	enabled, err := prefs.ShiftSwitch(true)
	assert.Error(t, err)
	assert.True(t, enabled)

	store := memory.NewPreferenceStore()
	require.NoError(t, store.SetPreference(prefShiftSwitch, "maybe"))
	enabled, err = NewPreferences(store).ShiftSwitch(false)
	assert.Error(t, err)
	assert.False(t, enabled)
}
