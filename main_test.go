package main

import (
	"bytes"
	"codeberg.org/miketth/escswitch/pkg/escswitch"
	"codeberg.org/miketth/escswitch/pkg/inputsource"
	"codeberg.org/miketth/escswitch/pkg/inputsource/inputsourcetest"
	"codeberg.org/miketth/escswitch/pkg/prefstore/memory"
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"strings"
	"testing"
	"time"
)

type harness struct {
	backend     *inputsourcetest.Backend
	catalog     *inputsource.Catalog
	coordinator *escswitch.Coordinator
	prefs       *escswitch.Preferences
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := zaptest.NewLogger(t).Sugar()

	backend := inputsourcetest.NewBackend(
		inputsourcetest.Latin.ID,
		inputsourcetest.Latin,
		inputsourcetest.German,
		inputsourcetest.Pinyin,
	)
	catalog := inputsource.NewCatalog(backend, inputsourcetest.Latin.ID, log)
	require.NoError(t, catalog.Refresh())

	switcher := inputsource.NewSwitcher(catalog, backend, log, inputsource.WithSleep(func(time.Duration) {}))

	return &harness{
		backend:     backend,
		catalog:     catalog,
		coordinator: escswitch.NewCoordinator(catalog, switcher, nil, nil, nil, log),
		prefs:       escswitch.NewPreferences(memory.NewPreferenceStore()),
	}
}

func (h *harness) remembered(t *testing.T) string {
	t.Helper()
	id, ok := h.coordinator.LastNonLatinSource()
	require.True(t, ok)
	return id
}

func TestRestoreMemorySeedsFirstNonLatin(t *testing.T) {
	h := newHarness(t)

	restoreMemory(h.coordinator, h.catalog, h.prefs, zaptest.NewLogger(t).Sugar())
	assert.Equal(t, inputsourcetest.German.ID, h.remembered(t))
}

func TestRestoreMemoryFromPreferences(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.prefs.SetLastNonLatinSource(inputsourcetest.Pinyin.ID))

	restoreMemory(h.coordinator, h.catalog, h.prefs, zaptest.NewLogger(t).Sugar())
	assert.Equal(t, inputsourcetest.Pinyin.ID, h.remembered(t))
}

func TestRestoreMemoryIgnoresRemovedSource(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.prefs.SetLastNonLatinSource("com.apple.keylayout.Dvorak"))

	restoreMemory(h.coordinator, h.catalog, h.prefs, zaptest.NewLogger(t).Sugar())
	assert.Equal(t, inputsourcetest.German.ID, h.remembered(t))
}

func TestReportChangesPersistsMemory(t *testing.T) {
	h := newHarness(t)
	changes := make(chan struct{}, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- reportChanges(ctx, changes, h.coordinator, h.catalog, h.prefs, false, zaptest.NewLogger(t).Sugar())
	}()

	require.NoError(t, h.coordinator.SetPreferredSource(inputsourcetest.Pinyin.ID))
	changes <- struct{}{}

	assert.Eventually(t, func() bool {
		id, found, err := h.prefs.LastNonLatinSource()
		return err == nil && found && id == inputsourcetest.Pinyin.ID
	}, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestPrintSources(t *testing.T) {
	h := newHarness(t)
	h.backend.SetCurrent(inputsourcetest.Pinyin.ID)

	var buf bytes.Buffer
	require.NoError(t, printSources(&buf, h.catalog))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "L"), lines[0])
	assert.True(t, strings.HasPrefix(lines[2], "*"), lines[2])
	assert.Contains(t, lines[2], "cjkv")
}

func TestParseSwitch(t *testing.T) {
	for _, in := range []string{"on", "true", "1"} {
		v, err := parseSwitch(in)
		require.NoError(t, err)
		assert.True(t, v)
	}
	for _, in := range []string{"off", "false", "0"} {
		v, err := parseSwitch(in)
		require.NoError(t, err)
		assert.False(t, v)
	}

	_, err := parseSwitch("maybe")
	assert.Error(t, err)
}

func TestSelectSourceUnconfirmedIsWarning(t *testing.T) {
	h := newHarness(t)
	h.backend.IgnoreSelects(inputsourcetest.Pinyin.ID, 1)

	err := selectSource(h.coordinator, h.prefs, inputsourcetest.Pinyin.ID, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)

	assert.Equal(t, inputsourcetest.Pinyin.ID, h.backend.Current())
	id, found, err := h.prefs.LastNonLatinSource()
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, inputsourcetest.Pinyin.ID, id)
}

func TestSelectSourceUnknown(t *testing.T) {
	h := newHarness(t)

	err := selectSource(h.coordinator, h.prefs, "com.example.gone", zaptest.NewLogger(t).Sugar())
	assert.ErrorIs(t, err, inputsource.ErrUnknownSource)
}

func TestShiftSwitchConfigAppliesOnlyChanges(t *testing.T) {
	shift := escswitch.NewShiftSwitch(true)
	cfg := &shiftSwitchConfig{shift: shift, last: true}

	// stored preference turned it off
	shift.Set(false)

	assert.False(t, cfg.apply(true))
	assert.False(t, shift.ShiftSwitchEnabled())

	assert.True(t, cfg.apply(false))
	assert.False(t, shift.ShiftSwitchEnabled())

	assert.True(t, cfg.apply(true))
	assert.True(t, shift.ShiftSwitchEnabled())
}
