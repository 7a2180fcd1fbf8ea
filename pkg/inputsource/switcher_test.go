package inputsource_test

import (
	"codeberg.org/miketth/escswitch/pkg/inputsource"
	"codeberg.org/miketth/escswitch/pkg/inputsource/inputsourcetest"
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"testing"
	"time"
)

type sleepRecorder struct {
	waits []time.Duration
}

func (r *sleepRecorder) sleep(d time.Duration) {
	r.waits = append(r.waits, d)
}

func newSwitcher(t *testing.T, backend *inputsourcetest.Backend) (*inputsource.Switcher, *sleepRecorder) {
	t.Helper()

	rec := &sleepRecorder{}
	catalog := newCatalog(t, backend)
	sw := inputsource.NewSwitcher(catalog, backend, zaptest.NewLogger(t).Sugar(),
		inputsource.WithSettleInterval(15*time.Millisecond),
		inputsource.WithSleep(rec.sleep),
	)
	return sw, rec
}

func allSources() []inputsource.InputSource {
	return []inputsource.InputSource{
		inputsourcetest.Latin,
		inputsourcetest.Pinyin,
		inputsourcetest.German,
		inputsourcetest.Kotoeri,
	}
}

func TestSelectAlreadyActiveIsNoop(t *testing.T) {
	backend := inputsourcetest.NewBackend("pinyin", allSources()...)
	sw, rec := newSwitcher(t, backend)

	require.NoError(t, sw.Select("pinyin"))
	assert.Empty(t, backend.Selects())
	assert.Empty(t, rec.waits)
}

func TestSelectNonCJKVAcceptsWithoutVerification(t *testing.T) {
	backend := inputsourcetest.NewBackend("pinyin", allSources()...)
	// even if the switch does not land, non-CJKV targets are not checked
	backend.IgnoreSelects(inputsourcetest.German.ID, 1)
	sw, rec := newSwitcher(t, backend)

	require.NoError(t, sw.Select(inputsourcetest.German.ID))
	assert.Equal(t, []string{inputsourcetest.German.ID}, backend.Selects())
	assert.Equal(t, []time.Duration{15 * time.Millisecond}, rec.waits)
}

func TestSelectCJKVConfirmedFirstTry(t *testing.T) {
	backend := inputsourcetest.NewBackend(inputsourcetest.Latin.ID, allSources()...)
	sw, rec := newSwitcher(t, backend)

	require.NoError(t, sw.Select("pinyin"))
	assert.Equal(t, []string{"pinyin"}, backend.Selects())
	assert.Len(t, rec.waits, 1)
	assert.Equal(t, "pinyin", backend.Current())
}

func TestSelectCJKVBridgesExactlyOnce(t *testing.T) {
	backend := inputsourcetest.NewBackend(inputsourcetest.German.ID, allSources()...)
	backend.IgnoreSelects("pinyin", 1)
	sw, rec := newSwitcher(t, backend)

	err := sw.Select("pinyin")
	require.ErrorIs(t, err, inputsource.ErrSwitchUnconfirmed)

	assert.Equal(t, []string{"pinyin", inputsourcetest.Latin.ID, "pinyin"}, backend.Selects())
	assert.Len(t, rec.waits, 3)
	assert.Equal(t, "pinyin", backend.Current())
}

func TestSelectCJKVBridgeDoesNotLoop(t *testing.T) {
	backend := inputsourcetest.NewBackend(inputsourcetest.Latin.ID, allSources()...)
	backend.IgnoreSelects(inputsourcetest.Kotoeri.ID, 10)
	sw, _ := newSwitcher(t, backend)

	err := sw.Select(inputsourcetest.Kotoeri.ID)
	require.ErrorIs(t, err, inputsource.ErrSwitchUnconfirmed)

	assert.Equal(t, []string{inputsourcetest.Kotoeri.ID, inputsourcetest.Latin.ID, inputsourcetest.Kotoeri.ID}, backend.Selects())
	assert.Equal(t, inputsourcetest.Latin.ID, backend.Current())
}

func TestSelectCJKVWithoutBridge(t *testing.T) {
	backend := inputsourcetest.NewBackend("pinyin", inputsourcetest.Pinyin, inputsourcetest.Kotoeri)
	backend.IgnoreSelects(inputsourcetest.Kotoeri.ID, 1)
	sw, _ := newSwitcher(t, backend)

	err := sw.Select(inputsourcetest.Kotoeri.ID)
	require.ErrorIs(t, err, inputsource.ErrSwitchUnconfirmed)
	assert.Equal(t, []string{inputsourcetest.Kotoeri.ID}, backend.Selects())
}

func TestSelectUnknownSource(t *testing.T) {
	backend := inputsourcetest.NewBackend(inputsourcetest.Latin.ID, allSources()...)
	sw, _ := newSwitcher(t, backend)

	err := sw.Select("com.example.gone")
	require.ErrorIs(t, err, inputsource.ErrUnknownSource)
	assert.Empty(t, backend.Selects())
}

func TestSelectCurrentSourceUnavailable(t *testing.T) {
	backend := inputsourcetest.NewBackend(inputsourcetest.Latin.ID, allSources()...)
	sw, _ := newSwitcher(t, backend)

	backend.CurrentErr = errors.New("no active source")
	err := sw.Select("pinyin")
	require.ErrorIs(t, err, inputsource.ErrCurrentSourceUnavailable)
	assert.Empty(t, backend.Selects())
}

func TestSelectNativeError(t *testing.T) {
	backend := inputsourcetest.NewBackend(inputsourcetest.Latin.ID, allSources()...)
	backend.SelectErr = errors.New("denied")
	sw, rec := newSwitcher(t, backend)

	err := sw.Select("pinyin")
	require.Error(t, err)
	assert.NotErrorIs(t, err, inputsource.ErrCurrentSourceUnavailable)
	assert.Equal(t, []string{"pinyin"}, backend.Selects())
	assert.Empty(t, rec.waits)
}
