//go:build linux

package evdev

import (
	"codeberg.org/miketth/escswitch/pkg/gesture"
	"github.com/holoplot/go-evdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"syscall"
	"testing"
	"time"
)

func keyEvent(code evdev.EvCode, value int32, usec int64) *evdev.InputEvent {
	return &evdev.InputEvent{
		Time:  syscall.NsecToTimeval(usec * int64(time.Microsecond)),
		Type:  evdev.EV_KEY,
		Code:  code,
		Value: value,
	}
}

func TestTranslateShiftTap(t *testing.T) {
	tr := newTranslator()

	ev, ok := tr.translate(keyEvent(evdev.KEY_LEFTSHIFT, 1, 1000))
	require.True(t, ok)
	assert.Equal(t, gesture.ModifierChange, ev.Type)
	assert.Equal(t, gesture.FlagShift, ev.Flags)
	assert.Equal(t, time.UnixMicro(1000), ev.Time)

	_, ok = tr.translate(keyEvent(evdev.KEY_LEFTSHIFT, 2, 2000))
	assert.False(t, ok, "autorepeat of a modifier is dropped")

	ev, ok = tr.translate(keyEvent(evdev.KEY_LEFTSHIFT, 0, 3000))
	require.True(t, ok)
	assert.Equal(t, gesture.ModifierChange, ev.Type)
	assert.Equal(t, gesture.Flags(0), ev.Flags)

	d := gesture.NewDetector(0)
	tr = newTranslator()
	var signals []gesture.Signal
	for _, raw := range []*evdev.InputEvent{
		keyEvent(evdev.KEY_RIGHTSHIFT, 1, 0),
		keyEvent(evdev.KEY_RIGHTSHIFT, 0, 100_000),
	} {
		ev, ok := tr.translate(raw)
		require.True(t, ok)
		signals = append(signals, d.OnEvent(ev))
	}
	assert.Equal(t, []gesture.Signal{gesture.SignalNone, gesture.SignalShiftTap}, signals)
}

func TestTranslateBothShifts(t *testing.T) {
	tr := newTranslator()

	tr.translate(keyEvent(evdev.KEY_LEFTSHIFT, 1, 0))
	tr.translate(keyEvent(evdev.KEY_RIGHTSHIFT, 1, 10))

	ev, _ := tr.translate(keyEvent(evdev.KEY_LEFTSHIFT, 0, 20))
	assert.Equal(t, gesture.FlagShift, ev.Flags, "right shift still held")

	ev, _ = tr.translate(keyEvent(evdev.KEY_RIGHTSHIFT, 0, 30))
	assert.Equal(t, gesture.Flags(0), ev.Flags)
}

func TestTranslateKeys(t *testing.T) {
	tr := newTranslator()

	ev, ok := tr.translate(keyEvent(evdev.KEY_ESC, 1, 0))
	require.True(t, ok)
	assert.Equal(t, gesture.KeyDown, ev.Type)
	assert.Equal(t, gesture.KeyEscape, ev.Key)
	assert.Equal(t, uint32(evdev.KEY_ESC), ev.RawCode)

	ev, _ = tr.translate(keyEvent(evdev.KEY_ESC, 0, 10))
	assert.Equal(t, gesture.KeyUp, ev.Type)

	tr.translate(keyEvent(evdev.KEY_LEFTCTRL, 1, 20))
	ev, _ = tr.translate(keyEvent(evdev.KEY_A, 2, 30))
	assert.Equal(t, gesture.KeyDown, ev.Type, "autorepeat is a key down")
	assert.Equal(t, gesture.KeyOther, ev.Key)
	assert.Equal(t, gesture.FlagControl, ev.Flags)

	_, ok = tr.translate(&evdev.InputEvent{Type: evdev.EV_SYN})
	assert.False(t, ok)
}
