//go:build linux

package evdev

import (
	"codeberg.org/miketth/escswitch/pkg/gesture"
	"github.com/holoplot/go-evdev"
	"time"
)

var modifierFlags = map[evdev.EvCode]gesture.Flags{
	evdev.KEY_LEFTSHIFT:  gesture.FlagShift,
	evdev.KEY_RIGHTSHIFT: gesture.FlagShift,
	evdev.KEY_LEFTCTRL:   gesture.FlagControl,
	evdev.KEY_RIGHTCTRL:  gesture.FlagControl,
	evdev.KEY_LEFTALT:    gesture.FlagOption,
	evdev.KEY_RIGHTALT:   gesture.FlagOption,
	evdev.KEY_LEFTMETA:   gesture.FlagCommand,
	evdev.KEY_RIGHTMETA:  gesture.FlagCommand,
	evdev.KEY_FN:         gesture.FlagFunction,
}

// translator turns kernel key events into gesture events. It keeps the set
// of held modifier keys across all devices, so left and right Shift count as
// one modifier.
type translator struct {
	held map[evdev.EvCode]struct{}
}

func newTranslator() *translator {
	return &translator{held: make(map[evdev.EvCode]struct{})}
}

func (t *translator) flags() gesture.Flags {
	var f gesture.Flags
	for code := range t.held {
		f |= modifierFlags[code]
	}
	return f
}

func (t *translator) translate(ev *evdev.InputEvent) (gesture.Event, bool) {
	if ev.Type != evdev.EV_KEY {
		return gesture.Event{}, false
	}

	ts := time.Unix(int64(ev.Time.Sec), int64(ev.Time.Usec)*int64(time.Microsecond))

	if _, isModifier := modifierFlags[ev.Code]; isModifier {
		switch ev.Value {
		case 0:
			delete(t.held, ev.Code)
		case 1:
			t.held[ev.Code] = struct{}{}
		default:
			// autorepeat of a held modifier
			return gesture.Event{}, false
		}

		return gesture.Event{
			Type:    gesture.ModifierChange,
			Time:    ts,
			RawCode: uint32(ev.Code),
			Flags:   t.flags(),
		}, true
	}

	typ := gesture.KeyDown
	if ev.Value == 0 {
		typ = gesture.KeyUp
	}

	key := gesture.KeyOther
	if ev.Code == evdev.KEY_ESC {
		key = gesture.KeyEscape
	}

	return gesture.Event{
		Type:    typ,
		Time:    ts,
		Key:     key,
		RawCode: uint32(ev.Code),
		Flags:   t.flags(),
	}, true
}
