package darwin

import (
	"codeberg.org/miketth/escswitch/pkg/gesture"
	"time"
)

type flagMask struct {
	cg   uint64
	flag gesture.Flags
}

// tapCodes holds the Quartz event type, key code and flag mask values the
// translation needs. The darwin build fills it from the SDK headers.
type tapCodes struct {
	keyDown      int
	keyUp        int
	flagsChanged int
	escape       int64
	masks        []flagMask
}

func (c *tapCodes) translateFlags(cg uint64) gesture.Flags {
	var f gesture.Flags
	for _, m := range c.masks {
		if cg&m.cg != 0 {
			f |= m.flag
		}
	}
	return f
}

func (c *tapCodes) translateEvent(eventType int, keycode int64, flags uint64, ts time.Time) (gesture.Event, bool) {
	ev := gesture.Event{
		Time:    ts,
		RawCode: uint32(keycode),
		Flags:   c.translateFlags(flags),
	}

	switch eventType {
	case c.keyDown:
		ev.Type = gesture.KeyDown
	case c.keyUp:
		ev.Type = gesture.KeyUp
	case c.flagsChanged:
		ev.Type = gesture.ModifierChange
		return ev, true
	default:
		return gesture.Event{}, false
	}

	if keycode == c.escape {
		ev.Key = gesture.KeyEscape
	}

	return ev, true
}
