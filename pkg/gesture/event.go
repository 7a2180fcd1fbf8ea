// Package gesture recognises the Escape press and the lone Shift tap in a
// stream of raw keyboard events.
package gesture

import (
	"strings"
	"time"
)

type EventType int

const (
	KeyDown EventType = iota
	KeyUp
	ModifierChange
)

func (t EventType) String() string {
	switch t {
	case KeyDown:
		return "KeyDown"
	case KeyUp:
		return "KeyUp"
	case ModifierChange:
		return "ModifierChange"
	}
	return "Unknown"
}

// Key is the platform independent identity of a key. Only keys the detector
// cares about get their own value.
type Key int

const (
	KeyOther Key = iota
	KeyEscape
)

// Flags is the set of modifiers held after an event. Platform adapters build
// it from their own flag masks.
type Flags uint32

const (
	FlagShift Flags = 1 << iota
	FlagControl
	FlagOption
	FlagCommand
	FlagFunction
	FlagCapsLock
)

// chordFlags turn a Shift press into a chord rather than a tap.
const chordFlags = FlagControl | FlagOption | FlagCommand | FlagFunction

// trackedFlags are the modifiers that count as "held". Caps Lock is a toggle
// and is ignored.
const trackedFlags = FlagShift | chordFlags

func (f Flags) Has(flag Flags) bool {
	return f&flag != 0
}

func (f Flags) String() string {
	names := []struct {
		flag Flags
		name string
	}{
		{FlagShift, "shift"},
		{FlagControl, "control"},
		{FlagOption, "option"},
		{FlagCommand, "command"},
		{FlagFunction, "fn"},
		{FlagCapsLock, "capslock"},
	}

	var parts []string
	for _, n := range names {
		if f.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

// Event is one raw keyboard event. Flags is only meaningful for
// ModifierChange, Key and RawCode only for KeyDown and KeyUp.
type Event struct {
	Type    EventType
	Time    time.Time
	Key     Key
	RawCode uint32
	Flags   Flags
}

type Signal int

const (
	SignalNone Signal = iota
	SignalEscape
	SignalShiftTap
)

func (s Signal) String() string {
	switch s {
	case SignalNone:
		return "none"
	case SignalEscape:
		return "escape"
	case SignalShiftTap:
		return "shift-tap"
	}
	return "unknown"
}
