package gesture

import "time"

const DefaultTapThreshold = 500 * time.Millisecond

type state int

const (
	idle state = iota
	shiftHeld
)

// Detector is a two state machine: idle, and Shift held on its own. It keeps
// no history beyond the gesture in progress and never blocks.
type Detector struct {
	threshold time.Duration

	state          state
	shiftPressedAt time.Time
	otherKey       bool
	lastFlags      Flags
}

func NewDetector(tapThreshold time.Duration) *Detector {
	if tapThreshold <= 0 {
		tapThreshold = DefaultTapThreshold
	}

	return &Detector{threshold: tapThreshold}
}

// OnEvent consumes one event and returns at most one signal.
func (d *Detector) OnEvent(ev Event) Signal {
	switch ev.Type {
	case KeyDown:
		return d.keyDown(ev)
	case ModifierChange:
		return d.modifierChange(ev)
	}

	return SignalNone
}

func (d *Detector) keyDown(ev Event) Signal {
	if d.state == shiftHeld {
		d.otherKey = true
	}

	if ev.Key == KeyEscape {
		return SignalEscape
	}

	return SignalNone
}

func (d *Detector) modifierChange(ev Event) Signal {
	prev := d.lastFlags
	d.lastFlags = ev.Flags

	held := ev.Flags & trackedFlags
	chord := (prev|ev.Flags)&chordFlags != 0

	switch d.state {
	case idle:
		if held == FlagShift && !chord {
			d.state = shiftHeld
			d.shiftPressedAt = ev.Time
			d.otherKey = false
		}

	case shiftHeld:
		switch {
		case chord:
			d.reset()

		case held == 0:
			tap := !d.otherKey && ev.Time.Sub(d.shiftPressedAt) < d.threshold
			d.reset()
			if tap {
				return SignalShiftTap
			}
		}
	}

	return SignalNone
}

func (d *Detector) reset() {
	d.state = idle
	d.shiftPressedAt = time.Time{}
	d.otherKey = false
}
