package escswitch

import "sync/atomic"

// ShiftSwitch is a Settings value that can be flipped from another goroutine,
// e.g. on config reload.
type ShiftSwitch struct {
	enabled atomic.Bool
}

func NewShiftSwitch(enabled bool) *ShiftSwitch {
	s := &ShiftSwitch{}
	s.enabled.Store(enabled)
	return s
}

func (s *ShiftSwitch) Set(enabled bool) {
	s.enabled.Store(enabled)
}

func (s *ShiftSwitch) ShiftSwitchEnabled() bool {
	return s.enabled.Load()
}
