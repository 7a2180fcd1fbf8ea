package escswitch

import (
	"codeberg.org/miketth/escswitch/pkg/gesture"
	"context"
)

// EventSource delivers keyboard events, in physical order, to handle on one
// goroutine until ctx is done or handle returns an error. It only observes
// events and never suppresses them.
type EventSource interface {
	Run(ctx context.Context, handle func(gesture.Event) error) error
}

// Eligibility decides whether Escape should switch to the Latin source in the
// current context, for example the frontmost application.
type Eligibility interface {
	IsCurrentContextEligible() bool
}

type EligibilityFunc func() bool

func (f EligibilityFunc) IsCurrentContextEligible() bool {
	return f()
}

// AlwaysEligible lets Escape switch everywhere.
var AlwaysEligible = EligibilityFunc(func() bool { return true })

// Settings exposes externally owned flags. They are read on every signal.
type Settings interface {
	ShiftSwitchEnabled() bool
}

type SettingsFunc func() bool

func (f SettingsFunc) ShiftSwitchEnabled() bool {
	return f()
}

// StateObserver is told after every coordinator action. It must not block
// and must tolerate calls where nothing changed.
type StateObserver interface {
	OnStateChanged()
}

// ActiveApp reports the identifier of the focused application, a bundle id
// on macOS or a window class on Linux.
type ActiveApp interface {
	ActiveApp() string
}

// PreferenceStore is a persistent string key/value store.
type PreferenceStore interface {
	GetPreference(key string) (string, bool, error)
	SetPreference(key string, value string) error
}
