package escswitch

import (
	"codeberg.org/miketth/escswitch/pkg/gesture"
	"codeberg.org/miketth/escswitch/pkg/inputsource"
	"errors"
	"fmt"
	"go.uber.org/zap"
)

// Coordinator turns gesture signals into source switches and owns the memory
// of the last non-Latin source.
type Coordinator struct {
	catalog     *inputsource.Catalog
	switcher    *inputsource.Switcher
	eligibility Eligibility
	settings    Settings
	observer    StateObserver
	memory      SwitchMemory
	log         *zap.SugaredLogger
}

func NewCoordinator(
	catalog *inputsource.Catalog,
	switcher *inputsource.Switcher,
	eligibility Eligibility,
	settings Settings,
	observer StateObserver,
	log *zap.SugaredLogger,
) *Coordinator {
	if eligibility == nil {
		eligibility = AlwaysEligible
	}

	return &Coordinator{
		catalog:     catalog,
		switcher:    switcher,
		eligibility: eligibility,
		settings:    settings,
		observer:    observer,
		log:         log,
	}
}

func (c *Coordinator) LastNonLatinSource() (string, bool) {
	return c.memory.LastNonLatin()
}

// Restore loads a remembered source, e.g. from persistent storage, without
// switching. Empty and Latin ids are ignored.
func (c *Coordinator) Restore(id string) bool {
	if id == "" || id == c.catalog.LatinID() {
		return false
	}

	c.memory.setLastNonLatin(id)
	return true
}

// HandleSignal acts on one gesture signal. Only a missing current source is
// returned as an error; every other failure is logged and absorbed.
func (c *Coordinator) HandleSignal(sig gesture.Signal) error {
	var err error
	switch sig {
	case gesture.SignalEscape:
		err = c.escape()
	case gesture.SignalShiftTap:
		err = c.shiftTap()
	default:
		return nil
	}

	c.notify()
	return c.absorb(sig.String(), err)
}

// SetPreferredSource switches straight to id and remembers it as the non-Latin
// source. The observer is notified even if the switch fails.
func (c *Coordinator) SetPreferredSource(id string) error {
	err := c.switcher.Select(id)

	remember := !errors.Is(err, inputsource.ErrUnknownSource) &&
		!errors.Is(err, inputsource.ErrCurrentSourceUnavailable)
	if remember && id != c.catalog.LatinID() {
		c.memory.setLastNonLatin(id)
	}

	c.notify()

	if err != nil {
		if absorbErr := c.absorb("preferred source", err); absorbErr != nil {
			return absorbErr
		}
		return fmt.Errorf("set preferred source: %w", err)
	}

	return nil
}

func (c *Coordinator) escape() error {
	if !c.eligibility.IsCurrentContextEligible() {
		c.log.Debug("escape ignored, context not eligible")
		return nil
	}

	current, err := c.catalog.CurrentSource()
	if err != nil {
		return err
	}

	latin := c.catalog.LatinID()
	if current.ID == latin {
		return nil
	}
	if err := c.requireLatin(); err != nil {
		return err
	}

	c.memory.setLastNonLatin(current.ID)
	c.log.Debugw("escape, switching to latin", "from", current.ID)
	return c.switcher.Select(latin)
}

func (c *Coordinator) shiftTap() error {
	if c.settings != nil && !c.settings.ShiftSwitchEnabled() {
		return nil
	}

	current, err := c.catalog.CurrentSource()
	if err != nil {
		return err
	}

	latin := c.catalog.LatinID()
	if current.ID == latin {
		last, ok := c.memory.LastNonLatin()
		if !ok {
			c.log.Debug("shift tap ignored, no remembered source")
			return nil
		}

		c.log.Debugw("shift tap, switching back", "to", last)
		return c.switcher.Select(last)
	}
	if err := c.requireLatin(); err != nil {
		return err
	}

	c.memory.setLastNonLatin(current.ID)
	c.log.Debugw("shift tap, switching to latin", "from", current.ID)
	return c.switcher.Select(latin)
}

// requireLatin fails when the Latin source is gone, before memory is touched.
func (c *Coordinator) requireLatin() error {
	latin := c.catalog.LatinID()
	if _, ok := c.catalog.Find(latin); !ok {
		return fmt.Errorf("latin source %q: %w", latin, inputsource.ErrUnknownSource)
	}
	return nil
}

func (c *Coordinator) absorb(action string, err error) error {
	switch {
	case err == nil:
		return nil

	case errors.Is(err, inputsource.ErrCurrentSourceUnavailable):
		return err

	case errors.Is(err, inputsource.ErrUnknownSource):
		c.log.Warnw("input source disappeared, refreshing catalog", "action", action, "error", err)
		if refreshErr := c.catalog.Refresh(); refreshErr != nil {
			c.log.Warnw("refresh catalog", "error", refreshErr)
		}

	case errors.Is(err, inputsource.ErrSwitchUnconfirmed):
		c.log.Warnw("switch unconfirmed", "action", action, "error", err)

	default:
		c.log.Warnw("switch failed", "action", action, "error", err)
	}

	return nil
}

func (c *Coordinator) notify() {
	if c.observer != nil {
		c.observer.OnStateChanged()
	}
}
