package inputsource

import (
	"fmt"
	"go.uber.org/zap"
	"time"
)

// DefaultSettleInterval is how long a select call is given to propagate
// before the active source is trusted again.
const DefaultSettleInterval = 12 * time.Millisecond

// Switcher selects a source and, for CJKV targets, verifies the switch and
// routes once through a non-CJKV source if the first attempt did not land.
type Switcher struct {
	catalog *Catalog
	backend Backend
	settle  time.Duration
	sleep   func(time.Duration)
	log     *zap.SugaredLogger
}

type SwitcherOption func(*Switcher)

func WithSettleInterval(d time.Duration) SwitcherOption {
	return func(s *Switcher) {
		s.settle = d
	}
}

// WithSleep replaces time.Sleep for the settle waits.
func WithSleep(sleep func(time.Duration)) SwitcherOption {
	return func(s *Switcher) {
		s.sleep = sleep
	}
}

func NewSwitcher(catalog *Catalog, backend Backend, log *zap.SugaredLogger, opts ...SwitcherOption) *Switcher {
	s := &Switcher{
		catalog: catalog,
		backend: backend,
		settle:  DefaultSettleInterval,
		sleep:   time.Sleep,
		log:     log,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Select makes targetID the active source. Selecting the already active
// source issues no native call. Errors other than ErrCurrentSourceUnavailable
// only mean the switch may not have happened.
func (s *Switcher) Select(targetID string) error {
	current, err := s.catalog.CurrentSource()
	if err != nil {
		return err
	}
	if current.ID == targetID {
		return nil
	}

	target, ok := s.catalog.Find(targetID)
	if !ok {
		return fmt.Errorf("select %q: %w", targetID, ErrUnknownSource)
	}

	if err := s.selectAndSettle(target.ID); err != nil {
		return err
	}

	// only CJKV sources have been seen to ignore a select
	if !target.IsCJKV() {
		return nil
	}

	current, err = s.catalog.CurrentSource()
	if err != nil {
		return err
	}
	if current.ID == target.ID {
		return nil
	}

	bridge, ok := s.catalog.FirstNonCJKV()
	if !ok {
		return fmt.Errorf("select %q: no non-CJKV bridge source: %w", targetID, ErrSwitchUnconfirmed)
	}

	s.log.Infow("switch did not land, bridging", "target", target.ID, "current", current.ID, "bridge", bridge.ID)

	if err := s.selectAndSettle(bridge.ID); err != nil {
		return err
	}
	if err := s.selectAndSettle(target.ID); err != nil {
		return err
	}

	return fmt.Errorf("select %q via %q: %w", targetID, bridge.ID, ErrSwitchUnconfirmed)
}

func (s *Switcher) selectAndSettle(id string) error {
	s.log.Debugw("selecting input source", "id", id)

	if err := s.backend.Select(id); err != nil {
		return fmt.Errorf("select %q: %w", id, err)
	}
	s.sleep(s.settle)

	return nil
}
