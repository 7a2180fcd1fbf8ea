package config

import (
	"errors"
	"fmt"
	"go.uber.org/multierr"
)

// the event tap is disabled by the OS if a callback stalls, and the worst
// switch path waits for the settle interval several times
const maxSettleMs = 50

const maxTapThresholdMs = 2000

func (c *Config) Validate() error {
	var err error

	switch c.Backend {
	case BackendAuto, BackendTIS, BackendHyprland, BackendIBus:
	default:
		err = multierr.Append(err, fmt.Errorf("unknown backend %q", c.Backend))
	}

	switch c.Store.Type {
	case StoreSQLite, StoreJSON, StoreMemory:
	default:
		err = multierr.Append(err, fmt.Errorf("unknown store type %q", c.Store.Type))
	}

	if c.TapThresholdMs <= 0 || c.TapThresholdMs > maxTapThresholdMs {
		err = multierr.Append(err, fmt.Errorf("tap_threshold_ms must be between 1 and %d, got %d", maxTapThresholdMs, c.TapThresholdMs))
	}

	if c.SettleMs <= 0 || c.SettleMs > maxSettleMs {
		err = multierr.Append(err, fmt.Errorf("settle_ms must be between 1 and %d, got %d", maxSettleMs, c.SettleMs))
	}

	if c.ResolvedBackend() == BackendIBus && len(c.IBus.Engines) == 0 {
		err = multierr.Append(err, errors.New("ibus.engines must list at least one engine"))
	}

	return err
}
