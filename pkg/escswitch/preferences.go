package escswitch

import (
	"fmt"
	"strconv"
)

const (
	prefLastNonLatinSource = "last_non_latin_source"
	prefShiftSwitch        = "shift_switch_enabled"
)

// Preferences persists the switch memory and the Shift toggle between runs.
type Preferences struct {
	store PreferenceStore
}

func NewPreferences(store PreferenceStore) *Preferences {
	return &Preferences{store: store}
}

func (p *Preferences) LastNonLatinSource() (string, bool, error) {
	id, ok, err := p.store.GetPreference(prefLastNonLatinSource)
	if err != nil {
		return "", false, fmt.Errorf("get last non-latin source: %w", err)
	}

	return id, ok && id != "", nil
}

func (p *Preferences) SetLastNonLatinSource(id string) error {
	if err := p.store.SetPreference(prefLastNonLatinSource, id); err != nil {
		return fmt.Errorf("set last non-latin source: %w", err)
	}
	return nil
}

// ShiftSwitch returns the stored toggle, or def if none was stored.
func (p *Preferences) ShiftSwitch(def bool) (bool, error) {
	value, ok, err := p.store.GetPreference(prefShiftSwitch)
	if err != nil {
		return def, fmt.Errorf("get shift switch: %w", err)
	}
	if !ok {
		return def, nil
	}

	enabled, err := strconv.ParseBool(value)
	if err != nil {
		return def, fmt.Errorf("parse shift switch %q: %w", value, err)
	}

	return enabled, nil
}

func (p *Preferences) SetShiftSwitch(enabled bool) error {
	if err := p.store.SetPreference(prefShiftSwitch, strconv.FormatBool(enabled)); err != nil {
		return fmt.Errorf("set shift switch: %w", err)
	}
	return nil
}
