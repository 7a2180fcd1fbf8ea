package hyprland

import (
	"codeberg.org/miketth/escswitch/pkg/inputsource"
	"codeberg.org/miketth/escswitch/pkg/xkblayouts"
	"fmt"
)

type LayoutSwitcher interface {
	GetKeyboards() ([]Keyboard, error)
	SwitchToLayout(keyboard string, idx int) error
}

// Backend exposes the xkb layouts of one keyboard as input sources. Source
// ids are xkb layout names, with the variant in parentheses when set.
type Backend struct {
	switcher LayoutSwitcher
	registry *xkblayouts.XkbConfigRegistry
	keyboard string
}

// NewBackend switches layouts on the named keyboard, or on the main keyboard
// when keyboard is empty.
func NewBackend(switcher LayoutSwitcher, registry *xkblayouts.XkbConfigRegistry, keyboard string) *Backend {
	return &Backend{
		switcher: switcher,
		registry: registry,
		keyboard: keyboard,
	}
}

func (b *Backend) ListSources() ([]inputsource.InputSource, error) {
	kb, err := b.getKeyboard()
	if err != nil {
		return nil, err
	}

	out := make([]inputsource.InputSource, 0, len(kb.Layouts))
	for i, layout := range kb.Layouts {
		if layout == "" {
			continue
		}
		out = append(out, b.source(layout, kb.Variant(i)))
	}

	return out, nil
}

func (b *Backend) CurrentSource() (inputsource.InputSource, error) {
	kb, err := b.getKeyboard()
	if err != nil {
		return inputsource.InputSource{}, err
	}

	if kb.ActiveIndex >= 0 && kb.ActiveIndex < len(kb.Layouts) {
		return b.source(kb.Layouts[kb.ActiveIndex], kb.Variant(kb.ActiveIndex)), nil
	}

	layout, variant := b.registry.GetLayoutAndVariantFromPrettyName(kb.ActiveKeymap)
	if layout == "" {
		return inputsource.InputSource{}, fmt.Errorf("unknown keymap %q on %s", kb.ActiveKeymap, kb.Name)
	}

	return b.source(layout, variant), nil
}

func (b *Backend) Select(id string) error {
	kb, err := b.getKeyboard()
	if err != nil {
		return err
	}

	layout, variant := xkblayouts.SplitLayoutID(id)
	for i := range kb.Layouts {
		if kb.Layouts[i] == layout && kb.Variant(i) == variant {
			return b.switcher.SwitchToLayout(kb.Name, i)
		}
	}

	return fmt.Errorf("layout %q on %s: %w", id, kb.Name, inputsource.ErrUnknownSource)
}

func (b *Backend) source(layout, variant string) inputsource.InputSource {
	id := xkblayouts.LayoutID(layout, variant)

	name := ""
	var langs []string
	if b.registry != nil {
		name = b.registry.GetLayoutPrettyName(layout, variant)
		langs = b.registry.GetLanguages(layout, variant)
	}
	if name == "" {
		name = id
	}

	return inputsource.InputSource{
		ID:           id,
		DisplayName:  name,
		LanguageTags: langs,
		IsSelectable: true,
	}
}

func (b *Backend) getKeyboard() (Keyboard, error) {
	keyboards, err := b.switcher.GetKeyboards()
	if err != nil {
		return Keyboard{}, fmt.Errorf("get keyboards: %w", err)
	}

	for _, k := range keyboards {
		if b.keyboard != "" && k.Name == b.keyboard {
			return k, nil
		}
		if b.keyboard == "" && k.Main {
			return k, nil
		}
	}

	// older hyprland versions have no main flag
	if b.keyboard == "" && len(keyboards) > 0 {
		return keyboards[0], nil
	}

	return Keyboard{}, fmt.Errorf("keyboard %q: %w", b.keyboard, ErrDeviceNotFound)
}
