package hyprland

import "strings"

type Keyboard struct {
	Name         string
	Layouts      []string
	Variants     []string
	ActiveKeymap string
	// ActiveIndex is -1 when hyprland does not report it.
	ActiveIndex int
	Main        bool
}

func (k Keyboard) Variant(idx int) string {
	if idx < 0 || idx >= len(k.Variants) {
		return ""
	}
	return k.Variants[idx]
}

type keyboard struct {
	Name              string `json:"name"`
	Layout            string `json:"layout"`
	Variant           string `json:"variant"`
	Options           string `json:"options"`
	ActiveKeymap      string `json:"active_keymap"`
	ActiveLayoutIndex *int   `json:"active_layout_index"`
	Main              bool   `json:"main"`
}

type devices struct {
	Keyboards []keyboard `json:"keyboards"`
}

func (k keyboard) ToKeyboard() Keyboard {
	activeIdx := -1
	if k.ActiveLayoutIndex != nil {
		activeIdx = *k.ActiveLayoutIndex
	}

	return Keyboard{
		Name:         k.Name,
		Layouts:      splitList(k.Layout),
		Variants:     splitList(k.Variant),
		ActiveKeymap: k.ActiveKeymap,
		ActiveIndex:  activeIdx,
		Main:         k.Main,
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
