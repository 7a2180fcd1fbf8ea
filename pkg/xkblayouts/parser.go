package xkblayouts

import (
	"encoding/xml"
	"fmt"
	"golang.org/x/text/language"
	"io"
	"os"
	"strings"
)

func ParseLayouts(path string) (*XkbConfigRegistry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

func Parse(r io.Reader) (*XkbConfigRegistry, error) {
	registry := &XkbConfigRegistry{}
	err := xml.NewDecoder(r).Decode(registry)
	if err != nil {
		return nil, fmt.Errorf("decode xml: %w", err)
	}

	return registry, nil
}

// LayoutID names a layout the way xkb does, e.g. "us" or "cn(altgr-pinyin)".
func LayoutID(layout, variant string) string {
	if variant == "" {
		return layout
	}
	return layout + "(" + variant + ")"
}

func SplitLayoutID(id string) (string, string) {
	layout, rest, found := strings.Cut(id, "(")
	if !found {
		return id, ""
	}
	return layout, strings.TrimSuffix(rest, ")")
}

func (r *XkbConfigRegistry) find(layout, variant string) (*ConfigItem, *ConfigItem) {
	for i := range r.LayoutList.Layout {
		l := &r.LayoutList.Layout[i]
		if l.ConfigItem.Name != layout {
			continue
		}
		if variant == "" {
			return &l.ConfigItem, nil
		}

		for j := range l.VariantList.Variant {
			v := &l.VariantList.Variant[j]
			if v.ConfigItem.Name == variant {
				return &l.ConfigItem, &v.ConfigItem
			}
		}
		return &l.ConfigItem, nil
	}

	return nil, nil
}

func (r *XkbConfigRegistry) GetLayoutPrettyName(layout, variant string) string {
	l, v := r.find(layout, variant)
	switch {
	case v != nil:
		return v.Description
	case l != nil && variant == "":
		return l.Description
	}

	return ""
}

func (r *XkbConfigRegistry) GetLayoutAndVariantFromPrettyName(prettyName string) (string, string) {
	for _, l := range r.LayoutList.Layout {
		if l.ConfigItem.Description == prettyName {
			return l.ConfigItem.Name, ""
		}

		for _, v := range l.VariantList.Variant {
			if v.ConfigItem.Description == prettyName {
				return l.ConfigItem.Name, v.ConfigItem.Name
			}
		}
	}

	return "", ""
}

// GetLanguages returns BCP 47 base tags for a layout. Variants without their
// own language list inherit the layout's.
func (r *XkbConfigRegistry) GetLanguages(layout, variant string) []string {
	l, v := r.find(layout, variant)

	var ids []string
	switch {
	case v != nil && len(v.LanguageList.ISO639IDs) > 0:
		ids = v.LanguageList.ISO639IDs
	case l != nil:
		ids = l.LanguageList.ISO639IDs
	}

	tags := make([]string, 0, len(ids))
	for _, id := range ids {
		if tag, ok := canonicalLanguage(id); ok {
			tags = append(tags, tag)
		}
	}

	return tags
}

// evdev.xml uses ISO 639-2/B codes in places; x/text only knows /T
var bibliographicCodes = map[string]string{
	"alb": "sqi",
	"arm": "hye",
	"baq": "eus",
	"bur": "mya",
	"chi": "zho",
	"cze": "ces",
	"dut": "nld",
	"fre": "fra",
	"geo": "kat",
	"ger": "deu",
	"gre": "ell",
	"ice": "isl",
	"mac": "mkd",
	"may": "msa",
	"per": "fas",
	"rum": "ron",
	"slo": "slk",
	"tib": "bod",
	"wel": "cym",
}

func canonicalLanguage(iso639 string) (string, bool) {
	code := strings.ToLower(strings.TrimSpace(iso639))
	if t, ok := bibliographicCodes[code]; ok {
		code = t
	}

	base, err := language.ParseBase(code)
	if err != nil {
		return "", false
	}

	return base.String(), true
}
