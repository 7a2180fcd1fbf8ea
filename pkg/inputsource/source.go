// Package inputsource enumerates the selectable keyboard input sources of the
// running system and switches between them reliably.
package inputsource

import (
	"errors"
	"strings"
)

var (
	ErrEnumeration              = errors.New("cannot enumerate input sources")
	ErrUnknownSource            = errors.New("input source not found")
	ErrSwitchUnconfirmed        = errors.New("input source switch unconfirmed")
	ErrCurrentSourceUnavailable = errors.New("current input source unavailable")
)

// InputSource is an immutable snapshot of one keyboard layout or input method.
// Two sources are the same source when their IDs match.
type InputSource struct {
	ID           string
	DisplayName  string
	LanguageTags []string
	IsSelectable bool
}

// IsCJKV reports whether the primary language of the source is Chinese,
// Japanese, Korean or Vietnamese.
func (s InputSource) IsCJKV() bool {
	if len(s.LanguageTags) == 0 {
		return false
	}

	lang, _, _ := strings.Cut(strings.ToLower(s.LanguageTags[0]), "-")
	lang, _, _ = strings.Cut(lang, "_")
	switch lang {
	case "ja", "ko", "vi":
		return true
	}

	return strings.HasPrefix(lang, "zh")
}

func (s InputSource) Equal(other InputSource) bool {
	return s.ID == other.ID
}

func (s InputSource) String() string {
	if s.DisplayName == "" {
		return s.ID
	}
	return s.DisplayName + " (" + s.ID + ")"
}
