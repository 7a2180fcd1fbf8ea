// Package inputsourcetest provides an in-memory inputsource.Backend for tests.
package inputsourcetest

import (
	"codeberg.org/miketth/escswitch/pkg/inputsource"
	"sync"
)

// Backend is a scripted inputsource.Backend that records every select call.
type Backend struct {
	mu sync.Mutex

	sources []inputsource.InputSource
	current string
	ignore  map[string]int
	selects []string

	ListErr    error
	CurrentErr error
	SelectErr  error
}

func NewBackend(current string, sources ...inputsource.InputSource) *Backend {
	return &Backend{
		sources: sources,
		current: current,
		ignore:  make(map[string]int),
	}
}

// IgnoreSelects makes the next n selects of id return success without
// changing the active source.
func (b *Backend) IgnoreSelects(id string, n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ignore[id] = n
}

func (b *Backend) SetCurrent(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = id
}

func (b *Backend) Current() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

func (b *Backend) AddSource(src inputsource.InputSource) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sources = append(b.sources, src)
}

// Selects returns the ids passed to Select, in call order.
func (b *Backend) Selects() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]string, len(b.selects))
	copy(out, b.selects)
	return out
}

func (b *Backend) ResetSelects() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.selects = nil
}

func (b *Backend) ListSources() ([]inputsource.InputSource, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ListErr != nil {
		return nil, b.ListErr
	}

	out := make([]inputsource.InputSource, len(b.sources))
	copy(out, b.sources)
	return out, nil
}

func (b *Backend) CurrentSource() (inputsource.InputSource, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.CurrentErr != nil {
		return inputsource.InputSource{}, b.CurrentErr
	}

	for _, s := range b.sources {
		if s.ID == b.current {
			return s, nil
		}
	}

	return inputsource.InputSource{ID: b.current, IsSelectable: true}, nil
}

func (b *Backend) Select(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.selects = append(b.selects, id)
	if b.SelectErr != nil {
		return b.SelectErr
	}

	if b.ignore[id] > 0 {
		b.ignore[id]--
		return nil
	}

	b.current = id
	return nil
}

// Latin, Pinyin, Kotoeri and German are ready-made sources for tests.
var (
	Latin   = inputsource.InputSource{ID: "com.apple.keylayout.ABC", DisplayName: "ABC", LanguageTags: []string{"en"}, IsSelectable: true}
	German  = inputsource.InputSource{ID: "com.apple.keylayout.German", DisplayName: "German", LanguageTags: []string{"de"}, IsSelectable: true}
	Pinyin  = inputsource.InputSource{ID: "pinyin", DisplayName: "Pinyin - Simplified", LanguageTags: []string{"zh-Hans"}, IsSelectable: true}
	Kotoeri = inputsource.InputSource{ID: "com.apple.inputmethod.Kotoeri.RomajiTyping.Japanese", DisplayName: "Hiragana", LanguageTags: []string{"ja"}, IsSelectable: true}
)
