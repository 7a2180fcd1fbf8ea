package inputsource

import (
	"fmt"
	"go.uber.org/zap"
	"sync"
)

// Catalog keeps the last known snapshot of selectable sources. The snapshot
// only changes on Refresh; a failed refresh keeps the previous one.
type Catalog struct {
	backend Backend
	latinID string
	log     *zap.SugaredLogger

	mu      sync.RWMutex
	sources []InputSource
}

func NewCatalog(backend Backend, latinID string, log *zap.SugaredLogger) *Catalog {
	return &Catalog{
		backend: backend,
		latinID: latinID,
		log:     log,
	}
}

// LatinID is the id of the plain ASCII layout Escape switches to.
func (c *Catalog) LatinID() string {
	return c.latinID
}

func (c *Catalog) Refresh() error {
	listed, err := c.backend.ListSources()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEnumeration, err)
	}

	sources := make([]InputSource, 0, len(listed))
	seen := make(map[string]bool, len(listed))
	for _, s := range listed {
		if !s.IsSelectable || seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		sources = append(sources, s)
	}

	c.mu.Lock()
	c.sources = sources
	c.mu.Unlock()

	c.log.Debugw("input source catalog refreshed", "count", len(sources))
	if !seen[c.latinID] {
		c.log.Warnw("latin input source is not enabled", "id", c.latinID)
	}

	return nil
}

func (c *Catalog) Sources() []InputSource {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]InputSource, len(c.sources))
	copy(out, c.sources)
	return out
}

func (c *Catalog) Find(id string) (InputSource, bool) {
	return c.first(func(s InputSource) bool { return s.ID == id })
}

// CurrentSource reads the live active source from the system, bypassing the
// snapshot.
func (c *Catalog) CurrentSource() (InputSource, error) {
	src, err := c.backend.CurrentSource()
	if err != nil {
		return InputSource{}, fmt.Errorf("%w: %w", ErrCurrentSourceUnavailable, err)
	}
	if src.ID == "" {
		return InputSource{}, fmt.Errorf("%w: empty source id", ErrCurrentSourceUnavailable)
	}

	return src, nil
}

func (c *Catalog) FirstNonLatin() (InputSource, bool) {
	return c.first(func(s InputSource) bool { return s.ID != c.latinID })
}

func (c *Catalog) FirstNonCJKV() (InputSource, bool) {
	return c.first(func(s InputSource) bool { return !s.IsCJKV() })
}

func (c *Catalog) first(match func(InputSource) bool) (InputSource, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, s := range c.sources {
		if match(s) {
			return s, true
		}
	}

	return InputSource{}, false
}
