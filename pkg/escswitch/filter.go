package escswitch

import (
	"strings"
	"sync"
)

// AppFilter allows Escape switching only in listed applications. An empty
// list allows every application.
type AppFilter struct {
	app ActiveApp

	mu      sync.RWMutex
	allowed map[string]bool
}

func NewAppFilter(app ActiveApp, allowed []string) *AppFilter {
	f := &AppFilter{app: app}
	f.SetAllowed(allowed)
	return f
}

func (f *AppFilter) SetAllowed(allowed []string) {
	set := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		set[strings.ToLower(a)] = true
	}

	f.mu.Lock()
	f.allowed = set
	f.mu.Unlock()
}

func (f *AppFilter) IsCurrentContextEligible() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if len(f.allowed) == 0 || f.app == nil {
		return true
	}

	return f.allowed[strings.ToLower(f.app.ActiveApp())]
}
