package escswitch

import "sync/atomic"

// SwitchMemory remembers the last non-Latin source the user switched away
// from. It is written from the event callback only; other goroutines may read
// a slightly stale value.
type SwitchMemory struct {
	lastNonLatin atomic.Pointer[string]
}

func (m *SwitchMemory) LastNonLatin() (string, bool) {
	id := m.lastNonLatin.Load()
	if id == nil {
		return "", false
	}
	return *id, true
}

func (m *SwitchMemory) setLastNonLatin(id string) {
	m.lastNonLatin.Store(&id)
}
