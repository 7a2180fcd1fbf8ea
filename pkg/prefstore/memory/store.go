package memory

import "sync"

type PreferenceStore struct {
	prefs map[string]string
	lock  sync.RWMutex
}

func NewPreferenceStore() *PreferenceStore {
	return &PreferenceStore{
		prefs: make(map[string]string),
	}
}

func (s *PreferenceStore) GetPreference(key string) (string, bool, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	value, ok := s.prefs[key]
	return value, ok, nil
}

func (s *PreferenceStore) SetPreference(key string, value string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.prefs[key] = value
	return nil
}
