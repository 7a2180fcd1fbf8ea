package json

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

const saveInterval = time.Minute

type PreferenceStore struct {
	prefs map[string]string
	file  *os.File
	lock  sync.Mutex
	dirty bool
}

func NewPreferenceStore(filename string) (*PreferenceStore, error) {
	fileExists := true
	stat, err := os.Stat(filename)
	if os.IsNotExist(err) {
		fileExists = false
	}

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	store := &PreferenceStore{
		prefs: make(map[string]string),
		file:  file,
	}

	if fileExists && stat.Size() > 0 {
		err = store.load()
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("load: %w", err)
		}
	}

	return store, nil
}

func (s *PreferenceStore) Close() error {
	if err := s.save(); err != nil {
		s.file.Close()
		return fmt.Errorf("save: %w", err)
	}

	return s.file.Close()
}

func (s *PreferenceStore) load() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	_, err := s.file.Seek(0, 0)
	if err != nil {
		return fmt.Errorf("seek to start of file: %w", err)
	}

	dec := json.NewDecoder(s.file)
	err = dec.Decode(&s.prefs)
	if err != nil {
		return fmt.Errorf("decode json: %w", err)
	}

	return nil
}

func (s *PreferenceStore) save() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if !s.dirty {
		return nil
	}

	_, err := s.file.Seek(0, 0)
	if err != nil {
		return fmt.Errorf("seek to start of file: %w", err)
	}

	err = s.file.Truncate(0)
	if err != nil {
		return fmt.Errorf("truncate file: %w", err)
	}

	enc := json.NewEncoder(s.file)
	enc.SetIndent("", "  ")
	err = enc.Encode(s.prefs)
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}

	s.dirty = false

	return nil
}

// SaveLooper writes pending changes every minute and once more when ctx is
// done.
func (s *PreferenceStore) SaveLooper(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			err := s.save()
			if err != nil {
				return fmt.Errorf("save: %w", err)
			}

			return ctx.Err()
		case <-time.After(saveInterval):
			err := s.save()
			if err != nil {
				return fmt.Errorf("save: %w", err)
			}
		}
	}
}

func (s *PreferenceStore) GetPreference(key string) (string, bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	value, ok := s.prefs[key]
	return value, ok, nil
}

func (s *PreferenceStore) SetPreference(key string, value string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if old, ok := s.prefs[key]; ok && old == value {
		return nil
	}

	s.prefs[key] = value
	s.dirty = true
	return nil
}
