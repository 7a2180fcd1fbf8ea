package sqlite

import (
	"codeberg.org/miketth/escswitch/pkg/prefstore/sqlite/migrations"
	"context"
	"database/sql"
	"errors"
	"fmt"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

type PreferenceStore struct {
	db      *sql.DB
	querier *Queries
}

func NewPreferenceStore(filename string, log *zap.SugaredLogger) (*PreferenceStore, error) {
	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := migrations.Migrate(db, log); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &PreferenceStore{
		db:      db,
		querier: New(db),
	}, nil
}

func (s *PreferenceStore) Close() error {
	return s.db.Close()
}

func (s *PreferenceStore) GetPreference(key string) (string, bool, error) {
	value, err := s.querier.GetPreference(context.Background(), key)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("sqlite select: %w", err)
	}

	return value, true, nil
}

func (s *PreferenceStore) SetPreference(key string, value string) error {
	if err := s.querier.SetPreference(context.Background(), SetPreferenceParams{
		Key:   key,
		Value: value,
	}); err != nil {
		return fmt.Errorf("sqlite upsert: %w", err)
	}

	return nil
}
