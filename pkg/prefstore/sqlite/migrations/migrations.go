package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed *.sql
var files embed.FS

// ErrDirtySchema means an earlier migration failed halfway and the database
// needs manual repair.
var ErrDirtySchema = errors.New("preferences schema is dirty")

// Migrate brings the preferences schema in db up to the newest embedded version.
func Migrate(db *sql.DB, log *zap.SugaredLogger) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	source, err := iofs.New(files, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	from, err := schemaVersion(migrator)
	if err != nil {
		return err
	}

	err = migrator.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		log.Debugw("preferences schema up to date", "version", from)
		return nil
	case err != nil:
		return fmt.Errorf("migrate preferences schema from version %d: %w", from, err)
	}

	to, err := schemaVersion(migrator)
	if err != nil {
		return err
	}
	log.Infow("migrated preferences schema", "from", from, "to", to)

	return nil
}

// schemaVersion is 0 for a database that was never migrated.
func schemaVersion(m *migrate.Migrate) (uint, error) {
	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("read schema version: %w", err)
	case dirty:
		return version, fmt.Errorf("%w at version %d", ErrDirtySchema, version)
	}

	return version, nil
}
