package store

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/matheus3301/dialogs/internal/store/migrations"
)

// MigrateResult reports the schema version before and after Migrate.
type MigrateResult struct {
	From    uint
	Version uint
}

// Changed reports whether any migration ran.
func (r MigrateResult) Changed() bool { return r.From != r.Version }

// Migrate brings the schema up to date. A dirty schema, left behind by a
// migration that failed half way, is refused rather than repaired.
func (db *DB) Migrate() (MigrateResult, error) {
	m, err := db.migrator()
	if err != nil {
		return MigrateResult{}, err
	}

	from, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		from = 0
	case err != nil:
		return MigrateResult{}, fmt.Errorf("schema version: %w", err)
	case dirty:
		return MigrateResult{From: from}, fmt.Errorf("schema version %d is dirty", from)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return MigrateResult{From: from}, fmt.Errorf("migration up: %w", err)
	}
	to, _, err := m.Version()
	if err != nil {
		return MigrateResult{From: from}, fmt.Errorf("schema version: %w", err)
	}
	return MigrateResult{From: from, Version: to}, nil
}

func (db *DB) migrator() (*migrate.Migrate, error) {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("migration source: %w", err)
	}
	driver, err := sqlite3.WithInstance(db.DB, &sqlite3.Config{})
	if err != nil {
		return nil, fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return nil, fmt.Errorf("migration instance: %w", err)
	}
	return m, nil
}
