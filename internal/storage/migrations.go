package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/registry/*.sql
var registryMigrations embed.FS

//go:embed migrations/project/*.sql
var projectMigrations embed.FS

// migrateUp brings db to the latest version of the given embedded migration
// set. Running it against an up-to-date database is a no-op, which is what
// makes opening a store idempotent.
func migrateUp(db *sql.DB, fsys embed.FS, dir string) error {
	sourceDriver, err := iofs.New(fsys, dir)
	if err != nil {
		return fmt.Errorf("failed to read migration files: %w", err)
	}

	// WithInstance wraps the caller's *sql.DB; we must not close the migrate
	// instance because that would close the connection the caller still owns.
	dbDriver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		_ = sourceDriver.Close()
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", dbDriver)
	if err != nil {
		_ = sourceDriver.Close()
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// MigrateRegistry applies the registry schema to db.
func MigrateRegistry(db *sql.DB) error {
	return migrateUp(db, registryMigrations, "migrations/registry")
}

// MigrateProject applies the per-project schema to db.
func MigrateProject(db *sql.DB) error {
	return migrateUp(db, projectMigrations, "migrations/project")
}
