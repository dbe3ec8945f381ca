// internal/storage/migrations/migrations.go

// Package migrations owns the food_logs schema. The SQL files are embedded
// and applied with golang-migrate against an open SQLite handle.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed files/*.sql
var schemaFiles embed.FS

const schemaDir = "files"

// ErrNoVersion means the schema_migrations table is missing or empty.
var ErrNoVersion = errors.New("database has no schema version (needs migration)")

// MigrateUp brings db to the newest schema. Running it twice is a no-op.
func MigrateUp(db *sql.DB) error {
	m, err := open(db)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// CheckStatus reports whether db is exactly at the newest embedded version.
// It never changes the schema.
func CheckStatus(db *sql.DB) error {
	m, err := open(db)
	if err != nil {
		return err
	}
	// m shares db with the caller; closing it would close db too.

	current, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return ErrNoVersion
	case err != nil:
		return fmt.Errorf("failed to read schema version: %w", err)
	case dirty:
		return fmt.Errorf("schema version %d is dirty: a previous migration failed", current)
	}

	src, err := iofs.New(schemaFiles, schemaDir)
	if err != nil {
		return fmt.Errorf("failed to read embedded migrations: %w", err)
	}
	defer src.Close()

	newest, err := latestVersion(src)
	if err != nil {
		return fmt.Errorf("failed to find newest migration: %w", err)
	}

	if current < newest {
		return fmt.Errorf("schema version %d is behind %d (%d pending)", current, newest, newest-current)
	}
	if current > newest {
		return fmt.Errorf("schema version %d is newer than this build knows (%d)", current, newest)
	}
	return nil
}

func open(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(schemaFiles, schemaDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded migrations: %w", err)
	}

	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("failed to wrap database: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

// latestVersion walks src to its last version. Next signals the end of the
// list with fs.ErrNotExist; any other error is returned.
func latestVersion(src source.Driver) (uint, error) {
	v, err := src.First()
	if err != nil {
		return 0, err
	}
	for {
		next, err := src.Next(v)
		if errors.Is(err, fs.ErrNotExist) {
			return v, nil
		}
		if err != nil {
			return 0, err
		}
		v = next
	}
}
