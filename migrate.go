package main

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/pourmind/pym/model"
)

// migrateDatabase applies pending SQL migrations for the active server.
// Driver registration and DSN construction are build-tag specific, see
// migrate_sqlite.go and migrate_postgres.go.
func migrateDatabase(cfg *model.Config) error {
	m, err := migrate.New("file://"+migrationsDir(), migrateDSN(cfg))
	if err != nil {
		return fmt.Errorf("cannot open migrations: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
