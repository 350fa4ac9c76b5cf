//go:build !postgres

package main

import (
	"fmt"
	"path/filepath"

	_ "github.com/golang-migrate/migrate/v4/database/sqlite" // pure Go, no CGO

	"github.com/pourmind/pym/model"
)

func migrationsDir() string { return "migrations/sqlite3" }

func migrateDSN(cfg *model.Config) string {
	svr := cfg.Servers[cfg.Mode]
	dbPath := filepath.Join("db", svr.DBName)
	return fmt.Sprintf("sqlite://%s?x-no-tx-wrap=true", filepath.ToSlash(dbPath))
}
