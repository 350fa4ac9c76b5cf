//go:build !postgres

package model

import (
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// InitDatabase for SQLite (pure Go). The default build; development and small
// single-node deployments use this, production builds use -tags postgres.
func InitDatabase(cfg *Config) (*Store, error) {
	svr := cfg.Servers[cfg.Mode]
	filename := filepath.Join("db", svr.DBName)
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(filename), gormLoggerFor(cfg, svr))
	if err != nil {
		return nil, err
	}
	s := NewStore(db, cfg)
	if err := s.AutoMigrate(); err != nil {
		return nil, err
	}
	return s, nil
}
