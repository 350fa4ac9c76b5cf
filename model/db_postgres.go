//go:build postgres

package model

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitDatabase for PostgreSQL
func InitDatabase(cfg *Config) (*Store, error) {
	svr := cfg.Servers[cfg.Mode]
	port := svr.DBPort
	if port == 0 {
		port = 5432
	}

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=UTC",
		svr.DBHost, svr.DBUser, svr.DBPassword, svr.DBName, port,
	)
	db, err := gorm.Open(postgres.Open(dsn), gormLoggerFor(cfg, svr))
	if err != nil {
		return nil, err
	}
	s := NewStore(db, cfg)
	if err := s.AutoMigrate(); err != nil {
		return nil, err
	}
	return s, nil
}
