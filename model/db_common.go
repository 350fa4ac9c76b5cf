package model

import (
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store is the persistence entry point. All database access goes through its
// methods; handlers never touch *gorm.DB directly.
type Store struct {
	db     *gorm.DB
	Config *Config
}

// NewStore wraps an already opened database handle. InitDatabase is the usual
// way in; the fixtures package uses NewStore directly with a throwaway SQLite
// handle.
func NewStore(db *gorm.DB, cfg *Config) *Store {
	return &Store{db: db, Config: cfg}
}

// AutoMigrate creates or updates the schema and seeds the about singleton.
func (s *Store) AutoMigrate() error {
	for _, m := range []any{&Note{}, &AboutInfo{}, &User{}} {
		if err := s.db.AutoMigrate(m); err != nil {
			return err
		}
	}
	s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_notes_parent_created
         ON notes(parent_id, created_at)`)
	s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_notes_created_at
         ON notes(created_at)`)
	return s.seedAboutInfo()
}

// shared helper for GORM logger
func gormLoggerFor(cfg *Config, svr server) *gorm.Config {
	gormConfig := &gorm.Config{}
	switch svr.DBLogger {
	case "info":
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	case "silent":
		gormConfig.Logger = logger.Default.LogMode(logger.Silent)
	default:
		if cfg.Debug || cfg.Mode == "development" {
			gormConfig.Logger = logger.Default.LogMode(logger.Info)
		} else {
			gormConfig.Logger = logger.Default.LogMode(logger.Silent)
		}
	}
	return gormConfig
}
