package model

import (
	"fmt"
	"os"
	"strconv"
)

// Config is loaded once at process start (TOML file plus environment
// overrides) and handed to the store and controller explicitly. There is no
// ambient global configuration.
type Config struct {
	Mode      string
	Debug     bool
	Port      int
	SecretKey string
	Servers   map[string]server
}

type server struct {
	Database   string
	DBName     string
	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     int
	DBLogger   string
}

// ApplyEnvOverrides lets deployment environments override individual settings
// without editing the config file. Empty variables leave the file values
// untouched.
func (cfg *Config) ApplyEnvOverrides() {
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		cfg.Mode = v
	}
	if v := os.Getenv("DEBUG"); v != "" {
		cfg.Debug = v == "True" || v == "true" || v == "1"
	}
	if v := os.Getenv("SECRET_KEY"); v != "" {
		cfg.SecretKey = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}

	if cfg.Servers == nil {
		cfg.Servers = map[string]server{}
	}
	svr := cfg.Servers[cfg.Mode]
	if v := os.Getenv("DB_ENGINE"); v != "" {
		svr.Database = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		svr.DBHost = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			svr.DBPort = p
		}
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		svr.DBName = v
	}
	if v := os.Getenv("DB_USER"); v != "" {
		svr.DBUser = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		svr.DBPassword = v
	}
	cfg.Servers[cfg.Mode] = svr
}

// Validate checks that the process can serve traffic at all. A failure here
// is fatal at startup.
func (cfg *Config) Validate() error {
	if cfg.Mode == "" {
		return fmt.Errorf("config: mode must be set")
	}
	if cfg.SecretKey == "" {
		return fmt.Errorf("config: secret key must be set (config file or SECRET_KEY)")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", cfg.Port)
	}
	svr, ok := cfg.Servers[cfg.Mode]
	if !ok {
		return fmt.Errorf("config: no server block for mode %q", cfg.Mode)
	}
	switch svr.Database {
	case "sqlite", "sqlite3":
		if svr.DBName == "" {
			return fmt.Errorf("config: sqlite database name must be set")
		}
	case "postgres", "postgresql":
		if svr.DBHost == "" || svr.DBName == "" || svr.DBUser == "" {
			return fmt.Errorf("config: postgres requires host, name and user")
		}
	default:
		return fmt.Errorf("config: unsupported database %q", svr.Database)
	}
	return nil
}
