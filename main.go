package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pourmind/pym/controller"
	"github.com/pourmind/pym/model"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

func dothings() error {
	runMigrations := flag.Bool("migrate", false, "apply pending SQL migrations and exit")
	configPath := flag.String("config", "config.toml", "path to configuration file")
	flag.Parse()

	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	cfg := &model.Config{}
	data, err := os.ReadFile(*configPath)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("cannot parse %s: %w", *configPath, err)
		}
	case os.IsNotExist(err):
		// fully environment-driven configuration is fine
	default:
		return err
	}
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return err
	}

	if *runMigrations {
		return migrateDatabase(cfg)
	}

	store, err := model.InitDatabase(cfg)
	if err != nil {
		return err
	}
	return controller.NewController(store)
}

func main() {
	if err := dothings(); err != nil {
		log.Fatal(err)
	}
}
