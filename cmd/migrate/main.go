package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/goliatone/go-clean-arch/config"
	"github.com/goliatone/go-clean-arch/internal/dbconn"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to the YAML configuration file")
	direction := flag.String("direction", "up", "one of: up, down, force, version")
	steps := flag.Int("steps", 0, "steps for down (0 means all)")
	version := flag.Int("version", 0, "version for force")
	flag.Parse()

	if err := run(*configPath, *direction, *steps, *version); err != nil {
		fmt.Fprintf(os.Stderr, "migration error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, direction string, steps, version int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	sqldb, err := sql.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return err
	}

	m, err := dbconn.NewMigrate(sqldb, cfg.Database.Driver, cfg.Database.MigrationsPath)
	if err != nil {
		_ = sqldb.Close()
		return err
	}
	defer m.Close()

	switch direction {
	case "up":
		err = m.Up()
	case "down":
		if steps > 0 {
			err = m.Steps(-steps)
		} else {
			err = m.Down()
		}
	case "force":
		if version <= 0 {
			return errors.New("-version must be set and > 0 for force")
		}
		err = m.Force(version)
	case "version":
		v, dirty, verr := m.Version()
		if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
			return verr
		}
		fmt.Printf("version %d (dirty: %t)\n", v, dirty)
		return nil
	default:
		return fmt.Errorf("unsupported direction: %s", direction)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	fmt.Println("migration complete")
	return nil
}
