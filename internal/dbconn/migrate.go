package dbconn

import (
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// NewMigrate returns a migrate instance applying the SQL files under dir to
// sqldb. Closing it closes sqldb.
func NewMigrate(sqldb *sql.DB, driver, dir string) (*migrate.Migrate, error) {
	var (
		instance database.Driver
		err      error
	)
	switch driver {
	case "sqlite3":
		instance, err = sqlite3.WithInstance(sqldb, &sqlite3.Config{})
	case "postgres":
		instance, err = postgres.WithInstance(sqldb, &postgres.Config{})
	case "pgx":
		instance, err = pgxmigrate.WithInstance(sqldb, &pgxmigrate.Config{})
	default:
		return nil, fmt.Errorf("dbconn: unsupported driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("dbconn: migrate driver %s: %w", driver, err)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+filepath.ToSlash(abs), driver, instance)
	if err != nil {
		return nil, fmt.Errorf("dbconn: migrate: %w", err)
	}
	return m, nil
}
