// Package dbconn opens bun databases for the configured driver.
package dbconn

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goliatone/go-clean-arch/config"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
	"go.uber.org/zap"
)

// Open connects to cfg.DSN, checks the connection and returns a bun DB with
// the dialect of cfg.Driver. Queries are logged at debug level when
// cfg.Debug is set.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*bun.DB, error) {
	dialect, err := Dialect(cfg.Driver)
	if err != nil {
		return nil, err
	}

	sqldb, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("dbconn: open %s: %w", cfg.Driver, err)
	}
	if cfg.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	if err := sqldb.PingContext(ctx); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("dbconn: ping %s: %w", cfg.Driver, err)
	}

	db := bun.NewDB(sqldb, dialect)
	if cfg.Debug && logger != nil {
		db.AddQueryHook(NewQueryHook(logger))
	}
	return db, nil
}

// Dialect returns the bun dialect for a database/sql driver name.
func Dialect(driver string) (schema.Dialect, error) {
	switch driver {
	case "sqlite3":
		return sqlitedialect.New(), nil
	case "postgres", "pgx":
		return pgdialect.New(), nil
	default:
		return nil, fmt.Errorf("dbconn: unsupported driver %q", driver)
	}
}

// QueryHook logs every query with its duration.
type QueryHook struct {
	logger *zap.Logger
}

var _ bun.QueryHook = (*QueryHook)(nil)

func NewQueryHook(logger *zap.Logger) *QueryHook {
	return &QueryHook{logger: logger}
}

func (h *QueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	fields := []zap.Field{
		zap.String("operation", event.Operation()),
		zap.String("query", event.Query),
		zap.Duration("duration", time.Since(event.StartTime)),
	}
	if event.Err != nil && event.Err != sql.ErrNoRows {
		h.logger.Warn("query failed", append(fields, zap.Error(event.Err))...)
		return
	}
	h.logger.Debug("query", fields...)
}
