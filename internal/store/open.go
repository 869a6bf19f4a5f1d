package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/goliatone/go-cms-variants/pkg/storage"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
)

// Open connects to the database described by cfg and wraps it in a bun DB
// using the matching dialect. SQLite connections are limited to a single
// open connection so transactions serialize.
func Open(ctx context.Context, cfg storage.Config) (*bun.DB, error) {
	driver := cfg.NormalizedDriver()
	dsn := strings.TrimSpace(cfg.DSN)

	var dialect schema.Dialect
	switch driver {
	case storage.DriverSQLite:
		if dsn == "" {
			dsn = "file::memory:?cache=shared"
		}
		dialect = sqlitedialect.New()
	case storage.DriverPostgres:
		if dsn == "" {
			return nil, fmt.Errorf("store: postgres dsn required")
		}
		dialect = pgdialect.New()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", driver, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("store: ping %s: %w", driver, err)
	}

	db := bun.NewDB(sqlDB, dialect)
	switch {
	case cfg.MaxOpenConns > 0:
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	case driver == storage.DriverSQLite:
		db.SetMaxOpenConns(1)
	}
	return db, nil
}
