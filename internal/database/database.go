// Package database centralises sqlx connection helpers.  Two drivers are
// supported: go-sql-driver/mysql for production (also MariaDB), and the
// pure-Go modernc.org/sqlite for single-node installs, the admin CLI, and
// end-to-end tests.
//
// Public entry points:
//
//	Open(ctx, opts)      – open, tune the pool, and Ping.
//	OpenSQLite(ctx, dsn) – single-connection SQLite helper for tests.
//
// Both helpers Ping the database before returning so callers can fail fast
// during bootstrap.  Callers should Close() the returned *sqlx.DB when no
// longer needed.
package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Driver names as registered with database/sql.
const (
	MySQL  = "mysql"
	SQLite = "sqlite"
)

// Options configures Open.  Zero pool values select the defaults: 15 max
// open, 5 idle, and a 30-minute connection lifetime.
type Options struct {
	Driver          string
	DSN             string
	Password        string // substituted into a "%s" verb in DSN, if present
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open returns a pinged *sqlx.DB.
func Open(ctx context.Context, o Options) (*sqlx.DB, error) {
	dsn, err := o.dsn()
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(o.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", o.Driver, err)
	}

	maxOpen, maxIdle, life := o.MaxOpenConns, o.MaxIdleConns, o.ConnMaxLifetime
	if maxOpen == 0 {
		maxOpen = 15
	}
	if maxIdle == 0 {
		maxIdle = 5
	}
	if life == 0 {
		life = 30 * time.Minute
	}
	if o.Driver == SQLite {
		// One writer at a time; extra connections only buy SQLITE_BUSY.
		maxOpen, maxIdle = 1, 1
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(life)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", o.Driver, err)
	}
	return db, nil
}

// OpenSQLite opens dsn with the SQLite driver.  Use ":memory:" for a
// throwaway database.
func OpenSQLite(ctx context.Context, dsn string) (*sqlx.DB, error) {
	return Open(ctx, Options{Driver: SQLite, DSN: dsn})
}

// dsn renders the final connection string.  MySQL DSNs must request
// parseTime so TIMESTAMP columns scan into time.Time.
func (o Options) dsn() (string, error) {
	dsn := o.DSN
	if o.Password != "" && strings.Contains(dsn, "%s") {
		dsn = fmt.Sprintf(dsn, o.Password)
	}

	switch o.Driver {
	case SQLite:
		return dsn, nil
	case MySQL:
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return "", fmt.Errorf("parse mysql dsn: %w", err)
		}
		cfg.ParseTime = true
		if cfg.Loc == nil {
			cfg.Loc = time.UTC
		}
		return cfg.FormatDSN(), nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", o.Driver)
	}
}
