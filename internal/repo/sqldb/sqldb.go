// Package sqldb owns the relational database handle shared by the
// repositories: connection setup, schema, transactions and translation of
// driver errors into domain storage faults.
package sqldb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // registers the "postgres" driver
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/mkrupp/socialsvc/internal/infra/logging"
)

// Dialect names a supported database driver.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// ErrUnsupportedDriver is returned by Open for drivers other than sqlite and postgres.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

//nolint:gochecknoinits
func init() {
	// modernc registers as "sqlite", which sqlx does not know; it takes '?' placeholders.
	sqlx.BindDriver(string(DialectSQLite), sqlx.QUESTION)
}

// Config holds the database connection settings.
type Config struct {
	// Driver selects the dialect: "sqlite" or "postgres"
	Driver string `env:"DRIVER" default:"sqlite"`
	// DSN is the SQLite file path or the postgres connection string
	DSN string `env:"DSN" default:"var/storage/socialsvc.db"`

	// MaxOpenConns caps the pool; zero means one connection for SQLite and unlimited for postgres
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" default:"0"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" default:"5m"`

	// BusyTimeout is how long SQLite waits on a locked database before failing
	BusyTimeout time.Duration `env:"BUSY_TIMEOUT" default:"5s"`
}

// DB is the shared database handle.
type DB struct {
	*sqlx.DB

	dialect Dialect
	log     logging.Logger
}

// Open connects to the configured database, verifies the connection and
// applies the schema.
func Open(ctx context.Context, cfg Config, log logging.Logger) (*DB, error) {
	dialect := Dialect(strings.ToLower(cfg.Driver))

	var dsn string

	switch dialect {
	case DialectSQLite:
		if err := ensureDir(cfg.DSN); err != nil {
			return nil, err
		}

		dsn = sqliteDSN(cfg.DSN, cfg.BusyTimeout)
	case DialectPostgres:
		dsn = cfg.DSN
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}

	log = log.With(logging.Group("db", "driver", string(dialect)))

	conn, err := sqlx.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen == 0 && dialect == DialectSQLite {
		// modernc serializes writers on the file lock; one connection keeps
		// writers from failing with SQLITE_BUSY and keeps ":memory:" databases shared
		maxOpen = 1
	}

	conn.SetMaxOpenConns(maxOpen)
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	db := NewDB(conn, dialect, log)

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()

		return nil, fmt.Errorf("ping db: %w", TranslateError(err))
	}

	if err := db.applySchema(ctx); err != nil {
		_ = conn.Close()

		return nil, fmt.Errorf("initialize db: %w", err)
	}

	log.InfoContext(ctx, "database ready")

	return db, nil
}

// NewDB wraps an already opened connection without touching the schema.
func NewDB(conn *sqlx.DB, dialect Dialect, log logging.Logger) *DB {
	return &DB{
		DB:      conn,
		dialect: dialect,
		log:     log,
	}
}

// Dialect returns the dialect the handle was opened with.
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// Close closes the underlying connection pool.
func (db *DB) Close() error {
	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}

	return nil
}

func (db *DB) applySchema(ctx context.Context) error {
	for _, stmt := range schema(db.dialect) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", TranslateError(err))
		}
	}

	return nil
}

func sqliteDSN(path string, busyTimeout time.Duration) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}

	return fmt.Sprintf("%s%s_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)",
		path, sep, busyTimeout.Milliseconds())
}

func ensureDir(dsn string) error {
	path, _, _ := strings.Cut(dsn, "?")
	if path == "" || path == ":memory:" || strings.HasPrefix(path, "file:") {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}

	return nil
}
