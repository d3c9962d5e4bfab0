package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Supported sqlx driver names.
const (
	DialectMySQL  = "mysql"
	DialectSQLite = "sqlite3"
)

// Options configures the SQL database connection.
type Options struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	Logger          *slog.Logger
	PingTimeout     time.Duration
}

const defaultPingTimeout = 5 * time.Second

// DB wraps *sqlx.DB to centralize lifecycle management.
type DB struct {
	*sqlx.DB
	dialect string
	logger  *slog.Logger
}

// Connect initializes a pooled SQL connection using the provided options.
func Connect(ctx context.Context, opts Options) (*DB, error) {
	if opts.Driver == "" {
		return nil, errors.New("database driver is required")
	}
	if opts.DSN == "" {
		return nil, errors.New("database DSN is required")
	}

	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	dsn, err := normalizeDSN(opts.Driver, opts.DSN)
	if err != nil {
		return nil, err
	}

	pool, err := sqlx.Open(opts.Driver, dsn)
	if err != nil {
		return nil, err
	}

	if opts.Driver == DialectSQLite {
		// one writer at a time avoids SQLITE_BUSY under concurrent requests
		pool.SetMaxOpenConns(1)
	} else if opts.MaxOpenConns > 0 {
		pool.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		pool.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		pool.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	if opts.ConnMaxIdleTime > 0 {
		pool.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}

	pingTimeout := opts.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = defaultPingTimeout
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := pool.PingContext(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}

	log.Info("database connected", "driver", opts.Driver)

	return &DB{DB: pool, dialect: opts.Driver, logger: log}, nil
}

// Dialect reports the driver name the pool was opened with.
func (db *DB) Dialect() string {
	return db.dialect
}

// Close releases database resources.
func (db *DB) Close() error {
	if db == nil || db.DB == nil {
		return nil
	}
	return db.DB.Close()
}

// RunMigrations applies every pending migration.
func (db *DB) RunMigrations(ctx context.Context) error {
	migrator, err := NewMigrator(db.DB, db.dialect, db.logger)
	if err != nil {
		return err
	}
	defer migrator.Close()

	db.logger.Info("running migrations")
	if err := migrator.Up(ctx); err != nil {
		return err
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		return err
	}
	db.logger.Info("migrations completed", "version", version, "dirty", dirty)
	return nil
}

// normalizeDSN forces the MySQL options the repositories rely on. Time
// columns scan into time.Time, migration files may hold several statements,
// and RowsAffected counts matched rows like SQLite does.
func normalizeDSN(driver, dsn string) (string, error) {
	switch driver {
	case DialectMySQL:
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return "", fmt.Errorf("parse mysql dsn: %w", err)
		}
		cfg.ParseTime = true
		cfg.MultiStatements = true
		cfg.ClientFoundRows = true
		cfg.Loc = time.UTC
		return cfg.FormatDSN(), nil
	case DialectSQLite:
		return dsn, nil
	default:
		return "", fmt.Errorf("unsupported database driver: %s", driver)
	}
}
