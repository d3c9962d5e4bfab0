package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrator applies the embedded schema migrations of one dialect.
type Migrator struct {
	m      *migrate.Migrate
	source source.Driver
	driver database.Driver
	logger *slog.Logger
}

// NewMigrator builds a migrator over migrations/<dialect>.
func NewMigrator(db *sqlx.DB, dialect string, logger *slog.Logger) (*Migrator, error) {
	if db == nil {
		return nil, errors.New("migrator requires a database handle")
	}
	if logger == nil {
		logger = slog.Default()
	}

	var (
		dir    string
		driver database.Driver
		err    error
	)
	switch dialect {
	case DialectMySQL:
		dir = "migrations/mysql"
		driver, err = migratemysql.WithInstance(db.DB, &migratemysql.Config{})
	case DialectSQLite:
		dir = "migrations/sqlite"
		driver, err = migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
	default:
		return nil, fmt.Errorf("unsupported migration dialect: %s", dialect)
	}
	if err != nil {
		return nil, fmt.Errorf("migration driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, dialect, driver)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("init migrate: %w", err)
	}
	m.Log = migrateLogger{logger: logger}

	mg := &Migrator{m: m, source: src, logger: logger}
	if dialect == DialectMySQL {
		// the mysql driver pins a dedicated connection; the sqlite driver
		// would close the shared pool instead
		mg.driver = driver
	}
	return mg, nil
}

// Up applies all pending migrations. An already current schema is not an
// error.
func (mg *Migrator) Up(ctx context.Context) error {
	return mg.run(ctx, mg.m.Up)
}

// Down rolls back a single migration.
func (mg *Migrator) Down(ctx context.Context) error {
	return mg.run(ctx, func() error { return mg.m.Steps(-1) })
}

// Version returns the applied schema version. A fresh database reports 0.
func (mg *Migrator) Version() (uint, bool, error) {
	version, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

// Force sets the recorded version without running migrations, clearing the
// dirty flag left by a failed run.
func (mg *Migrator) Force(version int) error {
	return mg.m.Force(version)
}

// Close releases the migration source and any pinned connection. The
// database handle stays open.
func (mg *Migrator) Close() error {
	err := mg.source.Close()
	if mg.driver != nil {
		err = errors.Join(err, mg.driver.Close())
	}
	return err
}

func (mg *Migrator) run(ctx context.Context, fn func() error) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			mg.m.GracefulStop <- true
		case <-done:
		}
	}()

	if err := fn(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return ctx.Err()
}

type migrateLogger struct {
	logger *slog.Logger
}

func (l migrateLogger) Printf(format string, v ...any) {
	l.logger.Debug(fmt.Sprintf(format, v...))
}

func (l migrateLogger) Verbose() bool {
	return false
}
