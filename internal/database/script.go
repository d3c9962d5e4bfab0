package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
)

//go:embed fixtures
var fixturesFS embed.FS

// Fixtures returns the bundled development data scripts.
func Fixtures() fs.FS {
	sub, err := fs.Sub(fixturesFS, "fixtures")
	if err != nil {
		panic(err)
	}
	return sub
}

// Execer is the subset of *sql.DB and *sqlx.DB the script runner needs.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ScriptRunner executes plain .sql files statement by statement. It is used
// for seed data, never for schema changes.
type ScriptRunner struct {
	Logger *slog.Logger
	DB     Execer
	FS     fs.FS
}

// NewScriptRunner builds a runner reading scripts from f.
func NewScriptRunner(db Execer, f fs.FS, logger *slog.Logger) *ScriptRunner {
	return &ScriptRunner{DB: db, FS: f, Logger: logger}
}

// RunAll executes every *.sql file at the root of the filesystem in lexical
// order.
func (r *ScriptRunner) RunAll(ctx context.Context) error {
	if r.FS == nil {
		return errors.New("script runner requires a filesystem")
	}

	entries, err := fs.ReadDir(r.FS, ".")
	if err != nil {
		return fmt.Errorf("read scripts dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		if err := r.Run(ctx, entry.Name()); err != nil {
			return err
		}
	}
	return nil
}

// Run executes one script.
func (r *ScriptRunner) Run(ctx context.Context, name string) error {
	if r.DB == nil {
		return errors.New("script runner requires a database handle")
	}

	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	contents, err := fs.ReadFile(r.FS, path.Clean(name))
	if err != nil {
		return fmt.Errorf("read script %s: %w", name, err)
	}

	statements := splitSQLStatements(string(contents))
	if len(statements) == 0 {
		logger.Info("skipping empty script", "file", name)
		return nil
	}

	for i, stmt := range statements {
		if _, err := r.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %s [%d]: %w", name, i+1, err)
		}
	}
	logger.Info("script applied", "file", name, "statements", len(statements))
	return nil
}

// splitSQLStatements drops line comments and splits on semicolons. Scripts
// must not contain semicolons inside string literals.
func splitSQLStatements(sqlText string) []string {
	var b strings.Builder
	for _, line := range strings.Split(sqlText, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	raw := strings.Split(b.String(), ";")
	out := make([]string, 0, len(raw))
	for _, stmt := range raw {
		trimmed := strings.TrimSpace(stmt)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
