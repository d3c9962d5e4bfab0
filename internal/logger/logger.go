package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New returns a slog.Logger configured based on the application environment.
// Production and staging log JSON; development logs human-readable text. A
// non-empty level overrides the environment default.
func New(env, level string) *slog.Logger {
	return newWithWriter(defaultWriter(), env, level)
}

func newWithWriter(w io.Writer, env, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(env, level)}

	var handler slog.Handler
	switch env {
	case "production", "staging":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func defaultWriter() io.Writer {
	return os.Stdout
}

func parseLevel(env, level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	switch env {
	case "production":
		return slog.LevelInfo
	case "staging":
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
