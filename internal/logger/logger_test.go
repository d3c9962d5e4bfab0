package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		env, level string
		want       slog.Level
	}{
		{"production", "", slog.LevelInfo},
		{"staging", "", slog.LevelInfo},
		{"development", "", slog.LevelDebug},
		{"production", "debug", slog.LevelDebug},
		{"development", "WARN", slog.LevelWarn},
		{"development", "error", slog.LevelError},
		{"production", "bogus", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := parseLevel(tc.env, tc.level); got != tc.want {
			t.Errorf("parseLevel(%q, %q) = %v, want %v", tc.env, tc.level, got, tc.want)
		}
	}
}

func TestProductionLogsJSON(t *testing.T) {
	var buf bytes.Buffer
	log := newWithWriter(&buf, "production", "")
	log.Debug("hidden")
	log.Info("order placed", "order_id", 7)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("expected JSON output: %v", err)
	}
	if entry["msg"] != "order placed" {
		t.Fatalf("unexpected message: %v", entry["msg"])
	}
}

func TestDevelopmentLogsText(t *testing.T) {
	var buf bytes.Buffer
	newWithWriter(&buf, "development", "").Debug("visible", "k", "v")
	if !strings.Contains(buf.String(), "msg=visible") {
		t.Fatalf("expected text output, got %q", buf.String())
	}
}
