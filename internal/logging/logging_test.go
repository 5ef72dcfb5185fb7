package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
		"chatty":  slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestDefaultConfigFromEnv(t *testing.T) {
	t.Setenv("FXTRIP_LOG_LEVEL", "debug")
	t.Setenv("FXTRIP_LOG_FORMAT", "JSON")
	cfg := DefaultConfig()
	if cfg.Level != slog.LevelDebug || !cfg.JSON {
		t.Errorf("cfg = %+v", cfg)
	}

	t.Setenv("FXTRIP_LOG_LEVEL", "")
	t.Setenv("FXTRIP_LOG_FORMAT", "")
	if cfg := DefaultConfig(); cfg.Level != slog.LevelWarn || cfg.JSON {
		t.Errorf("default cfg = %+v", cfg)
	}
}

func TestNewFiltersAndFormats(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelWarn, JSON: true, Output: &buf})
	l.Info("hidden")
	l.Warn("rate lookup failed", "from", "USD")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatal(err)
	}
	if rec["msg"] != "rate lookup failed" || rec["from"] != "USD" {
		t.Errorf("record = %v", rec)
	}
}
