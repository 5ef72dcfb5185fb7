package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("FXTRIP_RATES_URL", "")
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Currency.From != "USD" || cfg.Currency.To != "EUR" {
		t.Errorf("currency = %+v, want USD/EUR", cfg.Currency)
	}
	if cfg.WidgetFreshFor() != time.Hour {
		t.Errorf("WidgetFreshFor = %s, want 1h", cfg.WidgetFreshFor())
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fxtrip", "config.toml")
	cfg := DefaultConfig()
	cfg.General.Language = "ja"
	cfg.Currency.From = "JPY"
	cfg.Widget.IntervalSec = 30
	cfg.TUI.AutoRefresh = false

	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("perm = %o, want 600", perm)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if got.General.Language != "ja" || got.Currency.From != "JPY" || got.Widget.IntervalSec != 30 || got.TUI.AutoRefresh {
		t.Errorf("round trip = %+v", got)
	}
	if got.WidgetInterval() != 30*time.Second {
		t.Errorf("WidgetInterval = %s, want 30s", got.WidgetInterval())
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("FXTRIP_RATES_URL", "http://localhost:9999")
	t.Setenv("FXTRIP_LANG", "fr")
	t.Setenv("FXTRIP_STORE_PATH", "/tmp/x.db")
	t.Setenv("FXTRIP_WIDGET_ADDR", "127.0.0.1:9000")
	t.Setenv("FXTRIP_TZ", "Asia/Tokyo")

	cfg := DefaultConfig()
	if err := ApplyEnv(&cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Rates.BaseURL != "http://localhost:9999" {
		t.Errorf("BaseURL = %q", cfg.Rates.BaseURL)
	}
	if cfg.General.Language != "fr" {
		t.Errorf("Language = %q", cfg.General.Language)
	}
	if cfg.StorePath() != "/tmp/x.db" {
		t.Errorf("StorePath = %q", cfg.StorePath())
	}
	if cfg.Widget.Addr != "127.0.0.1:9000" {
		t.Errorf("Addr = %q", cfg.Widget.Addr)
	}
	if cfg.General.Timezone != "Asia/Tokyo" {
		t.Errorf("Timezone = %q", cfg.General.Timezone)
	}
}

func TestParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[general\nlanguage="), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("want parse error")
	}
}

func TestLocation(t *testing.T) {
	cfg := DefaultConfig()
	if loc, err := cfg.Location(); err != nil || loc != time.Local {
		t.Errorf("empty timezone = %v, %v", loc, err)
	}
	cfg.General.Timezone = "Not/AZone"
	if _, err := cfg.Location(); err == nil {
		t.Error("want error for bad zone")
	}
}

func TestDefaultStorePathUsesXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/xdg/data")
	cfg := DefaultConfig()
	if got := cfg.StorePath(); got != filepath.Join("/xdg/data", "fxtrip", "fxtrip.db") {
		t.Errorf("StorePath = %q", got)
	}
}

func TestDetectLanguage(t *testing.T) {
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "de_DE.UTF-8")
	if got := DetectLanguage(); got != "de" {
		t.Errorf("DetectLanguage = %q, want de", got)
	}
	if !SupportedLanguage("de-AT") || SupportedLanguage("xx") {
		t.Error("SupportedLanguage mismatch")
	}
}

func TestDotEnvBesideConfig(t *testing.T) {
	dir := t.TempDir()
	env := "FXTRIP_LANG=de\nFXTRIP_WIDGET_ADDR=127.0.0.1:9100\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FXTRIP_LANG", "")
	_ = os.Unsetenv("FXTRIP_LANG")
	t.Setenv("FXTRIP_WIDGET_ADDR", "127.0.0.1:9200")

	cfg, err := LoadFrom(filepath.Join(dir, "config.toml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.General.Language != "de" {
		t.Errorf("Language = %q, want de from .env", cfg.General.Language)
	}
	if cfg.Widget.Addr != "127.0.0.1:9200" {
		t.Errorf("Widget.Addr = %q, want the exported value to win", cfg.Widget.Addr)
	}
}
