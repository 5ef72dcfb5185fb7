// Package config loads fxtrip settings from a TOML file with environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/theirongolddev/fxtrip/internal/store"
)

// Config holds all fxtrip configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Currency   CurrencyConfig   `toml:"currency"`
	Rates      RatesConfig      `toml:"rates"`
	Widget     WidgetConfig     `toml:"widget"`
	Store      StoreConfig      `toml:"store"`
	Appearance AppearanceConfig `toml:"appearance"`
	TUI        TUIConfig        `toml:"tui"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	Language string `toml:"language"`
	// Timezone defines where trip days start and end. Empty means local time.
	Timezone string `toml:"timezone,omitempty"`
}

// CurrencyConfig holds the default converter pair.
type CurrencyConfig struct {
	From string `toml:"from"`
	To   string `toml:"to"`
}

// RatesConfig holds exchange-rate lookup settings.
type RatesConfig struct {
	BaseURL            string `toml:"base_url"`
	WidgetFreshMinutes int    `toml:"widget_fresh_minutes"`
}

// WidgetConfig holds widget daemon settings.
type WidgetConfig struct {
	Addr        string `toml:"addr"`
	IntervalSec int    `toml:"interval_sec"`
}

// StoreConfig locates the shared key-value suite.
type StoreConfig struct {
	Path  string `toml:"path,omitempty"`
	Suite string `toml:"suite"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// TUIConfig holds dashboard settings.
type TUIConfig struct {
	AutoRefresh bool `toml:"auto_refresh"`
}

// envOverrides are read with koanf from FXTRIP_* variables.
type envOverrides struct {
	RatesURL   string `koanf:"FXTRIP_RATES_URL"`
	Language   string `koanf:"FXTRIP_LANG"`
	Timezone   string `koanf:"FXTRIP_TZ"`
	StorePath  string `koanf:"FXTRIP_STORE_PATH"`
	WidgetAddr string `koanf:"FXTRIP_WIDGET_ADDR"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Language: DetectLanguage(),
		},
		Currency: CurrencyConfig{
			From: "USD",
			To:   "EUR",
		},
		Rates: RatesConfig{
			BaseURL:            "https://api.frankfurter.app",
			WidgetFreshMinutes: 60,
		},
		Widget: WidgetConfig{
			Addr:        "127.0.0.1:8797",
			IntervalSec: 60,
		},
		Store: StoreConfig{
			Suite: store.DefaultSuite,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		TUI: TUIConfig{
			AutoRefresh: true,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fxtrip")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "fxtrip")
}

// DataDir returns the XDG-compliant data directory holding the store.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "fxtrip")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "fxtrip")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file and applies environment overrides, returning
// defaults if the file doesn't exist.
func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom is Load for an explicit path.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path is the user's config file
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := LoadDotEnv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return cfg, err
	}
	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadDotEnv exports the variables of an optional .env file. Variables that
// are already set win.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays FXTRIP_* environment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	k := koanf.New(".")
	if err := k.Load(env.Provider("FXTRIP_", ".", nil), nil); err != nil {
		return fmt.Errorf("loading env config: %w", err)
	}

	var ov envOverrides
	if err := k.UnmarshalWithConf("", &ov, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return fmt.Errorf("parsing env config: %w", err)
	}

	if ov.RatesURL != "" {
		cfg.Rates.BaseURL = ov.RatesURL
	}
	if ov.Language != "" {
		cfg.General.Language = ov.Language
	}
	if ov.Timezone != "" {
		cfg.General.Timezone = ov.Timezone
	}
	if ov.StorePath != "" {
		cfg.Store.Path = ov.StorePath
	}
	if ov.WidgetAddr != "" {
		cfg.Widget.Addr = ov.WidgetAddr
	}
	return nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

// SaveTo writes the config to path.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // user config path
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// StorePath returns the database file for the shared suite.
func (c Config) StorePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	return filepath.Join(DataDir(), "fxtrip.db")
}

// Location resolves the configured trip time zone.
func (c Config) Location() (*time.Location, error) {
	if c.General.Timezone == "" || c.General.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.General.Timezone)
	if err != nil {
		return time.Local, fmt.Errorf("timezone %q: %w", c.General.Timezone, err)
	}
	return loc, nil
}

// WidgetFreshFor is the widget rate cache window.
func (c Config) WidgetFreshFor() time.Duration {
	if c.Rates.WidgetFreshMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.Rates.WidgetFreshMinutes) * time.Minute
}

// WidgetInterval is the daemon timeline period.
func (c Config) WidgetInterval() time.Duration {
	if c.Widget.IntervalSec <= 0 {
		return time.Minute
	}
	return time.Duration(c.Widget.IntervalSec) * time.Second
}
