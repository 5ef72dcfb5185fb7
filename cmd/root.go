package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fxtrip/internal/config"
	"github.com/theirongolddev/fxtrip/internal/daemon"
	"github.com/theirongolddev/fxtrip/internal/i18n"
	"github.com/theirongolddev/fxtrip/internal/ledger"
	"github.com/theirongolddev/fxtrip/internal/logging"
	"github.com/theirongolddev/fxtrip/internal/rates"
	"github.com/theirongolddev/fxtrip/internal/store"
)

const (
	rateTimeout = 15 * time.Second
	dateLayout  = "2006-01-02"
)

var (
	flagConfig string
	flagStore  string
	flagLang   string
	flagQuiet  bool
)

var rootCmd = &cobra.Command{
	Use:           "fxtrip",
	Short:         "Travel currency converter and daily budget tracker",
	Long:          "Convert currencies, log trip expenses and keep an eye on what is left to spend today.",
	RunE:          runBudget,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "  Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default "+config.ConfigPath()+")")
	rootCmd.PersistentFlags().StringVar(&flagStore, "store", "", "Store database path")
	rootCmd.PersistentFlags().StringVarP(&flagLang, "lang", "l", "", "Display language (en, de, es, fr, ja)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Only log errors")
}

// loadConfig reads the config file and applies flag overrides on top of the
// environment ones.
func loadConfig() (config.Config, error) {
	path := flagConfig
	if path == "" {
		path = config.ConfigPath()
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return cfg, err
	}
	if flagStore != "" {
		cfg.Store.Path = flagStore
	}
	if flagLang != "" {
		cfg.General.Language = flagLang
	}
	return cfg, nil
}

var (
	// logSink replaces stderr for commands that own the terminal.
	logSink io.Writer
	// logJSON is set for the detached daemon, whose output goes to a log file.
	logJSON bool
)

func setupLogging() *slog.Logger {
	lc := logging.DefaultConfig()
	if flagQuiet {
		lc.Level = slog.LevelError
	}
	if logSink != nil {
		lc.Output = logSink
	}
	if logJSON {
		lc.JSON = true
	}
	return logging.Setup(lc)
}

// appEnv is the shared wiring used by every command that touches the trip.
type appEnv struct {
	cfg    config.Config
	log    *slog.Logger
	l      i18n.Localizer
	st     *store.Suite
	ledger *ledger.Service
	rates  *rates.Service
}

// openEnv loads config, opens the shared store and builds the ledger and a
// rate service. Widget mode serves cached rates inside the configured window.
func openEnv(widget bool) (*appEnv, error) {
	log := setupLogging()
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Warn("falling back to local time", "err", err)
	}

	st, err := store.Open(cfg.StorePath(), cfg.Store.Suite)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	led, err := ledger.New(st, daemon.NewHTTPNotifier(cfg.Widget.Addr),
		ledger.WithLogger(log),
		ledger.WithLocation(loc),
		ledger.WithDefaultCurrencies(cfg.Currency.To, cfg.Currency.From),
	)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	policy := rates.AppPolicy
	if widget {
		policy = rates.Policy{FreshFor: cfg.WidgetFreshFor()}
	}
	client := rates.NewClient(cfg.Rates.BaseURL, &http.Client{Timeout: rateTimeout})
	svc := rates.NewService(client, rates.NewStoreCache(st), policy, log)

	return &appEnv{
		cfg:    cfg,
		log:    log,
		l:      i18n.For(cfg.General.Language),
		st:     st,
		ledger: led,
		rates:  svc,
	}, nil
}

func (e *appEnv) Close() {
	if err := e.st.Close(); err != nil {
		e.log.Warn("closing store", "err", err)
	}
}

// parseDay reads a YYYY-MM-DD date in the trip time zone.
func parseDay(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

func rateContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), rateTimeout)
}
