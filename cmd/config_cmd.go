// Package cmd implements the fxtrip CLI commands.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fxtrip/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := flagConfig
	if path == "" {
		path = config.ConfigPath()
	}
	fmt.Printf("  Config file: %s\n", path)
	if config.Exists() || flagConfig != "" {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Language:  %s\n", cfg.General.Language)
	tz := cfg.General.Timezone
	if tz == "" {
		tz = "local"
	}
	fmt.Printf("    Timezone:  %s\n", tz)
	fmt.Println()

	fmt.Println("  [Currency]")
	fmt.Printf("    Default pair: %s → %s\n", cfg.Currency.From, cfg.Currency.To)
	fmt.Println()

	fmt.Println("  [Rates]")
	fmt.Printf("    API:          %s\n", cfg.Rates.BaseURL)
	fmt.Printf("    Widget cache: %s\n", cfg.WidgetFreshFor())
	fmt.Println()

	fmt.Println("  [Widget]")
	fmt.Printf("    Daemon:   http://%s\n", cfg.Widget.Addr)
	fmt.Printf("    Interval: %s\n", cfg.WidgetInterval())
	fmt.Println()

	fmt.Println("  [Store]")
	fmt.Printf("    Path:  %s\n", cfg.StorePath())
	fmt.Printf("    Suite: %s\n", cfg.Store.Suite)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  Run `fxtrip setup` to reconfigure.")
	return nil
}
