package cmd

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/fxtrip/internal/config"
	"github.com/theirongolddev/fxtrip/internal/i18n"
	"github.com/theirongolddev/fxtrip/internal/ledger"
	"github.com/theirongolddev/fxtrip/internal/tui"
	"github.com/theirongolddev/fxtrip/internal/tui/theme"
)

var flagSetupSkipTrip bool

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup: language, theme, currencies and the active trip",
	RunE:  runSetup,
}

func init() {
	setupCmd.Flags().BoolVar(&flagSetupSkipTrip, "skip-trip", false, "Only edit preferences")
	rootCmd.AddCommand(setupCmd)
}

var languageNames = map[string]string{
	"en": "English",
	"de": "Deutsch",
	"es": "Español",
	"fr": "Français",
	"ja": "日本語",
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	langs := i18n.Default().Languages()
	langOpts := make([]huh.Option[string], len(langs))
	for i, code := range langs {
		name := languageNames[code]
		if name == "" {
			name = code
		}
		langOpts[i] = huh.NewOption(name, code)
	}
	cfg.General.Language = i18n.Normalize(cfg.General.Language)

	prefs := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Language").
				Options(langOpts...).
				Value(&cfg.General.Language),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(huh.NewOptions(theme.Names()...)...).
				Value(&cfg.Appearance.Theme),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Convert from").
				Description("Default source currency when no trip is set").
				Options(tui.CurrencyOptions()...).
				Height(8).
				Value(&cfg.Currency.From),
			huh.NewSelect[string]().
				Title("Convert to").
				Options(tui.CurrencyOptions()...).
				Height(8).
				Value(&cfg.Currency.To),
		),
	).WithTheme(huh.ThemeBase16())

	if err := prefs.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return err
	}

	path := flagConfig
	if path == "" {
		path = config.ConfigPath()
	}
	if err := config.SaveTo(path, cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Printf("\n  Saved to %s\n", path)

	if flagSetupSkipTrip {
		fmt.Println()
		return nil
	}

	env, err := openEnv(false)
	if err != nil {
		return err
	}
	defer env.Close()

	vals := tui.TripValuesFrom(env.ledger.Settings())
	if err := tui.NewTripForm(&vals, env.l).WithShowHelp(true).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return err
	}
	ts, err := vals.Settings(env.ledger.Location())
	if err != nil {
		return err
	}
	if err := env.ledger.SaveSettings(ts); err != nil {
		if !errors.Is(err, ledger.ErrPersist) {
			return err
		}
		env.log.Warn("settings kept in memory only", "err", err)
	}

	fmt.Println("  Run `fxtrip setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
