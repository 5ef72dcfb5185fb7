package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/fxtrip/internal/config"
	"github.com/theirongolddev/fxtrip/internal/tui"
	"github.com/theirongolddev/fxtrip/internal/tui/theme"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive converter and budget dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	// Logs go to a file while the alt screen is up.
	logSink = io.Discard
	if err := os.MkdirAll(config.DataDir(), 0o750); err == nil {
		//nolint:gosec // log path is under the user's data dir
		if f, err := os.OpenFile(filepath.Join(config.DataDir(), "tui.log"), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600); err == nil {
			defer func() { _ = f.Close() }()
			logSink = f
		}
	}

	env, err := openEnv(false)
	if err != nil {
		return err
	}
	defer env.Close()

	theme.SetActive(env.cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	app := tui.NewApp(tui.Options{
		Ledger:    env.ledger,
		Rates:     env.rates,
		Config:    env.cfg,
		Localizer: env.l,
		Logger:    env.log,
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
