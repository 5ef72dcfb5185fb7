package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fxtrip/internal/cli"
	"github.com/theirongolddev/fxtrip/internal/i18n"
	"github.com/theirongolddev/fxtrip/internal/model"
)

var flagHistoryDays int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the active trip day by day, newest first",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryDays, "days", "n", 0, "Only show the most recent N days")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(_ *cobra.Command, _ []string) error {
	env, err := openEnv(false)
	if err != nil {
		return err
	}
	defer env.Close()

	trip := env.ledger.Active()
	printHistory(env.ledger.Stats(time.Now()), trip.BudgetCurrency, env.l, flagHistoryDays)
	return nil
}

func printHistory(s model.BudgetStats, cur string, l i18n.Localizer, limit int) {
	fmt.Println()
	if len(s.History) == 0 {
		fmt.Println("  " + l.T("history.empty"))
		fmt.Println()
		return
	}
	shown := 0
	for i := len(s.History) - 1; i >= 0; i-- {
		if limit > 0 && shown == limit {
			break
		}
		fmt.Println(cli.RenderDayCard(s.History[i], cur, l))
		fmt.Println()
		shown++
	}
}
