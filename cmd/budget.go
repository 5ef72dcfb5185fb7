package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fxtrip/internal/budget"
	"github.com/theirongolddev/fxtrip/internal/cli"
	"github.com/theirongolddev/fxtrip/internal/i18n"
	"github.com/theirongolddev/fxtrip/internal/model"
	"github.com/theirongolddev/fxtrip/internal/money"
)

var flagBudgetVerify bool

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Show today's budget for the active trip",
	RunE:  runBudget,
}

func init() {
	budgetCmd.Flags().BoolVar(&flagBudgetVerify, "verify", false, "Cross-check the rollover against a day-by-day replay")
	rootCmd.AddCommand(budgetCmd)
}

func runBudget(_ *cobra.Command, _ []string) error {
	env, err := openEnv(false)
	if err != nil {
		return err
	}
	defer env.Close()
	return runBudgetFor(env, time.Now(), flagBudgetVerify)
}

func dayCaption(s model.BudgetStats, l i18n.Localizer) string {
	switch {
	case s.DaysFromStart < 0:
		return l.T("budget.not_started", -s.DaysFromStart)
	case !s.InRange:
		return l.T("budget.ended")
	default:
		return l.T("budget.day_of", s.CurrentDayNum, s.TotalDays)
	}
}

func runBudgetFor(env *appEnv, now time.Time, verify bool) error {
	trip := env.ledger.Active()
	l := env.l
	cur := trip.BudgetCurrency

	fmt.Println()
	fmt.Println(cli.RenderTitle(trip.DisplayName()))
	fmt.Println()

	if !trip.IsBudgetSet() {
		fmt.Println("  " + l.T("budget.not_set"))
		fmt.Println("  Run `fxtrip trip set --budget <amount>` or `fxtrip setup`.")
		fmt.Println()
		return nil
	}

	s := env.ledger.Stats(now)
	fmt.Printf("  %s  ·  %s\n\n", dayCaption(s, l), cli.FormatRange(trip.StartDate, trip.EndDate))

	fmt.Print(cli.RenderKV([]cli.KV{
		{Label: l.T("budget.left_today"), Value: money.FormatMoney(s.RemainingToday, cur)},
		{Label: l.T("budget.available_today"), Value: money.FormatMoney(s.AvailableToday, cur)},
		{Label: l.T("budget.spent_today"), Value: money.FormatMoney(s.SpentToday, cur)},
		{Label: l.T("budget.rollover"), Value: cli.FormatSigned(s.SavedFromPreviousDays, cur)},
		{Label: l.T("budget.daily_base"), Value: money.FormatMoney(s.DailyBase, cur)},
		{Label: l.T("budget.total_spent"), Value: money.FormatMoney(s.TotalSpent, cur)},
		{Label: l.T("budget.total_remaining"), Value: money.FormatMoney(s.TotalRemaining, cur)},
	}))
	fmt.Println()
	fmt.Println("  " + cli.RenderProgressBar(s.Progress, 30))

	if len(s.History) > 1 {
		values := make([]float64, len(s.History))
		for i, d := range s.History {
			values[i] = d.Spent.InexactFloat64()
		}
		fmt.Println("  " + cli.RenderSparkline(values))
	}

	if totals := budget.CurrencyTotals(s); len(totals) > 1 {
		parts := make([]string, len(totals))
		for i, ct := range totals {
			parts[i] = money.FormatMoney(ct.Amount, ct.Currency)
		}
		fmt.Println("  " + strings.Join(parts, "  ·  "))
	}
	fmt.Println()

	if !verify {
		return nil
	}
	replayed := budget.Replay(s)
	if !replayed.Equal(s.SavedFromPreviousDays) {
		return fmt.Errorf("rollover mismatch: engine %s, replay %s",
			s.SavedFromPreviousDays.StringFixed(2), replayed.StringFixed(2))
	}
	fmt.Printf("  Rollover verified over %d day(s): %s\n\n", len(s.History), cli.FormatSigned(replayed, cur))
	return nil
}
