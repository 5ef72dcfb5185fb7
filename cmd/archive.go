package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/fxtrip/internal/cli"
	"github.com/theirongolddev/fxtrip/internal/ledger"
	"github.com/theirongolddev/fxtrip/internal/model"
	"github.com/theirongolddev/fxtrip/internal/money"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Browse, restore or delete finished trips",
	RunE:  runArchiveList,
}

var archiveListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List archived trips",
	RunE:    runArchiveList,
}

var archiveShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show an archived trip as it ended",
	Args:  cobra.ExactArgs(1),
	RunE:  runArchiveShow,
}

var archiveRestoreCmd = &cobra.Command{
	Use:   "restore <id>",
	Short: "Make an archived trip active again",
	Args:  cobra.ExactArgs(1),
	RunE:  runArchiveRestore,
}

var archiveDeleteCmd = &cobra.Command{
	Use:     "delete <id>...",
	Aliases: []string{"rm"},
	Short:   "Delete archived trips",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runArchiveDelete,
}

func init() {
	archiveCmd.AddCommand(archiveListCmd, archiveShowCmd, archiveRestoreCmd, archiveDeleteCmd)
	rootCmd.AddCommand(archiveCmd)
}

func runArchiveList(_ *cobra.Command, _ []string) error {
	env, err := openEnv(false)
	if err != nil {
		return err
	}
	defer env.Close()

	trips := env.ledger.Archive()
	fmt.Println()
	if len(trips) == 0 {
		fmt.Println("  " + env.l.T("archive.empty"))
		fmt.Println()
		return nil
	}

	rows := make([][]string, 0, len(trips))
	for _, t := range trips {
		spent := decimalSum(t.Expenses)
		rows = append(rows, []string{
			cli.ShortID(t.ID),
			cli.Truncate(t.DisplayName(), 24),
			cli.FormatRange(t.StartDate, t.EndDate),
			money.FormatMoney(spent, t.BudgetCurrency),
			money.FormatMoney(t.TotalBudget, t.BudgetCurrency),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title: env.l.T("tab.archive"),
		Headers: []string{"ID", env.l.T("trip.name"), "Dates",
			env.l.T("budget.total_spent"), env.l.T("trip.budget")},
		Rows: rows,
	}))
	fmt.Println()
	return nil
}

func runArchiveShow(_ *cobra.Command, args []string) error {
	env, err := openEnv(false)
	if err != nil {
		return err
	}
	defer env.Close()

	trip, stats, err := env.ledger.ArchivedStats(args[0], time.Now())
	if err != nil {
		return err
	}
	cur := trip.BudgetCurrency
	l := env.l

	fmt.Println()
	fmt.Println(cli.RenderTitle(trip.DisplayName()))
	fmt.Println()
	fmt.Printf("  %s\n\n", cli.FormatRange(trip.StartDate, trip.EndDate))
	fmt.Print(cli.RenderKV([]cli.KV{
		{Label: l.T("trip.budget"), Value: money.FormatMoney(trip.TotalBudget, cur)},
		{Label: l.T("budget.daily_base"), Value: money.FormatMoney(stats.DailyBase, cur)},
		{Label: l.T("budget.total_spent"), Value: money.FormatMoney(stats.TotalSpent, cur)},
		{Label: l.T("budget.total_remaining"), Value: money.FormatMoney(stats.TotalRemaining, cur)},
	}))
	printHistory(stats, cur, l, 0)
	return nil
}

func runArchiveRestore(_ *cobra.Command, args []string) error {
	env, err := openEnv(false)
	if err != nil {
		return err
	}
	defer env.Close()

	trip, err := env.ledger.RestoreFromArchive(args[0])
	switch {
	case errors.Is(err, ledger.ErrPersist):
		env.log.Warn("restore kept in memory only", "err", err)
	case err != nil:
		return err
	}
	fmt.Printf("\n  %s: %s\n\n", env.l.T("trip.restored"), trip.DisplayName())
	return nil
}

func runArchiveDelete(_ *cobra.Command, args []string) error {
	env, err := openEnv(false)
	if err != nil {
		return err
	}
	defer env.Close()

	ids := make([]string, 0, len(args))
	for _, a := range args {
		t, err := env.ledger.ArchivedTrip(a)
		if err != nil {
			return err
		}
		ids = append(ids, t.ID)
	}
	if err := env.ledger.DeleteFromArchive(ids...); err != nil {
		if !errors.Is(err, ledger.ErrPersist) {
			return err
		}
		env.log.Warn("delete kept in memory only", "err", err)
	}
	fmt.Printf("\n  Deleted %d archived trip(s)\n\n", len(ids))
	return nil
}

func decimalSum(exps []model.ExpenseRecord) decimal.Decimal {
	total := decimal.Zero
	for _, e := range exps {
		total = total.Add(e.ConvertedAmount)
	}
	return total
}
