package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/fxtrip/internal/cli"
	"github.com/theirongolddev/fxtrip/internal/ledger"
	"github.com/theirongolddev/fxtrip/internal/money"
)

var (
	flagExpCurrency  string
	flagExpTarget    string
	flagExpAmount    string
	flagExpNote      string
	flagExpClearNote bool
	flagExpDate      string
)

var expenseCmd = &cobra.Command{
	Use:     "expense",
	Aliases: []string{"e"},
	Short:   "Manage expenses of the active trip",
}

var expenseAddCmd = &cobra.Command{
	Use:   "add <amount>",
	Short: "Log an expense in any currency",
	Args:  cobra.ExactArgs(1),
	RunE:  runExpenseAdd,
}

var expenseListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List expenses of the active trip",
	RunE:    runExpenseList,
}

var expenseEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change an expense; amount or currency changes are repriced",
	Args:  cobra.ExactArgs(1),
	RunE:  runExpenseEdit,
}

var expenseDeleteCmd = &cobra.Command{
	Use:     "delete <id>...",
	Aliases: []string{"rm"},
	Short:   "Delete expenses by id or id prefix",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runExpenseDelete,
}

func init() {
	expenseAddCmd.Flags().StringVarP(&flagExpCurrency, "currency", "c", "", "Currency paid in (default: trip secondary currency)")
	expenseAddCmd.Flags().StringVar(&flagExpNote, "note", "", "Note")
	expenseAddCmd.Flags().StringVar(&flagExpDate, "date", "", "Date YYYY-MM-DD (default today)")

	expenseEditCmd.Flags().StringVar(&flagExpAmount, "amount", "", "New amount")
	expenseEditCmd.Flags().StringVarP(&flagExpCurrency, "currency", "c", "", "New currency paid in")
	expenseEditCmd.Flags().StringVar(&flagExpTarget, "target", "", "New target currency")
	expenseEditCmd.Flags().StringVar(&flagExpNote, "note", "", "New note")
	expenseEditCmd.Flags().BoolVar(&flagExpClearNote, "clear-note", false, "Remove the note")
	expenseEditCmd.Flags().StringVar(&flagExpDate, "date", "", "New date YYYY-MM-DD")

	expenseCmd.AddCommand(expenseAddCmd, expenseListCmd, expenseEditCmd, expenseDeleteCmd)
	rootCmd.AddCommand(expenseCmd)
}

func runExpenseAdd(_ *cobra.Command, args []string) error {
	amount, err := money.ParseInput(args[0])
	if err != nil {
		return fmt.Errorf("amount %q: %w", args[0], err)
	}

	env, err := openEnv(false)
	if err != nil {
		return err
	}
	defer env.Close()

	paidIn := env.ledger.Active().SecondaryCurrency
	if paidIn == "" {
		paidIn = env.cfg.Currency.From
	}
	from, err := currencyFlag(flagExpCurrency, paidIn)
	if err != nil {
		return err
	}
	return logConverted(env, amount, from, "", decimal.Zero, flagExpDate, flagExpNote)
}

func runExpenseList(_ *cobra.Command, _ []string) error {
	env, err := openEnv(false)
	if err != nil {
		return err
	}
	defer env.Close()

	trip := env.ledger.Active()
	exps := env.ledger.Expenses()
	if len(exps) == 0 {
		fmt.Println()
		fmt.Println("  " + env.l.T("expense.none"))
		fmt.Println()
		return nil
	}

	loc := env.ledger.Location()
	rows := make([][]string, 0, len(exps)+2)
	for i := len(exps) - 1; i >= 0; i-- {
		e := exps[i]
		rows = append(rows, []string{
			cli.ShortID(e.ID),
			e.Date.In(loc).Format("2006-01-02 15:04"),
			cli.Truncate(e.NoteText(), 28),
			money.FormatMoney(e.Amount, e.Currency),
			money.FormatMoney(e.ConvertedAmount, e.TargetCurrency),
		})
	}
	rows = append(rows, []string{"---"})
	stats := env.ledger.Stats(time.Now())
	rows = append(rows, []string{"", "", env.l.T("budget.total_spent"), "",
		money.FormatMoney(stats.TotalSpent, trip.BudgetCurrency)})

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   trip.DisplayName(),
		Headers: []string{"ID", "Date", env.l.T("expense.note"), "Paid", trip.BudgetCurrency},
		Rows:    rows,
	}))
	fmt.Println()
	return nil
}

func runExpenseEdit(cmd *cobra.Command, args []string) error {
	env, err := openEnv(false)
	if err != nil {
		return err
	}
	defer env.Close()

	rec, err := env.ledger.FindExpense(args[0])
	if err != nil {
		return err
	}

	var edit ledger.ExpenseEdit
	if cmd.Flags().Changed("amount") {
		a, err := money.ParseInput(flagExpAmount)
		if err != nil {
			return fmt.Errorf("amount %q: %w", flagExpAmount, err)
		}
		edit.Amount = &a
	}
	if cmd.Flags().Changed("currency") {
		c, err := currencyFlag(flagExpCurrency, "")
		if err != nil {
			return err
		}
		edit.Currency = &c
	}
	if cmd.Flags().Changed("target") {
		c, err := currencyFlag(flagExpTarget, "")
		if err != nil {
			return err
		}
		edit.TargetCurrency = &c
	}
	if cmd.Flags().Changed("date") {
		d, err := parseDay(flagExpDate, env.ledger.Location())
		if err != nil {
			return err
		}
		edit.Date = &d
	}
	if flagExpClearNote {
		edit.ClearNote = true
	} else if cmd.Flags().Changed("note") {
		n := strings.TrimSpace(flagExpNote)
		edit.Note = &n
	}

	ctx, cancel := rateContext()
	defer cancel()

	updated, err := env.ledger.EditExpense(ctx, rec.ID, edit, env.rates)
	switch {
	case errors.Is(err, ledger.ErrPersist):
		env.log.Warn("edit kept in memory only", "err", err)
	case err != nil:
		return err
	}

	fmt.Printf("\n  %s  %s → %s\n\n",
		cli.ShortID(updated.ID),
		money.FormatMoney(updated.Amount, updated.Currency),
		money.FormatMoney(updated.ConvertedAmount, updated.TargetCurrency))
	return nil
}

func runExpenseDelete(_ *cobra.Command, args []string) error {
	env, err := openEnv(false)
	if err != nil {
		return err
	}
	defer env.Close()

	ids := make([]string, 0, len(args))
	for _, a := range args {
		rec, err := env.ledger.FindExpense(a)
		if err != nil {
			return err
		}
		ids = append(ids, rec.ID)
	}

	if err := env.ledger.DeleteExpenses(ids...); err != nil {
		if !errors.Is(err, ledger.ErrPersist) {
			return err
		}
		env.log.Warn("delete kept in memory only", "err", err)
	}
	fmt.Printf("\n  Deleted %d expense(s)\n\n", len(ids))
	return nil
}
