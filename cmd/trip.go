package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fxtrip/internal/cli"
	"github.com/theirongolddev/fxtrip/internal/ledger"
	"github.com/theirongolddev/fxtrip/internal/money"
	"github.com/theirongolddev/fxtrip/internal/tui"
)

var (
	flagTripName      string
	flagTripBudget    string
	flagTripCurrency  string
	flagTripSecondary string
	flagTripStart     string
	flagTripEnd       string
)

var tripCmd = &cobra.Command{
	Use:   "trip",
	Short: "Show or configure the active trip",
	RunE:  runTripShow,
}

var tripShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active trip",
	RunE:  runTripShow,
}

var tripSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change the active trip's name, budget, currencies or dates",
	RunE:  runTripSet,
}

var tripFinishCmd = &cobra.Command{
	Use:   "finish",
	Short: "Archive the active trip and start a fresh one",
	RunE:  runTripFinish,
}

func init() {
	f := tripSetCmd.Flags()
	f.StringVar(&flagTripName, "name", "", "Trip name")
	f.StringVar(&flagTripBudget, "budget", "", "Total budget (0 clears it)")
	f.StringVar(&flagTripCurrency, "currency", "", "Budget currency")
	f.StringVar(&flagTripSecondary, "secondary", "", "Secondary (local) currency")
	f.StringVar(&flagTripStart, "start", "", "First day YYYY-MM-DD")
	f.StringVar(&flagTripEnd, "end", "", "Last day YYYY-MM-DD")

	tripCmd.AddCommand(tripShowCmd, tripSetCmd, tripFinishCmd)
	rootCmd.AddCommand(tripCmd)
}

func runTripShow(_ *cobra.Command, _ []string) error {
	env, err := openEnv(false)
	if err != nil {
		return err
	}
	defer env.Close()

	trip := env.ledger.Active()
	l := env.l
	cur := trip.BudgetCurrency

	budget := l.T("budget.not_set")
	if trip.IsBudgetSet() {
		budget = money.FormatMoney(trip.TotalBudget, cur)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(trip.DisplayName()))
	fmt.Println()
	fmt.Print(cli.RenderKV([]cli.KV{
		{Label: l.T("trip.budget"), Value: budget},
		{Label: l.T("trip.currency"), Value: cur},
		{Label: l.T("trip.secondary"), Value: trip.SecondaryCurrency},
		{Label: l.T("trip.start"), Value: trip.StartDate.Format(dateLayout)},
		{Label: l.T("trip.end"), Value: trip.EndDate.Format(dateLayout)},
		{Label: "Expenses", Value: fmt.Sprintf("%d", len(trip.Expenses))},
	}))
	fmt.Println()
	return nil
}

func runTripSet(cmd *cobra.Command, _ []string) error {
	env, err := openEnv(false)
	if err != nil {
		return err
	}
	defer env.Close()

	vals := tui.TripValuesFrom(env.ledger.Settings())
	flags := cmd.Flags()
	if flags.Changed("name") {
		vals.Name = flagTripName
	}
	if flags.Changed("budget") {
		vals.Budget = flagTripBudget
	}
	if flags.Changed("currency") {
		if vals.Currency, err = currencyFlag(flagTripCurrency, ""); err != nil {
			return err
		}
	}
	if flags.Changed("secondary") {
		if vals.Secondary, err = currencyFlag(flagTripSecondary, ""); err != nil {
			return err
		}
	}
	if flags.Changed("start") {
		vals.Start = flagTripStart
	}
	if flags.Changed("end") {
		vals.End = flagTripEnd
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
	return runBudgetFor(env, time.Now(), false)
}

func runTripFinish(_ *cobra.Command, _ []string) error {
	env, err := openEnv(false)
	if err != nil {
		return err
	}
	defer env.Close()

	snap, ok, err := env.ledger.FinishActive()
	if !ok {
		fmt.Println()
		fmt.Println("  " + env.l.T("budget.not_set"))
		fmt.Println()
		return nil
	}
	if err != nil {
		env.log.Warn("archive kept in memory only", "err", err)
	}
	fmt.Printf("\n  %s: %s  [%s]\n\n", env.l.T("trip.finished"), snap.DisplayName(), cli.ShortID(snap.ID))
	return nil
}
