package cmd

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/fxtrip/internal/cli"
	"github.com/theirongolddev/fxtrip/internal/money"
)

var flagRateWidget bool

var rateCmd = &cobra.Command{
	Use:   "rate [from] [to]",
	Short: "Look up the exchange rate for a currency pair",
	Long: "Look up the exchange rate for a currency pair. Without arguments the trip pair is used.\n" +
		"With --widget a cached rate is served while it is still fresh, as the widget does.",
	Args: cobra.MaximumNArgs(2),
	RunE: runRate,
}

func init() {
	rateCmd.Flags().BoolVar(&flagRateWidget, "widget", false, "Use the widget cache policy")
	rootCmd.AddCommand(rateCmd)
}

func runRate(_ *cobra.Command, args []string) error {
	env, err := openEnv(flagRateWidget)
	if err != nil {
		return err
	}
	defer env.Close()

	from, to := defaultPair(env)
	if len(args) > 0 {
		if from, err = currencyFlag(args[0], ""); err != nil {
			return err
		}
	}
	if len(args) > 1 {
		if to, err = currencyFlag(args[1], ""); err != nil {
			return err
		}
	}

	ctx, cancel := rateContext()
	defer cancel()

	q, err := env.rates.Quote(ctx, from, to)
	fmt.Println()
	if !q.Rate.IsPositive() {
		fmt.Printf("  %s/%s: %s\n", from, to, env.l.T("convert.rate_unavailable"))
		if err != nil {
			fmt.Printf("  %v\n", err)
		}
		fmt.Println()
		return nil
	}
	if err != nil {
		env.log.Warn("serving cached rate", "from", from, "to", to, "err", err)
	}

	fmt.Println("  " + money.FormatRate(q.Rate, from, to))
	fmt.Println("  " + money.FormatRate(decimal.NewFromInt(1).DivRound(q.Rate, 8), to, from))

	source := "live"
	if q.Cached {
		source = "cached"
	}
	if !q.FetchedAt.IsZero() {
		fmt.Printf("  %s, %s\n", source, env.l.T("convert.updated", cli.FormatAge(q.FetchedAt, time.Now())))
	}
	fmt.Println()
	return nil
}
