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
	flagConvFrom string
	flagConvTo   string
	flagConvLog  bool
	flagConvNote string
	flagConvDate string
)

var convertCmd = &cobra.Command{
	Use:     "convert <amount>",
	Aliases: []string{"c"},
	Short:   "Convert an amount and optionally log it as an expense",
	Args:    cobra.ExactArgs(1),
	RunE:    runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&flagConvFrom, "from", "f", "", "Source currency (default: trip secondary currency)")
	convertCmd.Flags().StringVarP(&flagConvTo, "to", "t", "", "Target currency (default: trip budget currency)")
	convertCmd.Flags().BoolVar(&flagConvLog, "log", false, "Log the amount as a trip expense")
	convertCmd.Flags().StringVar(&flagConvNote, "note", "", "Expense note (with --log)")
	convertCmd.Flags().StringVar(&flagConvDate, "date", "", "Expense date YYYY-MM-DD (with --log, default today)")
	rootCmd.AddCommand(convertCmd)
}

// defaultPair converts into the trip currency once a budget exists.
func defaultPair(env *appEnv) (string, string) {
	trip := env.ledger.Active()
	if trip.IsBudgetSet() && trip.SecondaryCurrency != "" {
		return trip.SecondaryCurrency, trip.BudgetCurrency
	}
	return env.cfg.Currency.From, env.cfg.Currency.To
}

func currencyFlag(v, fallback string) (string, error) {
	if v == "" {
		return fallback, nil
	}
	code := money.NormalizeCode(v)
	if !money.ValidCode(code) {
		if hint := money.Suggest(code); hint != "" {
			return "", fmt.Errorf("invalid currency code %q (did you mean %s?)", v, hint)
		}
		return "", fmt.Errorf("invalid currency code %q", v)
	}
	return code, nil
}

func runConvert(_ *cobra.Command, args []string) error {
	amount, err := money.ParseInput(args[0])
	if err != nil {
		return fmt.Errorf("amount %q: %w", args[0], err)
	}

	env, err := openEnv(false)
	if err != nil {
		return err
	}
	defer env.Close()

	defFrom, defTo := defaultPair(env)
	from, err := currencyFlag(flagConvFrom, defFrom)
	if err != nil {
		return err
	}
	to, err := currencyFlag(flagConvTo, defTo)
	if err != nil {
		return err
	}

	ctx, cancel := rateContext()
	defer cancel()

	q, err := env.rates.Quote(ctx, from, to)
	if !q.Rate.IsPositive() {
		if err == nil {
			err = errors.New("no rate")
		}
		return fmt.Errorf("%s: %w", env.l.T("convert.rate_unavailable"), err)
	}
	if err != nil {
		env.log.Warn("using cached rate", "from", from, "to", to, "err", err)
	}

	converted := amount.Mul(q.Rate)
	fmt.Println()
	fmt.Printf("  %s  =  %s\n",
		money.FormatMoney(amount, from),
		money.FormatMoney(converted, to))
	line := money.FormatRate(q.Rate, from, to)
	if q.Cached {
		line += "  (" + env.l.T("convert.updated", cli.FormatAge(q.FetchedAt, time.Now())) + ")"
	}
	fmt.Println("  " + line)
	fmt.Println()

	if !flagConvLog {
		return nil
	}
	return logConverted(env, amount, from, to, q.Rate, flagConvDate, flagConvNote)
}

// logConverted records amount against the trip currency. The rate already
// quoted is reused when the target matches.
func logConverted(env *appEnv, amount decimal.Decimal, from, quotedTo string, quoted decimal.Decimal, day, noteText string) error {
	target := env.ledger.Active().BudgetCurrency
	rate := quoted
	if target != quotedTo {
		ctx, cancel := rateContext()
		defer cancel()
		r, err := env.rates.Rate(ctx, from, target)
		if !r.IsPositive() {
			if err == nil {
				err = errors.New("no rate")
			}
			return fmt.Errorf("%w: %w", ledger.ErrRateUnavailable, err)
		}
		rate = r
	}

	date := time.Now()
	if day != "" {
		d, err := parseDay(day, env.ledger.Location())
		if err != nil {
			return err
		}
		date = d
	}

	var note *string
	if n := strings.TrimSpace(noteText); n != "" {
		note = &n
	}

	rec, err := env.ledger.AddExpense(ledger.NewExpense(amount, from, target, rate, date, note))
	switch {
	case errors.Is(err, ledger.ErrPersist):
		env.log.Warn("expense kept in memory only", "err", err)
	case err != nil:
		return err
	}
	fmt.Printf("  %s: %s  [%s]\n\n",
		env.l.T("convert.logged"),
		money.FormatMoney(rec.ConvertedAmount, rec.TargetCurrency),
		cli.ShortID(rec.ID))
	return nil
}
