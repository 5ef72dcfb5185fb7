package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/theirongolddev/fxtrip/internal/ledger"
	"github.com/theirongolddev/fxtrip/internal/model"
	"github.com/theirongolddev/fxtrip/internal/rates"
)

// QuoteSource prices the budget/secondary currency pair.
type QuoteSource interface {
	Quote(ctx context.Context, from, to string) (rates.Quote, error)
}

// LoaderConfig wires StoreLoader to the shared suite.
type LoaderConfig struct {
	Store    ledger.Store
	Rates    QuoteSource
	Location *time.Location
	Logger   *slog.Logger
}

// StoreLoader reloads the active trip from the shared store on every poll so
// changes made by other processes are picked up. Rate failures are logged and
// leave the rate at whatever the cache could provide.
func StoreLoader(cfg LoaderConfig) Loader {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return func(ctx context.Context, now time.Time) (Snapshot, error) {
		if cfg.Store == nil {
			return Snapshot{}, fmt.Errorf("daemon: no store configured")
		}
		l, err := ledger.New(cfg.Store, nil,
			ledger.WithLocation(cfg.Location),
			ledger.WithClock(func() time.Time { return now }),
			ledger.WithLogger(log),
		)
		if err != nil {
			return Snapshot{}, err
		}

		trip := l.Active()
		snap := BuildSnapshot(trip, l.Stats(now), now)

		if cfg.Rates != nil && trip.SecondaryCurrency != "" {
			q, err := cfg.Rates.Quote(ctx, trip.BudgetCurrency, trip.SecondaryCurrency)
			if err != nil {
				log.Warn("widget rate unavailable", "err", err)
			}
			snap.Rate = q.Rate
			snap.RateFetchedAt = q.FetchedAt
		}
		return snap, nil
	}
}

// BuildSnapshot flattens a trip and its stats into the widget payload.
func BuildSnapshot(trip model.TripRecord, stats model.BudgetStats, now time.Time) Snapshot {
	return Snapshot{
		At:                now,
		TripName:          trip.Name,
		BudgetSet:         trip.IsBudgetSet(),
		Currency:          trip.BudgetCurrency,
		SecondaryCurrency: trip.SecondaryCurrency,
		InRange:           stats.InRange,
		DaysFromStart:     stats.DaysFromStart,
		DayNumber:         stats.CurrentDayNum,
		TotalDays:         stats.TotalDays,
		DailyBase:         stats.DailyBase,
		AvailableToday:    stats.AvailableToday,
		SpentToday:        stats.SpentToday,
		RemainingToday:    stats.RemainingToday,
		Progress:          stats.Progress,
		TotalSpent:        stats.TotalSpent,
		TotalRemaining:    stats.TotalRemaining,
		ExpenseCount:      len(trip.Expenses),
	}
}
