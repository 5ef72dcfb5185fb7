// Package budget implements the trip accounting engine: flat daily allocation
// with rollover of unspent (or overspent) allowance into the following day.
package budget

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fxtrip/internal/model"
)

// Input is everything the engine needs. It never reads a clock or a store.
type Input struct {
	TotalBudget decimal.Decimal
	Start       time.Time
	End         time.Time
	Expenses    []model.ExpenseRecord
	// Location defines day boundaries. Nil means time.Local.
	Location *time.Location
}

// FromTrip builds engine input from a trip record.
func FromTrip(t model.TripRecord, loc *time.Location) Input {
	return Input{
		TotalBudget: t.TotalBudget,
		Start:       t.StartDate,
		End:         t.EndDate,
		Expenses:    t.Expenses,
		Location:    loc,
	}
}

// Compute derives the budget snapshot of in as seen at now.
// It is a pure function: identical arguments yield identical results.
func Compute(in Input, now time.Time) model.BudgetStats {
	loc := in.Location
	if loc == nil {
		loc = time.Local
	}

	start := StartOfDay(in.Start, loc)
	end := StartOfDay(in.End, loc)
	today := StartOfDay(now, loc)

	startIdx := dayIndex(start)
	endIdx := dayIndex(end)
	todayIdx := dayIndex(today)

	// An inverted range degrades to a one-day trip on the start date.
	if endIdx < startIdx {
		end = start
		endIdx = startIdx
	}

	totalDays := int(endIdx-startIdx) + 1
	if totalDays < 1 {
		totalDays = 1
	}
	dailyBase := in.TotalBudget.Div(decimal.NewFromInt(int64(totalDays)))

	daysFromStart := int(todayIdx - startIdx)
	inRange := todayIdx >= startIdx && todayIdx <= endIdx

	stats := model.BudgetStats{
		Start:            start,
		End:              end,
		Today:            today,
		TotalBudget:      in.TotalBudget,
		TotalDays:        totalDays,
		DailyBase:        dailyBase,
		DaysFromStart:    daysFromStart,
		CurrentDayNum:    clamp(daysFromStart+1, 1, totalDays),
		InRange:          inRange,
		SpentToday:       decimal.Zero,
		SpentBeforeToday: decimal.Zero,
		TotalSpent:       decimal.Zero,
	}

	// Bucket trip expenses by day. todayRaw also counts expenses dated today
	// outside the trip range; it only feeds the progress indicator.
	byDay := make(map[int64][]model.ExpenseRecord)
	todayRaw := decimal.Zero
	for _, e := range in.Expenses {
		idx := dayIndex(StartOfDay(e.Date, loc))
		if idx == todayIdx {
			todayRaw = todayRaw.Add(e.ConvertedAmount)
		}
		if idx < startIdx || idx > endIdx {
			continue
		}
		byDay[idx] = append(byDay[idx], e)
		stats.TotalSpent = stats.TotalSpent.Add(e.ConvertedAmount)
		if idx < todayIdx {
			stats.SpentBeforeToday = stats.SpentBeforeToday.Add(e.ConvertedAmount)
		}
		if idx == todayIdx {
			stats.SpentToday = stats.SpentToday.Add(e.ConvertedAmount)
		}
	}

	stats.History = history(start, startIdx, min(todayIdx, endIdx), dailyBase, byDay)

	stats.PassedBudgetDays = clamp(daysFromStart, 0, totalDays)
	stats.ShouldHaveSpentUntilYesterday = dailyBase.Mul(decimal.NewFromInt(int64(stats.PassedBudgetDays)))
	stats.SavedFromPreviousDays = stats.ShouldHaveSpentUntilYesterday.Sub(stats.SpentBeforeToday)

	stats.AvailableToday = decimal.Zero
	if inRange {
		stats.AvailableToday = dailyBase.Add(stats.SavedFromPreviousDays)
	}
	stats.RemainingToday = stats.AvailableToday.Sub(stats.SpentToday)
	stats.Progress = progress(stats.SpentToday, todayRaw, stats.AvailableToday)

	stats.TotalRemaining = in.TotalBudget.Sub(stats.TotalSpent)
	return stats
}

// history runs the forward rollover pass over days [startIdx, lastIdx].
func history(start time.Time, startIdx, lastIdx int64, dailyBase decimal.Decimal, byDay map[int64][]model.ExpenseRecord) []model.DayHistory {
	if lastIdx < startIdx {
		return nil
	}

	days := make([]model.DayHistory, 0, lastIdx-startIdx+1)
	rollover := decimal.Zero
	for idx := startIdx; idx <= lastIdx; idx++ {
		n := int(idx - startIdx)
		exps := byDay[idx]

		spent := decimal.Zero
		byCurrency := make(map[string]decimal.Decimal)
		for _, e := range exps {
			spent = spent.Add(e.ConvertedAmount)
			byCurrency[e.Currency] = byCurrency[e.Currency].Add(e.Amount)
		}

		available := dailyBase.Add(rollover)
		dayExps := append([]model.ExpenseRecord(nil), exps...)
		model.SortExpenses(dayExps)

		days = append(days, model.DayHistory{
			Date:            start.AddDate(0, 0, n),
			DayNumber:       n + 1,
			Spent:           spent,
			SpentByCurrency: byCurrency,
			DailyLimit:      dailyBase,
			Rollover:        rollover,
			Available:       available,
			Remaining:       available.Sub(spent),
			Expenses:        dayExps,
		})

		rollover = available.Sub(spent)
	}
	return days
}

func progress(spentToday, todayRaw, available decimal.Decimal) float64 {
	var p float64
	switch {
	case available.IsPositive():
		p = spentToday.Div(available).InexactFloat64()
	case todayRaw.IsPositive():
		p = 1
	default:
		p = 0
	}
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Replay returns the rollover carried into stats.Today by walking the
// history forward. It must equal stats.SavedFromPreviousDays.
func Replay(stats model.BudgetStats) decimal.Decimal {
	carry := decimal.Zero
	for _, d := range stats.History {
		if !d.Date.Before(stats.Today) {
			break
		}
		carry = carry.Add(d.DailyLimit).Sub(d.Spent)
	}
	return carry
}

// CurrencyTotals sums raw source amounts per currency over all history days,
// largest first. Ties sort by currency code.
func CurrencyTotals(stats model.BudgetStats) []CurrencyTotal {
	sums := make(map[string]decimal.Decimal)
	for _, d := range stats.History {
		for code, amt := range d.SpentByCurrency {
			sums[code] = sums[code].Add(amt)
		}
	}
	out := make([]CurrencyTotal, 0, len(sums))
	for code, amt := range sums {
		out = append(out, CurrencyTotal{Currency: code, Amount: amt})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Currency < out[j].Currency
	})
	return out
}

// CurrencyTotal is a raw spend total in one source currency.
type CurrencyTotal struct {
	Currency string
	Amount   decimal.Decimal
}

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DaysBetween counts calendar days from a to b (negative when b is earlier).
// DST transitions do not shift the count.
func DaysBetween(a, b time.Time) int {
	return int(dayIndex(b) - dayIndex(a))
}

// dayIndex maps a calendar date to a day number independent of zone offsets.
func dayIndex(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
