package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetStats is the accounting snapshot of a trip as seen on one day.
// All amounts are in the trip's budget currency.
type BudgetStats struct {
	Start time.Time // start of first trip day
	End   time.Time // start of last trip day
	Today time.Time // start of the reference day

	TotalBudget   decimal.Decimal
	TotalDays     int
	DailyBase     decimal.Decimal
	DaysFromStart int // negative before the trip, may exceed TotalDays after it
	CurrentDayNum int // 1..TotalDays, display only
	InRange       bool

	SpentToday                    decimal.Decimal
	SpentBeforeToday              decimal.Decimal
	PassedBudgetDays              int
	ShouldHaveSpentUntilYesterday decimal.Decimal
	SavedFromPreviousDays         decimal.Decimal // rollover carried into today, negative when overspent
	AvailableToday                decimal.Decimal
	RemainingToday                decimal.Decimal
	Progress                      float64 // 0.0-1.0

	TotalSpent     decimal.Decimal
	TotalRemaining decimal.Decimal

	History []DayHistory // chronological, day 1 through min(today, end)
}

// DayHistory is one materialized trip day.
type DayHistory struct {
	Date            time.Time
	DayNumber       int
	Spent           decimal.Decimal
	SpentByCurrency map[string]decimal.Decimal // raw source amounts, display only
	DailyLimit      decimal.Decimal
	Rollover        decimal.Decimal // incoming carry from the previous day
	Available       decimal.Decimal
	Remaining       decimal.Decimal
	Expenses        []ExpenseRecord
}

// Overspent reports whether the day ended below zero.
func (d DayHistory) Overspent() bool {
	return d.Remaining.IsNegative()
}
