// Package model defines domain types for fxtrip trips, expenses and budget stats.
package model

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseRecord is one logged spend, kept in both its source and trip currency.
type ExpenseRecord struct {
	ID       string          `json:"id"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	// ConvertedAmount caches Amount in TargetCurrency. Only Reprice writes it.
	ConvertedAmount decimal.Decimal `json:"convertedAmount"`
	TargetCurrency  string          `json:"targetCurrency"`
	Date            time.Time       `json:"date"`
	Note            *string         `json:"note,omitempty"`
}

// Reprice recomputes ConvertedAmount from Amount at the given rate.
func (e *ExpenseRecord) Reprice(rate decimal.Decimal) {
	e.ConvertedAmount = e.Amount.Mul(rate)
}

// NoteText returns the note or "" when none was recorded.
func (e ExpenseRecord) NoteText() string {
	if e.Note == nil {
		return ""
	}
	return *e.Note
}

// NeedsReprice reports whether changing from prev to e invalidates the cached conversion.
func (e ExpenseRecord) NeedsReprice(prev ExpenseRecord) bool {
	return !e.Amount.Equal(prev.Amount) ||
		e.Currency != prev.Currency ||
		e.TargetCurrency != prev.TargetCurrency
}

// SortExpenses orders expenses newest first. Equal dates keep insertion order.
func SortExpenses(exps []ExpenseRecord) {
	sort.SliceStable(exps, func(i, j int) bool {
		return exps[i].Date.After(exps[j].Date)
	})
}

// CloneExpenses returns a copy that shares no note pointers with exps.
func CloneExpenses(exps []ExpenseRecord) []ExpenseRecord {
	if exps == nil {
		return nil
	}
	out := make([]ExpenseRecord, len(exps))
	for i, e := range exps {
		if e.Note != nil {
			n := *e.Note
			e.Note = &n
		}
		out[i] = e
	}
	return out
}
