package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// UntitledTrip is shown for trips saved without a name.
const UntitledTrip = "Untitled trip"

// TripRecord is a budget envelope over an inclusive date range.
// The active trip has an empty ID; archived snapshots carry one.
type TripRecord struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	TotalBudget       decimal.Decimal `json:"totalBudget"`
	BudgetCurrency    string          `json:"budgetCurrency"`
	SecondaryCurrency string          `json:"secondaryCurrency"`
	StartDate         time.Time       `json:"startDate"`
	EndDate           time.Time       `json:"endDate"`
	Expenses          []ExpenseRecord `json:"expenses"`
}

// IsBudgetSet reports whether a positive budget has been configured.
func (t TripRecord) IsBudgetSet() bool {
	return t.TotalBudget.IsPositive()
}

// DisplayName returns the trip name or the untitled fallback.
func (t TripRecord) DisplayName() string {
	if t.Name == "" {
		return UntitledTrip
	}
	return t.Name
}

// Clone returns a deep copy of the trip.
func (t TripRecord) Clone() TripRecord {
	t.Expenses = CloneExpenses(t.Expenses)
	return t
}

// TripSettings are the user-editable configuration fields of the active trip.
type TripSettings struct {
	Name              string
	TotalBudget       decimal.Decimal
	BudgetCurrency    string
	SecondaryCurrency string
	StartDate         time.Time
	EndDate           time.Time
}
