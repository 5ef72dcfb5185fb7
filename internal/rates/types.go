package rates

import (
	"time"

	"github.com/shopspring/decimal"
)

// LatestResponse is the body of GET /latest.
type LatestResponse struct {
	Amount decimal.Decimal            `json:"amount"`
	Base   string                     `json:"base"`
	Date   string                     `json:"date"`
	Rates  map[string]decimal.Decimal `json:"rates"`
}

// errorResponse is returned by the rate API on 4xx.
type errorResponse struct {
	Message string `json:"message"`
}

// Quote is a resolved rate for one currency pair.
type Quote struct {
	From      string
	To        string
	Rate      decimal.Decimal
	FetchedAt time.Time
	// Cached is set when the rate came from the cache instead of the network.
	Cached bool
}
