package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateCacheEntry is the last successfully fetched exchange rate.
type RateCacheEntry struct {
	From      string          `json:"from"`
	To        string          `json:"to"`
	Rate      decimal.Decimal `json:"rate"`
	FetchedAt time.Time       `json:"fetchedAt"`
}

// Matches reports whether the entry is for exactly this currency pair.
func (e RateCacheEntry) Matches(from, to string) bool {
	return e.From == from && e.To == to
}

// Age returns how long ago the rate was fetched.
func (e RateCacheEntry) Age(now time.Time) time.Duration {
	return now.Sub(e.FetchedAt)
}
