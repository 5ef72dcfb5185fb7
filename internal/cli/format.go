// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fxtrip/internal/money"
)

// FormatSigned formats an amount with an explicit sign.
// e.g., 12 EUR -> "+€12.00", -3.5 USD -> "-$3.50"
func FormatSigned(d decimal.Decimal, code string) string {
	s := money.FormatMoney(d, code)
	if d.IsPositive() && s != money.FormatMoney(decimal.Zero, code) {
		return "+" + s
	}
	return s
}

// FormatDate formats a trip day.
// e.g., "Mon 06 Jul"
func FormatDate(t time.Time) string {
	return t.Format("Mon 02 Jan")
}

// FormatRange formats an inclusive date range.
// e.g., "2026-07-06 → 2026-07-12"
func FormatRange(start, end time.Time) string {
	return start.Format("2006-01-02") + " → " + end.Format("2006-01-02")
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.0f%%", f*100)
}

// FormatAge formats how long ago t was.
// e.g., 45s -> "just now", 5m -> "5m ago", 3h -> "3h ago", 2d -> "2d ago"
func FormatAge(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// ShortID returns the first 8 characters of an id for table display.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// Truncate shortens s to n runes with an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
