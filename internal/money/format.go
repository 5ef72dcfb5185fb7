package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatAmount rounds d to digits places and inserts thousands separators.
// e.g., 1234567.891 with 2 digits -> "1,234,567.89"
func FormatAmount(d decimal.Decimal, digits int32) string {
	if digits < 0 {
		digits = 0
	}
	s := d.StringFixed(digits)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	intPart, fracPart, hasFrac := strings.Cut(s, ".")
	grouped := groupThousands(intPart)
	if hasFrac {
		grouped += "." + fracPart
	}

	// "-0.00" reads badly on a budget card.
	if neg && strings.Trim(grouped, "0.,") != "" {
		return "-" + grouped
	}
	return grouped
}

// FormatMoney formats d with the currency symbol and minor digits of code.
// e.g., 1234.5 EUR -> "€1,234.50", -12 USD -> "-$12.00", 500 JPY -> "¥500"
func FormatMoney(d decimal.Decimal, code string) string {
	c := Lookup(code)
	s := FormatAmount(d, c.Digits)
	if strings.HasPrefix(s, "-") {
		return "-" + c.Symbol + s[1:]
	}
	return c.Symbol + s
}

// FormatCode formats d followed by the currency code.
// e.g., 1234.5 EUR -> "1,234.50 EUR"
func FormatCode(d decimal.Decimal, code string) string {
	c := Lookup(code)
	return FormatAmount(d, c.Digits) + " " + c.Code
}

// FormatRate renders a conversion rate line such as "1 USD = 0.9132 EUR".
func FormatRate(rate decimal.Decimal, from, to string) string {
	return "1 " + NormalizeCode(from) + " = " + rate.StringFixed(4) + " " + NormalizeCode(to)
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
