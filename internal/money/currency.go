// Package money provides currency metadata, decimal amount formatting and
// keypad input parsing.
package money

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Currency describes how amounts in one ISO 4217 currency are displayed.
type Currency struct {
	Code   string
	Symbol string
	Name   string
	Digits int32 // minor unit digits shown and accepted on the keypad
}

var currencies = map[string]Currency{
	"AUD": {Code: "AUD", Symbol: "A$", Name: "Australian Dollar", Digits: 2},
	"BRL": {Code: "BRL", Symbol: "R$", Name: "Brazilian Real", Digits: 2},
	"CAD": {Code: "CAD", Symbol: "CA$", Name: "Canadian Dollar", Digits: 2},
	"CHF": {Code: "CHF", Symbol: "CHF ", Name: "Swiss Franc", Digits: 2},
	"CNY": {Code: "CNY", Symbol: "CN¥", Name: "Chinese Yuan", Digits: 2},
	"CZK": {Code: "CZK", Symbol: "Kč ", Name: "Czech Koruna", Digits: 2},
	"DKK": {Code: "DKK", Symbol: "kr ", Name: "Danish Krone", Digits: 2},
	"EUR": {Code: "EUR", Symbol: "€", Name: "Euro", Digits: 2},
	"GBP": {Code: "GBP", Symbol: "£", Name: "British Pound", Digits: 2},
	"HKD": {Code: "HKD", Symbol: "HK$", Name: "Hong Kong Dollar", Digits: 2},
	"HUF": {Code: "HUF", Symbol: "Ft ", Name: "Hungarian Forint", Digits: 2},
	"IDR": {Code: "IDR", Symbol: "Rp ", Name: "Indonesian Rupiah", Digits: 2},
	"INR": {Code: "INR", Symbol: "₹", Name: "Indian Rupee", Digits: 2},
	"ISK": {Code: "ISK", Symbol: "kr ", Name: "Icelandic Króna", Digits: 0},
	"JPY": {Code: "JPY", Symbol: "¥", Name: "Japanese Yen", Digits: 0},
	"KRW": {Code: "KRW", Symbol: "₩", Name: "South Korean Won", Digits: 0},
	"MXN": {Code: "MXN", Symbol: "MX$", Name: "Mexican Peso", Digits: 2},
	"NOK": {Code: "NOK", Symbol: "kr ", Name: "Norwegian Krone", Digits: 2},
	"NZD": {Code: "NZD", Symbol: "NZ$", Name: "New Zealand Dollar", Digits: 2},
	"PLN": {Code: "PLN", Symbol: "zł ", Name: "Polish Złoty", Digits: 2},
	"SEK": {Code: "SEK", Symbol: "kr ", Name: "Swedish Krona", Digits: 2},
	"SGD": {Code: "SGD", Symbol: "S$", Name: "Singapore Dollar", Digits: 2},
	"THB": {Code: "THB", Symbol: "฿", Name: "Thai Baht", Digits: 2},
	"TRY": {Code: "TRY", Symbol: "₺", Name: "Turkish Lira", Digits: 2},
	"USD": {Code: "USD", Symbol: "$", Name: "US Dollar", Digits: 2},
	"ZAR": {Code: "ZAR", Symbol: "R ", Name: "South African Rand", Digits: 2},
}

// Lookup returns display metadata for code. Unknown but well-formed codes get
// a generic entry with two minor digits and the code as symbol.
func Lookup(code string) Currency {
	code = NormalizeCode(code)
	if c, ok := currencies[code]; ok {
		return c
	}
	return Currency{Code: code, Symbol: code + " ", Name: code, Digits: 2}
}

// Known reports whether code is in the built-in currency table.
func Known(code string) bool {
	_, ok := currencies[NormalizeCode(code)]
	return ok
}

// Codes returns the built-in currency codes in alphabetical order.
func Codes() []string {
	codes := make([]string, 0, len(currencies))
	for code := range currencies {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// NormalizeCode upper-cases and trims a currency code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidCode reports whether code looks like an ISO 4217 code (three letters).
func ValidCode(code string) bool {
	code = NormalizeCode(code)
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// Suggest returns the built-in code closest to input, or "" when nothing is
// within two edits.
func Suggest(input string) string {
	input = NormalizeCode(input)
	if input == "" {
		return ""
	}
	best, bestDist := "", 3
	for _, code := range Codes() {
		if d := levenshtein.ComputeDistance(input, code); d < bestDist {
			best, bestDist = code, d
		}
	}
	return best
}
