package money

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in     string
		digits int32
		want   string
	}{
		{"0", 2, "0.00"},
		{"12.5", 2, "12.50"},
		{"999.999", 2, "1,000.00"},
		{"1234567.891", 2, "1,234,567.89"},
		{"-1234.5", 2, "-1,234.50"},
		{"-0.001", 2, "0.00"},
		{"500", 0, "500"},
		{"123456", 0, "123,456"},
	}

	for _, tt := range tests {
		if got := FormatAmount(dec(tt.in), tt.digits); got != tt.want {
			t.Errorf("FormatAmount(%s, %d) = %q, want %q", tt.in, tt.digits, got, tt.want)
		}
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in, code, want string
	}{
		{"1234.5", "EUR", "€1,234.50"},
		{"-12", "usd", "-$12.00"},
		{"500.4", "JPY", "¥500"},
		{"10", "XYZ", "XYZ 10.00"},
	}

	for _, tt := range tests {
		if got := FormatMoney(dec(tt.in), tt.code); got != tt.want {
			t.Errorf("FormatMoney(%s, %s) = %q, want %q", tt.in, tt.code, got, tt.want)
		}
	}
}

func TestFormatRate(t *testing.T) {
	got := FormatRate(dec("0.913245"), "usd", "eur")
	if got != "1 USD = 0.9132 EUR" {
		t.Fatalf("FormatRate = %q", got)
	}
}

func TestParseInput(t *testing.T) {
	tests := []struct {
		in   string
		want string
		err  error
	}{
		{"12.50", "12.5", nil},
		{"12,50", "12.5", nil},
		{"1,234.50", "1234.5", nil},
		{"1.234,50", "1234.5", nil},
		{"1 234,5", "1234.5", nil},
		{".5", "0.5", nil},
		{"7.", "7", nil},
		{"", "0", ErrEmptyInput},
		{"   ", "0", ErrEmptyInput},
		{"-5", "0", ErrInvalidInput},
		{"1e3", "0", ErrInvalidInput},
		{"abc", "0", ErrInvalidInput},
		{"1.2.3", "0", ErrInvalidInput},
		{".", "0", ErrInvalidInput},
	}

	for _, tt := range tests {
		got, err := ParseInput(tt.in)
		if !errors.Is(err, tt.err) {
			t.Errorf("ParseInput(%q) err = %v, want %v", tt.in, err, tt.err)
			continue
		}
		if !got.Equal(dec(tt.want)) {
			t.Errorf("ParseInput(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestKeypad_Sequence(t *testing.T) {
	k := NewKeypad(2)
	for _, key := range []string{"0", "0", "1", "2", ".", "3", "4", "5"} {
		k.Press(key)
	}
	if got := k.Text(); got != "12.34" {
		t.Fatalf("Text = %q, want 12.34", got)
	}
	if !k.Value().Equal(dec("12.34")) {
		t.Fatalf("Value = %s", k.Value())
	}

	k.Press("<")
	k.Press("<")
	k.Press("<")
	if got := k.Text(); got != "12" {
		t.Fatalf("after backspace Text = %q, want 12", got)
	}

	k.Press("C")
	if got := k.Text(); got != "0" || !k.IsZero() {
		t.Fatalf("after clear Text = %q, IsZero = %v", got, k.IsZero())
	}
}

func TestKeypad_LeadingDecimal(t *testing.T) {
	k := NewKeypad(2)
	k.Press(",")
	k.Press("5")
	if got := k.Text(); got != "0.5" {
		t.Fatalf("Text = %q, want 0.5", got)
	}
	if k.Press(".") {
		t.Fatal("second decimal point accepted")
	}
	k.Press("<")
	k.Press("<")
	if got := k.Text(); got != "0" {
		t.Fatalf("Text = %q, want 0 after removing fraction", got)
	}
}

func TestKeypad_ZeroDigitCurrency(t *testing.T) {
	k := NewKeypad(0)
	if k.Press(".") {
		t.Fatal("decimal accepted for zero-digit currency")
	}
	k.Press("9")
	k.Press("9")
	if got := k.Text(); got != "99" {
		t.Fatalf("Text = %q, want 99", got)
	}
}

func TestKeypad_IntegerLimit(t *testing.T) {
	k := NewKeypad(2)
	for i := 0; i < MaxIntegerDigits+3; i++ {
		k.Press("9")
	}
	if got := len(k.Text()); got != MaxIntegerDigits {
		t.Fatalf("len(Text) = %d, want %d", got, MaxIntegerDigits)
	}
}

func TestKeypad_SetFractionDigitsTruncates(t *testing.T) {
	k := NewKeypad(2)
	k.SetValue(dec("12.345"))
	if got := k.Text(); got != "12.34" {
		t.Fatalf("Text = %q, want 12.34", got)
	}
	k.SetFractionDigits(0)
	if got := k.Text(); got != "12" {
		t.Fatalf("Text = %q, want 12", got)
	}
}

func TestValidCode(t *testing.T) {
	for _, code := range []string{"USD", "eur", " jpy "} {
		if !ValidCode(code) {
			t.Errorf("ValidCode(%q) = false", code)
		}
	}
	for _, code := range []string{"", "US", "USDT", "U5D"} {
		if ValidCode(code) {
			t.Errorf("ValidCode(%q) = true", code)
		}
	}
}

func TestSuggest(t *testing.T) {
	tests := map[string]string{
		"EURO":   "EUR",
		"us":     "USD",
		"U5D":    "USD",
		"QQQQQQ": "",
		"":       "",
	}
	for in, want := range tests {
		if got := Suggest(in); got != want {
			t.Errorf("Suggest(%q) = %q, want %q", in, got, want)
		}
	}
}
