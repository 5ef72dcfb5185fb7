package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxIntegerDigits caps the integer part typed on the keypad.
const MaxIntegerDigits = 12

var (
	// ErrEmptyInput indicates no amount was entered.
	ErrEmptyInput = errors.New("money: empty amount")
	// ErrInvalidInput indicates the text is not a plain non-negative decimal number.
	ErrInvalidInput = errors.New("money: invalid amount")
)

// ParseInput converts user-typed text into a decimal amount.
// Accepts "12.50", "12,50", "1,234.50" and "1 234,5"; rejects signs and exponents.
func ParseInput(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer(" ", "", " ", "", "'", "", "_", "").Replace(s)
	if s == "" {
		return decimal.Zero, ErrEmptyInput
	}

	dots := strings.Count(s, ".")
	commas := strings.Count(s, ",")
	switch {
	case dots > 0 && commas > 0:
		// Whichever separator comes last is the decimal mark.
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case commas == 1:
		s = strings.Replace(s, ",", ".", 1)
	case commas > 1:
		s = strings.ReplaceAll(s, ",", "")
	}

	if strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrInvalidInput
	}
	digits := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
		default:
			return decimal.Zero, ErrInvalidInput
		}
	}
	if digits == 0 {
		return decimal.Zero, ErrInvalidInput
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}

	d, err := decimal.NewFromString(strings.TrimSuffix(s, "."))
	if err != nil {
		return decimal.Zero, ErrInvalidInput
	}
	return d, nil
}

// Keypad is the calculator input buffer behind the converter screen.
// It only ever holds a well-formed, non-negative decimal string.
type Keypad struct {
	text          string
	fractionLimit int32
}

// NewKeypad returns an empty keypad accepting up to fractionDigits decimals.
// A zero-digit currency (JPY) disables the decimal key.
func NewKeypad(fractionDigits int32) *Keypad {
	if fractionDigits < 0 {
		fractionDigits = 0
	}
	return &Keypad{fractionLimit: fractionDigits}
}

// SetFractionDigits changes the decimal limit, truncating extra typed digits.
func (k *Keypad) SetFractionDigits(n int32) {
	if n < 0 {
		n = 0
	}
	k.fractionLimit = n
	intPart, frac, ok := strings.Cut(k.text, ".")
	if !ok {
		return
	}
	if n == 0 {
		k.text = intPart
		return
	}
	if int32(len(frac)) > n {
		k.text = intPart + "." + frac[:n]
	}
}

// Press applies one key: "0"-"9", "." or ",", "backspace"/"<", "clear"/"C".
// Reports whether the buffer changed.
func (k *Keypad) Press(key string) bool {
	switch key {
	case ".", ",":
		return k.decimalPoint()
	case "backspace", "<":
		return k.Backspace()
	case "clear", "C", "c":
		return k.Clear()
	}
	if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
		return k.Digit(rune(key[0]))
	}
	return false
}

// Digit appends a digit, collapsing leading zeros and enforcing limits.
func (k *Keypad) Digit(r rune) bool {
	if r < '0' || r > '9' {
		return false
	}
	intPart, frac, hasDot := strings.Cut(k.text, ".")
	if hasDot {
		if int32(len(frac)) >= k.fractionLimit {
			return false
		}
		k.text += string(r)
		return true
	}
	if intPart == "0" {
		if r == '0' {
			return false
		}
		k.text = string(r)
		return true
	}
	if len(intPart) >= MaxIntegerDigits {
		return false
	}
	k.text += string(r)
	return true
}

func (k *Keypad) decimalPoint() bool {
	if k.fractionLimit == 0 || strings.Contains(k.text, ".") {
		return false
	}
	if k.text == "" {
		k.text = "0"
	}
	k.text += "."
	return true
}

// Backspace removes the last typed character.
func (k *Keypad) Backspace() bool {
	if k.text == "" {
		return false
	}
	k.text = k.text[:len(k.text)-1]
	if k.text == "0" {
		k.text = ""
	}
	return true
}

// Clear empties the buffer.
func (k *Keypad) Clear() bool {
	if k.text == "" {
		return false
	}
	k.text = ""
	return true
}

// SetValue replaces the buffer with d, truncated to the fraction limit.
func (k *Keypad) SetValue(d decimal.Decimal) {
	if !d.IsPositive() {
		k.text = ""
		return
	}
	s := d.Truncate(k.fractionLimit).String()
	if intPart, _, _ := strings.Cut(s, "."); len(intPart) > MaxIntegerDigits {
		return
	}
	k.text = s
}

// Text returns the display string; an empty buffer shows "0".
func (k *Keypad) Text() string {
	if k.text == "" {
		return "0"
	}
	return k.text
}

// Value returns the buffer as a decimal; a trailing dot is ignored.
func (k *Keypad) Value() decimal.Decimal {
	if k.text == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.TrimSuffix(k.text, "."))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// IsZero reports whether the current value is zero; the save action stays
// disabled until it is not.
func (k *Keypad) IsZero() bool {
	return !k.Value().IsPositive()
}
