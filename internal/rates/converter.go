package rates

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fxtrip/internal/money"
)

var (
	// ErrBusy is returned when a refresh for the same pair is already running.
	ErrBusy = errors.New("rates: refresh already in flight")
	// ErrSuperseded is returned when the pair changed while a refresh was running.
	ErrSuperseded = errors.New("rates: refresh superseded")
)

// RateSource is anything that can price a currency pair.
type RateSource interface {
	Rate(ctx context.Context, from, to string) (decimal.Decimal, error)
}

// Converter is the keypad conversion state: an input amount, a currency pair
// and the last rate known for that pair.
type Converter struct {
	src RateSource

	mu       sync.Mutex
	from, to string
	keypad   *money.Keypad

	rate     decimal.Decimal
	ratePair string
	lastErr  error

	busy     bool
	busyPair string
	seq      uint64
}

// NewConverter creates a converter for from/to.
func NewConverter(src RateSource, from, to string) *Converter {
	from, to = money.NormalizeCode(from), money.NormalizeCode(to)
	return &Converter{
		src:    src,
		from:   from,
		to:     to,
		keypad: money.NewKeypad(money.Lookup(from).Digits),
	}
}

func pairKey(from, to string) string { return from + "/" + to }

// Pair returns the current currencies.
func (c *Converter) Pair() (from, to string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.from, c.to
}

// SetPair changes the currencies. The displayed rate is cleared until the
// next refresh for the new pair completes.
func (c *Converter) SetPair(from, to string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.from, c.to = money.NormalizeCode(from), money.NormalizeCode(to)
	c.keypad.SetFractionDigits(money.Lookup(c.from).Digits)
}

// Swap exchanges the currencies. A known rate is inverted so the display
// stays usable until the next refresh.
func (c *Converter) Swap() {
	c.mu.Lock()
	defer c.mu.Unlock()
	old := pairKey(c.from, c.to)
	c.from, c.to = c.to, c.from
	c.keypad.SetFractionDigits(money.Lookup(c.from).Digits)
	if c.ratePair == old && c.rate.IsPositive() {
		c.rate = decimal.NewFromInt(1).DivRound(c.rate, 8)
		c.ratePair = pairKey(c.from, c.to)
	}
}

// Press forwards a key to the amount keypad.
func (c *Converter) Press(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.keypad.Press(key)
}

// SetAmount replaces the input amount.
func (c *Converter) SetAmount(d decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keypad.SetValue(d)
}

// Input returns the keypad text.
func (c *Converter) Input() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.keypad.Text()
}

// Amount returns the parsed input amount.
func (c *Converter) Amount() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.keypad.Value()
}

// Rate returns the rate for the current pair, zero when unknown.
func (c *Converter) Rate() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rateLocked()
}

func (c *Converter) rateLocked() decimal.Decimal {
	if c.from == c.to {
		return decimal.NewFromInt(1)
	}
	if c.ratePair != pairKey(c.from, c.to) {
		return decimal.Zero
	}
	return c.rate
}

// Converted returns the input amount in the target currency.
func (c *Converter) Converted() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.keypad.Value().Mul(c.rateLocked())
}

// Busy reports whether a refresh is in flight.
func (c *Converter) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Err returns the error of the last applied refresh.
func (c *Converter) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Refresh looks up the rate for the current pair. A second refresh of the
// same pair while one is running is dropped with ErrBusy. Results for a pair
// that is no longer current, or older than the latest issued request, are
// discarded with ErrSuperseded.
func (c *Converter) Refresh(ctx context.Context) error {
	c.mu.Lock()
	from, to := c.from, c.to
	pair := pairKey(from, to)
	if c.busy && c.busyPair == pair {
		c.mu.Unlock()
		return ErrBusy
	}
	c.seq++
	mine := c.seq
	c.busy, c.busyPair = true, pair
	c.mu.Unlock()

	rate, err := c.src.Rate(ctx, from, to)

	c.mu.Lock()
	defer c.mu.Unlock()
	if mine != c.seq {
		return ErrSuperseded
	}
	c.busy, c.busyPair = false, ""
	if pair != pairKey(c.from, c.to) {
		return ErrSuperseded
	}

	c.lastErr = err
	if rate.IsPositive() {
		c.rate, c.ratePair = rate, pair
	} else if c.ratePair == pair {
		c.rate = decimal.Zero
	}
	return err
}
