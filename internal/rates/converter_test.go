package rates

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rateReply struct {
	rate decimal.Decimal
	err  error
}

// gatedSource blocks each lookup until the test releases it.
type gatedSource struct {
	started chan string
	replies map[string]chan rateReply
}

func newGatedSource(pairs ...string) *gatedSource {
	g := &gatedSource{started: make(chan string, 8), replies: map[string]chan rateReply{}}
	for _, p := range pairs {
		g.replies[p] = make(chan rateReply, 1)
	}
	return g
}

func (g *gatedSource) Rate(_ context.Context, from, to string) (decimal.Decimal, error) {
	p := pairKey(from, to)
	g.started <- p
	r := <-g.replies[p]
	return r.rate, r.err
}

func waitStarted(t *testing.T, g *gatedSource) string {
	t.Helper()
	select {
	case p := <-g.started:
		return p
	case <-time.After(2 * time.Second):
		t.Fatal("lookup did not start")
		return ""
	}
}

func TestConverterSamePairIsIdentity(t *testing.T) {
	c := NewConverter(newGatedSource(), "eur", "EUR")
	c.SetAmount(decimal.RequireFromString("19.99"))
	assert.True(t, c.Rate().Equal(decimal.NewFromInt(1)))
	assert.True(t, c.Converted().Equal(decimal.RequireFromString("19.99")))
}

func TestConverterRefreshAppliesRate(t *testing.T) {
	g := newGatedSource("USD/EUR")
	c := NewConverter(g, "USD", "EUR")
	for _, k := range []string{"1", "2", ".", "5"} {
		c.Press(k)
	}

	g.replies["USD/EUR"] <- rateReply{rate: decimal.RequireFromString("0.8")}
	require.NoError(t, c.Refresh(context.Background()))
	<-g.started

	assert.Equal(t, "12.5", c.Input())
	assert.True(t, c.Converted().Equal(decimal.NewFromInt(10)))
	assert.False(t, c.Busy())
}

func TestConverterDropsDuplicateRefresh(t *testing.T) {
	g := newGatedSource("USD/EUR")
	c := NewConverter(g, "USD", "EUR")

	done := make(chan error, 1)
	go func() { done <- c.Refresh(context.Background()) }()
	waitStarted(t, g)

	assert.ErrorIs(t, c.Refresh(context.Background()), ErrBusy)
	assert.True(t, c.Busy())

	g.replies["USD/EUR"] <- rateReply{rate: decimal.RequireFromString("0.9")}
	require.NoError(t, <-done)
	assert.True(t, c.Rate().Equal(decimal.RequireFromString("0.9")))
}

func TestConverterDiscardsSupersededResult(t *testing.T) {
	g := newGatedSource("USD/EUR", "USD/GBP")
	c := NewConverter(g, "USD", "EUR")

	first := make(chan error, 1)
	go func() { first <- c.Refresh(context.Background()) }()
	waitStarted(t, g)

	c.SetPair("USD", "GBP")
	second := make(chan error, 1)
	go func() { second <- c.Refresh(context.Background()) }()
	waitStarted(t, g)

	// The newer request completes first, then the stale one arrives.
	g.replies["USD/GBP"] <- rateReply{rate: decimal.RequireFromString("0.78")}
	require.NoError(t, <-second)
	g.replies["USD/EUR"] <- rateReply{rate: decimal.RequireFromString("0.91")}
	assert.ErrorIs(t, <-first, ErrSuperseded)

	assert.True(t, c.Rate().Equal(decimal.RequireFromString("0.78")))
	assert.False(t, c.Busy())
}

func TestConverterFailureKeepsPairBlank(t *testing.T) {
	g := newGatedSource("USD/JPY")
	c := NewConverter(g, "USD", "JPY")

	g.replies["USD/JPY"] <- rateReply{err: errors.New("offline")}
	err := c.Refresh(context.Background())
	<-g.started
	assert.Error(t, err)
	assert.True(t, c.Rate().IsZero())
	assert.Error(t, c.Err())
}

func TestConverterSwapInvertsKnownRate(t *testing.T) {
	g := newGatedSource("EUR/USD")
	c := NewConverter(g, "EUR", "USD")
	g.replies["EUR/USD"] <- rateReply{rate: decimal.NewFromInt(2)}
	require.NoError(t, c.Refresh(context.Background()))
	<-g.started

	c.Swap()
	from, to := c.Pair()
	assert.Equal(t, "USD", from)
	assert.Equal(t, "EUR", to)
	assert.True(t, c.Rate().Equal(decimal.RequireFromString("0.5")), c.Rate().String())
}

func TestConverterPairChangeClearsRate(t *testing.T) {
	g := newGatedSource("EUR/USD")
	c := NewConverter(g, "EUR", "USD")
	g.replies["EUR/USD"] <- rateReply{rate: decimal.NewFromInt(2)}
	require.NoError(t, c.Refresh(context.Background()))
	<-g.started

	c.SetPair("EUR", "CHF")
	assert.True(t, c.Rate().IsZero())
}
