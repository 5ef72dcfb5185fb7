package rates

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/fxtrip/internal/model"
	"github.com/theirongolddev/fxtrip/internal/store"
)

type stubFetcher struct {
	mu    sync.Mutex
	calls int
	rate  decimal.Decimal
	err   error
}

func (f *stubFetcher) Fetch(_ context.Context, _, _ string) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.rate, f.err
}

func (f *stubFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

var t0 = time.Date(2026, 7, 10, 12, 0, 0, 0, time.UTC)

func TestServiceSamePairSkipsNetwork(t *testing.T) {
	f := &stubFetcher{err: errors.New("must not be called")}
	svc := NewService(f, nil, AppPolicy, nil)

	rate, err := svc.Rate(context.Background(), "EUR", "EUR")
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, 0, f.Calls())

	amount := decimal.RequireFromString("42.17")
	assert.True(t, amount.Mul(rate).Equal(amount))
}

func TestServiceAppPolicyAlwaysFetches(t *testing.T) {
	f := &stubFetcher{rate: decimal.RequireFromString("0.9")}
	svc := NewService(f, nil, AppPolicy, nil)
	svc.SetClock(func() time.Time { return t0 })

	for i := 0; i < 3; i++ {
		_, err := svc.Rate(context.Background(), "USD", "EUR")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, f.Calls())
}

func TestServiceWidgetPolicyReusesFreshRate(t *testing.T) {
	f := &stubFetcher{rate: decimal.RequireFromString("0.9")}
	svc := NewService(f, nil, WidgetPolicy, nil)
	now := t0
	svc.SetClock(func() time.Time { return now })

	q, err := svc.Quote(context.Background(), "USD", "EUR")
	require.NoError(t, err)
	assert.False(t, q.Cached)

	now = t0.Add(59 * time.Minute)
	q, err = svc.Quote(context.Background(), "USD", "EUR")
	require.NoError(t, err)
	assert.True(t, q.Cached)
	assert.Equal(t, 1, f.Calls())

	now = t0.Add(61 * time.Minute)
	_, err = svc.Quote(context.Background(), "USD", "EUR")
	require.NoError(t, err)
	assert.Equal(t, 2, f.Calls())

	// A different pair is never served from the cache.
	_, err = svc.Quote(context.Background(), "USD", "GBP")
	require.NoError(t, err)
	assert.Equal(t, 3, f.Calls())
}

func TestServiceFailureFallsBackToSamePairOnly(t *testing.T) {
	f := &stubFetcher{rate: decimal.RequireFromString("0.9")}
	svc := NewService(f, nil, AppPolicy, nil)
	svc.SetClock(func() time.Time { return t0 })

	_, err := svc.Rate(context.Background(), "USD", "EUR")
	require.NoError(t, err)

	f.err = ErrRateLimited
	rate, err := svc.Rate(context.Background(), "USD", "EUR")
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.True(t, rate.Equal(decimal.RequireFromString("0.9")))

	rate, err = svc.Rate(context.Background(), "EUR", "USD")
	assert.Error(t, err)
	assert.True(t, rate.IsZero())
}

func TestPolicyFresh(t *testing.T) {
	e := model.RateCacheEntry{From: "USD", To: "EUR", Rate: decimal.NewFromInt(1), FetchedAt: t0}
	assert.True(t, WidgetPolicy.Fresh(e, "USD", "EUR", t0.Add(time.Minute)))
	assert.False(t, WidgetPolicy.Fresh(e, "USD", "EUR", t0.Add(time.Hour)))
	assert.False(t, WidgetPolicy.Fresh(e, "EUR", "USD", t0))
	assert.False(t, AppPolicy.Fresh(e, "USD", "EUR", t0))
	assert.False(t, WidgetPolicy.Fresh(e, "USD", "EUR", t0.Add(-time.Minute)), "clock skew")
}

func TestStoreCacheRoundTrip(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "fxtrip.db"), store.DefaultSuite)
	require.NoError(t, err)
	defer func() { _ = st.Close() }()

	c := NewStoreCache(st)
	_, ok := c.Load()
	assert.False(t, ok)

	in := model.RateCacheEntry{From: "GBP", To: "JPY", Rate: decimal.RequireFromString("191.2345"), FetchedAt: t0}
	require.NoError(t, c.Save(in))

	out, ok := c.Load()
	require.True(t, ok)
	assert.Equal(t, "GBP", out.From)
	assert.Equal(t, "JPY", out.To)
	assert.True(t, out.Rate.Equal(in.Rate))
	assert.True(t, out.FetchedAt.Equal(t0))

	// A second process sees the same quote and serves it fresh.
	f := &stubFetcher{err: errors.New("offline")}
	svc := NewService(f, NewStoreCache(st), WidgetPolicy, nil)
	svc.SetClock(func() time.Time { return t0.Add(10 * time.Minute) })
	rate, err := svc.Rate(context.Background(), "GBP", "JPY")
	require.NoError(t, err)
	assert.True(t, rate.Equal(in.Rate))
	assert.Equal(t, 0, f.Calls())
}
