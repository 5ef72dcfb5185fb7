package rates

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fxtrip/internal/model"
)

// Cache keys in the shared store.
const (
	KeyFrom      = "rate.from"
	KeyTo        = "rate.to"
	KeyValue     = "rate.value"
	KeyFetchedAt = "rate.fetchedAt"
)

// Policy controls when a cached rate may be served without a lookup.
type Policy struct {
	// FreshFor is how long a cached rate is reused. Zero always refetches.
	FreshFor time.Duration
}

var (
	// AppPolicy always asks the network and only falls back to the cache.
	AppPolicy = Policy{}
	// WidgetPolicy reuses a cached rate for an hour.
	WidgetPolicy = Policy{FreshFor: time.Hour}
)

// Fresh reports whether e may be served for from/to at now.
func (p Policy) Fresh(e model.RateCacheEntry, from, to string, now time.Time) bool {
	if p.FreshFor <= 0 || !e.Matches(from, to) || !e.Rate.IsPositive() {
		return false
	}
	age := e.Age(now)
	return age >= 0 && age < p.FreshFor
}

// Fetcher performs a single network lookup.
type Fetcher interface {
	Fetch(ctx context.Context, from, to string) (decimal.Decimal, error)
}

// Cache holds the last successful quote.
type Cache interface {
	Load() (model.RateCacheEntry, bool)
	Save(model.RateCacheEntry) error
}

// Service resolves rates through a cache and a fetcher.
type Service struct {
	fetch  Fetcher
	cache  Cache
	policy Policy
	now    func() time.Time
	log    *slog.Logger
}

// NewService creates a rate service. A nil cache keeps the last quote in memory.
func NewService(f Fetcher, c Cache, p Policy, log *slog.Logger) *Service {
	if c == nil {
		c = &MemoryCache{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{fetch: f, cache: c, policy: p, now: time.Now, log: log}
}

// SetClock overrides the time source.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// Rate returns the rate for from/to. Identical currencies return 1 without a
// lookup. On failure the last cached rate for the same pair (or zero) is
// returned together with the error.
func (s *Service) Rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	q, err := s.Quote(ctx, from, to)
	return q.Rate, err
}

// Quote is Rate with provenance.
func (s *Service) Quote(ctx context.Context, from, to string) (Quote, error) {
	now := s.now()
	if from == to {
		return Quote{From: from, To: to, Rate: decimal.NewFromInt(1), FetchedAt: now}, nil
	}

	cached, hasCached := s.cache.Load()
	if hasCached && s.policy.Fresh(cached, from, to, now) {
		return Quote{From: from, To: to, Rate: cached.Rate, FetchedAt: cached.FetchedAt, Cached: true}, nil
	}

	rate, err := s.fetch.Fetch(ctx, from, to)
	if err != nil {
		s.log.Warn("rate lookup failed", "from", from, "to", to, "err", err)
		q := Quote{From: from, To: to, Rate: decimal.Zero}
		if hasCached && cached.Matches(from, to) {
			q.Rate = cached.Rate
			q.FetchedAt = cached.FetchedAt
			q.Cached = true
		}
		return q, fmt.Errorf("rate %s/%s: %w", from, to, err)
	}

	entry := model.RateCacheEntry{From: from, To: to, Rate: rate, FetchedAt: now}
	if err := s.cache.Save(entry); err != nil {
		s.log.Warn("rate cache not saved", "err", err)
	}
	return Quote{From: from, To: to, Rate: rate, FetchedAt: now}, nil
}

// Cached returns the last stored quote, if any.
func (s *Service) Cached() (model.RateCacheEntry, bool) {
	return s.cache.Load()
}

// MemoryCache keeps the last quote in process memory.
type MemoryCache struct {
	mu    sync.Mutex
	entry model.RateCacheEntry
	ok    bool
}

// Load implements Cache.
func (m *MemoryCache) Load() (model.RateCacheEntry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entry, m.ok
}

// Save implements Cache.
func (m *MemoryCache) Save(e model.RateCacheEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entry, m.ok = e, true
	return nil
}

// ScalarStore is the part of the shared suite used by StoreCache.
type ScalarStore interface {
	String(key string) (string, bool, error)
	SetString(key, value string) error
	Decimal(key string) (decimal.Decimal, bool, error)
	SetDecimal(key string, value decimal.Decimal) error
	Time(key string) (time.Time, bool, error)
	SetTime(key string, value time.Time) error
}

// StoreCache persists the last quote as scalars so the widget daemon and the
// CLI share it.
type StoreCache struct {
	st ScalarStore
}

// NewStoreCache wraps st.
func NewStoreCache(st ScalarStore) *StoreCache {
	return &StoreCache{st: st}
}

// Load implements Cache. Any missing or unreadable field means no entry.
func (c *StoreCache) Load() (model.RateCacheEntry, bool) {
	from, ok1, err1 := c.st.String(KeyFrom)
	to, ok2, err2 := c.st.String(KeyTo)
	rate, ok3, err3 := c.st.Decimal(KeyValue)
	at, ok4, err4 := c.st.Time(KeyFetchedAt)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return model.RateCacheEntry{}, false
	}
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return model.RateCacheEntry{}, false
	}
	return model.RateCacheEntry{From: from, To: to, Rate: rate, FetchedAt: at}, true
}

// Save implements Cache.
func (c *StoreCache) Save(e model.RateCacheEntry) error {
	if err := c.st.SetString(KeyFrom, e.From); err != nil {
		return err
	}
	if err := c.st.SetString(KeyTo, e.To); err != nil {
		return err
	}
	if err := c.st.SetDecimal(KeyValue, e.Rate); err != nil {
		return err
	}
	return c.st.SetTime(KeyFetchedAt, e.FetchedAt)
}
