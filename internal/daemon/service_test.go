package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fxtrip/internal/i18n"
	"github.com/theirongolddev/fxtrip/internal/ledger"
	"github.com/theirongolddev/fxtrip/internal/model"
	"github.com/theirongolddev/fxtrip/internal/rates"
	"github.com/theirongolddev/fxtrip/internal/store"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{
		TripName:       "Lisbon",
		BudgetSet:      true,
		DaysFromStart:  2,
		SpentToday:     d("10"),
		TotalSpent:     d("110"),
		RemainingToday: d("90"),
		ExpenseCount:   4,
		Rate:           d("1.08"),
	}
	curr := prev
	curr.SpentToday = d("35.5")
	curr.TotalSpent = d("135.5")
	curr.RemainingToday = d("64.5")
	curr.ExpenseCount = 5

	delta := diffSnapshots(prev, curr)
	if !delta.SpentToday.Equal(d("25.5")) {
		t.Fatalf("SpentToday delta = %s, want 25.5", delta.SpentToday)
	}
	if !delta.RemainingToday.Equal(d("-25.5")) {
		t.Fatalf("RemainingToday delta = %s, want -25.5", delta.RemainingToday)
	}
	if delta.Expenses != 1 {
		t.Fatalf("Expenses delta = %d, want 1", delta.Expenses)
	}
	if delta.DayChanged || delta.TripChanged || delta.RateChanged {
		t.Fatalf("unexpected flags: %+v", delta)
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}

	if !diffSnapshots(curr, curr).isZero() {
		t.Fatal("identical snapshots produced a non-zero delta")
	}

	next := curr
	next.DaysFromStart = 3
	next.Rate = d("1.09")
	delta = diffSnapshots(curr, next)
	if !delta.DayChanged || !delta.RateChanged {
		t.Fatalf("flags = %+v, want day and rate changed", delta)
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{
		Interval:     10 * time.Second,
		EventsBuffer: 2,
	})

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestPollEmitsSnapshotThenDeltas(t *testing.T) {
	snap := Snapshot{BudgetSet: true, InRange: true, RemainingToday: d("50")}
	s := New(Config{Loader: func(context.Context, time.Time) (Snapshot, error) { return snap, nil }})

	s.pollOnce(context.Background(), "startup")
	s.pollOnce(context.Background(), "timeline")
	snap.SpentToday = d("5")
	snap.RemainingToday = d("45")
	s.pollOnce(context.Background(), "expense.add")

	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].Type != "snapshot" || s.events[1].Type != "budget_delta" {
		t.Fatalf("event types = %q, %q", s.events[0].Type, s.events[1].Type)
	}
	if s.events[1].Reason != "expense.add" {
		t.Errorf("reason = %q, want expense.add", s.events[1].Reason)
	}
	if s.pollCount != 3 || s.refreshCount != 1 {
		t.Errorf("pollCount=%d refreshCount=%d, want 3 and 1", s.pollCount, s.refreshCount)
	}
}

func TestPollErrorIsRecorded(t *testing.T) {
	s := New(Config{Loader: func(context.Context, time.Time) (Snapshot, error) {
		return Snapshot{}, errors.New("store locked")
	}})
	s.pollOnce(context.Background(), "timeline")

	st := s.snapshotStatus()
	if st.LastError != "store locked" {
		t.Errorf("LastError = %q", st.LastError)
	}
	if st.EventCount != 0 {
		t.Errorf("EventCount = %d, want 0", st.EventCount)
	}
}

func TestRefreshCoalesces(t *testing.T) {
	s := New(Config{})
	if !s.Refresh("a") {
		t.Fatal("first refresh not queued")
	}
	if s.Refresh("b") {
		t.Fatal("second refresh should coalesce")
	}
	if got := <-s.refresh; got != "a" {
		t.Errorf("queued reason = %q, want a", got)
	}
}

func TestHandlers(t *testing.T) {
	s := New(Config{Language: "de"})
	s.apply(Snapshot{
		TripName:          "Berlin",
		BudgetSet:         true,
		Currency:          "EUR",
		SecondaryCurrency: "USD",
		InRange:           true,
		DayNumber:         2,
		TotalDays:         5,
		RemainingToday:    d("42.5"),
		SpentToday:        d("7.5"),
		TotalRemaining:    d("300"),
		Progress:          0.15,
		Rate:              d("1.0812"),
	}, "startup", time.Now())

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/v1/widget?size=medium")
	if err != nil {
		t.Fatal(err)
	}
	var view WidgetView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if view.Headline != "€42.50" {
		t.Errorf("Headline = %q, want €42.50", view.Headline)
	}
	if view.Caption != "heute übrig" {
		t.Errorf("Caption = %q, want German", view.Caption)
	}
	if len(view.Lines) != 4 || view.Lines[3] != "1 EUR = 1.0812 USD" {
		t.Errorf("Lines = %q", view.Lines)
	}

	resp, err = http.Get(srv.URL + "/v1/widget?size=huge")
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad size status = %d, want 400", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/v1/refresh")
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET refresh status = %d, want 405", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/v1/status")
	if err != nil {
		t.Fatal(err)
	}
	var st Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if st.Summary.TripName != "Berlin" || !st.Summary.RemainingToday.Equal(d("42.5")) {
		t.Errorf("status summary = %+v", st.Summary)
	}
}

func TestHTTPNotifierPostsRefresh(t *testing.T) {
	s := New(Config{})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	n := NewHTTPNotifier(strings.TrimPrefix(srv.URL, "http://"))
	n.Notify("expense.add")

	select {
	case reason := <-s.refresh:
		if reason != "expense.add" {
			t.Errorf("reason = %q, want expense.add", reason)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("refresh not received")
	}
}

func TestHTTPNotifierIgnoresMissingDaemon(t *testing.T) {
	n := NewHTTPNotifier("127.0.0.1:1")
	start := time.Now()
	n.Notify("expense.add")
	if time.Since(start) > 2*time.Second {
		t.Error("Notify blocked past its timeout")
	}
}

func TestRenderWidgetStates(t *testing.T) {
	en := i18n.For("en")

	v := RenderWidget(Snapshot{}, SizeSmall, en)
	if v.Headline != "No budget set" || v.Title != "Untitled trip" {
		t.Errorf("unset view = %+v", v)
	}

	v = RenderWidget(Snapshot{BudgetSet: true, Currency: "JPY", DaysFromStart: -3, DailyBase: d("5000")}, SizeSmall, en)
	if v.Headline != "¥5,000" || v.Caption != "Trip starts in 3 days" {
		t.Errorf("future view = %+v", v)
	}

	v = RenderWidget(Snapshot{BudgetSet: true, Currency: "USD", DaysFromStart: 9, TotalRemaining: d("-12")}, SizeSmall, en)
	if v.Headline != "-$12.00" || !v.Overspent || v.Caption != "Trip ended" {
		t.Errorf("ended view = %+v", v)
	}

	v = RenderWidget(Snapshot{BudgetSet: true, Currency: "EUR", SecondaryCurrency: "GBP", InRange: true, DayNumber: 1, TotalDays: 3}, SizeMedium, en)
	if got := v.Lines[len(v.Lines)-1]; got != "Rate unavailable" {
		t.Errorf("rate line = %q, want Rate unavailable", got)
	}
}

type fixedQuotes struct{ rate decimal.Decimal }

func (f fixedQuotes) Quote(_ context.Context, from, to string) (rates.Quote, error) {
	return rates.Quote{From: from, To: to, Rate: f.rate}, nil
}

func TestStoreLoaderReadsSharedSuite(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "fxtrip.db"), store.DefaultSuite)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = st.Close() }()

	now := time.Date(2026, 8, 3, 12, 0, 0, 0, time.UTC)
	l, err := ledger.New(st, nil, ledger.WithLocation(time.UTC), ledger.WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatal(err)
	}
	if err := l.SaveSettings(model.TripSettings{
		Name: "Oslo", TotalBudget: d("300"), BudgetCurrency: "NOK", SecondaryCurrency: "EUR",
		StartDate: now.AddDate(0, 0, -1), EndDate: now.AddDate(0, 0, 1),
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := l.AddExpense(ledger.NewExpense(d("40"), "NOK", "NOK", d("1"), now, nil)); err != nil {
		t.Fatal(err)
	}

	load := StoreLoader(LoaderConfig{Store: st, Rates: fixedQuotes{rate: d("0.085")}, Location: time.UTC})
	snap, err := load(context.Background(), now)
	if err != nil {
		t.Fatal(err)
	}
	if snap.TripName != "Oslo" || snap.TotalDays != 3 || snap.ExpenseCount != 1 {
		t.Errorf("snapshot = %+v", snap)
	}
	// Day 2 of 3: 100 + 100 rollover - 40.
	if !snap.RemainingToday.Equal(d("160")) {
		t.Errorf("RemainingToday = %s, want 160", snap.RemainingToday)
	}
	if !snap.Rate.Equal(d("0.085")) {
		t.Errorf("Rate = %s, want 0.085", snap.Rate)
	}
}
