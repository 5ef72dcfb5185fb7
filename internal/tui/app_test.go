package tui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fxtrip/internal/config"
	"github.com/theirongolddev/fxtrip/internal/i18n"
	"github.com/theirongolddev/fxtrip/internal/ledger"
	"github.com/theirongolddev/fxtrip/internal/model"
	"github.com/theirongolddev/fxtrip/internal/rates"
	"github.com/theirongolddev/fxtrip/internal/store"
	"github.com/theirongolddev/fxtrip/internal/tui/components"
)

type fixedFetcher struct{ rate decimal.Decimal }

func (f fixedFetcher) Fetch(context.Context, string, string) (decimal.Decimal, error) {
	return f.rate, nil
}

var testNow = time.Date(2026, 7, 8, 15, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T) (App, *ledger.Service) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "fxtrip.db"), store.DefaultSuite)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = st.Close() })

	now := func() time.Time { return testNow }
	led, err := ledger.New(st, nil, ledger.WithLocation(time.UTC), ledger.WithClock(now))
	if err != nil {
		t.Fatal(err)
	}
	if err := led.SaveSettings(model.TripSettings{
		Name:              "Porto",
		TotalBudget:       decimal.NewFromInt(500),
		BudgetCurrency:    "EUR",
		SecondaryCurrency: "USD",
		StartDate:         testNow.AddDate(0, 0, -2),
		EndDate:           testNow.AddDate(0, 0, 2),
	}); err != nil {
		t.Fatal(err)
	}

	svc := rates.NewService(fixedFetcher{rate: decimal.RequireFromString("0.5")}, nil, rates.AppPolicy, nil)
	app := NewApp(Options{
		Ledger:    led,
		Rates:     svc,
		Config:    config.DefaultConfig(),
		Localizer: i18n.For("en"),
		Now:       now,
	})
	return app, led
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, a App, msg tea.Msg) (App, tea.Cmd) {
	t.Helper()
	m, cmd := a.Update(msg)
	app, ok := m.(App)
	if !ok {
		t.Fatalf("Update returned %T", m)
	}
	return app, cmd
}

func TestTabAtXMatchesTabWidths(t *testing.T) {
	a, _ := newTestApp(t)
	for active := range a.tabs {
		a.activeTab = active
		pos := 0
		for i, tab := range a.tabs {
			w := components.TabVisualWidth(tab, i == active)
			if got := a.tabAtX(pos + w/2); got != i {
				t.Fatalf("active=%d x=%d -> tab=%d, want %d", active, pos+w/2, got, i)
			}
			pos += w + 1
		}
	}
	if got := a.tabAtX(10_000); got != -1 {
		t.Fatalf("far right click -> tab=%d, want -1", got)
	}
}

func TestConverterStartsOnTripPair(t *testing.T) {
	a, _ := newTestApp(t)
	from, to := a.conv.Pair()
	if from != "USD" || to != "EUR" {
		t.Fatalf("pair = %s/%s, want USD/EUR", from, to)
	}
}

func TestLogExpenseFromKeypad(t *testing.T) {
	a, led := newTestApp(t)

	for _, k := range []string{"1", "2", ".", "5"} {
		a, _ = send(t, a, runes(k))
	}
	if got := a.conv.Input(); got != "12.5" {
		t.Fatalf("keypad input = %q, want 12.5", got)
	}

	a, _ = send(t, a, tea.KeyMsg{Type: tea.KeyEnter})
	if !a.noting {
		t.Fatal("enter with an amount should open the note input")
	}
	a, _ = send(t, a, runes("taxi"))
	a, cmd := send(t, a, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("saving the note returned no command")
	}

	a, _ = send(t, a, cmd())
	if a.statusWarn {
		t.Fatalf("status = %q, want success", a.status)
	}

	exps := led.Expenses()
	if len(exps) != 1 {
		t.Fatalf("expenses = %d, want 1", len(exps))
	}
	e := exps[0]
	if !e.Amount.Equal(decimal.RequireFromString("12.5")) || e.Currency != "USD" || e.TargetCurrency != "EUR" {
		t.Errorf("expense = %+v", e)
	}
	if !e.ConvertedAmount.Equal(decimal.RequireFromString("6.25")) {
		t.Errorf("ConvertedAmount = %s, want 6.25", e.ConvertedAmount)
	}
	if e.NoteText() != "taxi" {
		t.Errorf("note = %q, want taxi", e.NoteText())
	}
	if !a.conv.Amount().IsZero() {
		t.Error("keypad not cleared after logging")
	}
	if !a.stats.SpentToday.Equal(decimal.RequireFromString("6.25")) {
		t.Errorf("SpentToday = %s, want 6.25", a.stats.SpentToday)
	}
}

func TestEnterWithoutAmountDoesNothing(t *testing.T) {
	a, _ := newTestApp(t)
	a, _ = send(t, a, tea.KeyMsg{Type: tea.KeyEnter})
	if a.noting {
		t.Fatal("enter on an empty keypad opened the note input")
	}
}

func TestFinishTripNeedsSecondPress(t *testing.T) {
	a, led := newTestApp(t)
	a, _ = send(t, a, runes("b"))
	if a.activeTab != tabBudget {
		t.Fatalf("activeTab = %d, want budget", a.activeTab)
	}

	a, _ = send(t, a, runes("F"))
	if len(led.Archive()) != 0 {
		t.Fatal("trip archived after a single press")
	}
	a, _ = send(t, a, runes("F"))
	if len(led.Archive()) != 1 {
		t.Fatalf("archive = %d trips, want 1", len(led.Archive()))
	}
	if a.trip.IsBudgetSet() {
		t.Error("active trip not reset after finishing")
	}
	if len(a.archive) != 1 {
		t.Error("archive tab state not reloaded")
	}
}

func TestInterruptedConfirmationResets(t *testing.T) {
	a, led := newTestApp(t)
	a, _ = send(t, a, runes("b"))
	a, _ = send(t, a, runes("F"))
	a, _ = send(t, a, runes("j"))
	_, _ = send(t, a, runes("F"))
	if len(led.Archive()) != 0 {
		t.Fatal("confirmation survived an unrelated key")
	}
}

func TestViewRendersEveryTab(t *testing.T) {
	a, led := newTestApp(t)
	if _, err := led.AddExpense(ledger.NewExpense(decimal.NewFromInt(30), "EUR", "EUR", decimal.NewFromInt(1), testNow, nil)); err != nil {
		t.Fatal(err)
	}
	a.reload()
	a, _ = send(t, a, tea.WindowSizeMsg{Width: 110, Height: 40})

	want := map[int]string{
		tabConvert: "USD",
		tabBudget:  "Porto",
		tabHistory: "Day 3",
		tabArchive: "No archived trips",
	}
	for tab, text := range want {
		a.activeTab = tab
		if out := a.View(); !strings.Contains(out, text) {
			t.Errorf("tab %d view missing %q", tab, text)
		}
	}
}

func TestTripValuesRoundTrip(t *testing.T) {
	ts := model.TripSettings{
		Name:              "Kyoto",
		TotalBudget:       decimal.NewFromInt(200000),
		BudgetCurrency:    "JPY",
		SecondaryCurrency: "EUR",
		StartDate:         time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		EndDate:           time.Date(2026, 10, 9, 0, 0, 0, 0, time.UTC),
	}
	vals := TripValuesFrom(ts)
	vals.Budget = "200 000"

	got, err := vals.Settings(time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	if !got.TotalBudget.Equal(ts.TotalBudget) || !got.StartDate.Equal(ts.StartDate) || !got.EndDate.Equal(ts.EndDate) {
		t.Errorf("settings = %+v, want %+v", got, ts)
	}

	vals.End = "10/09/2026"
	if _, err := vals.Settings(time.UTC); err == nil {
		t.Error("malformed end date accepted")
	}

	vals.End = "2026-09-30"
	if _, err := vals.Settings(time.UTC); err == nil {
		t.Error("end before start accepted")
	}

	vals.End = "2026-10-09"
	vals.Secondary = ""
	if _, err := vals.Settings(time.UTC); err == nil {
		t.Error("missing secondary currency accepted")
	}
}

func TestHelpOverlayListsBindings(t *testing.T) {
	a, _ := newTestApp(t)
	a, _ = send(t, a, tea.WindowSizeMsg{Width: 100, Height: 40})
	a, _ = send(t, a, runes("?"))
	out := a.View()
	for _, want := range []string{"Swap currencies", "Finish and archive the trip"} {
		if !strings.Contains(out, want) {
			t.Errorf("help view missing %q", want)
		}
	}
	a, _ = send(t, a, runes("x"))
	if a.showHelp {
		t.Error("any key should close the help overlay")
	}
}
