package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fxtrip/internal/model"
)

func openTestSuite(t *testing.T) *Suite {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "fxtrip.db"), "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSuiteScalars(t *testing.T) {
	s := openTestSuite(t)

	if s.Name() != DefaultSuite {
		t.Errorf("Name() = %q, want %q", s.Name(), DefaultSuite)
	}

	if _, ok, err := s.String("trip.name"); err != nil || ok {
		t.Fatalf("missing key: ok=%v err=%v", ok, err)
	}

	if err := s.SetString("trip.name", "Lisbon"); err != nil {
		t.Fatal(err)
	}
	if got, ok, _ := s.String("trip.name"); !ok || got != "Lisbon" {
		t.Errorf("String = %q (%v), want Lisbon", got, ok)
	}

	if err := s.SetString("trip.name", "Porto"); err != nil {
		t.Fatal(err)
	}
	if got, _, _ := s.String("trip.name"); got != "Porto" {
		t.Errorf("String after overwrite = %q, want Porto", got)
	}

	if err := s.SetInt("count", -42); err != nil {
		t.Fatal(err)
	}
	if got, ok, _ := s.Int("count"); !ok || got != -42 {
		t.Errorf("Int = %d (%v), want -42", got, ok)
	}

	budget := decimal.RequireFromString("1234.5678")
	if err := s.SetDecimal("trip.totalBudget", budget); err != nil {
		t.Fatal(err)
	}
	if got, ok, _ := s.Decimal("trip.totalBudget"); !ok || !got.Equal(budget) {
		t.Errorf("Decimal = %s (%v), want %s", got, ok, budget)
	}

	when := time.Date(2026, 5, 4, 10, 30, 15, 123456789, time.FixedZone("X", 3600))
	if err := s.SetTime("trip.startDate", when); err != nil {
		t.Fatal(err)
	}
	if got, ok, _ := s.Time("trip.startDate"); !ok || !got.Equal(when) {
		t.Errorf("Time = %v (%v), want %v", got, ok, when)
	}
}

func TestSuiteMalformedScalar(t *testing.T) {
	s := openTestSuite(t)

	if err := s.SetString("rate.value", "not-a-number"); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := s.Decimal("rate.value"); err == nil || ok {
		t.Errorf("Decimal on garbage: ok=%v err=%v, want error", ok, err)
	}
	if _, _, err := s.Time("rate.value"); err == nil {
		t.Error("Time on garbage: want error")
	}
}

func TestSuiteIsolationAndDelete(t *testing.T) {
	s := openTestSuite(t)
	other := s.Named("group.other")

	if err := s.SetString("k", "mine"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := other.String("k"); ok {
		t.Error("key leaked across suites")
	}
	if err := other.SetString("k", "theirs"); err != nil {
		t.Fatal(err)
	}
	if got, _, _ := s.String("k"); got != "mine" {
		t.Errorf("String = %q, want mine", got)
	}

	if err := other.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("k"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.String("k"); ok {
		t.Error("key still present after Delete")
	}
	if err := s.Delete("k"); err != nil {
		t.Errorf("Delete missing key: %v", err)
	}
}

func TestSuiteKeys(t *testing.T) {
	s := openTestSuite(t)
	for _, k := range []string{"trip.name", "rate.to", "rate.from"} {
		if err := s.SetString(k, "x"); err != nil {
			t.Fatal(err)
		}
	}
	keys, err := s.Keys()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"rate.from", "rate.to", "trip.name"}
	if len(keys) != len(want) {
		t.Fatalf("Keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestSuiteReopenPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fxtrip.db")
	s, err := Open(path, "g")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetBlob("trip.expenses", []byte(`[]`)); err != nil {
		t.Fatal(err)
	}
	_ = s.Close()

	s, err = Open(path, "g")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = s.Close() }()
	if got, ok, _ := s.Blob("trip.expenses"); !ok || string(got) != "[]" {
		t.Errorf("Blob after reopen = %q (%v), want []", got, ok)
	}
}

func TestExpenseCodecPreservesNoteState(t *testing.T) {
	empty := ""
	text := "taxi"
	date := time.Date(2026, 6, 1, 18, 45, 0, 0, time.UTC)
	in := []model.ExpenseRecord{
		{ID: "a", Amount: decimal.RequireFromString("12.50"), Currency: "USD",
			ConvertedAmount: decimal.RequireFromString("11.4375"), TargetCurrency: "EUR", Date: date, Note: &text},
		{ID: "b", Amount: decimal.RequireFromString("3"), Currency: "EUR",
			ConvertedAmount: decimal.RequireFromString("3"), TargetCurrency: "EUR", Date: date, Note: &empty},
		{ID: "c", Amount: decimal.RequireFromString("1500"), Currency: "JPY",
			ConvertedAmount: decimal.RequireFromString("9.21"), TargetCurrency: "EUR", Date: date},
	}

	b, err := EncodeExpenses(in)
	if err != nil {
		t.Fatal(err)
	}
	out, err := DecodeExpenses(b)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(in) {
		t.Fatalf("decoded %d expenses, want %d", len(out), len(in))
	}
	for i := range in {
		w, g := in[i], out[i]
		if g.ID != w.ID || g.Currency != w.Currency || g.TargetCurrency != w.TargetCurrency {
			t.Errorf("[%d] ids/currencies = %+v, want %+v", i, g, w)
		}
		if !g.Amount.Equal(w.Amount) || !g.ConvertedAmount.Equal(w.ConvertedAmount) {
			t.Errorf("[%d] amounts = %s/%s, want %s/%s", i, g.Amount, g.ConvertedAmount, w.Amount, w.ConvertedAmount)
		}
		if !g.Date.Equal(w.Date) {
			t.Errorf("[%d] date = %v, want %v", i, g.Date, w.Date)
		}
		if (g.Note == nil) != (w.Note == nil) {
			t.Errorf("[%d] note presence = %v, want %v", i, g.Note != nil, w.Note != nil)
		} else if g.Note != nil && *g.Note != *w.Note {
			t.Errorf("[%d] note = %q, want %q", i, *g.Note, *w.Note)
		}
	}
}

func TestArchiveCodec(t *testing.T) {
	in := []model.TripRecord{{
		ID:                "9f0c",
		Name:              "Kyoto",
		TotalBudget:       decimal.RequireFromString("250000"),
		BudgetCurrency:    "JPY",
		SecondaryCurrency: "EUR",
		StartDate:         time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:           time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC),
		Expenses: []model.ExpenseRecord{{ID: "x", Amount: decimal.NewFromInt(800), Currency: "JPY",
			ConvertedAmount: decimal.NewFromInt(800), TargetCurrency: "JPY", Date: time.Date(2026, 4, 2, 12, 0, 0, 0, time.UTC)}},
	}}

	b, err := EncodeArchive(in)
	if err != nil {
		t.Fatal(err)
	}
	out, err := DecodeArchive(b)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 {
		t.Fatalf("decoded %d trips, want 1", len(out))
	}
	g := out[0]
	if g.ID != "9f0c" || g.Name != "Kyoto" || g.BudgetCurrency != "JPY" || g.SecondaryCurrency != "EUR" {
		t.Errorf("trip = %+v", g)
	}
	if !g.TotalBudget.Equal(in[0].TotalBudget) || !g.StartDate.Equal(in[0].StartDate) || !g.EndDate.Equal(in[0].EndDate) {
		t.Errorf("trip budget/dates = %s %v %v", g.TotalBudget, g.StartDate, g.EndDate)
	}
	if len(g.Expenses) != 1 || g.Expenses[0].ID != "x" {
		t.Errorf("trip expenses = %+v", g.Expenses)
	}
}

func TestDecodeEmptyAndMalformed(t *testing.T) {
	if exps, err := DecodeExpenses(nil); err != nil || exps != nil {
		t.Errorf("DecodeExpenses(nil) = %v, %v", exps, err)
	}
	if _, err := DecodeExpenses([]byte("{oops")); err == nil {
		t.Error("DecodeExpenses on malformed blob: want error")
	}
	if _, err := DecodeArchive([]byte("42")); err == nil {
		t.Error("DecodeArchive on wrong shape: want error")
	}
	b, err := EncodeExpenses(nil)
	if err != nil || string(b) != "[]" {
		t.Errorf("EncodeExpenses(nil) = %q, %v", b, err)
	}
}
