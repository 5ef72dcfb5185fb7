// Package ledger owns the active trip, its expenses and the trip archive.
// Every mutation persists to the shared store and signals a widget refresh.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fxtrip/internal/budget"
	"github.com/theirongolddev/fxtrip/internal/model"
	"github.com/theirongolddev/fxtrip/internal/store"
)

// Store keys shared with the widget daemon.
const (
	KeyName              = "trip.name"
	KeyTotalBudget       = "trip.totalBudget"
	KeyBudgetCurrency    = "trip.budgetCurrency"
	KeySecondaryCurrency = "trip.secondaryCurrency"
	KeyStartDate         = "trip.startDate"
	KeyEndDate           = "trip.endDate"
	KeyExpenses          = "trip.expenses"
	KeyArchive           = "trip.archive"
)

// DefaultTripDays is the length of a freshly reset trip.
const DefaultTripDays = 7

var (
	// ErrInvalidAmount rejects expenses that are not strictly positive.
	ErrInvalidAmount = errors.New("expense amount must be greater than zero")
	// ErrNotFound reports an unknown expense or archive id.
	ErrNotFound = errors.New("not found")
	// ErrAmbiguous reports an id prefix that matches more than one record.
	ErrAmbiguous = errors.New("ambiguous id prefix")
	// ErrPersist wraps store failures. In-memory state is kept regardless.
	ErrPersist = errors.New("persisting trip state")
	// ErrRateUnavailable is returned when an edit needs a rate and none is known.
	ErrRateUnavailable = errors.New("exchange rate unavailable")
)

// Store is the subset of the shared suite the ledger needs.
type Store interface {
	String(key string) (string, bool, error)
	SetString(key, value string) error
	Decimal(key string) (decimal.Decimal, bool, error)
	SetDecimal(key string, value decimal.Decimal) error
	Time(key string) (time.Time, bool, error)
	SetTime(key string, value time.Time) error
	Blob(key string) ([]byte, bool, error)
	SetBlob(key string, value []byte) error
}

// Notifier is told to re-render widgets after a mutation. It must not block.
type Notifier interface {
	Notify(reason string)
}

// RateLookup resolves the conversion rate between two currencies.
type RateLookup interface {
	Rate(ctx context.Context, from, to string) (decimal.Decimal, error)
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for recovered failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the time zone that defines trip days.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithDefaultCurrencies sets the currencies used when the store has none.
func WithDefaultCurrencies(budgetCurrency, secondary string) Option {
	return func(s *Service) {
		if budgetCurrency != "" {
			s.defBudget = budgetCurrency
		}
		if secondary != "" {
			s.defSecondary = secondary
		}
	}
}

// Service is the expense ledger and trip lifecycle manager.
type Service struct {
	st  Store
	ntf Notifier
	log *slog.Logger
	now func() time.Time
	loc *time.Location

	defBudget    string
	defSecondary string

	mu      sync.Mutex
	active  model.TripRecord
	archive []model.TripRecord
}

// New loads the active trip and archive from st. Unreadable or malformed
// entries load as empty.
func New(st Store, ntf Notifier, opts ...Option) (*Service, error) {
	if st == nil {
		return nil, errors.New("ledger: nil store")
	}
	s := &Service{
		st:           st,
		ntf:          ntf,
		log:          slog.Default(),
		now:          time.Now,
		loc:          time.Local,
		defBudget:    "EUR",
		defSecondary: "USD",
	}
	for _, o := range opts {
		o(s)
	}
	if s.ntf == nil {
		s.ntf = nopNotifier{}
	}
	s.load()
	return s, nil
}

type nopNotifier struct{}

func (nopNotifier) Notify(string) {}

func (s *Service) today() time.Time {
	return budget.StartOfDay(s.now(), s.loc)
}

func (s *Service) load() {
	today := s.today()
	t := model.TripRecord{
		BudgetCurrency:    s.defBudget,
		SecondaryCurrency: s.defSecondary,
		StartDate:         today,
		EndDate:           today.AddDate(0, 0, DefaultTripDays),
		TotalBudget:       decimal.Zero,
	}

	if v, ok := s.readString(KeyName); ok {
		t.Name = v
	}
	if v, ok := s.readString(KeyBudgetCurrency); ok && v != "" {
		t.BudgetCurrency = v
	}
	if v, ok := s.readString(KeySecondaryCurrency); ok && v != "" {
		t.SecondaryCurrency = v
	}
	if v, ok, err := s.st.Decimal(KeyTotalBudget); err != nil {
		s.log.Warn("loading trip budget", "err", err)
	} else if ok {
		t.TotalBudget = v
	}
	if v, ok, err := s.st.Time(KeyStartDate); err != nil {
		s.log.Warn("loading trip start", "err", err)
	} else if ok {
		t.StartDate = v.In(s.loc)
	}
	if v, ok, err := s.st.Time(KeyEndDate); err != nil {
		s.log.Warn("loading trip end", "err", err)
	} else if ok {
		t.EndDate = v.In(s.loc)
	}

	if b, ok := s.readBlob(KeyExpenses); ok {
		exps, err := store.DecodeExpenses(b)
		if err != nil {
			s.log.Warn("discarding malformed expenses", "err", err)
		}
		t.Expenses = exps
	}
	model.SortExpenses(t.Expenses)
	s.active = t

	if b, ok := s.readBlob(KeyArchive); ok {
		trips, err := store.DecodeArchive(b)
		if err != nil {
			s.log.Warn("discarding malformed archive", "err", err)
		}
		s.archive = trips
	}
}

func (s *Service) readString(key string) (string, bool) {
	v, ok, err := s.st.String(key)
	if err != nil {
		s.log.Warn("loading trip state", "key", key, "err", err)
		return "", false
	}
	return v, ok
}

func (s *Service) readBlob(key string) ([]byte, bool) {
	v, ok, err := s.st.Blob(key)
	if err != nil {
		s.log.Warn("loading trip state", "key", key, "err", err)
		return nil, false
	}
	return v, ok
}

// Active returns a copy of the active trip.
func (s *Service) Active() model.TripRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active.Clone()
}

// Expenses returns a copy of the active trip's expenses, newest first.
func (s *Service) Expenses() []model.ExpenseRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CloneExpenses(s.active.Expenses)
}

// Stats runs the budget engine over the active trip.
func (s *Service) Stats(now time.Time) model.BudgetStats {
	t := s.Active()
	return budget.Compute(budget.FromTrip(t, s.loc), now)
}

// Location returns the time zone that defines trip days.
func (s *Service) Location() *time.Location { return s.loc }

// NewExpense builds a priced expense. Date defaults to now.
func NewExpense(amount decimal.Decimal, from, to string, rate decimal.Decimal, date time.Time, note *string) model.ExpenseRecord {
	if date.IsZero() {
		date = time.Now()
	}
	e := model.ExpenseRecord{
		ID:             uuid.NewString(),
		Amount:         amount,
		Currency:       from,
		TargetCurrency: to,
		Date:           date,
		Note:           note,
	}
	e.Reprice(rate)
	return e
}

// AddExpense appends rec to the active trip. A missing ID is assigned.
func (s *Service) AddExpense(rec model.ExpenseRecord) (model.ExpenseRecord, error) {
	if !rec.Amount.IsPositive() {
		return rec, ErrInvalidAmount
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Date.IsZero() {
		rec.Date = s.now()
	}

	s.mu.Lock()
	s.active.Expenses = append(s.active.Expenses, rec)
	model.SortExpenses(s.active.Expenses)
	err := s.persistExpensesLocked()
	s.mu.Unlock()

	s.ntf.Notify("expense.add")
	return rec, s.report("add expense", err)
}

// UpdateExpense replaces the expense with rec.ID. Unknown ids are ignored.
// The caller is responsible for ConvertedAmount; use EditExpense to reprice.
func (s *Service) UpdateExpense(rec model.ExpenseRecord) error {
	s.mu.Lock()
	idx := s.indexLocked(rec.ID)
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}
	s.active.Expenses[idx] = rec
	model.SortExpenses(s.active.Expenses)
	err := s.persistExpensesLocked()
	s.mu.Unlock()

	s.ntf.Notify("expense.update")
	return s.report("update expense", err)
}

// ExpenseEdit holds optional field changes. Nil fields are left untouched.
type ExpenseEdit struct {
	Amount         *decimal.Decimal
	Currency       *string
	TargetCurrency *string
	Date           *time.Time
	Note           *string
	ClearNote      bool
}

// EditExpense applies edit to expense id and reprices it through rates when
// the amount or either currency changed.
func (s *Service) EditExpense(ctx context.Context, id string, edit ExpenseEdit, rates RateLookup) (model.ExpenseRecord, error) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return model.ExpenseRecord{}, fmt.Errorf("expense %s: %w", id, ErrNotFound)
	}
	prev := s.active.Expenses[idx]
	s.mu.Unlock()

	next := prev
	if edit.Amount != nil {
		next.Amount = *edit.Amount
	}
	if edit.Currency != nil {
		next.Currency = *edit.Currency
	}
	if edit.TargetCurrency != nil {
		next.TargetCurrency = *edit.TargetCurrency
	}
	if edit.Date != nil {
		next.Date = *edit.Date
	}
	switch {
	case edit.ClearNote:
		next.Note = nil
	case edit.Note != nil:
		n := *edit.Note
		next.Note = &n
	}

	if !next.Amount.IsPositive() {
		return prev, ErrInvalidAmount
	}

	if next.NeedsReprice(prev) {
		rate, err := rates.Rate(ctx, next.Currency, next.TargetCurrency)
		if !rate.IsPositive() {
			if err == nil {
				err = errors.New("zero rate")
			}
			return prev, fmt.Errorf("%w: %w", ErrRateUnavailable, err)
		}
		if err != nil {
			s.log.Warn("repricing with cached rate", "from", next.Currency, "to", next.TargetCurrency, "err", err)
		}
		next.Reprice(rate)
	}

	return next, s.UpdateExpense(next)
}

// DeleteExpenses removes the expenses with the given ids.
func (s *Service) DeleteExpenses(ids ...string) error {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	s.mu.Lock()
	kept := s.active.Expenses[:0]
	for _, e := range s.active.Expenses {
		if !drop[e.ID] {
			kept = append(kept, e)
		}
	}
	s.active.Expenses = kept
	err := s.persistExpensesLocked()
	s.mu.Unlock()

	s.ntf.Notify("expense.delete")
	return s.report("delete expenses", err)
}

// FindExpense resolves a full id or a unique id prefix.
func (s *Service) FindExpense(idOrPrefix string) (model.ExpenseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var found []model.ExpenseRecord
	for _, e := range s.active.Expenses {
		if e.ID == idOrPrefix {
			return e, nil
		}
		if idOrPrefix != "" && strings.HasPrefix(e.ID, idOrPrefix) {
			found = append(found, e)
		}
	}
	switch len(found) {
	case 0:
		return model.ExpenseRecord{}, fmt.Errorf("expense %s: %w", idOrPrefix, ErrNotFound)
	case 1:
		return found[0], nil
	default:
		return model.ExpenseRecord{}, fmt.Errorf("expense %s: %w", idOrPrefix, ErrAmbiguous)
	}
}

func (s *Service) indexLocked(id string) int {
	for i, e := range s.active.Expenses {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (s *Service) persistExpensesLocked() error {
	b, err := store.EncodeExpenses(s.active.Expenses)
	if err != nil {
		return err
	}
	return s.st.SetBlob(KeyExpenses, b)
}

func (s *Service) persistSettingsLocked() error {
	t := s.active
	return errors.Join(
		s.st.SetString(KeyName, t.Name),
		s.st.SetDecimal(KeyTotalBudget, t.TotalBudget),
		s.st.SetString(KeyBudgetCurrency, t.BudgetCurrency),
		s.st.SetString(KeySecondaryCurrency, t.SecondaryCurrency),
		s.st.SetTime(KeyStartDate, t.StartDate),
		s.st.SetTime(KeyEndDate, t.EndDate),
	)
}

func (s *Service) persistArchiveLocked() error {
	b, err := store.EncodeArchive(s.archive)
	if err != nil {
		return err
	}
	return s.st.SetBlob(KeyArchive, b)
}

// report logs a persistence failure and wraps it as ErrPersist.
func (s *Service) report(op string, err error) error {
	if err == nil {
		return nil
	}
	s.log.Warn("trip state not saved", "op", op, "err", err)
	return fmt.Errorf("%w: %w", ErrPersist, err)
}
