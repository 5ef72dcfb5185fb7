package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fxtrip/internal/budget"
	"github.com/theirongolddev/fxtrip/internal/model"
)

// SaveSettings overwrites the active trip's configuration. Expenses are kept.
func (s *Service) SaveSettings(ts model.TripSettings) error {
	s.mu.Lock()
	s.active.Name = strings.TrimSpace(ts.Name)
	s.active.TotalBudget = ts.TotalBudget
	if ts.BudgetCurrency != "" {
		s.active.BudgetCurrency = ts.BudgetCurrency
	}
	if ts.SecondaryCurrency != "" {
		s.active.SecondaryCurrency = ts.SecondaryCurrency
	}
	if !ts.StartDate.IsZero() {
		s.active.StartDate = budget.StartOfDay(ts.StartDate, s.loc)
	}
	if !ts.EndDate.IsZero() {
		s.active.EndDate = budget.StartOfDay(ts.EndDate, s.loc)
	}
	err := s.persistSettingsLocked()
	s.mu.Unlock()

	s.ntf.Notify("trip.settings")
	return s.report("save settings", err)
}

// Settings returns the editable fields of the active trip.
func (s *Service) Settings() model.TripSettings {
	t := s.Active()
	return model.TripSettings{
		Name:              t.Name,
		TotalBudget:       t.TotalBudget,
		BudgetCurrency:    t.BudgetCurrency,
		SecondaryCurrency: t.SecondaryCurrency,
		StartDate:         t.StartDate,
		EndDate:           t.EndDate,
	}
}

// FinishActive archives the active trip and resets it. It does nothing
// unless a budget is set. The archived copy is returned when one was made.
func (s *Service) FinishActive() (model.TripRecord, bool, error) {
	s.mu.Lock()
	snap, ok, err := s.finishLocked()
	s.mu.Unlock()

	if !ok {
		return model.TripRecord{}, false, nil
	}
	s.ntf.Notify("trip.finish")
	return snap, true, s.report("finish trip", err)
}

func (s *Service) finishLocked() (model.TripRecord, bool, error) {
	if !s.active.IsBudgetSet() {
		return model.TripRecord{}, false, nil
	}

	snap := s.active.Clone()
	snap.ID = uuid.NewString()
	snap.Name = snap.DisplayName()
	if snap.Expenses == nil {
		snap.Expenses = []model.ExpenseRecord{}
	}
	s.archive = append([]model.TripRecord{snap}, s.archive...)

	today := s.today()
	s.active = model.TripRecord{
		TotalBudget:       decimal.Zero,
		BudgetCurrency:    s.active.BudgetCurrency,
		SecondaryCurrency: s.active.SecondaryCurrency,
		StartDate:         today,
		EndDate:           today.AddDate(0, 0, DefaultTripDays),
	}

	err := errors.Join(
		s.persistArchiveLocked(),
		s.persistSettingsLocked(),
		s.persistExpensesLocked(),
	)
	return snap.Clone(), true, err
}

// Archive returns the archived trips, most recently finished first.
func (s *Service) Archive() []model.TripRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.TripRecord, len(s.archive))
	for i, t := range s.archive {
		out[i] = t.Clone()
	}
	return out
}

// ArchivedTrip resolves an archive entry by id or unique id prefix.
func (s *Service) ArchivedTrip(idOrPrefix string) (model.TripRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, err := s.archiveIndexLocked(idOrPrefix)
	if err != nil {
		return model.TripRecord{}, err
	}
	return s.archive[i].Clone(), nil
}

// ArchivedStats runs the budget engine over an archived trip.
func (s *Service) ArchivedStats(idOrPrefix string, now time.Time) (model.TripRecord, model.BudgetStats, error) {
	t, err := s.ArchivedTrip(idOrPrefix)
	if err != nil {
		return model.TripRecord{}, model.BudgetStats{}, err
	}
	return t, budget.Compute(budget.FromTrip(t, s.loc), now), nil
}

// RestoreFromArchive makes an archived trip active again and removes it from
// the archive. An active trip with a budget and expenses is finished first.
func (s *Service) RestoreFromArchive(idOrPrefix string) (model.TripRecord, error) {
	s.mu.Lock()
	i, err := s.archiveIndexLocked(idOrPrefix)
	if err != nil {
		s.mu.Unlock()
		return model.TripRecord{}, err
	}
	entry := s.archive[i]

	var errs []error
	if s.active.IsBudgetSet() && len(s.active.Expenses) > 0 {
		_, _, ferr := s.finishLocked()
		errs = append(errs, ferr)
	}

	restored := entry.Clone()
	restored.ID = ""
	model.SortExpenses(restored.Expenses)
	s.active = restored

	s.archive = removeTrip(s.archive, entry.ID)
	errs = append(errs,
		s.persistSettingsLocked(),
		s.persistExpensesLocked(),
		s.persistArchiveLocked(),
	)
	s.mu.Unlock()

	s.ntf.Notify("trip.restore")
	return restored.Clone(), s.report("restore trip", errors.Join(errs...))
}

// DeleteFromArchive removes archive entries by id.
func (s *Service) DeleteFromArchive(ids ...string) error {
	s.mu.Lock()
	for _, id := range ids {
		s.archive = removeTrip(s.archive, id)
	}
	err := s.persistArchiveLocked()
	s.mu.Unlock()

	s.ntf.Notify("archive.delete")
	return s.report("delete archived trips", err)
}

func (s *Service) archiveIndexLocked(idOrPrefix string) (int, error) {
	match := -1
	for i, t := range s.archive {
		if t.ID == idOrPrefix {
			return i, nil
		}
		if idOrPrefix != "" && strings.HasPrefix(t.ID, idOrPrefix) {
			if match >= 0 {
				return -1, fmt.Errorf("archived trip %s: %w", idOrPrefix, ErrAmbiguous)
			}
			match = i
		}
	}
	if match < 0 {
		return -1, fmt.Errorf("archived trip %s: %w", idOrPrefix, ErrNotFound)
	}
	return match, nil
}

func removeTrip(trips []model.TripRecord, id string) []model.TripRecord {
	out := trips[:0]
	for _, t := range trips {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}
