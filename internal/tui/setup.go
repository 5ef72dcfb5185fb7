package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/go-playground/validator/v10"

	"github.com/theirongolddev/fxtrip/internal/i18n"
	"github.com/theirongolddev/fxtrip/internal/model"
	"github.com/theirongolddev/fxtrip/internal/money"
)

const dateLayout = "2006-01-02"

var validate = validator.New()

// tripInput is the parsed form as checked before saving.
type tripInput struct {
	Currency  string    `validate:"required,uppercase,len=3"`
	Secondary string    `validate:"required,uppercase,len=3"`
	Start     time.Time `validate:"required"`
	End       time.Time `validate:"required,gtefield=Start"`
}

// TripValues holds the raw trip form input.
type TripValues struct {
	Name      string
	Budget    string
	Currency  string
	Secondary string
	Start     string
	End       string
}

// TripValuesFrom pre-fills the form from the active trip settings.
func TripValuesFrom(ts model.TripSettings) TripValues {
	v := TripValues{
		Name:      ts.Name,
		Currency:  ts.BudgetCurrency,
		Secondary: ts.SecondaryCurrency,
		Start:     ts.StartDate.Format(dateLayout),
		End:       ts.EndDate.Format(dateLayout),
	}
	if ts.TotalBudget.IsPositive() {
		v.Budget = ts.TotalBudget.String()
	}
	return v
}

// Settings parses the form values into trip settings in loc.
func (v TripValues) Settings(loc *time.Location) (model.TripSettings, error) {
	ts := model.TripSettings{
		Name:              strings.TrimSpace(v.Name),
		BudgetCurrency:    money.NormalizeCode(v.Currency),
		SecondaryCurrency: money.NormalizeCode(v.Secondary),
	}
	if strings.TrimSpace(v.Budget) != "" {
		amount, err := money.ParseInput(v.Budget)
		if err != nil {
			return ts, fmt.Errorf("budget: %w", err)
		}
		ts.TotalBudget = amount
	}

	var err error
	if ts.StartDate, err = time.ParseInLocation(dateLayout, strings.TrimSpace(v.Start), loc); err != nil {
		return ts, fmt.Errorf("start date: %w", err)
	}
	if ts.EndDate, err = time.ParseInLocation(dateLayout, strings.TrimSpace(v.End), loc); err != nil {
		return ts, fmt.Errorf("end date: %w", err)
	}

	in := tripInput{
		Currency:  ts.BudgetCurrency,
		Secondary: ts.SecondaryCurrency,
		Start:     ts.StartDate,
		End:       ts.EndDate,
	}
	if err := validate.Struct(in); err != nil {
		return ts, fmt.Errorf("trip settings: %w", err)
	}
	return ts, nil
}

func validateAmount(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	_, err := money.ParseInput(s)
	return err
}

func validateDate(s string) error {
	if _, err := time.Parse(dateLayout, strings.TrimSpace(s)); err != nil {
		return errors.New("use YYYY-MM-DD")
	}
	return nil
}

// CurrencyOptions lists the built-in currencies for huh selects.
func CurrencyOptions() []huh.Option[string] {
	codes := money.Codes()
	opts := make([]huh.Option[string], len(codes))
	for i, code := range codes {
		opts[i] = huh.NewOption(code+"  "+money.Lookup(code).Name, code)
	}
	return opts
}

// NewTripForm builds the trip settings form bound to vals.
func NewTripForm(vals *TripValues, l i18n.Localizer) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(l.T("trip.name")).
				Placeholder(l.T("trip.untitled")).
				Value(&vals.Name),
			huh.NewInput().
				Title(l.T("trip.budget")).
				Placeholder("1500").
				Validate(validateAmount).
				Value(&vals.Budget),
			huh.NewSelect[string]().
				Title(l.T("trip.currency")).
				Options(CurrencyOptions()...).
				Height(6).
				Value(&vals.Currency),
			huh.NewSelect[string]().
				Title(l.T("trip.secondary")).
				Options(CurrencyOptions()...).
				Height(6).
				Value(&vals.Secondary),
		),
		huh.NewGroup(
			huh.NewInput().
				Title(l.T("trip.start")).
				Placeholder(dateLayout).
				Validate(validateDate).
				Value(&vals.Start),
			huh.NewInput().
				Title(l.T("trip.end")).
				Placeholder(dateLayout).
				Validate(validateDate).
				Value(&vals.End),
		),
	).WithTheme(huh.ThemeBase16()).WithShowHelp(false)
}
