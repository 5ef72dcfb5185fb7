package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/fxtrip/internal/budget"
	"github.com/theirongolddev/fxtrip/internal/cli"
	"github.com/theirongolddev/fxtrip/internal/model"
	"github.com/theirongolddev/fxtrip/internal/money"
	"github.com/theirongolddev/fxtrip/internal/tui/components"
	"github.com/theirongolddev/fxtrip/internal/tui/theme"
)

// dayCaption describes where today sits in the trip.
func (a App) dayCaption(s model.BudgetStats) string {
	switch {
	case s.DaysFromStart < 0:
		return a.l.T("budget.not_started", -s.DaysFromStart)
	case !s.InRange:
		return a.l.T("budget.ended")
	default:
		return a.l.T("budget.day_of", s.CurrentDayNum, s.TotalDays)
	}
}

func (a App) renderBudgetTab(cw int) string {
	t := theme.Active
	cur := a.trip.BudgetCurrency
	s := a.stats

	if !a.trip.IsBudgetSet() {
		body := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).
			Render(a.l.T("budget.not_set") + "\n\n[e] " + a.l.T("trip.budget"))
		return components.ContentCard(a.trip.DisplayName(), body, min(cw, 60), true)
	}

	var b strings.Builder

	title := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Background).Bold(true).
		Render(a.trip.DisplayName())
	sub := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Background).
		Render("  " + a.dayCaption(s) + "  ·  " + cli.FormatRange(a.trip.StartDate, a.trip.EndDate))
	b.WriteString(title + sub)
	b.WriteString("\n")

	b.WriteString(components.MetricCardRow([]components.Metric{
		{
			Label: a.l.T("budget.left_today"),
			Value: money.FormatMoney(s.RemainingToday, cur),
			Color: t.AmountColor(s.RemainingToday),
		},
		{Label: a.l.T("budget.available_today"), Value: money.FormatMoney(s.AvailableToday, cur)},
		{Label: a.l.T("budget.spent_today"), Value: money.FormatMoney(s.SpentToday, cur)},
		{
			Label: a.l.T("budget.rollover"),
			Value: cli.FormatSigned(s.SavedFromPreviousDays, cur),
			Color: t.AmountColor(s.SavedFromPreviousDays),
		},
	}, cw))
	b.WriteString("\n")

	barW := max(cw-30, 10)
	bar := components.BudgetBar(a.l.T("budget.spent_today"), s.Progress, 14, barW)
	b.WriteString(components.ContentCard("", bar, cw, false))
	b.WriteString("\n")

	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: a.l.T("budget.daily_base"), Value: money.FormatMoney(s.DailyBase, cur)},
		{Label: a.l.T("budget.total_spent"), Value: money.FormatMoney(s.TotalSpent, cur)},
		{
			Label: a.l.T("budget.total_remaining"),
			Value: money.FormatMoney(s.TotalRemaining, cur),
			Color: t.AmountColor(s.TotalRemaining),
			Note:  money.FormatMoney(s.TotalBudget, cur),
		},
	}, cw))

	if len(s.History) > 0 {
		values := make([]float64, len(s.History))
		labels := make([]string, len(s.History))
		for i, d := range s.History {
			values[i] = d.Spent.InexactFloat64()
			labels[i] = fmt.Sprintf("%d", d.DayNumber)
		}
		chart := components.SpendChart(values, labels, s.DailyBase.InexactFloat64(), components.CardInnerWidth(cw), 8)
		b.WriteString("\n")
		b.WriteString(components.ContentCard(a.l.T("tab.history"), chart, cw, false))
	}

	if totals := budget.CurrencyTotals(s); len(totals) > 1 {
		parts := make([]string, len(totals))
		for i, ct := range totals {
			parts[i] = money.FormatMoney(ct.Amount, ct.Currency)
		}
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Background).
			Render(" " + strings.Join(parts, "  ·  ")))
	}

	return b.String()
}
