package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fxtrip/internal/cli"
	"github.com/theirongolddev/fxtrip/internal/model"
	"github.com/theirongolddev/fxtrip/internal/money"
	"github.com/theirongolddev/fxtrip/internal/tui/components"
	"github.com/theirongolddev/fxtrip/internal/tui/theme"
)

func (a App) renderArchiveTab(cw int) string {
	t := theme.Active
	if len(a.archive) == 0 {
		return components.ContentCard(a.l.T("tab.archive"),
			lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render(a.l.T("archive.empty")),
			min(cw, 60), false)
	}

	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	inner := components.CardInnerWidth(cw)
	nameW := max(inner-52, 12)

	var b strings.Builder
	for i, trip := range a.archive {
		spent := sumConverted(trip.Expenses)
		line := padRight(cli.Truncate(trip.DisplayName(), nameW), nameW) + "  " +
			padRight(cli.FormatRange(trip.StartDate, trip.EndDate), 25) + "  " +
			money.FormatMoney(spent, trip.BudgetCurrency) + " / " +
			money.FormatMoney(trip.TotalBudget, trip.BudgetCurrency)

		style := rowStyle
		if i == a.archiveCursor {
			style = selStyle
		}
		b.WriteString(style.Render(padRight(line, inner)))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render(cli.ShortID(a.archive[a.archiveCursor].ID)))

	list := components.ContentCard(a.l.T("tab.archive"), b.String(), cw, !a.archiveOpen)
	if !a.archiveOpen {
		return list
	}

	sel := a.archive[a.archiveCursor]
	trip, stats, err := a.ledger.ArchivedStats(sel.ID, a.now())
	if err != nil {
		return list
	}
	cur := trip.BudgetCurrency
	summary := components.MetricCardRow([]components.Metric{
		{Label: a.l.T("budget.daily_base"), Value: money.FormatMoney(stats.DailyBase, cur)},
		{Label: a.l.T("budget.total_spent"), Value: money.FormatMoney(stats.TotalSpent, cur)},
		{
			Label: a.l.T("budget.total_remaining"),
			Value: money.FormatMoney(stats.TotalRemaining, cur),
			Color: t.AmountColor(stats.TotalRemaining),
		},
	}, cw)
	return lipgloss.JoinVertical(lipgloss.Left, list, summary)
}

func sumConverted(exps []model.ExpenseRecord) decimal.Decimal {
	total := decimal.Zero
	for _, e := range exps {
		total = total.Add(e.ConvertedAmount)
	}
	return total
}
