package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/fxtrip/internal/cli"
	"github.com/theirongolddev/fxtrip/internal/model"
	"github.com/theirongolddev/fxtrip/internal/money"
	"github.com/theirongolddev/fxtrip/internal/tui/components"
	"github.com/theirongolddev/fxtrip/internal/tui/theme"
)

// renderHistoryTab shows trip days newest first with the selected day expanded.
func (a App) renderHistoryTab(cw, h int) string {
	return a.renderDays(a.stats, a.trip.BudgetCurrency, a.historyCursor, cw, h)
}

func (a App) renderDays(s model.BudgetStats, cur string, cursor, cw, h int) string {
	t := theme.Active
	if len(s.History) == 0 {
		return components.ContentCard(a.l.T("tab.history"),
			lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render(a.l.T("history.empty")),
			min(cw, 60), false)
	}

	listW := min(34, cw/3)
	detailW := cw - listW

	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)

	inner := components.CardInnerWidth(listW)

	// Rows are newest first; keep the selected day inside the visible window.
	n := len(s.History)
	maxRows := max(h-3, 1)
	sel := n - 1 - cursor
	offset := max(sel-maxRows+1, 0)

	rows := make([]string, 0, min(n, maxRows))
	for j := offset; j < n && j < offset+maxRows; j++ {
		i := n - 1 - j
		d := s.History[i]
		left := fmt.Sprintf("%2d %s", d.DayNumber, cli.FormatDate(d.Date))
		right := money.FormatMoney(d.Remaining, cur)
		gap := max(inner-lipgloss.Width(left)-lipgloss.Width(right), 1)

		style := rowStyle
		if i == cursor {
			style = selStyle
		}
		rows = append(rows, style.Render(left+strings.Repeat(" ", gap))+
			style.Foreground(t.AmountColor(d.Remaining)).Render(right))
	}

	listCard := components.ContentCard(a.l.T("tab.history"), strings.Join(rows, "\n"), listW, true)
	detail := a.renderDayDetail(s.History[cursor], cur, detailW)
	return components.CardRow([]string{listCard, detail})
}

func (a App) renderDayDetail(d model.DayHistory, cur string, w int) string {
	t := theme.Active
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	rows := []struct {
		k, v  string
		color lipgloss.Color
	}{
		{a.l.T("budget.daily_base"), money.FormatMoney(d.DailyLimit, cur), t.TextPrimary},
		{a.l.T("budget.rollover"), cli.FormatSigned(d.Rollover, cur), t.AmountColor(d.Rollover)},
		{a.l.T("budget.available_today"), money.FormatMoney(d.Available, cur), t.TextPrimary},
		{a.l.T("budget.spent_today"), money.FormatMoney(d.Spent, cur), t.TextPrimary},
		{a.l.T("budget.left_today"), money.FormatMoney(d.Remaining, cur), t.AmountColor(d.Remaining)},
	}
	for _, r := range rows {
		b.WriteString(label.Render(padRight(r.k, 18)))
		b.WriteString(value.Foreground(r.color).Render(r.v))
		b.WriteString("\n")
	}
	if d.Overspent() {
		b.WriteString(value.Foreground(t.Red).Render(a.l.T("history.overspent")))
		b.WriteString("\n")
	}

	if len(d.SpentByCurrency) > 1 {
		codes := make([]string, 0, len(d.SpentByCurrency))
		for code := range d.SpentByCurrency {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		parts := make([]string, len(codes))
		for i, code := range codes {
			parts[i] = money.FormatMoney(d.SpentByCurrency[code], code)
		}
		b.WriteString(dim.Render(strings.Join(parts, " · ")))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if len(d.Expenses) == 0 {
		b.WriteString(dim.Render(a.l.T("expense.none")))
	}
	inner := components.CardInnerWidth(w)
	for i, e := range d.Expenses {
		amount := money.FormatMoney(e.Amount, e.Currency)
		if e.Currency != e.TargetCurrency {
			amount += " → " + money.FormatMoney(e.ConvertedAmount, e.TargetCurrency)
		}
		note := e.NoteText()
		if note == "" {
			note = e.Date.In(a.location()).Format("15:04")
		}
		note = cli.Truncate(note, max(inner-lipgloss.Width(amount)-2, 4))
		gap := max(inner-lipgloss.Width(note)-lipgloss.Width(amount), 1)
		b.WriteString(label.Render(note + strings.Repeat(" ", gap)))
		b.WriteString(value.Render(amount))
		if i < len(d.Expenses)-1 {
			b.WriteString("\n")
		}
	}

	title := a.l.T("history.day", d.DayNumber) + "  " + cli.FormatDate(d.Date)
	return components.ContentCard(title, b.String(), w, false)
}

func (a App) location() *time.Location {
	if a.ledger == nil {
		return time.Local
	}
	return a.ledger.Location()
}
