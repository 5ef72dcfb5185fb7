package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fxtrip/internal/money"
	"github.com/theirongolddev/fxtrip/internal/tui/components"
	"github.com/theirongolddev/fxtrip/internal/tui/theme"
)

// updateConvert handles keypad keys. ok is false for keys the tab does not own.
func (a App) updateConvert(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	k := msg.String()
	switch {
	case key.Matches(msg, keys.Amount):
		a.conv.Press(k)
	case key.Matches(msg, keys.Erase):
		if k == "backspace" {
			a.conv.Press("backspace")
		} else {
			a.conv.Press("clear")
		}
	case key.Matches(msg, keys.Swap):
		a.conv.Swap()
		return a, a.refreshIfUnknown(), true
	case key.Matches(msg, keys.Cycle):
		from, to := a.conv.Pair()
		if k == "f" {
			from = nextCode(from)
		} else {
			to = nextCode(to)
		}
		a.conv.SetPair(from, to)
		return a, a.refreshIfUnknown(), true
	case key.Matches(msg, keys.Refresh):
		if a.rates == nil {
			return a, nil, true
		}
		return a, refreshRateCmd(a.conv), true
	case key.Matches(msg, keys.Log):
		if a.conv.Amount().IsPositive() {
			a.noting = true
			a.note.SetValue("")
			return a, a.note.Focus(), true
		}
	default:
		return a, nil, false
	}
	a.pending = ""
	return a, nil, true
}

func (a App) refreshIfUnknown() tea.Cmd {
	if a.rates == nil || a.conv.Rate().IsPositive() {
		return nil
	}
	return refreshRateCmd(a.conv)
}

// updateNote edits the note of the expense being logged.
func (a App) updateNote(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.noting = false
		a.note.Blur()
		return a, nil
	case "enter":
		a.noting = false
		a.note.Blur()

		var note *string
		if text := strings.TrimSpace(a.note.Value()); text != "" {
			note = &text
		}

		from, to := a.conv.Pair()
		target := a.trip.BudgetCurrency
		known := decimal.Zero
		if target == to {
			known = a.conv.Rate()
		}
		return a, logExpenseCmd(a.ledger, a.rates, a.conv.Amount(), from, target, known, note, a.now())
	}

	var cmd tea.Cmd
	a.note, cmd = a.note.Update(msg)
	return a, cmd
}

// nextCode cycles through the built-in currency table.
func nextCode(code string) string {
	codes := money.Codes()
	for i, c := range codes {
		if c == code {
			return codes[(i+1)%len(codes)]
		}
	}
	return codes[0]
}

func (a App) renderConvertTab(cw int) string {
	t := theme.Active
	from, to := a.conv.Pair()

	codeStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Bold(true)
	inputStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	resultStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	var b strings.Builder
	b.WriteString(codeStyle.Render(from))
	b.WriteString(dimStyle.Render("  "))
	b.WriteString(inputStyle.Render(money.Lookup(from).Symbol + a.conv.Input()))
	b.WriteString("\n\n")
	b.WriteString(codeStyle.Render(to))
	b.WriteString(dimStyle.Render("  "))

	rate := a.conv.Rate()
	if rate.IsPositive() {
		b.WriteString(resultStyle.Render(money.FormatMoney(a.conv.Converted(), to)))
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render(money.FormatRate(rate, from, to)))
	} else {
		b.WriteString(resultStyle.Render("—"))
		b.WriteString("\n\n")
		if a.conv.Busy() {
			b.WriteString(dimStyle.Render(a.spinner.View()))
		} else {
			b.WriteString(warnStyle.Render(a.l.T("convert.rate_unavailable")))
		}
	}

	cardW := min(cw, 60)
	card := components.ContentCard(a.l.T("tab.convert"), b.String(), cardW, true)

	if a.noting {
		note := components.ContentCard(a.l.T("expense.note"), a.note.View(), cardW, true)
		card = lipgloss.JoinVertical(lipgloss.Left, card, note)
	} else if a.trip.IsBudgetSet() {
		left := money.FormatMoney(a.stats.RemainingToday, a.trip.BudgetCurrency) + " " + a.l.T("budget.left_today")
		leftStyle := lipgloss.NewStyle().Foreground(t.AmountColor(a.stats.RemainingToday)).Background(t.Surface)
		card = lipgloss.JoinVertical(lipgloss.Left, card,
			components.ContentCard(a.trip.DisplayName(), leftStyle.Render(left), cardW, false))
	}
	return card
}
