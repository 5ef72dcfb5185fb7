package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/fxtrip/internal/tui/theme"
)

// BudgetBar renders a labeled spend bar: the fill shows how much of the
// day's allowance is used.
func BudgetBar(label string, pct float64, labelW, barWidth int) string {
	t := theme.Active

	pct = min(max(pct, 0), 1)
	color := t.ProgressColor(pct)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(max(barWidth, 4)),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	out := bar.ViewAs(pct) +
		spaceStyle.Render(" ") +
		pctStyle.Render(fmt.Sprintf("%3.0f%%", pct*100))
	if label == "" {
		return out
	}
	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) + spaceStyle.Render(" ") + out
}
