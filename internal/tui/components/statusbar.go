package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/fxtrip/internal/tui/theme"
)

// RenderStatusBar renders the bottom status bar: key hints on the left,
// a status message (rate age, save result) on the right.
func RenderStatusBar(width int, hints, status string, warn bool) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	statusStyle := base
	if warn {
		statusStyle = statusStyle.Foreground(t.Orange)
	}

	left := " " + hints
	right := ""
	if status != "" {
		right = status + " "
	}

	padding := max(width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return base.Render(left+strings.Repeat(" ", padding)) + statusStyle.Render(right)
}
