package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/theirongolddev/fxtrip/internal/tui/theme"
)

func init() {
	// Force TrueColor output so ANSI codes are generated in tests
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestLayoutRowSumsToWidth(t *testing.T) {
	for _, total := range []int{80, 81, 119, 120} {
		for n := 1; n <= 5; n++ {
			sum := 0
			for _, w := range LayoutRow(total, n) {
				sum += w
			}
			if sum != total {
				t.Fatalf("LayoutRow(%d, %d) sums to %d", total, n, sum)
			}
		}
	}
	if LayoutRow(10, 0) != nil {
		t.Fatal("LayoutRow with n=0 should be nil")
	}
}

func TestCardRowBackgroundFill(t *testing.T) {
	theme.SetActive("flexoki-dark")

	shortCard := ContentCard("Today", "€42.50", 22, false)
	tallCard := ContentCard("Rollover", "Line 1\nLine 2\nLine 3\nLine 4\nLine 5", 22, true)

	shortLines := lipgloss.Height(shortCard)
	tallLines := lipgloss.Height(tallCard)
	if shortLines >= tallLines {
		t.Fatal("test setup error: short card should be shorter than tall card")
	}

	joined := CardRow([]string{tallCard, shortCard})
	lines := strings.Split(joined, "\n")
	if len(lines) != tallLines {
		t.Fatalf("joined height = %d, want %d", len(lines), tallLines)
	}

	want := lipgloss.Width(lines[0])
	for i, line := range lines {
		if w := lipgloss.Width(line); w != want {
			t.Errorf("line %d width = %d, want %d", i, w, want)
		}
		// Padding under the short card must carry background styling.
		if i >= shortLines && strings.Count(line, "\x1b[") < 2 {
			t.Errorf("line %d has unstyled padding: %q", i, line)
		}
	}
}

func TestMetricCardRowWidth(t *testing.T) {
	theme.SetActive("terminal")
	defer theme.SetActive("flexoki-dark")

	row := MetricCardRow([]Metric{
		{Label: "Left today", Value: "¥4,200", Color: theme.Active.Green},
		{Label: "Spent", Value: "¥800"},
		{Label: "Rollover", Value: "-¥300", Note: "over budget", Color: theme.Active.Red},
	}, 90)

	for i, line := range strings.Split(row, "\n") {
		if w := lipgloss.Width(line); w != 90 {
			t.Errorf("line %d width = %d, want 90", i, w)
		}
	}
}

func TestTabBarHitWidths(t *testing.T) {
	tabs := []Tab{{Name: "Umrechnen", Key: 'v'}, {Name: "Budget", Key: 'b'}, {Name: "履歴", Key: 'h'}}
	if got := TabVisualWidth(tabs[2], true); got != 6 {
		t.Errorf("active wide-char tab width = %d, want 6", got)
	}
	if got := TabVisualWidth(tabs[0], false); got != 14 {
		t.Errorf("inactive tab width = %d, want 14", got)
	}
	if TabIdxByKey(tabs, 'h') != 2 || TabIdxByKey(tabs, 'z') != -1 {
		t.Error("TabIdxByKey mismatch")
	}
}

func TestSpendChartSmallFallsBackToSparkline(t *testing.T) {
	out := SpendChart([]float64{1, 2, 3}, nil, 2, 10, 2)
	if lipgloss.Height(out) != 1 {
		t.Errorf("small chart should be a one-line sparkline, got %q", out)
	}
	if SpendChart(nil, nil, 0, 80, 10) != "" {
		t.Error("empty chart should render nothing")
	}
}
