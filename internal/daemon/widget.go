package daemon

import (
	"github.com/theirongolddev/fxtrip/internal/i18n"
	"github.com/theirongolddev/fxtrip/internal/money"
)

// Widget sizes.
const (
	SizeSmall  = "small"
	SizeMedium = "medium"
)

// WidgetView is a ready-to-draw widget: localized and formatted.
type WidgetView struct {
	Size      string   `json:"size"`
	Title     string   `json:"title"`
	Headline  string   `json:"headline"`
	Caption   string   `json:"caption,omitempty"`
	Progress  float64  `json:"progress"`
	Overspent bool     `json:"overspent"`
	Lines     []string `json:"lines,omitempty"`
}

// RenderWidget builds the view for snap. Medium widgets add detail lines.
func RenderWidget(snap Snapshot, size string, l i18n.Localizer) WidgetView {
	v := WidgetView{Size: size, Title: snap.TripName, Progress: snap.Progress}
	if v.Title == "" {
		v.Title = l.T("trip.untitled")
	}
	cur := snap.Currency

	switch {
	case !snap.BudgetSet:
		v.Headline = l.T("budget.not_set")
		v.Progress = 0
		return v
	case !snap.InRange && snap.DaysFromStart < 0:
		v.Headline = money.FormatMoney(snap.DailyBase, cur)
		v.Caption = l.T("budget.not_started", -snap.DaysFromStart)
	case !snap.InRange:
		v.Headline = money.FormatMoney(snap.TotalRemaining, cur)
		v.Caption = l.T("budget.ended")
		v.Overspent = snap.TotalRemaining.IsNegative()
	default:
		v.Headline = money.FormatMoney(snap.RemainingToday, cur)
		v.Caption = l.T("budget.left_today")
		v.Overspent = snap.RemainingToday.IsNegative()
	}

	if size != SizeMedium {
		return v
	}

	if snap.InRange {
		v.Lines = append(v.Lines,
			l.T("budget.day_of", snap.DayNumber, snap.TotalDays),
			l.T("budget.spent_today")+": "+money.FormatMoney(snap.SpentToday, cur),
		)
	}
	v.Lines = append(v.Lines, l.T("budget.total_remaining")+": "+money.FormatMoney(snap.TotalRemaining, cur))

	if snap.SecondaryCurrency != "" && snap.SecondaryCurrency != cur {
		if snap.Rate.IsPositive() {
			v.Lines = append(v.Lines, money.FormatRate(snap.Rate, cur, snap.SecondaryCurrency))
		} else {
			v.Lines = append(v.Lines, l.T("convert.rate_unavailable"))
		}
	}
	return v
}
