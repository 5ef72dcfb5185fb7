// Package tui provides the interactive Bubble Tea dashboard for fxtrip.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fxtrip/internal/config"
	"github.com/theirongolddev/fxtrip/internal/i18n"
	"github.com/theirongolddev/fxtrip/internal/ledger"
	"github.com/theirongolddev/fxtrip/internal/model"
	"github.com/theirongolddev/fxtrip/internal/money"
	"github.com/theirongolddev/fxtrip/internal/rates"
	"github.com/theirongolddev/fxtrip/internal/tui/components"
	"github.com/theirongolddev/fxtrip/internal/tui/theme"
)

const (
	tabConvert = iota
	tabBudget
	tabHistory
	tabArchive
)

const (
	minTerminalWidth = 60
	maxContentWidth  = 120
	minContentHeight = 5

	tickInterval    = 30 * time.Second
	rateStaleAfter  = 10 * time.Minute
	rateCallTimeout = 15 * time.Second
)

// Options wires the dashboard to its services.
type Options struct {
	Ledger    *ledger.Service
	Rates     *rates.Service
	Config    config.Config
	Localizer i18n.Localizer
	Logger    *slog.Logger
	Now       func() time.Time
}

// rateMsg reports a finished converter refresh.
type rateMsg struct {
	err error
	at  time.Time
}

// loggedMsg reports a finished expense save.
type loggedMsg struct {
	rec model.ExpenseRecord
	err error
}

type tickMsg struct{}

// App is the root Bubble Tea model.
type App struct {
	ledger *ledger.Service
	rates  *rates.Service
	conv   *rates.Converter
	cfg    config.Config
	l      i18n.Localizer
	log    *slog.Logger
	now    func() time.Time

	// Derived state, rebuilt by reload
	trip    model.TripRecord
	stats   model.BudgetStats
	archive []model.TripRecord

	tabs      []components.Tab
	width     int
	height    int
	activeTab int
	showHelp  bool

	// Converter
	rateAt  time.Time
	spinner spinner.Model
	noting  bool
	note    textinput.Model

	// History and archive browsing
	historyCursor int
	archiveCursor int
	archiveOpen   bool

	// Two-step confirmation for destructive keys: the key must be pressed twice.
	pending string

	// Trip settings (huh form)
	tripForm *huh.Form
	tripVals TripValues

	status     string
	statusWarn bool
}

// NewApp creates a new dashboard model.
func NewApp(opts Options) App {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	a := App{
		ledger:  opts.Ledger,
		rates:   opts.Rates,
		cfg:     opts.Config,
		l:       opts.Localizer,
		log:     log,
		now:     now,
		spinner: sp,
		note:    newNoteInput(opts.Localizer),
	}
	a.tabs = []components.Tab{
		{Name: a.l.T("tab.convert"), Key: 'v'},
		{Name: a.l.T("tab.budget"), Key: 'b'},
		{Name: a.l.T("tab.history"), Key: 'h'},
		{Name: a.l.T("tab.archive"), Key: 'a'},
	}

	from, to := opts.Config.Currency.From, opts.Config.Currency.To
	if a.ledger != nil {
		a.reload()
		if a.trip.IsBudgetSet() {
			from, to = a.trip.SecondaryCurrency, a.trip.BudgetCurrency
		}
	}
	a.conv = rates.NewConverter(opts.Rates, from, to)
	return a
}

func newNoteInput(l i18n.Localizer) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = l.T("expense.note")
	ti.CharLimit = 120
	ti.Width = 40
	return ti
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.EnableMouseCellMotion, tickCmd(), a.spinner.Tick}
	if a.rates != nil {
		cmds = append(cmds, refreshRateCmd(a.conv))
	}
	return tea.Batch(cmds...)
}

// reload rebuilds derived state from the ledger.
func (a *App) reload() {
	a.trip = a.ledger.Active()
	a.stats = a.ledger.Stats(a.now())
	a.archive = a.ledger.Archive()

	a.historyCursor = min(a.historyCursor, max(len(a.stats.History)-1, 0))
	a.archiveCursor = min(a.archiveCursor, max(len(a.archive)-1, 0))
	if len(a.archive) == 0 {
		a.archiveOpen = false
	}
}

func (a *App) setStatus(msg string, warn bool) {
	a.status, a.statusWarn = msg, warn
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.tripForm != nil {
			a.tripForm = a.tripForm.WithWidth(min(msg.Width, maxContentWidth)).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if a.showHelp || a.tripForm != nil || a.noting {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			a.moveCursor(-1)
		case tea.MouseButtonWheelDown:
			a.moveCursor(1)
		case tea.MouseButtonLeft:
			if msg.Action == tea.MouseActionPress && msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.activeTab = tab
					a.pending = ""
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.tripForm != nil {
			return a.updateTripForm(msg)
		}
		if a.noting {
			return a.updateNote(msg)
		}
		return a.handleKey(msg)

	case rateMsg:
		switch {
		case errors.Is(msg.err, rates.ErrBusy), errors.Is(msg.err, rates.ErrSuperseded):
		case msg.err != nil:
			a.log.Warn("rate refresh failed", "error", msg.err)
			a.setStatus(a.l.T("convert.rate_unavailable"), true)
		default:
			a.rateAt = msg.at
			a.setStatus("", false)
		}
		return a, nil

	case loggedMsg:
		switch {
		case msg.err != nil && !errors.Is(msg.err, ledger.ErrPersist):
			a.setStatus(msg.err.Error(), true)
		case msg.err != nil:
			a.log.Warn("expense saved in memory only", "error", msg.err)
			a.setStatus(a.l.T("convert.logged")+" (not persisted)", true)
			a.conv.SetAmount(decimal.Zero)
		default:
			a.setStatus(a.l.T("convert.logged")+": "+money.FormatMoney(msg.rec.ConvertedAmount, msg.rec.TargetCurrency), false)
			a.conv.SetAmount(decimal.Zero)
		}
		a.reload()
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		a.reload()
		if a.cfg.TUI.AutoRefresh && a.rates != nil && !a.conv.Busy() && a.now().Sub(a.rateAt) >= rateStaleAfter {
			cmds = append(cmds, refreshRateCmd(a.conv))
		}
		return a, tea.Batch(cmds...)
	}

	// Forward unhandled messages (cursor blinks) to the active input.
	if a.tripForm != nil {
		return a.updateTripForm(msg)
	}
	if a.noting {
		var cmd tea.Cmd
		a.note, cmd = a.note.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Help) {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	pending := a.pending
	a.pending = ""

	switch a.activeTab {
	case tabConvert:
		if m, cmd, ok := a.updateConvert(msg); ok {
			return m, cmd
		}
	case tabBudget:
		if key.Matches(msg, keys.Finish) {
			return a.confirm("F", pending, func(a *App) {
				if _, ok, err := a.ledger.FinishActive(); err != nil {
					a.setStatus(err.Error(), true)
				} else if ok {
					a.setStatus(a.l.T("trip.finished"), false)
				}
			})
		}
	case tabHistory, tabArchive:
		switch {
		case key.Matches(msg, keys.Down):
			a.moveCursor(1)
			return a, nil
		case key.Matches(msg, keys.Up):
			a.moveCursor(-1)
			return a, nil
		}
		if a.activeTab == tabArchive && len(a.archive) > 0 {
			sel := a.archive[a.archiveCursor]
			switch {
			case key.Matches(msg, keys.Open):
				a.archiveOpen = !a.archiveOpen
				return a, nil
			case key.Matches(msg, keys.Back):
				a.archiveOpen = false
				return a, nil
			case key.Matches(msg, keys.Restore):
				return a.confirm("r", pending, func(a *App) {
					if _, err := a.ledger.RestoreFromArchive(sel.ID); err != nil {
						a.setStatus(err.Error(), true)
						return
					}
					a.setStatus(a.l.T("trip.restored"), false)
				})
			case key.Matches(msg, keys.Delete):
				return a.confirm("x", pending, func(a *App) {
					if err := a.ledger.DeleteFromArchive(sel.ID); err != nil {
						a.setStatus(err.Error(), true)
					}
				})
			}
		}
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, keys.Edit):
		return a.openTripForm()
	case key.Matches(msg, keys.NextTab):
		a.activeTab = (a.activeTab + 1) % len(a.tabs)
	case key.Matches(msg, keys.PrevTab):
		a.activeTab = (a.activeTab - 1 + len(a.tabs)) % len(a.tabs)
	case key.Matches(msg, keys.Tabs):
		if idx := components.TabIdxByKey(a.tabs, msg.Runes[0]); idx >= 0 {
			a.activeTab = idx
		}
	}
	return a, nil
}

// confirm runs action on the second consecutive press of k.
func (a App) confirm(k, pending string, action func(*App)) (tea.Model, tea.Cmd) {
	if pending != k {
		a.pending = k
		a.setStatus("press "+k+" again to confirm", true)
		return a, nil
	}
	a.setStatus("", false)
	action(&a)
	a.reload()
	return a, nil
}

func (a *App) moveCursor(delta int) {
	switch a.activeTab {
	case tabHistory:
		a.historyCursor = min(max(a.historyCursor+delta, 0), max(len(a.stats.History)-1, 0))
	case tabArchive:
		a.archiveCursor = min(max(a.archiveCursor+delta, 0), max(len(a.archive)-1, 0))
	}
}

func (a App) openTripForm() (tea.Model, tea.Cmd) {
	a.tripVals = TripValuesFrom(a.ledger.Settings())
	a.tripForm = NewTripForm(&a.tripVals, a.l)
	if a.width > 0 {
		a.tripForm = a.tripForm.WithWidth(min(a.width, maxContentWidth)).WithHeight(a.height)
	}
	return a, a.tripForm.Init()
}

func (a App) updateTripForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		a.tripForm = nil
		return a, nil
	}

	form, cmd := a.tripForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.tripForm = f
	}

	switch a.tripForm.State {
	case huh.StateCompleted:
		a.tripForm = nil
		ts, err := a.tripVals.Settings(a.ledger.Location())
		if err != nil {
			a.setStatus(err.Error(), true)
			return a, nil
		}
		if err := a.ledger.SaveSettings(ts); err != nil {
			a.log.Warn("trip settings not persisted", "error", err)
			a.setStatus(err.Error(), true)
		}
		a.reload()
		if a.trip.IsBudgetSet() {
			a.conv.SetPair(a.trip.SecondaryCurrency, a.trip.BudgetCurrency)
			return a, refreshRateCmd(a.conv)
		}
		return a, nil
	case huh.StateAborted:
		a.tripForm = nil
		return a, nil
	}
	return a, cmd
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  fxtrip needs at least %d columns.\n", a.width, minTerminalWidth)
	}
	if a.tripForm != nil {
		return a.tripForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()

	header := components.RenderTabBar(a.tabs, a.activeTab, w)
	statusBar := components.RenderStatusBar(w, a.hints(), a.statusText(), a.statusWarn)

	contentH := max(a.height-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch a.activeTab {
	case tabConvert:
		content = a.renderConvertTab(cw)
	case tabBudget:
		content = a.renderBudgetTab(cw)
	case tabHistory:
		content = a.renderHistoryTab(cw, contentH)
	case tabArchive:
		content = a.renderArchiveTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, a.height, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) hints() string {
	switch a.activeTab {
	case tabConvert:
		if a.noting {
			return "[enter]save  [esc]cancel"
		}
		return "[0-9.]amount  [c]lear  [s]wap  [f/t]currency  [enter]log  [r]efresh  [?]help"
	case tabBudget:
		return "[e]dit trip  [F]inish trip  [?]help  [q]uit"
	case tabHistory:
		return "[j/k]day  [e]dit trip  [?]help  [q]uit"
	default:
		return "[j/k]select  [enter]open  [r]estore  [x]delete  [q]uit"
	}
}

func (a App) statusText() string {
	if a.status != "" {
		return a.status
	}
	if a.conv.Busy() {
		return a.spinner.View()
	}
	if !a.rateAt.IsZero() {
		return a.l.T("convert.updated", a.rateAt.Format("15:04"))
	}
	return ""
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ " + a.l.T("app.title")))
	b.WriteString("\n\n")
	for _, bind := range keys.helpBindings() {
		h := bind.Help()
		fmt.Fprintf(&b, "%s  %s\n", keyStyle.Render(padRight(h.Key, 8)), descStyle.Render(h.Desc))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Commands ───────────────────────────────────────────────────

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func refreshRateCmd(c *rates.Converter) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), rateCallTimeout)
		defer cancel()
		err := c.Refresh(ctx)
		return rateMsg{err: err, at: time.Now()}
	}
}

// logExpenseCmd prices amount into the trip currency and saves it. A known
// positive rate for exactly that pair skips the lookup.
func logExpenseCmd(led *ledger.Service, src ledger.RateLookup, amount decimal.Decimal, from, to string,
	known decimal.Decimal, note *string, date time.Time) tea.Cmd {
	return func() tea.Msg {
		rate := known
		if !rate.IsPositive() {
			ctx, cancel := context.WithTimeout(context.Background(), rateCallTimeout)
			defer cancel()
			r, err := src.Rate(ctx, from, to)
			if !r.IsPositive() {
				return loggedMsg{err: fmt.Errorf("%w: %v", ledger.ErrRateUnavailable, err)}
			}
			rate = r
		}
		rec, err := led.AddExpense(ledger.NewExpense(amount, from, to, rate, date, note))
		return loggedMsg{rec: rec, err: err}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range a.tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1 // separator
	}
	return -1
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// padRight pads s with spaces to w terminal cells.
func padRight(s string, w int) string {
	if n := w - lipgloss.Width(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}
