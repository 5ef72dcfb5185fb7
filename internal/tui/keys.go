package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit    key.Binding
	Help    key.Binding
	Edit    key.Binding
	NextTab key.Binding
	PrevTab key.Binding
	Tabs    key.Binding

	Amount  key.Binding
	Erase   key.Binding
	Swap    key.Binding
	Cycle   key.Binding
	Log     key.Binding
	Refresh key.Binding

	Up      key.Binding
	Down    key.Binding
	Open    key.Binding
	Back    key.Binding
	Finish  key.Binding
	Restore key.Binding
	Delete  key.Binding
}

var keys = keyMap{
	Quit:    key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "Quit")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "Toggle help")),
	Edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "Edit trip settings")),
	NextTab: key.NewBinding(key.WithKeys("tab", "right"), key.WithHelp("→ tab", "Next tab")),
	PrevTab: key.NewBinding(key.WithKeys("shift+tab", "left"), key.WithHelp("← S-tab", "Previous tab")),
	Tabs:    key.NewBinding(key.WithKeys("v", "b", "h", "a"), key.WithHelp("v b h a", "Jump to tab")),

	Amount:  key.NewBinding(key.WithKeys("0", "1", "2", "3", "4", "5", "6", "7", "8", "9", ".", ","), key.WithHelp("0-9 . ,", "Type an amount")),
	Erase:   key.NewBinding(key.WithKeys("backspace", "c", "delete"), key.WithHelp("⌫ c", "Delete digit / clear")),
	Swap:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "Swap currencies")),
	Cycle:   key.NewBinding(key.WithKeys("f", "t"), key.WithHelp("f t", "Next source / target currency")),
	Log:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "Log the amount as an expense")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "Refresh rate")),

	Up:      key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k ↑", "Previous row")),
	Down:    key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j ↓", "Next row")),
	Open:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "Open archived trip")),
	Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "Close")),
	Finish:  key.NewBinding(key.WithKeys("F"), key.WithHelp("F F", "Finish and archive the trip")),
	Restore: key.NewBinding(key.WithKeys("r"), key.WithHelp("r r", "Restore archived trip")),
	Delete:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x x", "Delete archived trip")),
}

// helpBindings is the order of the help overlay.
func (k keyMap) helpBindings() []key.Binding {
	return []key.Binding{
		k.Tabs, k.NextTab, k.PrevTab,
		k.Amount, k.Erase, k.Swap, k.Cycle, k.Log, k.Refresh,
		k.Down, k.Up, k.Open, k.Restore, k.Delete,
		k.Edit, k.Finish, k.Help, k.Quit,
	}
}
