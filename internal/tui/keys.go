package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// keyMap lists every binding. It implements help.KeyMap.
type keyMap struct {
	NextTab  key.Binding
	Calendar key.Binding
	Pomodoro key.Binding
	Prev     key.Binding
	Next     key.Binding
	Today    key.Binding
	Day      key.Binding
	Week     key.Binding
	Month    key.Binding
	Toggle   key.Binding
	Reset    key.Binding
	Longer   key.Binding
	Shorter  key.Binding
	BreakUp  key.Binding
	BreakDn  key.Binding
	NewTodo  key.Binding
	Refresh  key.Binding
	Help     key.Binding
	Quit     key.Binding
	Confirm  key.Binding
	Cancel   key.Binding
	tab      Tab
	prompted bool
}

func newKeyMap() keyMap {
	return keyMap{
		NextTab:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch view")),
		Calendar: key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "calendar")),
		Pomodoro: key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "pomodoro")),
		Prev:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "previous")),
		Next:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next")),
		Today:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today")),
		Day:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "day")),
		Week:     key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "week")),
		Month:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "month")),
		Toggle:   key.NewBinding(key.WithKeys(" ", "p"), key.WithHelp("space", "start/pause")),
		Reset:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Longer:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "work length")),
		Shorter:  key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "shorter work")),
		BreakUp:  key.NewBinding(key.WithKeys("b"), key.WithHelp("b/B", "break length")),
		BreakDn:  key.NewBinding(key.WithKeys("B"), key.WithHelp("B", "shorter break")),
		NewTodo:  key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new to-do")),
		Refresh:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reload")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Confirm:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

// forTab returns the key map with the context needed for help rendering.
func (k keyMap) forTab(tab Tab, prompted bool) keyMap {
	k.tab = tab
	k.prompted = prompted
	return k
}

// ShortHelp returns the bindings shown in the footer.
func (k keyMap) ShortHelp() []key.Binding {
	if k.prompted {
		return []key.Binding{k.Confirm, k.Cancel}
	}
	if k.tab == TabPomodoro {
		return []key.Binding{k.Toggle, k.Reset, k.Longer, k.BreakUp, k.NewTodo, k.NextTab, k.Help, k.Quit}
	}
	return []key.Binding{k.Prev, k.Next, k.Today, k.Month, k.NextTab, k.Help, k.Quit}
}

// FullHelp returns every binding grouped by column.
func (k keyMap) FullHelp() [][]key.Binding {
	if k.prompted {
		return [][]key.Binding{k.ShortHelp()}
	}
	return [][]key.Binding{
		{k.Prev, k.Next, k.Today},
		{k.Day, k.Week, k.Month},
		{k.Toggle, k.Reset, k.NewTodo},
		{k.Longer, k.BreakUp},
		{k.NextTab, k.Calendar, k.Pomodoro},
		{k.Refresh, k.Help, k.Quit},
	}
}
