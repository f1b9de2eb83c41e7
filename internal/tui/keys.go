package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	New      key.Binding
	Delete   key.Binding
	Toggle   key.Binding
	Status   key.Binding
	Priority key.Binding
	Rate     key.Binding
	Inc      key.Binding
	Dec      key.Binding
	Goal     key.Binding
	Reset    key.Binding
	Preset   key.Binding
	Mode     key.Binding
	Refresh  key.Binding
	Export   key.Binding
	Logout   key.Binding
	Tab1     key.Binding
	Tab2     key.Binding
	Tab3     key.Binding
	Tab      key.Binding
	Help     key.Binding
	Enter    key.Binding
	Back     key.Binding
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	New: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "toggle"),
	),
	Status: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "status"),
	),
	Priority: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "priority"),
	),
	Rate: key.NewBinding(
		key.WithKeys("*"),
		key.WithHelp("*", "rate"),
	),
	Inc: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "increment"),
	),
	Dec: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "decrement"),
	),
	Goal: key.NewBinding(
		key.WithKeys("g"),
		key.WithHelp("g", "goal"),
	),
	Reset: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "reset"),
	),
	Preset: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "preset"),
	),
	Mode: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "mode"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Export: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "export"),
	),
	Logout: key.NewBinding(
		key.WithKeys("O"),
		key.WithHelp("O", "log out"),
	),
	Tab1: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "dashboard"),
	),
	Tab2: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "reports"),
	),
	Tab3: key.NewBinding(
		key.WithKeys("3"),
		key.WithHelp("3", "settings"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next view"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Left: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "prev widget"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "next widget"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.New, k.Tab, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down},
		{k.New, k.Delete, k.Toggle, k.Enter},
		{k.Status, k.Priority, k.Rate, k.Goal, k.Refresh},
		{k.Tab1, k.Tab2, k.Tab3, k.Tab},
		{k.Export, k.Logout, k.Back, k.Quit},
	}
}
