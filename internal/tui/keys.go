package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the chart key bindings.
type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Today     key.Binding
	Toggle    key.Binding
	Delete    key.Binding
	Recompute key.Binding
	Help      key.Binding
	Quit      key.Binding
	Confirm   key.Binding
	Cancel    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "down")),
		Left:      key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("←/h", "earlier")),
		Right:     key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("→/l", "later")),
		Today:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today")),
		Toggle:    key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("x", "done/reopen")),
		Delete:    key.NewBinding(key.WithKeys("d", "D"), key.WithHelp("d", "delete")),
		Recompute: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reschedule")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
		Confirm:   key.NewBinding(key.WithKeys("y", "Y")),
		Cancel:    key.NewBinding(key.WithKeys("n", "N", "esc", "q")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Delete, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Today},
		{k.Toggle, k.Delete, k.Recompute},
		{k.Help, k.Quit},
	}
}
