package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the bindings surfaced in each view's help bar.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	enter   key.Binding
	back    key.Binding
	yes     key.Binding
	no      key.Binding
	restart key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "move up")),
		down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "move down")),
		enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select playlist")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		yes:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "start migration")),
		no:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "cancel")),
		restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "migrate another")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.enter, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.yes, k.no, k.restart, k.quit},
	}
}
