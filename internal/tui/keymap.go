package tui

import "charm.land/bubbles/v2/key"

// keyMap represents key map data used by this package.
type keyMap struct {
	quit       key.Binding
	reload     key.Binding
	toggleHelp key.Binding
	moveUp     key.Binding
	moveDown   key.Binding
	toggleDay  key.Binding
	toggleItem key.Binding
	copyPlan   key.Binding
	deadlines  key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		reload:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		toggleHelp: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		moveUp:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		moveDown:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		toggleDay:  key.NewBinding(key.WithKeys("space", " ", "enter"), key.WithHelp("space", "toggle today")),
		toggleItem: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "toggle homework")),
		copyPlan:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy plan")),
		deadlines:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "deadlines")),
	}
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.toggleDay, k.toggleItem, k.copyPlan, k.toggleHelp, k.quit}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.moveUp, k.moveDown},
		{k.toggleDay, k.toggleItem, k.copyPlan, k.deadlines},
		{k.reload, k.toggleHelp, k.quit},
	}
}
