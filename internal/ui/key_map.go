package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up     key.Binding
	down   key.Binding
	toggle key.Binding
	save   key.Binding
	reset  key.Binding
	sync   key.Binding
	tab    key.Binding
	quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		toggle: key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "toggle")),
		save:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
		reset:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		sync:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "sync")),
		tab:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
		quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.tab, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.toggle},
		{k.save, k.reset, k.sync},
		{k.tab, k.quit},
	}
}

// configKeys are the bindings shown under the configuration pane.
func (k keyMap) configKeys() []key.Binding {
	return []key.Binding{k.up, k.down, k.toggle, k.save, k.reset, k.tab, k.quit}
}

// syncKeys are the bindings shown under the sync pane.
func (k keyMap) syncKeys() []key.Binding {
	return []key.Binding{k.sync, k.tab, k.quit}
}
