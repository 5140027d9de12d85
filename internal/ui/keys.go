package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

// keyMap holds the palette bindings. Letters stay free for the query, so
// navigation uses arrows and ctrl chords only.
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Open     key.Binding
	Close    key.Binding
	Complete key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "ctrl+p", "ctrl+k"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "ctrl+n", "ctrl+j"),
			key.WithHelp("↓", "down"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("↵", "open"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Complete: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "complete"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
		),
	}
}

// hints renders the bindings that have help text
func (k keyMap) hints() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Open, k.Complete, k.Close}
}
