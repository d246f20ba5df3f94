package focusview

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings for the focus view.
type KeyMap struct {
	Up    key.Binding
	Down  key.Binding
	Start key.Binding
	End   key.Binding
	Help  key.Binding
	Quit  key.Binding
}

// DefaultKeyMap is the default set of keybindings.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Start: key.NewBinding(
		key.WithKeys("enter", "f"),
		key.WithHelp("enter/f", "focus on task"),
	),
	End: key.NewBinding(
		key.WithKeys("e", "x"),
		key.WithHelp("e", "end focus"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q/esc", "quit"),
	),
}

// ShortHelp returns keybindings to be shown in the compact help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.End, k.Help, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Start},
		{k.End, k.Help, k.Quit},
	}
}
