package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the chat screen.
type KeyMap struct {
	Send     key.Binding
	NewLine  key.Binding
	Reset    key.Binding
	Quit     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
}

// DefaultKeyMap provides the default key bindings for the TUI.
var DefaultKeyMap = KeyMap{
	Send: key.NewBinding(
		key.WithKeys(KeyEnter),
		key.WithHelp("enter", "send"),
	),
	NewLine: key.NewBinding(
		key.WithKeys(KeyShiftEnter, KeyCtrlJ),
		key.WithHelp("shift+enter", "new line"),
	),
	Reset: key.NewBinding(
		key.WithKeys(KeyCtrlR),
		key.WithHelp("ctrl+r", "new conversation"),
	),
	Quit: key.NewBinding(
		key.WithKeys(KeyCtrlC, KeyEsc),
		key.WithHelp("esc", "quit"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup"),
		key.WithHelp("pgup", "scroll up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown"),
		key.WithHelp("pgdown", "scroll down"),
	),
}

// ShortHelp returns the bindings shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.NewLine, k.Reset, k.Quit}
}
