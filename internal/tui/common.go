// Package tui implements the terminal user interface using Bubble Tea.
package tui

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// Common key binding constants.
const (
	KeyCtrlC      = "ctrl+c"
	KeyCtrlJ      = "ctrl+j"
	KeyCtrlR      = "ctrl+r"
	KeyEnter      = "enter"
	KeyEsc        = "esc"
	KeyShiftEnter = "shift+enter"
)

// Conversation is the chat client as seen by the front-ends.
type Conversation interface {
	Initialize(ctx context.Context) error
	SendMessage(ctx context.Context, text string)
	ResetConversation(ctx context.Context) error
	SessionID() string
}

// IsTTY returns true if stdout is connected to a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// NewProgram creates the Bubble Tea program for m in alternate screen mode.
func NewProgram(m tea.Model) *tea.Program {
	return tea.NewProgram(m, tea.WithAltScreen())
}

// Run starts p and waits for it to exit.
func Run(p *tea.Program) error {
	_, err := p.Run()
	return err
}
