// Package views provides the Bubble Tea chat screen and the View adapter
// that lets the chat client drive it.
package views

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/berth-dev/chatdock/internal/render"
	"github.com/berth-dev/chatdock/internal/tui"
)

// ============================================================================
// Message Types
// ============================================================================

// AppendMsg adds a rendered message to the history.
type AppendMsg struct {
	Message render.Rendered
}

// ClearMsg empties the history.
type ClearMsg struct{}

// BusyMsg toggles the typing indicator and input lock.
type BusyMsg struct {
	Busy bool
}

// ClearInputMsg empties the textarea.
type ClearInputMsg struct{}

// FocusMsg focuses the textarea.
type FocusMsg struct{}

// opDoneMsg is returned once a conversation operation has finished.
type opDoneMsg struct {
	err error
}

// ============================================================================
// ProgramView
// ============================================================================

// ProgramView implements the chat client's View by forwarding every call to
// a running Bubble Tea program as a message.
type ProgramView struct {
	mu   sync.RWMutex
	send func(tea.Msg)
}

// NewProgramView creates a detached ProgramView. Calls made before Attach
// are dropped.
func NewProgramView() *ProgramView {
	return &ProgramView{}
}

// Attach routes subsequent calls to send, typically (*tea.Program).Send.
func (v *ProgramView) Attach(send func(tea.Msg)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.send = send
}

func (v *ProgramView) dispatch(msg tea.Msg) {
	v.mu.RLock()
	send := v.send
	v.mu.RUnlock()
	if send != nil {
		send(msg)
	}
}

// AppendMessage implements chatbot.View.
func (v *ProgramView) AppendMessage(m render.Rendered) { v.dispatch(AppendMsg{Message: m}) }

// ClearMessages implements chatbot.View.
func (v *ProgramView) ClearMessages() { v.dispatch(ClearMsg{}) }

// SetBusy implements chatbot.View.
func (v *ProgramView) SetBusy(busy bool) { v.dispatch(BusyMsg{Busy: busy}) }

// ClearInput implements chatbot.View.
func (v *ProgramView) ClearInput() { v.dispatch(ClearInputMsg{}) }

// FocusInput implements chatbot.View.
func (v *ProgramView) FocusInput() { v.dispatch(FocusMsg{}) }

// ============================================================================
// ChatModel
// ============================================================================

// ChatModel is the full-screen chat. Conversation operations run as
// commands; their visible effects arrive back through ProgramView.
type ChatModel struct {
	conv     tui.Conversation
	keys     tui.KeyMap
	messages []render.Rendered
	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	label    string
	err      error
	width    int
	height   int

	// busy mirrors the client's state. pending covers the gap between
	// dispatching an operation and its first BusyMsg.
	busy    bool
	pending bool
}

// NewChatModel creates a ChatModel for conv. label is shown in the header.
func NewChatModel(conv tui.Conversation, label string, width, height int) ChatModel {
	keys := tui.DefaultKeyMap

	ta := textarea.New()
	ta.Placeholder = "Type your message... (Enter to send)"
	ta.CharLimit = 2000
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.KeyMap.InsertNewline = keys.NewLine
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(tui.SpinnerColor))

	vpWidth, vpHeight := viewportSize(width, height)
	vp := viewport.New(vpWidth, vpHeight)
	ta.SetWidth(vpWidth)

	m := ChatModel{
		conv:     conv,
		keys:     keys,
		textarea: ta,
		viewport: vp,
		spinner:  sp,
		label:    label,
		width:    width,
		height:   height,
		pending:  true,
	}
	m.refresh()
	return m
}

func viewportSize(width, height int) (int, int) {
	// Header (2 lines), indicator (2 lines), textarea (5 lines), footer (2 lines)
	// and box chrome.
	vpHeight := height - 14
	if vpHeight < 5 {
		vpHeight = 5
	}
	vpWidth := width - 8
	if vpWidth < 20 {
		vpWidth = 20
	}
	return vpWidth, vpHeight
}

// Init starts the cursor blink, the spinner and the conversation.
func (m ChatModel) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick, m.run(m.conv.Initialize))
}

func (m ChatModel) run(op func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{err: op(context.Background())}
	}
}

// Locked reports whether input is currently refused.
func (m ChatModel) Locked() bool {
	return m.busy || m.pending
}

// Messages returns the current history.
func (m ChatModel) Messages() []render.Rendered {
	return m.messages
}

// Update handles messages for the chat view.
func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Send):
			content := strings.TrimSpace(m.textarea.Value())
			if content == "" || m.Locked() {
				return m, nil
			}
			m.pending = true
			conv := m.conv
			return m, m.run(func(ctx context.Context) error {
				conv.SendMessage(ctx, content)
				return nil
			})

		case key.Matches(msg, m.keys.Reset):
			if m.Locked() {
				return m, nil
			}
			m.pending = true
			m.err = nil
			return m, m.run(m.conv.ResetConversation)
		}

	case AppendMsg:
		m.messages = append(m.messages, msg.Message)
		m.refresh()
		return m, nil

	case ClearMsg:
		m.messages = nil
		m.refresh()
		return m, nil

	case BusyMsg:
		m.busy = msg.Busy
		if m.busy {
			m.textarea.Blur()
		}
		return m, nil

	case ClearInputMsg:
		m.textarea.Reset()
		return m, nil

	case FocusMsg:
		return m, m.textarea.Focus()

	case opDoneMsg:
		m.pending = false
		if msg.err != nil {
			m.err = msg.err
		}
		if !m.busy {
			cmds = append(cmds, m.textarea.Focus())
		}
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpWidth, vpHeight := viewportSize(msg.Width, msg.Height)
		m.viewport.Width = vpWidth
		m.viewport.Height = vpHeight
		m.textarea.SetWidth(vpWidth)
		m.refresh()
		return m, nil
	}

	if !m.Locked() {
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *ChatModel) refresh() {
	m.viewport.SetContent(formatMessages(m.messages, m.viewport.Width))
	m.viewport.GotoBottom()
}

// View renders the chat view.
func (m ChatModel) View() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render(fmt.Sprintf("Chat: %s", m.label)))
	b.WriteString("\n\n")

	b.WriteString(m.viewport.View())
	b.WriteString("\n\n")

	if m.busy {
		b.WriteString(fmt.Sprintf("%s %s", m.spinner.View(), tui.WarningStyle.Render("typing...")))
		b.WriteString("\n\n")
		b.WriteString(tui.DimStyle.Render(m.textarea.View()))
	} else {
		b.WriteString(m.textarea.View())
	}
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(tui.ErrorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString(tui.DimStyle.Render(helpLine(m.keys)))

	boxed := tui.BoxStyle.
		Width(max(m.width-4, 0)).
		Render(b.String())

	contentHeight := lipgloss.Height(boxed)
	if m.height > contentHeight {
		if padding := (m.height - contentHeight) / 3; padding > 0 {
			boxed = strings.Repeat("\n", padding) + boxed
		}
	}
	return boxed
}

func helpLine(k tui.KeyMap) string {
	var parts []string
	for _, b := range k.ShortHelp() {
		h := b.Help()
		parts = append(parts, h.Key+": "+h.Desc)
	}
	return strings.Join(parts, " · ")
}

// formatMessages lays out the history for the viewport.
func formatMessages(messages []render.Rendered, width int) string {
	if len(messages) == 0 {
		return tui.DimStyle.Render("Connecting...")
	}

	body := lipgloss.NewStyle().Width(width)

	var b strings.Builder
	for i, msg := range messages {
		if msg.IsUser {
			b.WriteString(tui.UserStyle.Render("You: "))
		} else {
			b.WriteString(tui.BotStyle.Render("Bot: "))
		}
		b.WriteString(body.Render(msg.Body))

		if i < len(messages)-1 {
			b.WriteString("\n\n")
		}
	}
	return b.String()
}
