package views

import (
	"context"
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berth-dev/chatdock/internal/render"
)

type fakeConversation struct {
	mu       sync.Mutex
	sent     []string
	resets   int
	resetErr error
}

func (f *fakeConversation) Initialize(context.Context) error { return nil }

func (f *fakeConversation) SendMessage(_ context.Context, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
}

func (f *fakeConversation) ResetConversation(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
	return f.resetErr
}

func (f *fakeConversation) SessionID() string { return "session_test" }

func update(t *testing.T, m ChatModel, msg tea.Msg) (ChatModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	cm, ok := next.(ChatModel)
	require.True(t, ok)
	return cm, cmd
}

func typeText(t *testing.T, m ChatModel, text string) ChatModel {
	t.Helper()
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return m
}

func ready(t *testing.T, conv *fakeConversation) ChatModel {
	t.Helper()
	m := NewChatModel(conv, "session_test", 80, 30)
	assert.True(t, m.Locked(), "input must stay locked until initialization finishes")
	m, _ = update(t, m, opDoneMsg{})
	require.False(t, m.Locked())
	return m
}

func TestChatModelSendDispatchesOnce(t *testing.T) {
	conv := &fakeConversation{}
	m := ready(t, conv)

	m = typeText(t, m, "quero agendar")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, m.Locked())

	// A second Enter before the client reports busy is ignored.
	_, again := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, again)

	done := cmd()
	assert.Equal(t, opDoneMsg{}, done)
	assert.Equal(t, []string{"quero agendar"}, conv.sent)
}

func TestChatModelIgnoresBlankInput(t *testing.T) {
	conv := &fakeConversation{}
	m := ready(t, conv)

	m = typeText(t, m, "   ")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.False(t, m.Locked())
	assert.Empty(t, conv.sent)
}

func TestChatModelBusyLocksInput(t *testing.T) {
	conv := &fakeConversation{}
	m := ready(t, conv)

	m, _ = update(t, m, BusyMsg{Busy: true})
	assert.True(t, m.Locked())
	assert.Contains(t, m.View(), "typing...")

	m = typeText(t, m, "oi")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)

	m, _ = update(t, m, BusyMsg{Busy: false})
	assert.False(t, m.Locked())
	assert.NotContains(t, m.View(), "typing...")
}

func TestChatModelHistory(t *testing.T) {
	m := ready(t, &fakeConversation{})

	m, _ = update(t, m, AppendMsg{Message: render.Message(render.Plain, "oi", true)})
	m, _ = update(t, m, AppendMsg{Message: render.Message(render.Plain, "Olá!", false)})
	require.Len(t, m.Messages(), 2)
	assert.True(t, m.Messages()[0].IsUser)
	assert.Equal(t, "Olá!", m.Messages()[1].Text)

	view := m.View()
	assert.Contains(t, view, "You:")
	assert.Contains(t, view, "Bot:")

	m, _ = update(t, m, ClearMsg{})
	assert.Empty(t, m.Messages())
}

func TestChatModelClearInput(t *testing.T) {
	m := ready(t, &fakeConversation{})

	m = typeText(t, m, "rascunho")
	assert.Equal(t, "rascunho", m.textarea.Value())

	m, _ = update(t, m, ClearInputMsg{})
	assert.Empty(t, m.textarea.Value())
}

func TestChatModelReset(t *testing.T) {
	conv := &fakeConversation{resetErr: errors.New("connection refused")}
	m := ready(t, conv)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	require.NotNil(t, cmd)
	assert.True(t, m.Locked())

	m, _ = update(t, m, cmd())
	assert.Equal(t, 1, conv.resets)
	assert.False(t, m.Locked())
	assert.Contains(t, m.View(), "connection refused")
}

func TestChatModelQuit(t *testing.T) {
	m := ready(t, &fakeConversation{})

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestProgramView(t *testing.T) {
	v := NewProgramView()

	// Detached calls are dropped.
	v.SetBusy(true)

	var got []tea.Msg
	v.Attach(func(msg tea.Msg) { got = append(got, msg) })

	rendered := render.Message(render.Plain, "oi", true)
	v.AppendMessage(rendered)
	v.SetBusy(true)
	v.SetBusy(false)
	v.ClearInput()
	v.FocusInput()
	v.ClearMessages()

	assert.Equal(t, []tea.Msg{
		AppendMsg{Message: rendered},
		BusyMsg{Busy: true},
		BusyMsg{Busy: false},
		ClearInputMsg{},
		FocusMsg{},
		ClearMsg{},
	}, got)
}
