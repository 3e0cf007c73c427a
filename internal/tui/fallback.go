package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/berth-dev/chatdock/internal/render"
)

// Line-mode commands.
const (
	CommandReset = "/reset"
	CommandQuit  = "/quit"
)

// ErrNoConversation is returned when a FallbackRunner has nothing to drive.
var ErrNoConversation = errors.New("no conversation configured")

// LineView renders the chat as plain lines for non-TTY output.
type LineView struct {
	mu     sync.Mutex
	out    io.Writer
	prompt bool
}

// NewLineView creates a LineView writing to out. With prompt set, a "> "
// prompt is written whenever the input regains focus.
func NewLineView(out io.Writer, prompt bool) *LineView {
	return &LineView{out: out, prompt: prompt}
}

// AppendMessage writes one message, prefixed by its author.
func (v *LineView) AppendMessage(m render.Rendered) {
	v.mu.Lock()
	defer v.mu.Unlock()
	prefix := "Bot: "
	if m.IsUser {
		prefix = "You: "
	}
	fmt.Fprintf(v.out, "%s%s\n", prefix, m.Body)
}

// ClearMessages marks the start of a new conversation.
func (v *LineView) ClearMessages() {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintln(v.out, "---")
}

// SetBusy prints the typing indicator when a request starts.
func (v *LineView) SetBusy(busy bool) {
	if !busy {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintln(v.out, "...")
}

// ClearInput is a no-op; the terminal owns the line being typed.
func (v *LineView) ClearInput() {}

// FocusInput writes the prompt.
func (v *LineView) FocusInput() {
	if !v.prompt {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprint(v.out, "> ")
}

// FallbackRunner handles non-TTY execution as a line-oriented chat.
type FallbackRunner struct {
	conv Conversation
	in   io.Reader
}

// NewFallbackRunner creates a new FallbackRunner reading user lines from in.
func NewFallbackRunner(conv Conversation, in io.Reader) *FallbackRunner {
	return &FallbackRunner{conv: conv, in: in}
}

// Run initializes the conversation, then sends every input line until EOF,
// CommandQuit or ctx cancellation. CommandReset starts a new conversation.
func (f *FallbackRunner) Run(ctx context.Context) error {
	if f.conv == nil {
		return ErrNoConversation
	}

	if err := f.conv.Initialize(ctx); err != nil {
		return fmt.Errorf("initializing chat: %w", err)
	}

	scanner := bufio.NewScanner(f.in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case CommandQuit:
			return nil
		case CommandReset:
			// Reset failures are logged by the client; the chat carries on.
			_ = f.conv.ResetConversation(ctx)
		default:
			f.conv.SendMessage(ctx, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	return nil
}
