// Package chatbot implements the chat client: it owns the session
// identifier, exchanges messages with the chatbot backend and drives a View
// through the busy/idle cycle of each request.
package chatbot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/berth-dev/chatdock/internal/log"
	"github.com/berth-dev/chatdock/internal/render"
)

// Fixed texts shown by the client itself.
const (
	DefaultGreeting = "oi"
	DefaultScope    = "default"

	WelcomeBackMessage     = "Olá novamente! 👋 Como posso te ajudar?\n\nVocê pode:\n• Agendar uma consulta\n• Ver horários disponíveis\n• Tirar dúvidas"
	ApologyMessage         = "Desculpe, ocorreu um erro ao processar sua mensagem."
	ConnectionErrorMessage = "Erro ao conectar com o servidor. Verifique se o backend está rodando."
)

// Transcript roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// View is the surface the client renders into. Implementations are called
// from whichever goroutine runs the client operation.
type View interface {
	AppendMessage(m render.Rendered)
	ClearMessages()
	// SetBusy shows or hides the typing indicator and disables or
	// enables the input and submit control.
	SetBusy(busy bool)
	ClearInput()
	FocusInput()
}

// SessionStore persists the session identifier per scope.
type SessionStore interface {
	Load(scope string) (id string, ok bool, err error)
	Save(scope, id string) error
}

// Transcript records rendered messages. Optional.
type Transcript interface {
	AddMessage(sessionID, role, content string) error
}

// EventSink receives structured events. Optional.
type EventSink interface {
	Append(event log.LogEvent) error
}

// Options configures a Client.
type Options struct {
	APIURL     string
	Greeting   string
	Scope      string
	Formatter  render.Formatter
	HTTPClient *http.Client
	Transcript Transcript
	Events     EventSink
	Logger     *zap.Logger
	NewID      func() string
}

// Client is the chat client. Construct one with New.
type Client struct {
	api        *API
	view       View
	store      SessionStore
	transcript Transcript
	events     EventSink
	logger     *zap.Logger
	formatter  render.Formatter
	greeting   string
	scope      string
	newID      func() string

	mu        sync.Mutex
	sessionID string
}

// New creates a Client. The session is not resolved until Initialize.
func New(opts Options, view View, store SessionStore) *Client {
	if opts.APIURL == "" {
		opts.APIURL = "http://127.0.0.1:8000"
	}
	if opts.Greeting == "" {
		opts.Greeting = DefaultGreeting
	}
	if opts.Scope == "" {
		opts.Scope = DefaultScope
	}
	if opts.Formatter.LineBreak == "" {
		opts.Formatter = render.HTML
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.NewID == nil {
		opts.NewID = NewSessionID
	}

	return &Client{
		api:        NewAPI(opts.APIURL, opts.HTTPClient),
		view:       view,
		store:      store,
		transcript: opts.Transcript,
		events:     opts.Events,
		logger:     opts.Logger.Named("chatbot"),
		formatter:  opts.Formatter,
		greeting:   opts.Greeting,
		scope:      opts.Scope,
		newID:      opts.NewID,
	}
}

// SessionID returns the current session identifier.
func (c *Client) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// SetSessionID replaces the current session identifier and persists it.
func (c *Client) SetSessionID(id string) error {
	if err := c.store.Save(c.scope, id); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	c.mu.Lock()
	c.sessionID = id
	c.mu.Unlock()
	return nil
}

// Initialize resolves the session for the client's scope. A new session
// triggers the greeting exchange; a restored one gets a local welcome
// message and no backend call. Only storage failures are returned.
func (c *Client) Initialize(ctx context.Context) error {
	id, ok, err := c.store.Load(c.scope)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}

	if ok && id != "" {
		c.mu.Lock()
		c.sessionID = id
		c.mu.Unlock()
		c.logger.Debug("session restored", zap.String("session_id", id))
		c.emit(log.LogEvent{Event: log.EventSessionRestored, SessionID: id, Scope: c.scope})
		c.RenderMessage(WelcomeBackMessage, false)
		return nil
	}

	id = c.newID()
	if err := c.SetSessionID(id); err != nil {
		return err
	}
	c.logger.Debug("session created", zap.String("session_id", id))
	c.emit(log.LogEvent{Event: log.EventSessionStarted, SessionID: id, Scope: c.scope})
	c.startConversation(ctx)
	return nil
}

// startConversation sends the greeting token and renders the reply as the
// opening message, replacing whatever the view showed before.
func (c *Client) startConversation(ctx context.Context) {
	c.view.SetBusy(true)
	defer func() {
		c.view.SetBusy(false)
		c.view.FocusInput()
	}()

	sessionID := c.SessionID()
	resp, err := c.api.SendMessage(ctx, sessionID, c.greeting)
	if err != nil {
		c.logger.Warn("greeting failed", zap.String("session_id", sessionID), zap.Error(err))
		c.emit(log.LogEvent{Event: log.EventMessageFailed, SessionID: sessionID, Error: err.Error(), Status: statusOf(err)})
		c.RenderMessage(ConnectionErrorMessage, false)
		return
	}

	c.view.ClearMessages()
	c.RenderMessage(resp.Message, false)
	c.record(sessionID, RoleAssistant, resp.Message)
}

// SendMessage sends text to the backend and renders the reply. Empty or
// whitespace-only text is ignored. Failures are rendered as a fixed
// apology; nothing is returned. The view always ends idle with the input
// focused.
func (c *Client) SendMessage(ctx context.Context, text string) {
	message := strings.TrimSpace(text)
	if message == "" {
		c.logger.Debug("empty message ignored")
		return
	}

	sessionID := c.SessionID()
	c.RenderMessage(message, true)
	c.record(sessionID, RoleUser, message)

	c.view.ClearInput()
	c.view.SetBusy(true)
	defer func() {
		c.view.SetBusy(false)
		c.view.FocusInput()
	}()

	start := time.Now()
	resp, err := c.api.SendMessage(ctx, sessionID, message)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		c.logger.Warn("message failed", zap.String("session_id", sessionID), zap.Error(err))
		c.emit(log.LogEvent{
			Event:      log.EventMessageFailed,
			SessionID:  sessionID,
			Error:      err.Error(),
			Status:     statusOf(err),
			DurationMs: elapsed,
		})
		c.RenderMessage(ApologyMessage, false)
		return
	}

	c.logger.Debug("reply received",
		zap.String("session_id", sessionID),
		zap.String("intent", resp.Intent),
		zap.String("step", resp.Step),
		zap.String("action", resp.Action),
	)
	c.emit(log.LogEvent{Event: log.EventMessageSent, SessionID: sessionID, DurationMs: elapsed})
	c.RenderMessage(resp.Message, false)
	c.record(sessionID, RoleAssistant, resp.Message)
}

// ResetConversation drops the backend conversation, starts a new session,
// clears the view and replays the greeting. If the reset call cannot reach
// the backend the session is left unchanged and the error is returned.
// A non-2xx reset response does not stop the reset.
func (c *Client) ResetConversation(ctx context.Context) error {
	previous := c.SessionID()

	status, err := c.api.Reset(ctx, previous)
	if err != nil {
		c.logger.Warn("reset failed", zap.String("session_id", previous), zap.Error(err))
		c.emit(log.LogEvent{Event: log.EventResetFailed, SessionID: previous, Error: err.Error()})
		return err
	}
	if status < 200 || status > 299 {
		c.logger.Warn("reset returned non-2xx", zap.String("session_id", previous), zap.Int("status", status))
	}

	id := c.newID()
	if err := c.SetSessionID(id); err != nil {
		return err
	}
	c.emit(log.LogEvent{Event: log.EventConversationReset, SessionID: id, PreviousID: previous, Scope: c.scope, Status: status})

	c.view.ClearMessages()
	c.startConversation(ctx)
	return nil
}

// RenderMessage formats text and appends it to the view.
func (c *Client) RenderMessage(text string, isUser bool) {
	c.view.AppendMessage(render.Message(c.formatter, text, isUser))
}

func (c *Client) record(sessionID, role, content string) {
	if c.transcript == nil {
		return
	}
	if err := c.transcript.AddMessage(sessionID, role, content); err != nil {
		c.logger.Warn("transcript write failed", zap.Error(err))
	}
}

func (c *Client) emit(event log.LogEvent) {
	if c.events == nil {
		return
	}
	if event.Scope == "" {
		event.Scope = c.scope
	}
	if err := c.events.Append(event); err != nil {
		c.logger.Warn("event log write failed", zap.Error(err))
	}
}

func statusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}
