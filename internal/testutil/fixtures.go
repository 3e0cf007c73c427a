// Package testutil provides test helper utilities for chatdock tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/berth-dev/chatdock/internal/render"
)

// TempProject creates a temporary directory with the given files and returns its path.
// Files is a map of relative path -> content. Directories are created as needed.
// The directory is automatically cleaned up when the test finishes.
func TempProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()

	for relPath, content := range files {
		absPath := filepath.Join(dir, relPath)
		if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
			t.Fatalf("creating directory for %s: %v", relPath, err)
		}
		if err := os.WriteFile(absPath, []byte(content), 0644); err != nil {
			t.Fatalf("writing %s: %v", relPath, err)
		}
	}

	return dir
}

// Request is one call received by a FakeBackend.
type Request struct {
	Path      string
	SessionID string // from the JSON body, or the query string for reset
	Message   string
}

// FakeBackend is an httptest server speaking the chatbot API.
// Reply decides the message endpoint's answer; the default echoes.
type FakeBackend struct {
	*httptest.Server

	mu          sync.Mutex
	requests    []Request
	status      int
	resetStatus int
	reply       func(sessionID, message string) string
}

// NewFakeBackend starts a FakeBackend that is closed when the test ends.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()
	fb := &FakeBackend{
		status:      http.StatusOK,
		resetStatus: http.StatusOK,
		reply: func(_, message string) string {
			return "eco: " + message
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/chatbot/message", fb.handleMessage)
	mux.HandleFunc("/chatbot/reset", fb.handleReset)
	fb.Server = httptest.NewServer(mux)
	t.Cleanup(fb.Close)
	return fb
}

// SetStatus makes the message endpoint answer with status.
func (fb *FakeBackend) SetStatus(status int) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.status = status
}

// SetResetStatus makes the reset endpoint answer with status.
func (fb *FakeBackend) SetResetStatus(status int) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.resetStatus = status
}

// SetReply replaces the reply function.
func (fb *FakeBackend) SetReply(reply func(sessionID, message string) string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.reply = reply
}

// Requests returns a copy of the requests received so far.
func (fb *FakeBackend) Requests() []Request {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]Request(nil), fb.requests...)
}

func (fb *FakeBackend) handleMessage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Message   string `json:"message"`
		SessionID string `json:"session_id"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	fb.mu.Lock()
	fb.requests = append(fb.requests, Request{Path: r.URL.Path, SessionID: body.SessionID, Message: body.Message})
	status, reply := fb.status, fb.reply
	fb.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if status >= 200 && status < 300 {
		_ = json.NewEncoder(w).Encode(map[string]string{"message": reply(body.SessionID, body.Message)})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": "boom"})
}

func (fb *FakeBackend) handleReset(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session_id")

	fb.mu.Lock()
	fb.requests = append(fb.requests, Request{Path: r.URL.Path, SessionID: id})
	status := fb.resetStatus
	fb.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "Conversa resetada", "session_id": id})
}

// View operation names recorded by RecordingView.
const (
	OpAppend     = "append"
	OpClear      = "clear"
	OpBusy       = "busy"
	OpIdle       = "idle"
	OpClearInput = "clear_input"
	OpFocus      = "focus"
)

// RecordingView records every call made to it, in order.
type RecordingView struct {
	mu       sync.Mutex
	Ops      []string
	Messages []render.Rendered
	Busy     bool
	Focused  bool
	Input    string
}

// AppendMessage implements the chat view.
func (v *RecordingView) AppendMessage(m render.Rendered) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.Ops = append(v.Ops, OpAppend)
	v.Messages = append(v.Messages, m)
}

// ClearMessages implements the chat view.
func (v *RecordingView) ClearMessages() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.Ops = append(v.Ops, OpClear)
	v.Messages = nil
}

// SetBusy implements the chat view.
func (v *RecordingView) SetBusy(busy bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if busy {
		v.Ops = append(v.Ops, OpBusy)
		v.Focused = false
	} else {
		v.Ops = append(v.Ops, OpIdle)
	}
	v.Busy = busy
}

// ClearInput implements the chat view.
func (v *RecordingView) ClearInput() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.Ops = append(v.Ops, OpClearInput)
	v.Input = ""
}

// FocusInput implements the chat view.
func (v *RecordingView) FocusInput() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.Ops = append(v.Ops, OpFocus)
	v.Focused = true
}

// Texts returns the raw text of every message currently shown.
func (v *RecordingView) Texts() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]string, len(v.Messages))
	for i, m := range v.Messages {
		out[i] = m.Text
	}
	return out
}

// Reset forgets all recorded operations and messages.
func (v *RecordingView) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.Ops = nil
	v.Messages = nil
}
