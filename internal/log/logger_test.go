package log

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAppendAndReadAll(t *testing.T) {
	dir := t.TempDir()

	l, err := NewLogger(dir)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	if err := l.Append(LogEvent{Event: EventSessionStarted, SessionID: "session_abc", Scope: "default"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := l.Append(LogEvent{Event: EventMessageFailed, SessionID: "session_abc", Status: 500}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	events, err := l.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Event != EventSessionStarted || events[0].Scope != "default" {
		t.Errorf("first event: got %+v", events[0])
	}
	if events[1].Status != 500 {
		t.Errorf("Status: got %d, want 500", events[1].Status)
	}
	if events[0].Time.IsZero() {
		t.Error("Time should be set automatically")
	}
}

func TestAppendKeepsExplicitTime(t *testing.T) {
	l, err := NewLogger(t.TempDir())
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	ts := time.Date(2025, 11, 20, 14, 0, 0, 0, time.UTC)
	if err := l.Append(LogEvent{Time: ts, Event: EventMessageSent}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	events, err := l.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if !events[0].Time.Equal(ts) {
		t.Errorf("Time: got %v, want %v", events[0].Time, ts)
	}
}

func TestReadAllMissingFile(t *testing.T) {
	l, err := NewLogger(t.TempDir())
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	events, err := l.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll on missing file should not error: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("got %d events, want 0", len(events))
	}
}

func TestReadAllMalformedLine(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLogger(dir)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	path := filepath.Join(dir, ".chatdock", "log.jsonl")
	if err := os.WriteFile(path, []byte("{\"event\":\"message_sent\"}\nnot json\n"), 0644); err != nil {
		t.Fatalf("writing log: %v", err)
	}

	if _, err := l.ReadAll(); err == nil {
		t.Error("expected parse error for malformed line")
	}
}

func TestFilter(t *testing.T) {
	events := []LogEvent{
		{Event: EventMessageSent},
		{Event: EventMessageFailed},
		{Event: EventMessageSent},
	}
	if got := len(Filter(events, EventMessageSent)); got != 2 {
		t.Errorf("Filter: got %d, want 2", got)
	}
	if got := len(Filter(events, EventConversationReset)); got != 0 {
		t.Errorf("Filter: got %d, want 0", got)
	}
}
