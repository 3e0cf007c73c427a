// Package session provides persistence for chat session identifiers and transcripts.
package session

import "time"

// Session status values.
const (
	StatusActive = "active"
	StatusReset  = "reset"
)

// Session represents one chat session identifier bound to a storage scope.
type Session struct {
	ID        string
	Scope     string
	Status    string // active, reset
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Message represents a chat message within a session.
type Message struct {
	ID        string
	SessionID string
	Role      string // user, assistant
	Content   string
	Timestamp time.Time
}

// Summary provides a high-level view of a session for listing.
type Summary struct {
	ID        string
	Scope     string
	Status    string
	Messages  int
	UpdatedAt time.Time
}
