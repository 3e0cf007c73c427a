package chatbot

import (
	"math/rand"
	"strconv"
	"strings"
)

// SessionIDPrefix starts every generated session identifier.
const SessionIDPrefix = "session_"

// NewSessionID returns "session_" followed by a random base-36 fragment of
// at most 13 characters.
func NewSessionID() string {
	return SessionIDPrefix + strconv.FormatUint(rand.Uint64(), 36)
}

// IsSessionID reports whether id looks like a generated session identifier.
func IsSessionID(id string) bool {
	frag, ok := strings.CutPrefix(id, SessionIDPrefix)
	if !ok || frag == "" || len(frag) > 13 {
		return false
	}
	_, err := strconv.ParseUint(frag, 36, 64)
	return err == nil
}
