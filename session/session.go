// Package session holds per-call conversation state. Sessions are keyed
// by the Twilio CallSid and live only for the duration of a call plus
// the sweep window; nothing persists across process restarts.
package session

import "time"

// Roles of a conversation turn
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one entry in a call's conversation history
type Turn struct {
	Role string
	Text string
	At   time.Time
}

// Session is the conversation state for a single phone call.
// Invariant: at most one system turn, always at index 0 when present.
type Session struct {
	CallSID      string
	Turns        []Turn
	LastActivity time.Time
}
