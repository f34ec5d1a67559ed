package domain

import "time"

// AuthEventKind classifies an entry in the authentication audit trail.
type AuthEventKind string

const (
	AuthLoginSuccess   AuthEventKind = "login_success"
	AuthLoginFailure   AuthEventKind = "login_failure"
	AuthSessionCreated AuthEventKind = "session_created"
	AuthSweepCompleted AuthEventKind = "sweep_completed"
)

// AuthEvent records a single authentication-related occurrence.
type AuthEvent struct {
	Kind      AuthEventKind
	Email     string
	SessionID string // empty unless a session was involved
	Detail    string
	Timestamp time.Time
}
