package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// sessionTokenBytes is the raw entropy of a session token: 32 bytes of
// crypto/rand output, hex-encoded to 64 characters.
const sessionTokenBytes = 32

// SessionForever approximates a session that never expires. time.Duration has
// no infinity value, so "forever" is modelled as a duration (~99 years) that
// no sweep within the service's operational lifetime will ever exceed.
const SessionForever = 867240 * time.Hour

// Session links a User to an opaque bearer token for a bounded window of time.
type Session struct {
	ID       string        `json:"id"`
	UserID   string        `json:"user_id"`
	Token    string        `json:"token"`
	IssuedAt time.Time     `json:"issued_at"`
	Duration time.Duration `json:"duration"`
}

// ExpiresAt returns the instant at which the session stops being live.
func (s *Session) ExpiresAt() time.Time {
	return s.IssuedAt.Add(s.Duration)
}

// LiveAt reports whether the session is live at the given instant. A session
// is live strictly before its expiry instant and expired from then on.
func (s *Session) LiveAt(now time.Time) bool {
	return now.Before(s.ExpiresAt())
}

// Live reports whether the session is live right now.
func (s *Session) Live() bool {
	return s.LiveAt(time.Now())
}

// NewSessionToken returns a cryptographically random opaque token. The token
// is the bearer credential handed to the client; it carries no structure and
// is valid only as long as the store holds a live session for it.
func NewSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
