package ports

import (
	"context"
	"time"

	"github.com/authgate/session-service/internal/core/domain"
)

// SessionStore holds active sessions keyed by token. It is the single shared
// mutable resource of the service; implementations must be safe under
// concurrent Create, Find, and Sweep calls, and every mutation must be atomic
// per record.
type SessionStore interface {
	// Create mints a session with a unique ID and token, stamps the issue
	// time, and persists it. Token collisions are retried internally with
	// fresh randomness; a spent retry budget surfaces domain.ErrTokenExhausted.
	Create(ctx context.Context, user *domain.User, duration time.Duration) (*domain.Session, error)

	// Find is a read-only lookup by token. A miss is domain.ErrSessionNotFound.
	// Find does not filter on liveness: an expired session stays visible until
	// the next sweep removes it, and callers apply the liveness predicate.
	Find(ctx context.Context, token string) (*domain.Session, error)

	// Sweep deletes every session whose live window has elapsed and returns
	// the number removed. Sessions still live at sweep time are retained.
	Sweep(ctx context.Context) (int, error)

	// Count returns the number of stored sessions, swept or not.
	Count(ctx context.Context) (int, error)
}
