// Package memstore provides an in-memory session store for single-node runs
// and tests. The store is an owned, injectable object rather than a
// process-wide table so each test can work against an isolated instance.
package memstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"github.com/authgate/session-service/internal/core/domain"
)

const maxTokenRetries = 5

// Store holds sessions keyed by token behind a single RWMutex. Create and
// Sweep take the write lock, so a sweep can never observe a half-inserted
// session and a just-created live session can never be swept.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
	clock    func() time.Time
	log      zerolog.Logger
}

// NewStore returns an empty Store using the wall clock.
func NewStore(log zerolog.Logger) *Store {
	return &Store{
		sessions: make(map[string]*domain.Session),
		clock:    time.Now,
		log:      log,
	}
}

// SetClock replaces the store's time source. Intended for use in tests only.
func (s *Store) SetClock(clock func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = clock
}

// Create mints a session for user with the given duration. Token collisions
// are retried with fresh randomness up to maxTokenRetries times before
// surfacing domain.ErrTokenExhausted.
func (s *Store) Create(ctx context.Context, user *domain.User, duration time.Duration) (*domain.Session, error) {
	var created *domain.Session

	backoff := retry.WithMaxRetries(maxTokenRetries, retry.NewConstant(time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		token, err := domain.NewSessionToken()
		if err != nil {
			return err
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		if _, exists := s.sessions[token]; exists {
			return retry.RetryableError(domain.ErrTokenConflict)
		}

		session := &domain.Session{
			ID:       uuid.NewString(),
			UserID:   user.ID,
			Token:    token,
			IssuedAt: s.clock().UTC(),
			Duration: duration,
		}
		s.sessions[token] = session

		clone := *session
		created = &clone
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrTokenConflict) {
			return nil, domain.ErrTokenExhausted
		}
		return nil, err
	}

	return created, nil
}

// Find returns the session stored under token, expired or not. Liveness is
// the caller's predicate; expired sessions disappear at the next sweep.
func (s *Store) Find(_ context.Context, token string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[token]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	clone := *session
	return &clone, nil
}

// Sweep removes every session whose live window has elapsed and returns the
// count. Calling it again with no new sessions removes nothing.
func (s *Store) Sweep(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	removed := 0
	for token, session := range s.sessions {
		if !session.LiveAt(now) {
			delete(s.sessions, token)
			removed++
		}
	}

	if removed > 0 {
		s.log.Debug().Int("removed", removed).Int("remaining", len(s.sessions)).Msg("swept expired sessions")
	}
	return removed, nil
}

// Count returns the number of stored sessions, live or awaiting sweep.
func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions), nil
}
