package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"github.com/authgate/session-service/internal/core/domain"
)

const (
	sessionKeyPrefix = "session:"
	expiryIndexKey   = "session:expiry"
	maxTokenRetries  = 5
)

// SessionStore implements ports.SessionStore on Redis. Each session lives as
// JSON under session:<token>; the expiry index is a sorted set scored by the
// session's expiry instant in milliseconds, so a sweep is a single score-range
// walk. The index has millisecond resolution.
type SessionStore struct {
	client *redis.Client
	log    zerolog.Logger
}

// NewSessionStore wraps the given Redis client.
func NewSessionStore(client *redis.Client, log zerolog.Logger) *SessionStore {
	return &SessionStore{client: client, log: log}
}

// Create mints a session for user. SET NX detects token collisions, which are
// retried with fresh randomness up to maxTokenRetries times.
func (s *SessionStore) Create(ctx context.Context, user *domain.User, duration time.Duration) (*domain.Session, error) {
	var created *domain.Session

	backoff := retry.WithMaxRetries(maxTokenRetries, retry.NewConstant(time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		token, err := domain.NewSessionToken()
		if err != nil {
			return err
		}

		session := &domain.Session{
			ID:       uuid.NewString(),
			UserID:   user.ID,
			Token:    token,
			IssuedAt: time.Now().UTC(),
			Duration: duration,
		}

		payload, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}

		set, err := s.client.SetNX(ctx, sessionKeyPrefix+token, payload, 0).Result()
		if err != nil {
			return fmt.Errorf("store session: %w", err)
		}
		if !set {
			return retry.RetryableError(domain.ErrTokenConflict)
		}

		score := float64(session.ExpiresAt().UnixMilli())
		if err := s.client.ZAdd(ctx, expiryIndexKey, redis.Z{Score: score, Member: token}).Err(); err != nil {
			// Roll back the orphaned record so a failed create leaves nothing behind.
			_ = s.client.Del(ctx, sessionKeyPrefix+token).Err()
			return fmt.Errorf("index session expiry: %w", err)
		}

		created = session
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

// Find looks up a session by token without filtering on liveness.
func (s *SessionStore) Find(ctx context.Context, token string) (*domain.Session, error) {
	payload, err := s.client.Get(ctx, sessionKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("find session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

// Sweep deletes every session whose expiry instant has passed and returns the
// count. Sessions created during the sweep carry future scores and are never
// touched by the range walk.
func (s *SessionStore) Sweep(ctx context.Context) (int, error) {
	maxScore := strconv.FormatInt(time.Now().UnixMilli(), 10)
	tokens, err := s.client.ZRangeByScore(ctx, expiryIndexKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: maxScore,
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("scan expired sessions: %w", err)
	}
	if len(tokens) == 0 {
		return 0, nil
	}

	pipe := s.client.TxPipeline()
	for _, token := range tokens {
		pipe.Del(ctx, sessionKeyPrefix+token)
	}
	members := make([]interface{}, len(tokens))
	for i, token := range tokens {
		members[i] = token
	}
	pipe.ZRem(ctx, expiryIndexKey, members...)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}

	s.log.Debug().Int("removed", len(tokens)).Msg("swept expired sessions")
	return len(tokens), nil
}

// Count returns the cardinality of the expiry index.
func (s *SessionStore) Count(ctx context.Context) (int, error) {
	n, err := s.client.ZCard(ctx, expiryIndexKey).Result()
	if err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return int(n), nil
}
