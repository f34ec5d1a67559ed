package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/authgate/session-service/internal/core/domain"
	"github.com/authgate/session-service/internal/core/ports"
)

// PasswordHasher abstracts the memory-hard password KDF.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, password, encoded string) (bool, error)
}

// AuditSink accepts audit events without blocking the login path.
type AuditSink interface {
	Enqueue(event ports.AuthEventInput)
}

// decoySecret seeds the hash verified on unknown-email logins so that both
// failure paths cost one KDF computation.
const decoySecret = "decoy-credential-equalizer"

type authService struct {
	users      ports.UserRepository
	sessions   ports.SessionStore
	hasher     PasswordHasher
	audit      AuditSink
	log        zerolog.Logger
	sessionTTL time.Duration
	decoyHash  string
}

// NewAuthService returns an AuthService implementation. sessionTTL <= 0
// falls back to 24 hours. audit may be nil to disable the audit trail.
func NewAuthService(
	users ports.UserRepository,
	sessions ports.SessionStore,
	hasher PasswordHasher,
	audit AuditSink,
	log zerolog.Logger,
	sessionTTL time.Duration,
) ports.AuthService {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}

	decoy, err := hasher.Hash(context.Background(), decoySecret)
	if err != nil {
		log.Warn().Err(err).Msg("decoy hash unavailable, unknown-email logins will return early")
	}

	return &authService{
		users:      users,
		sessions:   sessions,
		hasher:     hasher,
		audit:      audit,
		log:        log,
		sessionTTL: sessionTTL,
		decoyHash:  decoy,
	}
}

// Register provisions a new account with an argon2id password hash.
func (s *authService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	encoded, err := s.hasher.Hash(ctx, input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Email:        email,
		PasswordHash: encoded,
		DisplayName:  input.DisplayName,
		Guest:        input.Guest,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("email", email).Bool("guest", created.Guest).Msg("user registered")
	return created, nil
}

// Login validates the credentials and mints a session with the configured
// default duration. Every credential failure (unknown email or wrong
// password) surfaces as domain.ErrInvalidCredentials, and both paths perform
// one KDF computation so response timing does not reveal account existence.
func (s *authService) Login(ctx context.Context, email, password string) (*domain.Session, *domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.burnVerification(ctx, password)
			s.recordAudit(domain.AuthLoginFailure, email, "", "unknown email")
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("find user: %w", err)
	}

	ok, err := s.hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		return nil, nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		s.recordAudit(domain.AuthLoginFailure, email, "", "password mismatch")
		return nil, nil, domain.ErrInvalidCredentials
	}

	session, err := s.sessions.Create(ctx, user, s.sessionTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("create session: %w", err)
	}

	s.recordAudit(domain.AuthSessionCreated, email, session.ID, session.Duration.String())
	s.recordAudit(domain.AuthLoginSuccess, email, session.ID, "")
	s.log.Info().
		Str("email", email).
		Str("session_id", session.ID).
		Time("expires_at", session.ExpiresAt()).
		Msg("login succeeded")

	return session, user, nil
}

// Session resolves a bearer token to its session. Expired sessions are
// reported as not found even while they await the next sweep.
func (s *authService) Session(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, domain.ErrSessionNotFound
	}

	session, err := s.sessions.Find(ctx, token)
	if err != nil {
		return nil, err
	}
	if !session.Live() {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// RunExpirySweep is a thin passthrough to the store's sweep.
func (s *authService) RunExpirySweep(ctx context.Context) (int, error) {
	removed, err := s.sessions.Sweep(ctx)
	if err != nil {
		return 0, fmt.Errorf("expiry sweep: %w", err)
	}

	if removed > 0 {
		s.recordAudit(domain.AuthSweepCompleted, "", "", fmt.Sprintf("removed %d sessions", removed))
	}
	s.log.Debug().Int("removed", removed).Msg("expiry sweep completed")
	return removed, nil
}

// burnVerification runs one KDF verification against the decoy hash so the
// unknown-email path costs the same as a password mismatch.
func (s *authService) burnVerification(ctx context.Context, password string) {
	if s.decoyHash == "" {
		return
	}
	_, _ = s.hasher.Verify(ctx, password, s.decoyHash)
}

func (s *authService) recordAudit(kind domain.AuthEventKind, email, sessionID, detail string) {
	if s.audit == nil {
		return
	}
	s.audit.Enqueue(ports.AuthEventInput{
		Kind:      kind,
		Email:     email,
		SessionID: sessionID,
		Detail:    detail,
		Timestamp: time.Now().UTC(),
	})
}
