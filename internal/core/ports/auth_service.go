package ports

import (
	"context"

	"github.com/authgate/session-service/internal/core/domain"
)

// RegisterInput carries all data needed to provision a new account.
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
	Guest       bool
}

// AuthService orchestrates the session lifecycle: credential validation,
// session issuance, introspection, and expiry sweeping.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.Session, *domain.User, error)
	// Session resolves a bearer token to its live session. Expired or unknown
	// tokens yield domain.ErrSessionNotFound.
	Session(ctx context.Context, token string) (*domain.Session, error)
	// RunExpirySweep deletes every expired session and returns the count.
	RunExpirySweep(ctx context.Context) (int, error)
}
