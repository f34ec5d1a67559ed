package ports

import (
	"context"
	"time"

	"github.com/authgate/session-service/internal/core/domain"
)

// AuthEventInput is the DTO handed from the login path to the audit pipeline.
type AuthEventInput struct {
	Kind      domain.AuthEventKind
	Email     string
	SessionID string
	Detail    string
	Timestamp time.Time
}

// AuditService processes authentication audit events.
type AuditService interface {
	Record(ctx context.Context, event AuthEventInput) error
}

// AuditRepository persists authentication events to the audit trail.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.AuthEvent) error
}
