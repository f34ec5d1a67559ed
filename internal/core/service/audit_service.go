package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/authgate/session-service/internal/core/domain"
	"github.com/authgate/session-service/internal/core/ports"
)

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService returns an AuditService that persists events to the audit
// trail.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

// Record persists a single authentication event. Audit failures are reported
// to the caller but must never fail the login path; the dispatcher logs and
// drops them.
func (s *auditService) Record(ctx context.Context, in ports.AuthEventInput) error {
	if in.Kind == "" {
		return fmt.Errorf("record audit event: missing kind")
	}

	event := &domain.AuthEvent{
		Kind:      in.Kind,
		Email:     in.Email,
		SessionID: in.SessionID,
		Detail:    in.Detail,
		Timestamp: in.Timestamp,
	}

	if err := s.repo.InsertEvent(ctx, event); err != nil {
		return fmt.Errorf("record audit event: %w", err)
	}

	s.log.Debug().
		Str("kind", string(in.Kind)).
		Str("email", in.Email).
		Msg("audit event recorded")

	return nil
}
