// Package sweeper runs the periodic expiry sweep. The sweep itself is a thin
// passthrough to the session store; this package only owns the schedule.
package sweeper

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/authgate/session-service/internal/api/metrics"
	"github.com/authgate/session-service/internal/core/ports"
)

const defaultInterval = 5 * time.Minute

// Sweeper invokes the auth service's expiry sweep on a fixed interval.
// External callers may still trigger sweeps through the API; the two paths
// share the store's concurrency guarantees.
type Sweeper struct {
	service  ports.AuthService
	store    ports.SessionStore
	interval time.Duration
	log      zerolog.Logger
}

// New creates a Sweeper. interval <= 0 falls back to defaultInterval. The
// store is only consulted for the stored-sessions gauge.
func New(service ports.AuthService, store ports.SessionStore, interval time.Duration, log zerolog.Logger) *Sweeper {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Sweeper{service: service, store: store, interval: interval, log: log}
}

// Start launches the sweep loop. It stops when ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	go s.run(ctx)
}

func (s *Sweeper) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			removed, err := s.service.RunExpirySweep(ctx)
			if err != nil {
				s.log.Error().Err(err).Msg("scheduled sweep failed")
				continue
			}
			metrics.SweepDuration.Observe(time.Since(start).Seconds())
			metrics.SweepRemovedTotal.Add(float64(removed))
			if n, err := s.store.Count(ctx); err == nil {
				metrics.StoredSessions.Set(float64(n))
			}
			if removed > 0 {
				s.log.Info().Int("removed", removed).Msg("scheduled sweep removed expired sessions")
			}
		}
	}
}
