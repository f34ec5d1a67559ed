package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/authgate/session-service/internal/core/domain"
	"github.com/authgate/session-service/internal/core/ports"
)

type recordingAuditService struct {
	mu     sync.Mutex
	events []ports.AuthEventInput
	done   chan struct{}
	want   int
}

func newRecordingAuditService(want int) *recordingAuditService {
	return &recordingAuditService{done: make(chan struct{}), want: want}
}

func (r *recordingAuditService) Record(_ context.Context, event ports.AuthEventInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	if len(r.events) == r.want {
		close(r.done)
	}
	return nil
}

func TestDispatcher_DeliversAllEvents(t *testing.T) {
	svc := newRecordingAuditService(10)
	d := NewDispatcher(4, svc, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	emails := []string{"a@example.com", "b@example.com", "c@example.com"}
	for i := 0; i < 10; i++ {
		d.Enqueue(ports.AuthEventInput{
			Kind:      domain.AuthLoginSuccess,
			Email:     emails[i%len(emails)],
			Timestamp: time.Now(),
		})
	}

	select {
	case <-svc.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for events, got %d", len(svc.events))
	}
}

func TestDispatcher_ShardingIsDeterministic(t *testing.T) {
	d := NewDispatcher(8, newRecordingAuditService(0), zerolog.Nop())

	first := d.shardIndex("alice@example.com")
	for i := 0; i < 100; i++ {
		if d.shardIndex("alice@example.com") != first {
			t.Fatalf("shard index not stable")
		}
	}
}

func TestDispatcher_PerAccountOrdering(t *testing.T) {
	svc := newRecordingAuditService(20)
	d := NewDispatcher(1, svc, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	for i := 0; i < 20; i++ {
		detail := "even"
		if i%2 == 1 {
			detail = "odd"
		}
		d.Enqueue(ports.AuthEventInput{
			Kind:      domain.AuthLoginFailure,
			Email:     "alice@example.com",
			Detail:    detail,
			Timestamp: time.Now().Add(time.Duration(i) * time.Millisecond),
		})
	}

	select {
	case <-svc.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for events")
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	for i := 1; i < len(svc.events); i++ {
		if svc.events[i].Timestamp.Before(svc.events[i-1].Timestamp) {
			t.Fatalf("events for one account arrived out of order at %d", i)
		}
	}
}
