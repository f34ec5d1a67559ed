package memstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/authgate/session-service/internal/core/domain"
)

func testUser() *domain.User {
	return &domain.User{ID: "user-1", Email: "alice@example.com"}
}

func newTestStore() *Store {
	return NewStore(zerolog.Nop())
}

func TestStore_CreateAndFind(t *testing.T) {
	store := newTestStore()

	session, err := store.Create(context.Background(), testUser(), 24*time.Hour)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if session.Token == "" || session.ID == "" {
		t.Fatalf("expected token and id, got %+v", session)
	}
	if session.UserID != "user-1" {
		t.Fatalf("unexpected user id: %s", session.UserID)
	}
	if session.IssuedAt.IsZero() {
		t.Fatalf("expected issue timestamp to be stamped")
	}

	found, err := store.Find(context.Background(), session.Token)
	if err != nil {
		t.Fatalf("Find returned error: %v", err)
	}
	if found.ID != session.ID {
		t.Fatalf("found wrong session: %s != %s", found.ID, session.ID)
	}
}

func TestStore_FindUnknownToken(t *testing.T) {
	store := newTestStore()

	if _, err := store.Find(context.Background(), "no-such-token"); err != domain.ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestStore_SweepKeepsFreshSessions(t *testing.T) {
	store := newTestStore()

	session, err := store.Create(context.Background(), testUser(), 24*time.Hour)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	removed, err := store.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}
	if removed != 0 {
		t.Fatalf("sweep removed %d live sessions", removed)
	}

	if _, err := store.Find(context.Background(), session.Token); err != nil {
		t.Fatalf("live session missing after sweep: %v", err)
	}
}

func TestStore_SweepRemovesExpiredSessions(t *testing.T) {
	store := newTestStore()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return now })

	session, err := store.Create(context.Background(), testUser(), 24*time.Hour)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	// 25 hours later the 24h session has expired.
	now = now.Add(25 * time.Hour)

	removed, err := store.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removal, got %d", removed)
	}

	if _, err := store.Find(context.Background(), session.Token); err != domain.ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound after sweep, got %v", err)
	}
}

func TestStore_SweepIsIdempotent(t *testing.T) {
	store := newTestStore()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return now })

	if _, err := store.Create(context.Background(), testUser(), time.Hour); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	now = now.Add(2 * time.Hour)

	first, err := store.Sweep(context.Background())
	if err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	if first != 1 {
		t.Fatalf("expected 1 removal on first sweep, got %d", first)
	}

	second, err := store.Sweep(context.Background())
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if second != 0 {
		t.Fatalf("expected 0 removals on second sweep, got %d", second)
	}
}

func TestStore_ExpiryBoundaryIsInclusive(t *testing.T) {
	store := newTestStore()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return now })

	if _, err := store.Create(context.Background(), testUser(), time.Hour); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	// Exactly at issue+duration the session is expired, not live.
	now = now.Add(time.Hour)

	removed, err := store.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}
	if removed != 1 {
		t.Fatalf("session at its expiry instant should be swept, removed=%d", removed)
	}
}

func TestStore_ForeverSessionSurvivesYears(t *testing.T) {
	store := newTestStore()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return now })

	session, err := store.Create(context.Background(), testUser(), domain.SessionForever)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	// A decade of uptime is a realistic horizon; "forever" must outlive it.
	now = now.Add(10 * 365 * 24 * time.Hour)

	removed, err := store.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}
	if removed != 0 {
		t.Fatalf("forever session was swept after 10 years")
	}
	if _, err := store.Find(context.Background(), session.Token); err != nil {
		t.Fatalf("forever session missing: %v", err)
	}
}

func TestStore_TokensAreUnique(t *testing.T) {
	store := newTestStore()

	const n = 2000
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		session, err := store.Create(context.Background(), testUser(), time.Hour)
		if err != nil {
			t.Fatalf("Create %d returned error: %v", i, err)
		}
		if _, dup := seen[session.Token]; dup {
			t.Fatalf("duplicate token after %d creations", i)
		}
		seen[session.Token] = struct{}{}
	}

	count, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("Count returned error: %v", err)
	}
	if count != n {
		t.Fatalf("expected %d stored sessions, got %d", n, count)
	}
}

func TestStore_ConcurrentCreateFindSweep(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	tokens := make(chan string, 200)

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				session, err := store.Create(ctx, testUser(), time.Hour)
				if err != nil {
					t.Errorf("concurrent create: %v", err)
					return
				}
				tokens <- session.Token
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			if _, err := store.Sweep(ctx); err != nil {
				t.Errorf("concurrent sweep: %v", err)
				return
			}
		}
	}()

	wg.Wait()
	close(tokens)

	// Every session created during the churn is live for an hour, so no
	// concurrent sweep may have removed any of them.
	for token := range tokens {
		if _, err := store.Find(ctx, token); err != nil {
			t.Fatalf("live session lost during concurrent sweep: %v", err)
		}
	}
}

func TestStore_CreateCancelledContext(t *testing.T) {
	store := newTestStore()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A cancelled context may or may not interrupt the first attempt, but a
	// failed create must never leave a partial session behind.
	if _, err := store.Create(ctx, testUser(), time.Hour); err != nil {
		count, countErr := store.Count(context.Background())
		if countErr != nil {
			t.Fatalf("Count returned error: %v", countErr)
		}
		if count != 0 {
			t.Fatalf("failed create left %d sessions behind", count)
		}
	}
}
