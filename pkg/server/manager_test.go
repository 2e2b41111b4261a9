package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/weft-dev/weft/pkg/persist"
)

func TestManagerReusesSessions(t *testing.T) {
	m := NewManager(counterFactory)
	defer m.Close(context.Background())

	ctx := context.Background()
	a, err := m.GetOrCreate(ctx, "sid-1")
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	b, err := m.GetOrCreate(ctx, "sid-1")
	if err != nil {
		t.Fatalf("second GetOrCreate failed: %v", err)
	}
	if a != b {
		t.Error("same id produced different sessions")
	}

	if _, err := m.GetOrCreate(ctx, "sid-2"); err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if m.Count() != 2 {
		t.Errorf("Count = %d, want 2", m.Count())
	}
}

func TestManagerClosed(t *testing.T) {
	m := NewManager(counterFactory)
	if err := m.Close(context.Background()); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := m.GetOrCreate(context.Background(), "sid"); !errors.Is(err, ErrManagerClosed) {
		t.Errorf("got %v, want ErrManagerClosed", err)
	}

	// Double close is fine.
	if err := m.Close(context.Background()); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}

func TestManagerContinuityAcrossRestart(t *testing.T) {
	states := persist.NewMemoryStore()
	defer states.Close()

	ctx := context.Background()

	m := NewManager(counterFactory, WithStateStore(states))
	s, err := m.GetOrCreate(ctx, "sid-1")
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}

	// Advance the page sequence, then shut down.
	if _, err := s.ProcessRequest(ctx, &httpRequest{path: "/"}); err != nil {
		t.Fatalf("fresh request failed: %v", err)
	}
	if err := m.Close(ctx); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if states.Count() != 1 {
		t.Fatalf("continuity store holds %d records, want 1", states.Count())
	}

	// A new manager with the same store resumes the sequence.
	m2 := NewManager(counterFactory, WithStateStore(states))
	defer m2.Close(ctx)

	s2, err := m2.GetOrCreate(ctx, "sid-1")
	if err != nil {
		t.Fatalf("GetOrCreate after restart failed: %v", err)
	}
	if s2.ContinuityState().NextPageSeq < 2 {
		t.Errorf("NextPageSeq = %d after restart, want at least 2",
			s2.ContinuityState().NextPageSeq)
	}
}

func TestManagerSweepsIdleSessions(t *testing.T) {
	m := NewManager(counterFactory,
		WithSessionTTL(10*time.Millisecond),
		WithSweepInterval(10*time.Millisecond))
	defer m.Close(context.Background())

	if _, err := m.GetOrCreate(context.Background(), "sid-1"); err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for m.Count() > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if m.Count() != 0 {
		t.Errorf("Count = %d after sweep, want 0", m.Count())
	}
}
