package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/examhall/examhall-backend/internal/model"
)

// fakeClock is a manually advanced clock for deterministic timing tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// memStore is an in-memory Store that records call counts.
type memStore struct {
	mu         sync.Mutex
	clock      Clock
	clk        SessionClock
	touches    int
	clears     int
	readErr    error
	touchErr   error
	clearedAll bool
}

func newMemStore(clock Clock) *memStore {
	return &memStore{clock: clock}
}

func (s *memStore) Init(_ context.Context, role model.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	s.clk = SessionClock{
		LastActiveAt:   &now,
		SessionStartAt: &now,
		Role:           role,
	}
	return nil
}

func (s *memStore) Touch(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.touchErr != nil {
		return s.touchErr
	}
	now := s.clock.Now()
	s.clk.LastActiveAt = &now
	s.touches++
	return nil
}

func (s *memStore) Read(_ context.Context) (SessionClock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return SessionClock{}, s.readErr
	}
	return s.clk, nil
}

func (s *memStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clears++
	s.clearedAll = true
	s.clk = SessionClock{}
	return nil
}

func (s *memStore) touchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touches
}

// spySink records every clock replication.
type spySink struct {
	mu       sync.Mutex
	writes   []SessionClock
	clears   int
	writeErr error
}

func (s *spySink) WriteClock(clk SessionClock) {
	s.mu.Lock()
	s.writes = append(s.writes, clk)
	s.mu.Unlock()
}

func (s *spySink) ClearClock() {
	s.mu.Lock()
	s.clears++
	s.mu.Unlock()
}

// spyQueue records enqueued activity events.
type spyQueue struct {
	mu     sync.Mutex
	events []ActivityEvent
	err    error
}

func (q *spyQueue) Enqueue(_ context.Context, ev ActivityEvent) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.events = append(q.events, ev)
	return nil
}

func (q *spyQueue) count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// spyTerminator records termination calls.
type spyTerminator struct {
	mu      sync.Mutex
	calls   int
	reasons []Reason
}

func (t *spyTerminator) Terminate(_ context.Context, reason Reason) {
	t.mu.Lock()
	t.calls++
	t.reasons = append(t.reasons, reason)
	t.mu.Unlock()
}

func (t *spyTerminator) callCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}

// spyRevoker records sign-out order relative to other collaborators.
type spyRevoker struct {
	mu      sync.Mutex
	calls   []string
	err     error
	journal *[]string
}

func (r *spyRevoker) SignOut(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, sessionID)
	if r.journal != nil {
		*r.journal = append(*r.journal, "signout")
	}
	return r.err
}

var errBoom = errors.New("boom")
