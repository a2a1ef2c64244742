package session

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/examhall/examhall-backend/internal/config"
	"github.com/examhall/examhall-backend/internal/model"
)

func testEvent(kind string) ActivityEvent {
	return ActivityEvent{
		UserID:    7,
		SessionID: "sess-1",
		Route:     "/dashboard",
		Kind:      kind,
		Timestamp: base.Unix(),
	}
}

func TestTrackerThrottlesBursts(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock(base)
	store := newMemStore(clock)
	store.Init(ctx, model.RoleStudent)
	queue := &spyQueue{}
	tracker := NewTracker(store, clock, queue, zerolog.Nop())

	initialTouches := store.touchCount()

	if !tracker.Signal(ctx, testEvent("pointermove")) {
		t.Fatal("first signal should be accepted")
	}
	// Burst inside the throttle window.
	clock.Advance(100 * time.Millisecond)
	if tracker.Signal(ctx, testEvent("keydown")) {
		t.Error("signal inside throttle window should be dropped")
	}
	clock.Advance(100 * time.Millisecond)
	if tracker.Signal(ctx, testEvent("scroll")) {
		t.Error("signal inside throttle window should be dropped")
	}

	if got := store.touchCount() - initialTouches; got != 1 {
		t.Errorf("burst produced %d store touches, want 1", got)
	}
	// Throttling dedupes clock writes only; every signal still reaches
	// the audit queue.
	if queue.count() != 3 {
		t.Errorf("burst enqueued %d audit events, want 3", queue.count())
	}
}

func TestTrackerAcceptsAfterWindow(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock(base)
	store := newMemStore(clock)
	store.Init(ctx, model.RoleStudent)
	tracker := NewTracker(store, clock, nil, zerolog.Nop())

	if !tracker.Signal(ctx, testEvent("click")) {
		t.Fatal("first signal should be accepted")
	}
	clock.Advance(config.ActivityThrottle + time.Millisecond)
	if !tracker.Signal(ctx, testEvent("click")) {
		t.Error("signal past the throttle window should be accepted")
	}
}

func TestTrackerSignalSurvivesQueueFailure(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock(base)
	store := newMemStore(clock)
	store.Init(ctx, model.RoleStudent)
	queue := &spyQueue{err: errBoom}
	tracker := NewTracker(store, clock, queue, zerolog.Nop())

	before := store.touchCount()
	if !tracker.Signal(ctx, testEvent("keydown")) {
		t.Fatal("queue failure must not reject the signal")
	}
	if store.touchCount() != before+1 {
		t.Error("store touch should happen despite queue failure")
	}
}

func TestTrackerUnloadAlwaysTouches(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock(base)
	store := newMemStore(clock)
	store.Init(ctx, model.RoleStudent)
	tracker := NewTracker(store, clock, nil, zerolog.Nop())

	tracker.Signal(ctx, testEvent("click"))
	before := store.touchCount()

	// Unload lands inside the throttle window but is unconditional.
	clock.Advance(10 * time.Millisecond)
	if err := tracker.Unload(ctx); err != nil {
		t.Fatalf("Unload() error = %v", err)
	}
	if store.touchCount() != before+1 {
		t.Error("unload should touch the store even inside the throttle window")
	}
}
