package session

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/examhall/examhall-backend/internal/model"
)

func newTestMonitor(clock Clock, store Store, term Terminator) *Monitor {
	return NewMonitor(store, clock, term, time.Minute, zerolog.Nop())
}

func TestMonitorTerminatesIdleSession(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock(base)
	store := newMemStore(clock)
	store.Init(ctx, model.RoleAdmin)
	term := &spyTerminator{}
	mon := newTestMonitor(clock, store, term)

	clock.Advance(16 * time.Minute)
	if mon.Check(ctx) {
		t.Error("Check() = true after termination, want false")
	}
	if term.callCount() != 1 {
		t.Fatalf("terminator fired %d times, want 1", term.callCount())
	}
	if term.reasons[0] != ReasonIdle {
		t.Errorf("reason = %q, want idle", term.reasons[0])
	}
	if mon.State() != StateTerminating {
		t.Error("monitor did not enter terminating state")
	}
}

func TestMonitorStudentExamRouteFullyExempt(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock(base)
	store := newMemStore(clock)
	store.Init(ctx, model.RoleStudent)
	term := &spyTerminator{}
	mon := newTestMonitor(clock, store, term)
	mon.SetRoute("/exam/abc-123")

	// Five hours without a single activity signal.
	clock.Advance(5 * time.Hour)
	for i := 0; i < 10; i++ {
		if !mon.Check(ctx) {
			t.Fatal("student mid-exam was terminated")
		}
		clock.Advance(30 * time.Minute)
	}
	if term.callCount() != 0 {
		t.Fatalf("terminator fired %d times for a student mid-exam, want 0", term.callCount())
	}
}

func TestMonitorStudentCheckedAgainAfterLeavingExam(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock(base)
	store := newMemStore(clock)
	store.Init(ctx, model.RoleStudent)
	term := &spyTerminator{}
	mon := newTestMonitor(clock, store, term)

	mon.SetRoute("/exam/abc-123")
	clock.Advance(2 * time.Hour)
	if !mon.Check(ctx) {
		t.Fatal("student mid-exam was terminated")
	}

	// Back on the dashboard with a stale clock: idle applies again.
	mon.SetRoute("/dashboard")
	if mon.Check(ctx) {
		t.Error("stale session survived after leaving the exam flow")
	}
	if term.callCount() != 1 || term.reasons[0] != ReasonIdle {
		t.Errorf("terminator calls = %d reasons = %v, want one idle", term.callCount(), term.reasons)
	}
}

func TestMonitorAdminExamRouteIdleSuppressedAbsoluteKept(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock(base)
	store := newMemStore(clock)
	store.Init(ctx, model.RoleAdmin)
	term := &spyTerminator{}
	mon := newTestMonitor(clock, store, term)
	mon.SetRoute("/exam/preview-1")

	// Well past admin idle but inside the absolute cap.
	clock.Advance(time.Hour)
	if !mon.Check(ctx) {
		t.Fatal("admin mid-exam terminated on idle")
	}
	if term.callCount() != 0 {
		t.Fatal("idle fired for admin mid-exam")
	}

	// Past the absolute cap, activity notwithstanding.
	store.Touch(ctx)
	clock.Advance(6 * time.Hour)
	store.Touch(ctx)
	clock.Advance(time.Minute)
	if mon.Check(ctx) {
		t.Error("admin past the absolute cap survived mid-exam")
	}
	if term.callCount() != 1 || term.reasons[0] != ReasonAbsolute {
		t.Errorf("terminator calls = %d reasons = %v, want one absolute", term.callCount(), term.reasons)
	}
}

func TestMonitorFailsOpenOnStoreError(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock(base)
	store := newMemStore(clock)
	store.Init(ctx, model.RoleAdmin)
	clock.Advance(20 * time.Minute)
	store.readErr = errBoom
	term := &spyTerminator{}
	mon := newTestMonitor(clock, store, term)

	if !mon.Check(ctx) {
		t.Error("store error caused termination")
	}
	if term.callCount() != 0 {
		t.Error("terminator fired on a store error")
	}
}

func TestMonitorTerminatesAtMostOnce(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock(base)
	store := newMemStore(clock)
	store.Init(ctx, model.RoleAdmin)
	term := &spyTerminator{}
	mon := newTestMonitor(clock, store, term)

	clock.Advance(16 * time.Minute)

	// Tick, visibility handler, and another tick all racing.
	done := make(chan struct{})
	for i := 0; i < 4; i++ {
		go func() {
			mon.Check(ctx)
			done <- struct{}{}
		}()
	}
	for i := 0; i < 4; i++ {
		<-done
	}

	if term.callCount() != 1 {
		t.Fatalf("terminator fired %d times, want exactly 1", term.callCount())
	}
	if mon.Check(ctx) {
		t.Error("Check() = true after termination, want false")
	}
}
