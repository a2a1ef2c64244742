package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/examhall/examhall-backend/internal/model"
)

// State is the monitor's lifecycle state. Termination is terminal and
// re-entrancy safe: once Terminating, no further check can fire a
// second termination.
type State int

const (
	StateMonitoring State = iota
	StateTerminating
)

// Terminator is invoked exactly once when the monitor decides a
// session must end.
type Terminator interface {
	Terminate(ctx context.Context, reason Reason)
}

// Monitor periodically evaluates the timeout policy for one session and
// triggers termination when it is exceeded. Checks also run on demand
// when the client's tab regains visibility.
//
// Exam-route gating is asymmetric by policy: a student inside the exam
// flow is never checked at all, while an admin inside the exam flow is
// still subject to the absolute cap (idle only is suppressed).
type Monitor struct {
	store    Store
	clock    Clock
	term     Terminator
	interval time.Duration
	log      zerolog.Logger

	mu    sync.Mutex
	state State
	route string
}

// NewMonitor creates a timeout monitor for one session.
func NewMonitor(store Store, clock Clock, term Terminator, interval time.Duration, log zerolog.Logger) *Monitor {
	return &Monitor{
		store:    store,
		clock:    clock,
		term:     term,
		interval: interval,
		log:      log.With().Str("component", "timeout_monitor").Logger(),
	}
}

// SetRoute records the client's latest reported SPA route.
func (m *Monitor) SetRoute(path string) {
	m.mu.Lock()
	m.route = path
	m.mu.Unlock()
}

// State returns the current lifecycle state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Run checks once immediately, then on every tick until the context is
// cancelled or the session terminates.
func (m *Monitor) Run(ctx context.Context) {
	m.Check(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !m.Check(ctx) {
				return
			}
		}
	}
}

// Check evaluates the policy once. Returns false when the session has
// entered the terminating state and no further checks should run.
func (m *Monitor) Check(ctx context.Context) bool {
	m.mu.Lock()
	if m.state == StateTerminating {
		m.mu.Unlock()
		return false
	}
	route := m.route
	m.mu.Unlock()

	clk, err := m.store.Read(ctx)
	if err != nil {
		// Fail open: a store hiccup must not log anyone out.
		m.log.Warn().Err(err).Msg("Clock read failed, skipping check")
		return true
	}

	now := m.clock.Now()

	if IsExamRoute(route) {
		// Students mid-exam are fully exempt.
		if clk.Role == model.RoleStudent {
			return true
		}
		// Admins keep the absolute cap even mid-exam.
		if IsAbsoluteExceeded(now, clk.SessionStartAt, clk.Role) {
			return !m.terminate(ctx, ReasonAbsolute)
		}
		return true
	}

	if expired, reason := ShouldTerminate(now, clk.LastActiveAt, clk.SessionStartAt, clk.Role); expired {
		return !m.terminate(ctx, reason)
	}
	return true
}

// terminate transitions to StateTerminating and fires the terminator at
// most once, even with the tick, visibility handler, and initial check
// racing each other.
func (m *Monitor) terminate(ctx context.Context, reason Reason) bool {
	m.mu.Lock()
	if m.state == StateTerminating {
		m.mu.Unlock()
		return false
	}
	m.state = StateTerminating
	m.mu.Unlock()

	m.log.Info().Str("reason", string(reason)).Msg("Session timeout exceeded, terminating")
	m.term.Terminate(ctx, reason)
	return true
}
