package session

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/examhall/examhall-backend/internal/model"
)

// Manager owns one monitor/tracker pair per authenticated session.
// Entries are created on login (or lazily after a restart), and torn
// down on logout or forced termination, so no timer outlives its
// session.
type Manager struct {
	rdb      *redis.Client
	auth     Revoker
	queue    EventQueue
	loginURL string
	clock    Clock
	interval time.Duration
	log      zerolog.Logger

	mu       sync.RWMutex
	sessions map[string]*entry
	baseCtx  context.Context
	baseStop context.CancelFunc
}

type entry struct {
	userID  int
	store   *RedisStore
	tracker *Tracker
	monitor *Monitor
	cancel  context.CancelFunc
}

// NewManager creates a session manager.
func NewManager(
	rdb *redis.Client,
	auth Revoker,
	queue EventQueue,
	loginURL string,
	clock Clock,
	interval time.Duration,
	log zerolog.Logger,
) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		rdb:      rdb,
		auth:     auth,
		queue:    queue,
		loginURL: loginURL,
		clock:    clock,
		interval: interval,
		log:      log.With().Str("component", "session_manager").Logger(),
		sessions: make(map[string]*entry),
		baseCtx:  ctx,
		baseStop: cancel,
	}
}

// StartSession initializes the clock store for a fresh login and spins
// up its monitor.
func (m *Manager) StartSession(ctx context.Context, sessionID string, userID int, role model.Role) error {
	store := NewRedisStore(m.rdb, sessionID, m.clock)
	if err := store.Init(ctx, role); err != nil {
		return err
	}
	m.attach(sessionID, userID, store)
	return nil
}

// Ensure lazily reconstructs the monitor for a session that is valid in
// Redis but unknown here (process restart). The clock record is
// re-initialized only if it went missing.
func (m *Manager) Ensure(ctx context.Context, sessionID string, userID int, role model.Role) {
	m.mu.RLock()
	_, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if ok {
		return
	}

	store := NewRedisStore(m.rdb, sessionID, m.clock)
	clk, err := store.Read(ctx)
	if err == nil && clk.SessionStartAt == nil {
		if err := store.Init(ctx, role); err != nil {
			m.log.Warn().Err(err).Str("session_id", sessionID).Msg("Clock re-init failed")
		}
	}
	m.attach(sessionID, userID, store)
}

func (m *Manager) attach(sessionID string, userID int, store *RedisStore) {
	term := NewSessionTerminator(sessionID, m.loginURL, store, m.auth, m.rdb, m.release, m.log)
	tracker := NewTracker(store, m.clock, m.queue, m.log)
	monitor := NewMonitor(store, m.clock, term, m.interval, m.log)

	runCtx, cancel := context.WithCancel(m.baseCtx)
	e := &entry{
		userID:  userID,
		store:   store,
		tracker: tracker,
		monitor: monitor,
		cancel:  cancel,
	}

	m.mu.Lock()
	if _, exists := m.sessions[sessionID]; exists {
		// Lost the race with a concurrent attach; keep the first one.
		m.mu.Unlock()
		cancel()
		return
	}
	m.sessions[sessionID] = e
	m.mu.Unlock()

	go monitor.Run(runCtx)
}

// EndSession tears down a session's monitor and clears its clock store.
// Used on explicit sign-out; the caller revokes the auth session itself.
func (m *Manager) EndSession(ctx context.Context, sessionID string) error {
	e := m.take(sessionID)
	if e == nil {
		// Still clear any orphaned clock record.
		return NewRedisStore(m.rdb, sessionID, m.clock).Clear(ctx)
	}
	e.cancel()
	return e.store.Clear(ctx)
}

// Signal feeds one activity event into the session's tracker and
// updates the monitor's view of the client route. Returns false when
// the signal was throttled away or the session is unknown.
func (m *Manager) Signal(ctx context.Context, sessionID string, ev ActivityEvent) bool {
	e := m.get(sessionID)
	if e == nil {
		return false
	}
	e.monitor.SetRoute(ev.Route)
	return e.tracker.Signal(ctx, ev)
}

// ReportRoute updates the monitor's view of the client route without
// recording activity.
func (m *Manager) ReportRoute(sessionID, route string) {
	if e := m.get(sessionID); e != nil {
		e.monitor.SetRoute(route)
	}
}

// CheckNow runs an immediate policy check (tab regained visibility).
func (m *Manager) CheckNow(ctx context.Context, sessionID string) {
	if e := m.get(sessionID); e != nil {
		e.monitor.Check(ctx)
	}
}

// Unload records the final unconditional touch for a departing client.
func (m *Manager) Unload(ctx context.Context, sessionID string) {
	if e := m.get(sessionID); e != nil {
		if err := e.tracker.Unload(ctx); err != nil {
			m.log.Warn().Err(err).Str("session_id", sessionID).Msg("Unload touch failed")
		}
	}
}

// Remaining returns the time left before the idle timeout fires.
func (m *Manager) Remaining(ctx context.Context, sessionID string) (time.Duration, error) {
	store := NewRedisStore(m.rdb, sessionID, m.clock)
	clk, err := store.Read(ctx)
	if err != nil {
		return 0, err
	}
	return RemainingIdleTime(m.clock.Now(), clk.LastActiveAt, clk.Role), nil
}

// StoreFor returns the clock store for a session, for callers that need
// to mirror it into a per-request cookie sink.
func (m *Manager) StoreFor(sessionID string) *RedisStore {
	if e := m.get(sessionID); e != nil {
		return e.store
	}
	return NewRedisStore(m.rdb, sessionID, m.clock)
}

// Close cancels every monitor. Used on shutdown.
func (m *Manager) Close() {
	m.baseStop()
	m.mu.Lock()
	m.sessions = make(map[string]*entry)
	m.mu.Unlock()
}

func (m *Manager) get(sessionID string) *entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[sessionID]
}

func (m *Manager) take(sessionID string) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	return e
}

// release drops a terminated session's entry and stops its monitor loop.
func (m *Manager) release(sessionID string) {
	if e := m.take(sessionID); e != nil {
		e.cancel()
	}
}
