package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/examhall/examhall-backend/internal/config"
)

// ActivityEvent is one user-interaction signal reported by a client
// (pointer move, key down, click, scroll, touch start) or synthesized
// from an authenticated request.
type ActivityEvent struct {
	UserID    int    `json:"user_id"`
	SessionID string `json:"session_id"`
	Route     string `json:"route"`
	Kind      string `json:"kind"`
	Timestamp int64  `json:"timestamp"`
}

// EventQueue receives accepted activity events for asynchronous audit
// persistence. Enqueue failures must never affect session handling.
type EventQueue interface {
	Enqueue(ctx context.Context, ev ActivityEvent) error
}

// RedisEventQueue pushes activity events onto the persistence worker's
// Redis queue.
type RedisEventQueue struct {
	rdb *redis.Client
}

func NewRedisEventQueue(rdb *redis.Client) *RedisEventQueue {
	return &RedisEventQueue{rdb: rdb}
}

func (q *RedisEventQueue) Enqueue(ctx context.Context, ev ActivityEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return q.rdb.RPush(ctx, config.WorkerKey.PersistActivityQueue, payload).Err()
}

// Tracker records user activity into the session store, throttled so a
// burst of signals costs at most one store write per throttle window.
// It never looks at the exam-route guard: activity is recorded even
// mid-exam so idle accounting is correct the moment the user leaves
// the exam flow.
type Tracker struct {
	store Store
	clock Clock
	queue EventQueue // nil disables audit logging
	log   zerolog.Logger

	mu           sync.Mutex
	lastAccepted time.Time
}

// NewTracker creates an activity tracker for one session.
func NewTracker(store Store, clock Clock, queue EventQueue, log zerolog.Logger) *Tracker {
	return &Tracker{
		store: store,
		clock: clock,
		queue: queue,
		log:   log.With().Str("component", "activity_tracker").Logger(),
	}
}

// Signal processes one activity signal. Returns true when the signal
// was accepted (outside the throttle window) and the store was touched.
func (t *Tracker) Signal(ctx context.Context, ev ActivityEvent) bool {
	now := t.clock.Now()

	// Fire-and-forget audit trail. Every signal is recorded, throttled
	// or not. Failures are swallowed: activity logging must never
	// disturb the session core.
	if t.queue != nil {
		if err := t.queue.Enqueue(ctx, ev); err != nil {
			t.log.Warn().Err(err).Msg("Activity event enqueue failed")
		}
	}

	t.mu.Lock()
	if !t.lastAccepted.IsZero() && now.Sub(t.lastAccepted) < config.ActivityThrottle {
		t.mu.Unlock()
		return false
	}
	t.lastAccepted = now
	t.mu.Unlock()

	if err := t.store.Touch(ctx); err != nil {
		t.log.Warn().Err(err).Msg("Activity touch failed")
	}
	return true
}

// Unload performs the unconditional final touch when a client reports
// it is going away.
func (t *Tracker) Unload(ctx context.Context) error {
	return t.store.Touch(ctx)
}
