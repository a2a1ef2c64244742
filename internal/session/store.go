package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/examhall/examhall-backend/internal/config"
	"github.com/examhall/examhall-backend/internal/model"
)

// Hash fields of the session clock record. The mirrored cookies carry
// the two timestamp fields under the same names.
const (
	FieldLastActiveAt   = "session_last_active_at"
	FieldSessionStartAt = "session_start_at"
	FieldUserRole       = "session_user_role"
)

// Store persists a session's clock. One logical value, possibly
// replicated across backends; every write covers all backends from the
// caller's point of view.
type Store interface {
	// Init sets the start timestamp if absent, always refreshes the
	// last-active timestamp, and persists the role.
	Init(ctx context.Context, role model.Role) error
	// Touch refreshes the last-active timestamp. Throttling is the
	// caller's job, not the store's.
	Touch(ctx context.Context) error
	// Read returns the clock with each field independently nil when
	// absent or unparseable.
	Read(ctx context.Context) (SessionClock, error)
	// Clear removes the whole record.
	Clear(ctx context.Context) error
}

// RedisStore keeps one session's clock in a Redis hash. It is the
// authoritative replica the timeout monitor reads.
type RedisStore struct {
	rdb   *redis.Client
	key   string
	clock Clock
}

// NewRedisStore creates the clock store for one session.
func NewRedisStore(rdb *redis.Client, sessionID string, clock Clock) *RedisStore {
	return &RedisStore{
		rdb:   rdb,
		key:   config.CacheKey.SessionClockKey(sessionID),
		clock: clock,
	}
}

func (s *RedisStore) Init(ctx context.Context, role model.Role) error {
	now := epochMillis(s.clock.Now())

	pipe := s.rdb.TxPipeline()
	pipe.HSetNX(ctx, s.key, FieldSessionStartAt, now)
	pipe.HSet(ctx, s.key, FieldLastActiveAt, now, FieldUserRole, string(role))
	pipe.Expire(ctx, s.key, config.ClockCookieMaxAge)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("init session clock: %w", err)
	}
	return nil
}

func (s *RedisStore) Touch(ctx context.Context) error {
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, s.key, FieldLastActiveAt, epochMillis(s.clock.Now()))
	pipe.Expire(ctx, s.key, config.ClockCookieMaxAge)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("touch session clock: %w", err)
	}
	return nil
}

func (s *RedisStore) Read(ctx context.Context) (SessionClock, error) {
	fields, err := s.rdb.HGetAll(ctx, s.key).Result()
	if err != nil {
		return SessionClock{}, fmt.Errorf("read session clock: %w", err)
	}

	clk := SessionClock{
		LastActiveAt:   parseEpochMillis(fields[FieldLastActiveAt]),
		SessionStartAt: parseEpochMillis(fields[FieldSessionStartAt]),
	}
	if role, err := model.ParseRole(fields[FieldUserRole]); err == nil {
		clk.Role = role
	}
	return clk, nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("clear session clock: %w", err)
	}
	return nil
}

// Sink receives a mirror of every clock write, for a second backend
// with a different reader (the cookie checkpoint middleware).
type Sink interface {
	WriteClock(clk SessionClock)
	ClearClock()
}

// MirroredStore fans every write out to an inner store and a sink so
// both backends stay consistent within one call. Reads come from the
// inner store only; the sink is write-through.
type MirroredStore struct {
	inner Store
	sink  Sink
}

// Mirror wraps a store so its writes are replicated into sink.
func Mirror(inner Store, sink Sink) *MirroredStore {
	return &MirroredStore{inner: inner, sink: sink}
}

func (m *MirroredStore) Init(ctx context.Context, role model.Role) error {
	if err := m.inner.Init(ctx, role); err != nil {
		return err
	}
	m.replicate(ctx)
	return nil
}

func (m *MirroredStore) Touch(ctx context.Context) error {
	if err := m.inner.Touch(ctx); err != nil {
		return err
	}
	m.replicate(ctx)
	return nil
}

func (m *MirroredStore) Read(ctx context.Context) (SessionClock, error) {
	return m.inner.Read(ctx)
}

func (m *MirroredStore) Clear(ctx context.Context) error {
	// Clear the sink even if the inner store fails: once termination is
	// decided nothing may keep claiming a live session.
	m.sink.ClearClock()
	return m.inner.Clear(ctx)
}

// Sync pushes the inner store's current clock into the sink without
// writing. Used to refresh a response's cookies after writes that went
// through the inner store directly.
func (m *MirroredStore) Sync(ctx context.Context) {
	m.replicate(ctx)
}

func (m *MirroredStore) replicate(ctx context.Context) {
	clk, err := m.inner.Read(ctx)
	if err != nil {
		return
	}
	m.sink.WriteClock(clk)
}

func epochMillis(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

// parseEpochMillis returns nil for empty or malformed values: a wiped
// or corrupted record must read as "no prior session", not an error.
func parseEpochMillis(s string) *time.Time {
	if s == "" {
		return nil
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil || ms <= 0 {
		return nil
	}
	t := time.UnixMilli(ms)
	return &t
}
