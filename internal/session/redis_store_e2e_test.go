//go:build e2e
// +build e2e

package session

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/examhall/examhall-backend/internal/model"
)

// Round-trips the clock hash against a live Redis. Run with the e2e
// stack up: go test -tags e2e ./internal/session
func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("parse REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Fatalf("redis unavailable at %s: %v", opt.Addr, err)
	}

	clock := newFakeClock(base)
	sessionID := fmt.Sprintf("e2e-clock-%d", time.Now().UnixNano())
	store := NewRedisStore(rdb, sessionID, clock)
	defer store.Clear(ctx)

	if err := store.Init(ctx, model.RoleStudent); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	clk, err := store.Read(ctx)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if clk.LastActiveAt == nil || clk.SessionStartAt == nil {
		t.Fatal("Read() after Init() returned nil timestamps")
	}
	if !clk.LastActiveAt.Equal(base) || !clk.SessionStartAt.Equal(base) {
		t.Errorf("after Init(): last_active=%v start=%v, want both %v",
			clk.LastActiveAt, clk.SessionStartAt, base)
	}
	if clk.Role != model.RoleStudent {
		t.Errorf("role = %q, want %q", clk.Role, model.RoleStudent)
	}

	clock.Advance(5 * time.Minute)
	if err := store.Touch(ctx); err != nil {
		t.Fatalf("Touch() error = %v", err)
	}
	clk, err = store.Read(ctx)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !clk.LastActiveAt.Equal(base.Add(5 * time.Minute)) {
		t.Errorf("after Touch(): last_active = %v, want %v", clk.LastActiveAt, base.Add(5*time.Minute))
	}
	if !clk.SessionStartAt.Equal(base) {
		t.Errorf("Touch() moved session_start to %v, want %v", clk.SessionStartAt, base)
	}

	// A second Init (re-attach after restart) must keep the original
	// start timestamp.
	clock.Advance(time.Hour)
	if err := store.Init(ctx, model.RoleStudent); err != nil {
		t.Fatalf("second Init() error = %v", err)
	}
	clk, err = store.Read(ctx)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !clk.SessionStartAt.Equal(base) {
		t.Errorf("second Init() moved session_start to %v, want %v", clk.SessionStartAt, base)
	}
	if !clk.LastActiveAt.Equal(base.Add(65 * time.Minute)) {
		t.Errorf("second Init() last_active = %v, want %v", clk.LastActiveAt, base.Add(65*time.Minute))
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	clk, err = store.Read(ctx)
	if err != nil {
		t.Fatalf("Read() after Clear() error = %v", err)
	}
	if clk.LastActiveAt != nil || clk.SessionStartAt != nil || clk.Role != "" {
		t.Errorf("Read() after Clear() = %+v, want empty clock", clk)
	}
}
