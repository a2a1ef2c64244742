package session

import (
	"context"
	"testing"
	"time"

	"github.com/examhall/examhall-backend/internal/model"
)

func TestParseEpochMillis(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *time.Time
	}{
		{"empty", "", nil},
		{"garbage", "yesterday", nil},
		{"negative", "-42", nil},
		{"zero", "0", nil},
		{"valid", epochMillis(base), ptr(base)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseEpochMillis(tt.input)
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("parseEpochMillis(%q) = %v, want nil", tt.input, got)
			case tt.want != nil && (got == nil || !got.Equal(*tt.want)):
				t.Errorf("parseEpochMillis(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestEpochMillisRoundTrip(t *testing.T) {
	got := parseEpochMillis(epochMillis(base))
	if got == nil || !got.Equal(base) {
		t.Fatalf("round trip = %v, want %v", got, base)
	}
}

func TestMirroredStoreReplicatesWrites(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock(base)
	inner := newMemStore(clock)
	sink := &spySink{}
	store := Mirror(inner, sink)

	if err := store.Init(ctx, model.RoleAdmin); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if len(sink.writes) != 1 {
		t.Fatalf("after Init sink has %d writes, want 1", len(sink.writes))
	}

	// A fresh session starts with both timestamps at init time.
	clk := sink.writes[0]
	if clk.LastActiveAt == nil || clk.SessionStartAt == nil {
		t.Fatal("mirrored clock has nil timestamps after Init")
	}
	if !clk.LastActiveAt.Equal(*clk.SessionStartAt) {
		t.Errorf("LastActiveAt = %v, SessionStartAt = %v, want equal", clk.LastActiveAt, clk.SessionStartAt)
	}
	if clk.Role != model.RoleAdmin {
		t.Errorf("mirrored role = %q, want admin", clk.Role)
	}

	clock.Advance(5 * time.Minute)
	if err := store.Touch(ctx); err != nil {
		t.Fatalf("Touch() error = %v", err)
	}
	if len(sink.writes) != 2 {
		t.Fatalf("after Touch sink has %d writes, want 2", len(sink.writes))
	}
	last := sink.writes[1]
	if !last.LastActiveAt.Equal(base.Add(5 * time.Minute)) {
		t.Errorf("mirrored LastActiveAt = %v, want %v", last.LastActiveAt, base.Add(5*time.Minute))
	}
	if !last.SessionStartAt.Equal(base) {
		t.Errorf("Touch moved SessionStartAt to %v, want %v", last.SessionStartAt, base)
	}
}

func TestMirroredStoreClearClearsBothBackends(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock(base)
	inner := newMemStore(clock)
	sink := &spySink{}
	store := Mirror(inner, sink)

	store.Init(ctx, model.RoleStudent)
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if sink.clears != 1 {
		t.Errorf("sink clears = %d, want 1", sink.clears)
	}
	if !inner.clearedAll {
		t.Error("inner store was not cleared")
	}

	clk, err := store.Read(ctx)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if clk.LastActiveAt != nil || clk.SessionStartAt != nil {
		t.Error("cleared store still reads timestamps")
	}
}
