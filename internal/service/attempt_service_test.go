package service

import (
	"testing"
	"time"
)

func TestAttemptRemaining(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name            string
		startedAt       time.Time
		durationMinutes int
		want            int64
	}{
		{
			name:            "just started",
			startedAt:       now,
			durationMinutes: 60,
			want:            3600,
		},
		{
			name:            "halfway through",
			startedAt:       now.Add(-30 * time.Minute),
			durationMinutes: 60,
			want:            1800,
		},
		{
			name:            "one second left",
			startedAt:       now.Add(-59*time.Minute - 59*time.Second),
			durationMinutes: 60,
			want:            1,
		},
		{
			name:            "exactly elapsed",
			startedAt:       now.Add(-60 * time.Minute),
			durationMinutes: 60,
			want:            0,
		},
		{
			name:            "started past the whole window",
			startedAt:       now.Add(-65 * time.Minute),
			durationMinutes: 60,
			want:            -300,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := attemptRemaining(tt.startedAt, tt.durationMinutes, now)
			if got != tt.want {
				t.Errorf("attemptRemaining() = %d, want %d", got, tt.want)
			}
		})
	}
}
