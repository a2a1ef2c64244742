package session

import (
	"time"

	"github.com/examhall/examhall-backend/internal/model"
)

// Clock abstracts wall-clock time so the monitor and policy can be
// driven with virtual time in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the real-time clock.
func SystemClock() Clock { return systemClock{} }

// SessionClock is the replicated timestamp pair (plus role) a session
// carries. Fields are nil when absent or unparseable in the store;
// callers treat nil as "no prior record", never as an error.
type SessionClock struct {
	LastActiveAt   *time.Time
	SessionStartAt *time.Time
	Role           model.Role
}
