package session

import (
	"time"

	"github.com/examhall/examhall-backend/internal/config"
	"github.com/examhall/examhall-backend/internal/model"
)

// Reason classifies a forced termination for the login surface.
type Reason string

const (
	ReasonNone     Reason = ""
	ReasonIdle     Reason = "idle"
	ReasonAbsolute Reason = "absolute"
)

// Thresholds holds the timeout limits for a role. An Absolute of zero
// means no absolute cap.
type Thresholds struct {
	Idle     time.Duration
	Absolute time.Duration
}

// ThresholdsFor returns the timeout thresholds applying to a role.
// Unknown roles get the stricter admin limits.
func ThresholdsFor(role model.Role) Thresholds {
	if role == model.RoleStudent {
		return Thresholds{
			Idle:     config.StudentIdleTimeout,
			Absolute: config.StudentAbsoluteTimeout,
		}
	}
	return Thresholds{
		Idle:     config.AdminIdleTimeout,
		Absolute: config.AdminAbsoluteTimeout,
	}
}

// IsIdleExceeded reports whether the idle timeout has elapsed.
// A nil lastActiveAt means no activity was ever recorded, which cannot
// count as idle-expired (fail open).
func IsIdleExceeded(now time.Time, lastActiveAt *time.Time, role model.Role) bool {
	if lastActiveAt == nil {
		return false
	}
	return now.Sub(*lastActiveAt) > ThresholdsFor(role).Idle
}

// IsAbsoluteExceeded reports whether the absolute session cap has
// elapsed. Roles without an absolute cap, and sessions with no recorded
// start, never exceed it.
func IsAbsoluteExceeded(now time.Time, sessionStartAt *time.Time, role model.Role) bool {
	limit := ThresholdsFor(role).Absolute
	if limit == 0 || sessionStartAt == nil {
		return false
	}
	return now.Sub(*sessionStartAt) > limit
}

// ShouldTerminate evaluates the full policy. The absolute check takes
// priority: when both limits are exceeded at once, the reported reason
// is ReasonAbsolute.
func ShouldTerminate(now time.Time, lastActiveAt, sessionStartAt *time.Time, role model.Role) (bool, Reason) {
	if IsAbsoluteExceeded(now, sessionStartAt, role) {
		return true, ReasonAbsolute
	}
	if IsIdleExceeded(now, lastActiveAt, role) {
		return true, ReasonIdle
	}
	return false, ReasonNone
}

// RemainingIdleTime returns how long until the idle timeout fires,
// floored at zero. With no recorded activity the full window remains.
func RemainingIdleTime(now time.Time, lastActiveAt *time.Time, role model.Role) time.Duration {
	limit := ThresholdsFor(role).Idle
	if lastActiveAt == nil {
		return limit
	}
	remaining := limit - now.Sub(*lastActiveAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}
