package config

import "time"

// Session timing constants. These are deliberately fixed values rather than
// per-call options: the throttle, tick, and poll intervals are part of the
// session contract, not tunables.
const (
	// AdminIdleTimeout is the maximum allowed inactivity for admin sessions.
	AdminIdleTimeout = 15 * time.Minute
	// StudentIdleTimeout is the maximum allowed inactivity for student sessions.
	StudentIdleTimeout = 30 * time.Minute
	// AdminAbsoluteTimeout caps an admin session's total lifetime
	// regardless of activity.
	AdminAbsoluteTimeout = 6 * time.Hour
	// StudentAbsoluteTimeout is zero: students have no absolute cap.
	StudentAbsoluteTimeout = 0

	// ActivityThrottle is the minimum spacing between accepted activity
	// signals. Signals arriving faster than this are dropped.
	ActivityThrottle = 1 * time.Second
	// MonitorInterval is how often each session's timeout monitor re-checks.
	MonitorInterval = 10 * time.Second
	// ResumePollInterval is how often clients poll the active-attempt feed.
	// Exposed to clients via the feed response.
	ResumePollInterval = 30 * time.Second

	// ClockCookieMaxAge is the lifetime of the mirrored clock cookies.
	// Generous on purpose: expiry is decided by the timeout policy, never
	// by cookie expiry.
	ClockCookieMaxAge = 24 * time.Hour
	// TwoFACookieMaxAge is the lifetime of the admin 2FA verification cookie.
	TwoFACookieMaxAge = 6 * time.Hour
)
