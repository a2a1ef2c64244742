package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// AuthSessionKey returns the cache key registering a JWT's JTI as an
// active session. Deleting it revokes the session.
func (r *CacheKeyStruct) AuthSessionKey(jti string) string {
	return fmt.Sprintf("auth:session:%s", jti)
}

// SessionClockKey returns the cache key for a session's clock hash
// (last-active timestamp, start timestamp, role).
func (r *CacheKeyStruct) SessionClockKey(sessionID string) string {
	return fmt.Sprintf("session:%s:clock", sessionID)
}

// SessionEventsChannel returns the PubSub channel carrying lifecycle
// events (forced termination) for a session.
func (r *CacheKeyStruct) SessionEventsChannel(sessionID string) string {
	return fmt.Sprintf("session:%s:events", sessionID)
}

// ActiveAttemptKey returns the cache key for a user's active attempt snapshot.
func (r *CacheKeyStruct) ActiveAttemptKey(userID int) string {
	return fmt.Sprintf("user:%d:active_attempt", userID)
}

var CacheKey = NewCacheKeyStruct()
