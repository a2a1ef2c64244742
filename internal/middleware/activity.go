package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/examhall/examhall-backend/internal/session"
)

// HeaderClientRoute carries the SPA route the client is currently
// displaying. The exam-route guard works off this value.
const HeaderClientRoute = "X-Client-Route"

// TrackActivity treats every authenticated request as a user-activity
// signal: it makes sure the session has a live monitor, feeds the
// tracker (throttled), and refreshes the mirrored clock cookies on the
// response. Runs after RequireAuth. Activity is recorded even on exam
// routes so idle accounting picks up correctly afterwards.
func TrackActivity(manager *session.Manager, cookieSecure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		sessionID := claims.ID
		route := c.GetHeader(HeaderClientRoute)

		manager.Ensure(ctx, sessionID, claims.UserID, claims.Role)
		manager.Signal(ctx, sessionID, session.ActivityEvent{
			UserID:    claims.UserID,
			SessionID: sessionID,
			Route:     route,
			Kind:      "request",
			Timestamp: time.Now().Unix(),
		})

		c.Next()

		// Mirror the fresh clock onto the response for the checkpoint
		// middleware to read on the next request.
		sink := session.NewCookieSink(c, cookieSecure)
		session.Mirror(manager.StoreFor(sessionID), sink).Sync(ctx)
	}
}
