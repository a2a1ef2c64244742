package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/examhall/examhall-backend/internal/model"
	"github.com/examhall/examhall-backend/internal/response"
	"github.com/examhall/examhall-backend/internal/session"
)

// SessionCheckpoint is the server-side reader of the mirrored clock
// cookies: a cheap early rejection of requests whose session the policy
// already considers dead, before any handler runs. The authoritative
// termination still belongs to the per-session monitor — the checkpoint
// only surfaces it sooner and nudges the monitor to check now.
//
// Missing or unparseable cookies pass through untouched (fail open);
// they read as "no prior session", never as grounds for logout.
// Runs after RequireAuth.
func SessionCheckpoint(manager *session.Manager, clock session.Clock, loginURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			c.Next()
			return
		}

		clk := session.ReadCookieClock(c)
		now := clock.Now()
		route := c.GetHeader(HeaderClientRoute)

		// Same gating as the monitor: students mid-exam are exempt,
		// admins mid-exam keep only the absolute cap.
		if session.IsExamRoute(route) {
			if claims.Role == model.RoleStudent {
				c.Next()
				return
			}
			if session.IsAbsoluteExceeded(now, clk.SessionStartAt, claims.Role) {
				manager.CheckNow(c.Request.Context(), claims.ID)
				response.AbortExpired(c, http.StatusUnauthorized,
					session.LoginRedirectURL(loginURL, session.ReasonAbsolute))
				return
			}
			c.Next()
			return
		}

		if expired, reason := session.ShouldTerminate(now, clk.LastActiveAt, clk.SessionStartAt, claims.Role); expired {
			manager.CheckNow(c.Request.Context(), claims.ID)
			response.AbortExpired(c, http.StatusUnauthorized,
				session.LoginRedirectURL(loginURL, reason))
			return
		}

		c.Next()
	}
}
