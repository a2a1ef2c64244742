package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/examhall/examhall-backend/internal/response"
	"github.com/examhall/examhall-backend/internal/session"
)

// RequireAdmin2FA gates admin surfaces behind the OTP verification
// cookie. Runs after RequireAdmin; the cookie is set only by a
// successful passcode check and expires on its own.
func RequireAdmin2FA() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !session.Admin2FAVerified(c) {
			response.AbortFail(c, http.StatusForbidden, response.Err2FARequired)
			return
		}
		c.Next()
	}
}
