package session

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/examhall/examhall-backend/internal/config"
)

// Cookie names. The two clock cookies mirror the Redis record for the
// checkpoint middleware; the 2FA cookie is a separate verification flag
// and not part of the timeout state.
const (
	CookieLastActiveAt   = FieldLastActiveAt
	CookieSessionStartAt = FieldSessionStartAt
	CookieAdmin2FA       = "admin_2fa_verified"
)

// CookieSink mirrors clock writes onto the response of the request it
// is bound to. Construct one per request; it is useless outside that
// request's lifetime.
type CookieSink struct {
	c      *gin.Context
	secure bool
}

// NewCookieSink binds a sink to the current request.
func NewCookieSink(c *gin.Context, secure bool) *CookieSink {
	return &CookieSink{c: c, secure: secure}
}

func (s *CookieSink) WriteClock(clk SessionClock) {
	maxAge := int(config.ClockCookieMaxAge / time.Second)
	if clk.LastActiveAt != nil {
		s.set(CookieLastActiveAt, epochMillis(*clk.LastActiveAt), maxAge)
	}
	if clk.SessionStartAt != nil {
		s.set(CookieSessionStartAt, epochMillis(*clk.SessionStartAt), maxAge)
	}
}

func (s *CookieSink) ClearClock() {
	s.set(CookieLastActiveAt, "", -1)
	s.set(CookieSessionStartAt, "", -1)
}

func (s *CookieSink) set(name, value string, maxAge int) {
	s.c.SetSameSite(http.SameSiteLaxMode)
	s.c.SetCookie(name, value, maxAge, "/", "", s.secure, false)
}

// ReadCookieClock parses the mirrored clock cookies from a request.
// Missing or malformed cookies yield nil fields, same as the store.
func ReadCookieClock(c *gin.Context) SessionClock {
	var clk SessionClock
	if v, err := c.Cookie(CookieLastActiveAt); err == nil {
		clk.LastActiveAt = parseEpochMillis(v)
	}
	if v, err := c.Cookie(CookieSessionStartAt); err == nil {
		clk.SessionStartAt = parseEpochMillis(v)
	}
	return clk
}

// SetAdmin2FACookie marks the admin's browser as having passed the OTP
// check. HttpOnly and SameSite=Strict: this flag is only ever read
// server-side.
func SetAdmin2FACookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CookieAdmin2FA, "1", int(config.TwoFACookieMaxAge/time.Second), "/", "", secure, true)
}

// ClearAdmin2FACookie removes the verification flag.
func ClearAdmin2FACookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CookieAdmin2FA, "", -1, "/", "", secure, true)
}

// Admin2FAVerified reports whether the request carries a valid 2FA flag.
func Admin2FAVerified(c *gin.Context) bool {
	v, err := c.Cookie(CookieAdmin2FA)
	if err != nil {
		return false
	}
	ok, err := strconv.ParseBool(v)
	return err == nil && ok
}
