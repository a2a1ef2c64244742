package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/examhall/examhall-backend/internal/config"
	"github.com/examhall/examhall-backend/internal/model"
	"github.com/examhall/examhall-backend/internal/service"
	"github.com/examhall/examhall-backend/internal/session"
)

type stubClock struct{ t time.Time }

func (c stubClock) Now() time.Time { return c.t }

type noopRevoker struct{}

func (noopRevoker) SignOut(ctx context.Context, sessionID string) error { return nil }

var checkpointNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func millisCookie(name string, t time.Time) *http.Cookie {
	return &http.Cookie{Name: name, Value: fmt.Sprintf("%d", t.UnixMilli())}
}

func newCheckpointRouter(role model.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)

	// No live sessions: CheckNow on an unknown session is a no-op, which
	// is all the checkpoint needs here.
	manager := session.NewManager(
		redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1}),
		noopRevoker{},
		nil,
		"/login",
		stubClock{checkpointNow},
		time.Minute,
		zerolog.Nop(),
	)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(ContextKeyClaims, &service.Claims{
			RegisteredClaims: jwt.RegisteredClaims{ID: "sess-1"},
			Role:             role,
			UserID:           1,
		})
	})
	r.Use(SessionCheckpoint(manager, stubClock{checkpointNow}, "/login"))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func TestCheckpointPassesFreshSession(t *testing.T) {
	r := newCheckpointRouter(model.RoleStudent)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.AddCookie(millisCookie(session.CookieLastActiveAt, checkpointNow.Add(-time.Minute)))
	req.AddCookie(millisCookie(session.CookieSessionStartAt, checkpointNow.Add(-time.Hour)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestCheckpointRejectsIdleSession(t *testing.T) {
	r := newCheckpointRouter(model.RoleStudent)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.AddCookie(millisCookie(session.CookieLastActiveAt, checkpointNow.Add(-config.StudentIdleTimeout-time.Minute)))
	req.AddCookie(millisCookie(session.CookieSessionStartAt, checkpointNow.Add(-2*time.Hour)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if body := w.Body.String(); !strings.Contains(body, "reason=idle") {
		t.Errorf("body missing idle redirect: %s", body)
	}
}

func TestCheckpointStudentExamRouteExempt(t *testing.T) {
	r := newCheckpointRouter(model.RoleStudent)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderClientRoute, "/exam/abc-123")
	req.AddCookie(millisCookie(session.CookieLastActiveAt, checkpointNow.Add(-5*time.Hour)))
	req.AddCookie(millisCookie(session.CookieSessionStartAt, checkpointNow.Add(-48*time.Hour)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("student mid-exam rejected: status = %d, want 200", w.Code)
	}
}

func TestCheckpointAdminExamRouteKeepsAbsoluteCap(t *testing.T) {
	r := newCheckpointRouter(model.RoleAdmin)

	// Idle mid-exam: allowed.
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderClientRoute, "/exam/preview-1")
	req.AddCookie(millisCookie(session.CookieLastActiveAt, checkpointNow.Add(-time.Hour)))
	req.AddCookie(millisCookie(session.CookieSessionStartAt, checkpointNow.Add(-2*time.Hour)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("admin mid-exam rejected on idle: status = %d, want 200", w.Code)
	}

	// Past the absolute cap mid-exam: rejected.
	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderClientRoute, "/exam/preview-1")
	req.AddCookie(millisCookie(session.CookieLastActiveAt, checkpointNow.Add(-time.Minute)))
	req.AddCookie(millisCookie(session.CookieSessionStartAt, checkpointNow.Add(-config.AdminAbsoluteTimeout-time.Minute)))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("admin past absolute cap passed mid-exam: status = %d", w.Code)
	}
	if body := w.Body.String(); !strings.Contains(body, "reason=absolute") {
		t.Errorf("body missing absolute redirect: %s", body)
	}
}

func TestCheckpointFailsOpenWithoutCookies(t *testing.T) {
	r := newCheckpointRouter(model.RoleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("cookieless request rejected: status = %d, want 200", w.Code)
	}
}
