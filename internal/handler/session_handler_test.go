package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/examhall/examhall-backend/internal/middleware"
	"github.com/examhall/examhall-backend/internal/model"
	"github.com/examhall/examhall-backend/internal/service"
	"github.com/examhall/examhall-backend/internal/session"
)

type stubClock struct{ t time.Time }

func (c stubClock) Now() time.Time { return c.t }

type noopRevoker struct{}

func (noopRevoker) SignOut(ctx context.Context, sessionID string) error { return nil }

func newBeaconRouter() (*gin.Engine, *session.Manager) {
	gin.SetMode(gin.TestMode)

	manager := session.NewManager(
		redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1}),
		noopRevoker{},
		nil,
		"/login",
		stubClock{time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)},
		time.Minute,
		zerolog.Nop(),
	)
	h := NewSessionHandler(manager)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextKeyClaims, &service.Claims{
			RegisteredClaims: jwt.RegisteredClaims{ID: "sess-1"},
			Role:             model.RoleStudent,
			UserID:           1,
		})
	})
	r.POST("/activity", h.Activity)
	r.POST("/unload", h.Unload)
	return r, manager
}

// A beacon can be the first request a restarted server sees for a
// session. It must rebuild the tracker instead of dropping the signal.
func TestActivityBeaconRevivesUnknownSession(t *testing.T) {
	r, _ := newBeaconRouter()

	body := `{"route": "/dashboard", "kinds": ["click"], "sent_at": 1765000000}`
	req := httptest.NewRequest(http.MethodPost, "/activity", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		Data struct {
			Accepted bool `json:"accepted"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Data.Accepted {
		t.Error("accepted = false, want true for the first signal of a revived session")
	}
}

func TestUnloadBeaconRevivesUnknownSession(t *testing.T) {
	r, manager := newBeaconRouter()

	req := httptest.NewRequest(http.MethodPost, "/unload", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	// The session is tracked now: a follow-up signal through the manager
	// reaches a live tracker instead of being silently dropped.
	if !manager.Signal(context.Background(), "sess-1", session.ActivityEvent{
		UserID:    1,
		SessionID: "sess-1",
		Route:     "/dashboard",
		Kind:      "click",
		Timestamp: 1765000000,
	}) {
		t.Error("Signal() = false, want true after the unload beacon attached the session")
	}
}
