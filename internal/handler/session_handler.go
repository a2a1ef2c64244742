package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/examhall/examhall-backend/internal/middleware"
	"github.com/examhall/examhall-backend/internal/response"
	"github.com/examhall/examhall-backend/internal/session"
	"github.com/examhall/examhall-backend/internal/validator"
)

// SessionHandler exposes the session clock endpoints the client beacons
// talk to: batched activity, visibility changes, and page unload.
type SessionHandler struct {
	manager *session.Manager
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(manager *session.Manager) *SessionHandler {
	return &SessionHandler{manager: manager}
}

// activityRequest is a batch of client-side activity signals. The
// client coalesces DOM events and flushes them periodically; only the
// newest signal matters for the clock, the rest feed the audit queue.
type activityRequest struct {
	Route  string   `json:"route" binding:"required"`
	Kinds  []string `json:"kinds" binding:"required,min=1,dive,required"`
	SentAt int64    `json:"sent_at" binding:"required"`
}

// Activity godoc
// POST /api/v1/session/activity
func (h *SessionHandler) Activity(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req activityRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	// Beacons may be the only traffic after a restart; rebuild the
	// monitor before feeding it.
	h.manager.Ensure(c.Request.Context(), claims.ID, claims.UserID, claims.Role)

	accepted := false
	for _, kind := range req.Kinds {
		if h.manager.Signal(c.Request.Context(), claims.ID, session.ActivityEvent{
			UserID:    claims.UserID,
			SessionID: claims.ID,
			Route:     req.Route,
			Kind:      kind,
			Timestamp: req.SentAt,
		}) {
			accepted = true
		}
	}

	response.Success(c, http.StatusOK, gin.H{"accepted": accepted})
}

// visibilityRequest reports a tab visibility transition.
type visibilityRequest struct {
	Route   string `json:"route" binding:"required"`
	Visible *bool  `json:"visible" binding:"required"`
}

// Visibility godoc
// POST /api/v1/session/visibility
// A tab becoming visible forces an immediate policy check so a stale
// session is caught before the next monitor tick.
func (h *SessionHandler) Visibility(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req visibilityRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	h.manager.Ensure(c.Request.Context(), claims.ID, claims.UserID, claims.Role)
	h.manager.ReportRoute(claims.ID, req.Route)
	if *req.Visible {
		h.manager.CheckNow(c.Request.Context(), claims.ID)
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// Unload godoc
// POST /api/v1/session/unload
// Fired from the client's pagehide beacon. Records a last touch so the
// idle window starts from the moment the user actually left.
func (h *SessionHandler) Unload(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	h.manager.Ensure(c.Request.Context(), claims.ID, claims.UserID, claims.Role)
	h.manager.Unload(c.Request.Context(), claims.ID)
	response.Success(c, http.StatusOK, gin.H{})
}

// Remaining godoc
// GET /api/v1/session/remaining
// Returns seconds until the idle timeout would fire, for client-side
// countdown UI.
func (h *SessionHandler) Remaining(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	remaining, err := h.manager.Remaining(c.Request.Context(), claims.ID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"remaining_seconds": int64(remaining.Seconds()),
	})
}
