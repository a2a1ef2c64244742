package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/examhall/examhall-backend/internal/config"
	"github.com/examhall/examhall-backend/internal/middleware"
	"github.com/examhall/examhall-backend/internal/model"
	"github.com/examhall/examhall-backend/internal/response"
	"github.com/examhall/examhall-backend/internal/service"
	"github.com/examhall/examhall-backend/internal/session"
	"github.com/examhall/examhall-backend/internal/validator"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	cfg         *config.Config
	authService *service.AuthService
	otpService  *service.OTPService
	manager     *session.Manager
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	cfg *config.Config,
	authService *service.AuthService,
	otpService *service.OTPService,
	manager *session.Manager,
) *AuthHandler {
	return &AuthHandler{
		cfg:         cfg,
		authService: authService,
		otpService:  otpService,
		manager:     manager,
	}
}

// Login godoc
// POST /api/v1/auth/login
// Validates email + password, issues a JWT, and starts the session
// clock for the principal's role.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, token, sessionID, err := h.authService.SignInWithPassword(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if err := h.manager.StartSession(c.Request.Context(), sessionID, user.ID, user.Role); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	// Mirror the fresh clock so the checkpoint works from the first
	// follow-up request.
	sink := session.NewCookieSink(c, h.cfg.CookieSecure)
	session.Mirror(h.manager.StoreFor(sessionID), sink).Sync(c.Request.Context())

	response.Success(c, http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
			"role":  user.Role,
		},
	})
}

// OAuthRedirect godoc
// GET /api/v1/auth/oauth/:provider?redirect_to=...
// Issues a browser redirect to the external identity provider.
func (h *AuthHandler) OAuthRedirect(c *gin.Context) {
	provider := c.Param("provider")
	redirectTo := c.Query("redirect_to")

	target, err := h.authService.SignInWithOAuth(provider, redirectTo)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, target)
}

// Logout godoc
// POST /api/v1/auth/logout
// Ends the session: clock store cleared, monitor stopped, remote
// session revoked, cookies dropped.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	ctx := c.Request.Context()
	if err := h.manager.EndSession(ctx, claims.ID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if err := h.authService.SignOut(ctx, claims.ID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	session.NewCookieSink(c, h.cfg.CookieSecure).ClearClock()
	if claims.Role == model.RoleAdmin {
		session.ClearAdmin2FACookie(c, h.cfg.CookieSecure)
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// Me godoc
// GET /api/v1/auth/me
// Returns the currently authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	user, err := h.authService.GetCurrentUser(c.Request.Context(), claims)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
			"role":  user.Role,
		},
	})
}

// VerifyOTP godoc
// POST /api/v1/auth/otp/verify
// Checks an admin's one-time passcode and sets the 2FA cookie.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	if claims.Role != model.RoleAdmin {
		response.Fail(c, http.StatusForbidden, response.ErrAdminAccessOnly)
		return
	}

	var req model.VerifyOTPRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.otpService.Verify(c.Request.Context(), claims.UserID, req.Code); err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrOTPInvalid)
		return
	}

	session.SetAdmin2FACookie(c, h.cfg.CookieSecure)
	response.Success(c, http.StatusOK, gin.H{"verified": true})
}
