package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/examhall/examhall-backend/internal/config"
	"github.com/examhall/examhall-backend/internal/handler"
	"github.com/examhall/examhall-backend/internal/middleware"
	"github.com/examhall/examhall-backend/internal/response"
	"github.com/examhall/examhall-backend/internal/service"
	"github.com/examhall/examhall-backend/internal/session"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	Session  *handler.SessionHandler
	Attempt  *handler.AttemptHandler
	Exam     *handler.ExamHandler
	Feedback *handler.FeedbackHandler
	WS       *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	manager *session.Manager,
	clock session.Clock,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID", middleware.HeaderClientRoute}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Shared session middlewares. Checkpoint runs before activity
	// tracking so an already-expired session never records a touch.
	checkpoint := middleware.SessionCheckpoint(manager, clock, cfg.LoginURL)
	track := middleware.TrackActivity(manager, cfg.CookieSecure)

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/login", handlers.Auth.Login)
		auth.GET("/oauth/:provider", handlers.Auth.OAuthRedirect)

		// Authenticated profile routes
		auth.POST("/logout", middleware.RequireAuth(authService), handlers.Auth.Logout)
		auth.GET("/me", middleware.RequireAuth(authService), checkpoint, track, handlers.Auth.Me)
		auth.POST("/otp/verify", middleware.RequireAuth(authService), handlers.Auth.VerifyOTP)
	}

	// ─── 2. Session Group (JWT, no checkpoint) ─────────────────────────
	// The beacons bypass the checkpoint: visibility and unload must be
	// accepted even when the clock cookies are stale, and the activity
	// batch performs its own policy-relevant work through the manager.
	sessionAPI := router.Group("/api/v1/session")
	sessionAPI.Use(middleware.RequireAuth(authService))
	{
		sessionAPI.POST("/activity", handlers.Session.Activity)
		sessionAPI.POST("/visibility", handlers.Session.Visibility)
		sessionAPI.POST("/unload", handlers.Session.Unload)
		sessionAPI.GET("/remaining", handlers.Session.Remaining)
	}

	// ─── 3. Student Group (JWT + Checkpoint + Tracking) ────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(middleware.RequireAuth(authService), checkpoint, track)
	{
		studentAPI.GET("/active-attempt", handlers.Attempt.Active)
		studentAPI.POST("/exams/:examId/attempt", handlers.Attempt.Start)
		studentAPI.POST("/exams/:examId/submit", handlers.Attempt.Submit)
		studentAPI.POST("/exams/:examId/feedback", handlers.Feedback.Submit)
	}

	// ─── 4. Admin Group (JWT + Admin + 2FA + Checkpoint + Tracking) ────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(
		middleware.RequireAuth(authService),
		middleware.RequireAdmin(),
		middleware.RequireAdmin2FA(),
		checkpoint,
		track,
	)
	{
		adminAPI.POST("/exams", handlers.Exam.Create)
		adminAPI.GET("/exams", handlers.Exam.List)
		adminAPI.GET("/exams/:examId", handlers.Exam.Get)
		adminAPI.POST("/exams/:examId/publish", handlers.Exam.Publish)
		adminAPI.GET("/exams/:examId/feedback", handlers.Feedback.ListByExam)
		adminAPI.PATCH("/feedback/:feedbackId", handlers.Feedback.Moderate)
	}

	// ─── 5. WebSocket Group (WS Auth) ──────────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(authService))
	{
		ws.GET("/session/events", handlers.WS.SessionEventStream)
	}

	return router
}
