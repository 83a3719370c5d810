package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/crispai/crisp-backend/internal/config"
	"github.com/crispai/crisp-backend/internal/handler"
	"github.com/crispai/crisp-backend/internal/middleware"
	"github.com/crispai/crisp-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Resume    *handler.ResumeHandler
	Interview *handler.InterviewHandler
	Progress  *handler.ProgressHandler
	Candidate *handler.CandidateHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
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
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", response.HeaderRequestID}
	corsConfig.ExposeHeaders = []string{response.HeaderRequestID}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for the endpoints that reach the language model
	// (30 requests per minute per IP).
	aiLimiter := middleware.NewRateLimiter(30, time.Minute)

	api := router.Group("/api")
	{
		// ─── Candidate interview flow ──────────────────────────────────
		api.POST("/upload-resume", aiLimiter.Middleware(), handlers.Resume.UploadResume)
		api.POST("/interview-action", aiLimiter.Middleware(), handlers.Interview.Action)
		api.POST("/generate-summary", aiLimiter.Middleware(), handlers.Interview.GenerateSummary)

		// Session snapshots for reloaded clients.
		api.GET("/session/:id", handlers.Interview.GetSession)
		api.DELETE("/session/:id", handlers.Interview.DeleteSession)

		// Mid-interview durability.
		api.POST("/save-progress", handlers.Progress.SaveProgress)
		api.POST("/update-chat", handlers.Progress.UpdateChat)

		// ─── Durable records and review screens ────────────────────────
		api.POST("/save-candidate", handlers.Candidate.Save)
		api.POST("/check-candidate", handlers.Candidate.Check)
		api.GET("/candidates", handlers.Candidate.List)
		api.GET("/candidate/:id", handlers.Candidate.Get)
		api.DELETE("/candidate/:id", handlers.Candidate.Delete)
	}

	return router
}
