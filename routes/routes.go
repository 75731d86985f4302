package routes

import (
	"net/http"
	"time"

	"planora/handlers"
	"planora/middleware"
	"planora/models"
	"planora/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterConflictRoutes registers conflict detection endpoints.
func RegisterConflictRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/conflicts")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("/detect", hb.DetectConflictsHandler)
		api.POST("/check", hb.CheckBookingHandler)
		api.POST("/validate", hb.ValidateScheduleHandler)
		api.GET("/resolutions/:type", hb.SuggestResolutionsHandler)
		api.POST("/report", hb.GenerateReportHandler)
		api.GET("/report/:id", hb.GetReportHandler)
	}
}

// RegisterBookingRoutes registers the conflict-gated booking endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("", hb.CreateBookingHandler)
		api.GET("/:id", hb.GetBookingHandler)
		api.PUT("/:id/reschedule", hb.RescheduleBookingHandler)
		api.POST("/:id/cancel", hb.CancelBookingHandler)
		api.GET("/:id/replacements", hb.ListByBookingHandler)
		api.GET("/:id/replacement-candidates", hb.CandidatesHandler)

		// Withdrawal is the assigned agent's own action.
		api.POST("/:id/withdraw", middleware.RequireRole(models.RoleAgent), hb.WithdrawAgentHandler)
	}
}

// RegisterReplacementRoutes registers the replacement request lifecycle.
func RegisterReplacementRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/replacements")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("", hb.RequestReplacementHandler)
		api.POST("/search", hb.SearchReplacementsHandler)
		api.GET("/:id", hb.GetReplacementHandler)
		api.POST("/:id/propose", hb.ProposeReplacementHandler)
		api.POST("/:id/auto-propose", hb.AutoProposeHandler)
		api.POST("/:id/accept", hb.AcceptReplacementHandler)
		api.POST("/:id/decline", hb.DeclineReplacementHandler)
		api.POST("/:id/cancel", hb.CancelReplacementHandler)
	}
}

// RegisterAgentRoutes registers agent calendar and eligibility endpoints.
func RegisterAgentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/agents")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.GET("/:id/bookings", hb.ListAgentBookingsHandler)
		api.GET("/:id/conflicts", hb.AgentConflictsHandler)
		api.GET("/:id/can-replace/:bookingId", hb.CanReplaceHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"message":  "Hi, I'm Planora",
			"services": utils.GetHealthStatus(),
		})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	// Setup global middleware (e.g., CORS) here.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterConflictRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterReplacementRoutes(r, hb)
	RegisterAgentRoutes(r, hb)
}
