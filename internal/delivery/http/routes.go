package http

import (
	"github.com/gin-gonic/gin"

	"github.com/tripmatch/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		trips := v1.Group("/trips")
		{
			trips.POST("", handler.CreateTrip)
			trips.GET("/:id", handler.GetTrip)
			trips.POST("/:id/preferences", handler.SubmitPreferences)
			trips.POST("/:id/calculate", handler.CalculateMatches)
			trips.POST("/:id/vote", handler.Vote)
			trips.POST("/:id/cities", handler.CityMatches)
		}
	}

	return router
}
