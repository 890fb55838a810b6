package http

import (
	"github.com/gin-gonic/gin"

	"github.com/pantrybase/ingredients/config"
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
		ingredients := v1.Group("/ingredients")
		{
			ingredients.POST("/resolve", handler.ResolveMentions)
		}

		matches := v1.Group("/matches")
		{
			matches.POST("/confirm", handler.ConfirmMatch)
		}

		catalog := v1.Group("/catalog")
		{
			catalog.POST("/dedupe", handler.DedupeRecords)
		}
	}

	return router
}
