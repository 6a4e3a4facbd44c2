package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all API routes.
func SetupRoutes(router *gin.Engine, handler *Handler) {
	// Health and readiness checks
	router.GET("/health", handler.HealthCheck)
	router.GET("/ready", handler.ReadyCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Scan endpoints
		scan := v1.Group("/scan")
		{
			scan.POST("", handler.Scan)             // POST /api/v1/scan
			scan.POST("/batch", handler.ScanBatch)  // POST /api/v1/scan/batch
			scan.GET("/:url_hash", handler.GetScan) // GET /api/v1/scan/:url_hash
		}

		v1.POST("/validate", handler.Validate) // POST /api/v1/validate
		v1.GET("/scans", handler.ListScans)    // GET /api/v1/scans

		// Pattern management endpoints
		patterns := v1.Group("/patterns")
		{
			patterns.GET("", handler.ListPatterns)         // GET /api/v1/patterns
			patterns.POST("", handler.CreatePattern)       // POST /api/v1/patterns
			patterns.PUT("/:id", handler.UpdatePattern)    // PUT /api/v1/patterns/:id
			patterns.DELETE("/:id", handler.DeletePattern) // DELETE /api/v1/patterns/:id
		}

		// Legitimate domain allowlist endpoints
		legitimate := v1.Group("/legitimate")
		{
			legitimate.GET("", handler.ListLegitimateDomains)         // GET /api/v1/legitimate
			legitimate.POST("", handler.CreateLegitimateDomain)       // POST /api/v1/legitimate
			legitimate.DELETE("/:id", handler.DeleteLegitimateDomain) // DELETE /api/v1/legitimate/:id
		}

		// Statistics endpoint
		v1.GET("/stats", handler.GetStats) // GET /api/v1/stats
	}
}
