package api

import (
	"github.com/gin-gonic/gin"

	"github.com/janvedha/triage/internal/telemetry"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, handler *Handler, tp *telemetry.Provider) {
	// Health and readiness checks
	router.GET("/health", handler.HealthCheck)
	router.GET("/ready", handler.ReadyCheck)

	if tp != nil {
		router.GET("/metrics", gin.WrapH(tp.Handler()))
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/pipeline", handler.RunPipeline)       // POST /api/v1/pipeline
		v1.POST("/classify", handler.Classify)          // POST /api/v1/classify
		v1.POST("/priority/score", handler.ScorePriority) // POST /api/v1/priority/score
		v1.POST("/outcomes", handler.TrainOnOutcome)    // POST /api/v1/outcomes
		v1.GET("/seasonal-alerts", handler.GetSeasonalAlerts) // GET /api/v1/seasonal-alerts
		v1.GET("/model/states", handler.GetModelStates)       // GET /api/v1/model/states
	}
}
