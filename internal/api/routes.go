package api

import (
	"github.com/gin-gonic/gin"

	"github.com/VL13N/FullStackNexus-sub005/internal/api/handlers"
	"github.com/VL13N/FullStackNexus-sub005/internal/cache"
	"github.com/VL13N/FullStackNexus-sub005/internal/database"
	"github.com/VL13N/FullStackNexus-sub005/internal/predictor"
	"github.com/VL13N/FullStackNexus-sub005/internal/services"
)

// SetupRoutes registers all HTTP endpoints on the router.
func SetupRoutes(
	router *gin.Engine,
	db *database.PostgresDB,
	redis *database.RedisClient,
	riskSizer *services.RiskSizer,
	correlationEngine *services.CorrelationEngine,
	seriesBuilder *services.TechnicalSeriesBuilder,
	alertEngine *services.AlertEngine,
	predictionCache *cache.PredictionCache,
	predictorClient *predictor.Client,
) {
	healthHandler := handlers.NewHealthHandler(db, redis)
	riskHandler := handlers.NewRiskHandler(riskSizer)
	analysisHandler := handlers.NewAnalysisHandler(correlationEngine, seriesBuilder)
	alertsHandler := handlers.NewAlertsHandler(alertEngine)
	predictionsHandler := handlers.NewPredictionsHandler(predictionCache, predictorClient)

	router.GET("/health", healthHandler.HealthCheck)

	api := router.Group("/api")
	{
		risk := api.Group("/risk")
		{
			risk.POST("/position-size", riskHandler.CalculatePositionSize)
			risk.POST("/kelly", riskHandler.CalculateKelly)
			risk.POST("/volatility", riskHandler.CalculateVolatility)
			risk.GET("/settings", riskHandler.GetSettings)
			risk.PUT("/settings", riskHandler.UpdateSettings)
			risk.GET("/performance", riskHandler.GetPerformance)
			risk.POST("/outcome", riskHandler.RecordOutcome)
			risk.GET("/simulate", riskHandler.Simulate)
		}

		analysis := api.Group("/analysis")
		{
			analysis.POST("/correlation", analysisHandler.ComputeCorrelation)
			analysis.POST("/insights", analysisHandler.GenerateInsights)
			analysis.POST("/indicators", analysisHandler.CorrelateIndicators)
		}

		alerts := api.Group("/alerts")
		{
			alerts.POST("/rules", alertsHandler.CreateRule)
			alerts.GET("/rules", alertsHandler.ListRules)
			alerts.GET("/rules/:id", alertsHandler.GetRule)
			alerts.PUT("/rules/:id", alertsHandler.UpdateRule)
			alerts.DELETE("/rules/:id", alertsHandler.DeleteRule)
			alerts.POST("/process", alertsHandler.ProcessPrediction)
			alerts.GET("/active", alertsHandler.GetActiveAlerts)
			alerts.GET("/history", alertsHandler.GetHistory)
			alerts.POST("/acknowledge/:id", alertsHandler.AcknowledgeAlert)
			alerts.GET("/statistics", alertsHandler.GetStatistics)
			alerts.GET("/fields", alertsHandler.GetConditionFields)
		}

		predictions := api.Group("/predictions")
		{
			predictions.GET("/latest", predictionsHandler.GetLatest)
			predictions.GET("/cache-stats", predictionsHandler.GetCacheStats)
		}
	}
}
