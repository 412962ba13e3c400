package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/VL13N/FullStackNexus-sub005/internal/api"
	"github.com/VL13N/FullStackNexus-sub005/internal/cache"
	"github.com/VL13N/FullStackNexus-sub005/internal/config"
	"github.com/VL13N/FullStackNexus-sub005/internal/database"
	"github.com/VL13N/FullStackNexus-sub005/internal/logging"
	"github.com/VL13N/FullStackNexus-sub005/internal/models"
	"github.com/VL13N/FullStackNexus-sub005/internal/predictor"
	"github.com/VL13N/FullStackNexus-sub005/internal/services"
)

// predictionPollInterval matches the model sidecar's publishing cadence.
const predictionPollInterval = 15 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.NewLogger(cfg.LogLevel, cfg.Environment)

	// Initialize database
	db, err := database.NewPostgresConnection(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize Redis
	redis, err := database.NewRedisConnection(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redis.Close()

	// Core engines
	riskSizer := services.NewRiskSizerWithSettings(models.RiskSettings{
		MaxRiskPerTrade:    cfg.Risk.MaxRiskPerTrade,
		KellyFraction:      cfg.Risk.KellyFraction,
		FixedFraction:      cfg.Risk.FixedFraction,
		MinConfidence:      cfg.Risk.MinConfidence,
		MaxPositionSize:    cfg.Risk.MaxPositionSize,
		VolatilityLookback: cfg.Risk.VolatilityLookback,
		EmergencyStopLoss:  cfg.Risk.EmergencyStopLoss,
		AccountBalance:     cfg.Risk.AccountBalance,
	}, logger)
	correlationEngine := services.NewCorrelationEngine(logger)
	seriesBuilder := services.NewTechnicalSeriesBuilder(logger)

	// Alert delivery: Redis pub/sub for the dashboard bridge, Telegram for
	// subscribed chats.
	broadcasters := []services.Broadcaster{services.NewRedisBroadcaster(redis.Client, logger)}
	if cfg.Telegram.BotToken != "" {
		broadcasters = append(broadcasters, services.NewNotificationService(db, cfg.Telegram.BotToken, logger))
	}
	broadcaster := services.NewCompositeBroadcaster(broadcasters...)

	alertRepo := database.NewAlertRepository(db.Pool)
	alertEngine := services.NewAlertEngine(alertRepo, broadcaster, logger)

	// Background prediction polling. The breaker keeps a dead sidecar from
	// being hammered on every tick.
	predictorClient := predictor.NewClient(&cfg.Predictor)
	predictorBreaker := predictor.NewBreaker(predictor.BreakerConfig{}, logger)
	predictionCache := cache.NewPredictionCache(redis.Client, time.Hour, logger)
	pollCtx, stopPolling := context.WithCancel(context.Background())
	go pollPredictions(pollCtx, predictorClient, predictorBreaker, alertEngine, predictionCache, logger)
	defer stopPolling()

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	api.SetupRoutes(router, db, redis, riskSizer, correlationEngine, seriesBuilder, alertEngine, predictionCache, predictorClient)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

// pollPredictions fetches the latest prediction on the sidecar's cadence and
// runs it through the alert engine. Fetch failures are logged and skipped;
// the next tick retries naturally.
func pollPredictions(ctx context.Context, client *predictor.Client, breaker *predictor.Breaker, engine *services.AlertEngine, predictionCache *cache.PredictionCache, logger *logrus.Logger) {
	ticker := time.NewTicker(predictionPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		var record *models.PredictionRecord
		err := breaker.Execute(ctx, func(ctx context.Context) error {
			fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()
			fetched, err := client.LatestPrediction(fetchCtx)
			if err != nil {
				return err
			}
			record = fetched
			return nil
		})
		if err != nil {
			logger.WithError(err).Warn("Failed to fetch latest prediction")
			continue
		}

		cacheCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := predictionCache.SetLatest(cacheCtx, record); err != nil {
			logger.WithError(err).Debug("Failed to cache latest prediction")
		}
		cancel()

		if _, err := engine.ProcessIncomingPrediction(ctx, record); err != nil {
			logger.WithError(err).Warn("Failed to process prediction")
		}
	}
}
