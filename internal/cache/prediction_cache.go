// Package cache holds Redis-backed caches shared between the background
// poller and the HTTP layer.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/VL13N/FullStackNexus-sub005/internal/models"
)

const latestPredictionKey = "predictions:latest"

// PredictionCacheStats tracks cache performance counters.
type PredictionCacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Sets   int64 `json:"sets"`
}

// PredictionCache stores the most recent prediction record in Redis so API
// consumers can read it without touching the model sidecar.
type PredictionCache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *logrus.Logger

	mu    sync.Mutex
	stats PredictionCacheStats
}

// NewPredictionCache creates a prediction cache with the given entry TTL.
func NewPredictionCache(client *redis.Client, ttl time.Duration, logger *logrus.Logger) *PredictionCache {
	if logger == nil {
		logger = logrus.New()
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &PredictionCache{redis: client, ttl: ttl, logger: logger}
}

// SetLatest stores a prediction record as the latest one.
func (pc *PredictionCache) SetLatest(ctx context.Context, record *models.PredictionRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode prediction record: %w", err)
	}
	if err := pc.redis.Set(ctx, latestPredictionKey, data, pc.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache prediction record: %w", err)
	}
	pc.mu.Lock()
	pc.stats.Sets++
	pc.mu.Unlock()
	return nil
}

// GetLatest returns the cached latest prediction, or (nil, false) on a miss.
// Redis failures count as misses; the caller falls back to the sidecar.
func (pc *PredictionCache) GetLatest(ctx context.Context) (*models.PredictionRecord, bool) {
	data, err := pc.redis.Get(ctx, latestPredictionKey).Result()
	if err == redis.Nil {
		pc.miss()
		return nil, false
	}
	if err != nil {
		pc.logger.WithError(err).Warn("Failed to read cached prediction")
		pc.miss()
		return nil, false
	}

	var record models.PredictionRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		pc.logger.WithError(err).Warn("Failed to decode cached prediction")
		pc.miss()
		return nil, false
	}

	pc.mu.Lock()
	pc.stats.Hits++
	pc.mu.Unlock()
	return &record, true
}

// Invalidate drops the cached latest prediction.
func (pc *PredictionCache) Invalidate(ctx context.Context) error {
	return pc.redis.Del(ctx, latestPredictionKey).Err()
}

// Stats returns a snapshot of the cache counters.
func (pc *PredictionCache) Stats() PredictionCacheStats {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.stats
}

func (pc *PredictionCache) miss() {
	pc.mu.Lock()
	pc.stats.Misses++
	pc.mu.Unlock()
}
