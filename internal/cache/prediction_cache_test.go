package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VL13N/FullStackNexus-sub005/internal/models"
)

func newTestCache(t *testing.T) (*PredictionCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewPredictionCache(client, time.Hour, nil), mr
}

func TestPredictionCacheRoundTrip(t *testing.T) {
	pc, _ := newTestCache(t)
	ctx := context.Background()

	record := &models.PredictionRecord{
		PredictedChangePercent: 2.4,
		Confidence:             0.82,
		PredictedPrice:         154.2,
		Direction:              models.DirectionBullish,
		Timestamp:              time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}

	require.NoError(t, pc.SetLatest(ctx, record))

	cached, ok := pc.GetLatest(ctx)
	require.True(t, ok)
	assert.Equal(t, record.Confidence, cached.Confidence)
	assert.True(t, record.Timestamp.Equal(cached.Timestamp))

	stats := pc.Stats()
	assert.Equal(t, int64(1), stats.Sets)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(0), stats.Misses)
}

func TestPredictionCacheMiss(t *testing.T) {
	pc, _ := newTestCache(t)

	_, ok := pc.GetLatest(context.Background())
	assert.False(t, ok)
	assert.Equal(t, int64(1), pc.Stats().Misses)
}

func TestPredictionCacheExpiry(t *testing.T) {
	pc, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, pc.SetLatest(ctx, &models.PredictionRecord{Confidence: 0.7}))
	mr.FastForward(2 * time.Hour)

	_, ok := pc.GetLatest(ctx)
	assert.False(t, ok)
}

func TestPredictionCacheInvalidate(t *testing.T) {
	pc, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, pc.SetLatest(ctx, &models.PredictionRecord{Confidence: 0.7}))
	require.NoError(t, pc.Invalidate(ctx))

	_, ok := pc.GetLatest(ctx)
	assert.False(t, ok)
}

func TestPredictionCacheCorruptEntry(t *testing.T) {
	pc, mr := newTestCache(t)

	require.NoError(t, mr.Set("predictions:latest", "{not json"))
	_, ok := pc.GetLatest(context.Background())
	assert.False(t, ok)
}
