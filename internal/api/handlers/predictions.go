package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/VL13N/FullStackNexus-sub005/internal/cache"
	"github.com/VL13N/FullStackNexus-sub005/internal/predictor"
)

// PredictionsHandler serves the latest prediction record, cache-first with a
// sidecar fallback.
type PredictionsHandler struct {
	cache  *cache.PredictionCache
	client *predictor.Client
}

// NewPredictionsHandler creates a predictions handler. Either collaborator
// may be nil when not configured.
func NewPredictionsHandler(predictionCache *cache.PredictionCache, client *predictor.Client) *PredictionsHandler {
	return &PredictionsHandler{cache: predictionCache, client: client}
}

// GetLatest handles GET /api/predictions/latest.
func (h *PredictionsHandler) GetLatest(c *gin.Context) {
	if h.cache != nil {
		if record, ok := h.cache.GetLatest(c.Request.Context()); ok {
			respondOK(c, gin.H{"prediction": record, "source": "cache"})
			return
		}
	}

	if h.client == nil {
		respondBadRequest(c, "no prediction available")
		return
	}

	record, err := h.client.LatestPrediction(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if h.cache != nil {
		// Best effort refill; a failed write only costs the next cache hit.
		_ = h.cache.SetLatest(c.Request.Context(), record)
	}
	respondOK(c, gin.H{"prediction": record, "source": "sidecar"})
}

// GetCacheStats handles GET /api/predictions/cache-stats.
func (h *PredictionsHandler) GetCacheStats(c *gin.Context) {
	if h.cache == nil {
		respondBadRequest(c, "prediction cache not configured")
		return
	}
	respondOK(c, h.cache.Stats())
}
