package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VL13N/FullStackNexus-sub005/internal/models"
	"github.com/VL13N/FullStackNexus-sub005/internal/services"
)

func setupRiskRouter() (*gin.Engine, *services.RiskSizer) {
	gin.SetMode(gin.TestMode)
	sizer := services.NewRiskSizer(nil)
	handler := NewRiskHandler(sizer)

	router := gin.New()
	router.POST("/api/risk/position-size", handler.CalculatePositionSize)
	router.POST("/api/risk/kelly", handler.CalculateKelly)
	router.POST("/api/risk/volatility", handler.CalculateVolatility)
	router.GET("/api/risk/settings", handler.GetSettings)
	router.PUT("/api/risk/settings", handler.UpdateSettings)
	router.GET("/api/risk/performance", handler.GetPerformance)
	router.POST("/api/risk/outcome", handler.RecordOutcome)
	router.GET("/api/risk/simulate", handler.Simulate)
	return router, sizer
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var envelope APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

func TestCalculatePositionSizeEndpoint(t *testing.T) {
	router, _ := setupRiskRouter()

	t.Run("successful sizing", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/risk/position-size", gin.H{
			"prediction":    0.8,
			"confidence":    0.9,
			"current_price": 100.0,
			"price_history": []float64{100, 101, 99, 102, 103},
		})
		require.Equal(t, http.StatusOK, w.Code)

		envelope := decodeEnvelope(t, w)
		assert.True(t, envelope.Success)

		var result models.PositionSizingResult
		raw, err := json.Marshal(envelope.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &result))
		assert.Equal(t, models.RecommendationBuy, result.Recommendation)
		assert.Positive(t, result.PositionValue)
	})

	t.Run("rejection still returns the sizing result", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/risk/position-size", gin.H{
			"prediction":    0.8,
			"confidence":    0.2,
			"current_price": 100.0,
		})
		require.Equal(t, http.StatusOK, w.Code)

		envelope := decodeEnvelope(t, w)
		assert.False(t, envelope.Success)
		assert.Contains(t, envelope.Error, "confidence")
		assert.NotNil(t, envelope.Data)
	})

	t.Run("missing price is a bad request", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/risk/position-size", gin.H{
			"prediction": 0.8,
			"confidence": 0.9,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/risk/position-size", bytes.NewBufferString("{broken"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestKellyEndpoint(t *testing.T) {
	router, _ := setupRiskRouter()

	w := doJSON(t, router, http.MethodPost, "/api/risk/kelly", gin.H{
		"win_probability": 0.7,
		"expected_return": 0.08,
		"volatility":      0.2,
	})
	require.Equal(t, http.StatusOK, w.Code)

	envelope := decodeEnvelope(t, w)
	require.True(t, envelope.Success)

	var result models.KellyResult
	raw, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &result))
	assert.Positive(t, result.KellyFraction)
}

func TestVolatilityEndpoint(t *testing.T) {
	router, _ := setupRiskRouter()

	w := doJSON(t, router, http.MethodPost, "/api/risk/volatility", gin.H{
		"price_history": []float64{100, 102, 98, 105, 103},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeEnvelope(t, w).Success)
}

func TestSettingsEndpoints(t *testing.T) {
	router, sizer := setupRiskRouter()

	t.Run("get returns current settings", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/risk/settings", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, decodeEnvelope(t, w).Success)
	})

	t.Run("update clamps out-of-range values", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPut, "/api/risk/settings", gin.H{
			"max_risk_per_trade": 0.5,
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 0.1, sizer.Settings().MaxRiskPerTrade)
	})
}

func TestPerformanceEndpoints(t *testing.T) {
	router, _ := setupRiskRouter()

	w := doJSON(t, router, http.MethodPost, "/api/risk/outcome", gin.H{
		"symbol":         "SOL",
		"return_percent": "4.2",
		"win":            true,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/risk/performance", nil)
	require.Equal(t, http.StatusOK, w.Code)

	envelope := decodeEnvelope(t, w)
	var stats models.PerformanceStats
	raw, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &stats))
	assert.Equal(t, 1, stats.TotalTrades)
	assert.Equal(t, 100.0, stats.WinRate)
}

func TestSimulateEndpoint(t *testing.T) {
	router, _ := setupRiskRouter()

	w := doJSON(t, router, http.MethodGet, "/api/risk/simulate", nil)
	require.Equal(t, http.StatusOK, w.Code)

	envelope := decodeEnvelope(t, w)
	var result models.SimulationResult
	raw, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &result))
	assert.Greater(t, len(result.Scenarios), 50)
}
