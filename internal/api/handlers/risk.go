package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/VL13N/FullStackNexus-sub005/internal/models"
	"github.com/VL13N/FullStackNexus-sub005/internal/services"
)

// RiskHandler exposes the position-sizing engine over HTTP.
type RiskHandler struct {
	sizer *services.RiskSizer
}

// NewRiskHandler creates a risk handler.
func NewRiskHandler(sizer *services.RiskSizer) *RiskHandler {
	return &RiskHandler{sizer: sizer}
}

// PositionSizeRequest is the sizing request payload. AccountBalance falls
// back to the configured balance when omitted.
type PositionSizeRequest struct {
	Prediction     float64   `json:"prediction"`
	Confidence     float64   `json:"confidence"`
	CurrentPrice   float64   `json:"current_price" binding:"required"`
	AccountBalance float64   `json:"account_balance"`
	PriceHistory   []float64 `json:"price_history"`
}

// CalculatePositionSize handles POST /api/risk/position-size.
func (h *RiskHandler) CalculatePositionSize(c *gin.Context) {
	var req PositionSizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	balance := req.AccountBalance
	if balance == 0 {
		balance = h.sizer.Settings().AccountBalance
	}

	result := h.sizer.CalculatePositionSize(req.Prediction, req.Confidence, req.CurrentPrice, balance, req.PriceHistory)
	if !result.Success {
		// The sizing result itself is the response body even on rejection;
		// the envelope still reports failure with the reason.
		c.JSON(http.StatusOK, APIResponse{Success: false, Data: result, Error: result.Reason, Timestamp: timeNowUTC()})
		return
	}
	respondOK(c, result)
}

// KellyRequest is the standalone Kelly calculation payload.
type KellyRequest struct {
	WinProbability float64 `json:"win_probability"`
	ExpectedReturn float64 `json:"expected_return"`
	Volatility     float64 `json:"volatility"`
}

// CalculateKelly handles POST /api/risk/kelly.
func (h *RiskHandler) CalculateKelly(c *gin.Context) {
	var req KellyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	respondOK(c, h.sizer.CalculateKellyCriterion(req.WinProbability, req.ExpectedReturn, req.Volatility))
}

// VolatilityRequest carries the price history for a volatility estimate.
type VolatilityRequest struct {
	PriceHistory []float64 `json:"price_history"`
}

// CalculateVolatility handles POST /api/risk/volatility.
func (h *RiskHandler) CalculateVolatility(c *gin.Context) {
	var req VolatilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	respondOK(c, gin.H{"volatility": h.sizer.CalculateVolatility(req.PriceHistory)})
}

// GetSettings handles GET /api/risk/settings.
func (h *RiskHandler) GetSettings(c *gin.Context) {
	respondOK(c, h.sizer.Settings())
}

// UpdateSettings handles PUT /api/risk/settings. Out-of-range values are
// clamped, not rejected; the response carries the effective settings.
func (h *RiskHandler) UpdateSettings(c *gin.Context) {
	var update models.RiskSettingsUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	respondOK(c, h.sizer.UpdateSettings(update))
}

// GetPerformance handles GET /api/risk/performance.
func (h *RiskHandler) GetPerformance(c *gin.Context) {
	respondOK(c, h.sizer.PerformanceStats())
}

// RecordOutcome handles POST /api/risk/outcome.
func (h *RiskHandler) RecordOutcome(c *gin.Context) {
	var outcome models.TradeOutcome
	if err := c.ShouldBindJSON(&outcome); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	h.sizer.RecordTradeOutcome(outcome)
	respondCreated(c, h.sizer.PerformanceStats())
}

// Simulate handles GET /api/risk/simulate.
func (h *RiskHandler) Simulate(c *gin.Context) {
	respondOK(c, h.sizer.SimulatePositionSizing())
}
