package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/VL13N/FullStackNexus-sub005/internal/services"
)

// AnalysisHandler exposes correlation analysis over HTTP.
type AnalysisHandler struct {
	engine  *services.CorrelationEngine
	builder *services.TechnicalSeriesBuilder
}

// NewAnalysisHandler creates an analysis handler.
func NewAnalysisHandler(engine *services.CorrelationEngine, builder *services.TechnicalSeriesBuilder) *AnalysisHandler {
	return &AnalysisHandler{engine: engine, builder: builder}
}

// CorrelationRequest carries named series for matrix computation. Variables
// fixes the row/column order; every listed name must appear in Data.
type CorrelationRequest struct {
	Variables []string             `json:"variables" binding:"required"`
	Data      map[string][]float64 `json:"data" binding:"required"`
}

// ComputeCorrelation handles POST /api/analysis/correlation.
func (h *AnalysisHandler) ComputeCorrelation(c *gin.Context) {
	var req CorrelationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	matrix, err := h.engine.ComputeCorrelationMatrix(req.Variables, req.Data)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, matrix)
}

// GenerateInsights handles POST /api/analysis/insights. It computes the
// matrix and summarizes it in one call.
func (h *AnalysisHandler) GenerateInsights(c *gin.Context) {
	var req CorrelationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	matrix, err := h.engine.ComputeCorrelationMatrix(req.Variables, req.Data)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{
		"matrix":   matrix,
		"insights": h.engine.GenerateInsights(matrix),
	})
}

// IndicatorCorrelationRequest carries a raw price history; the server
// derives the indicator series before correlating.
type IndicatorCorrelationRequest struct {
	Prices []float64 `json:"prices" binding:"required"`
}

// CorrelateIndicators handles POST /api/analysis/indicators: builds SMA,
// EMA, RSI and MACD series from the price history and correlates them with
// the price itself.
func (h *AnalysisHandler) CorrelateIndicators(c *gin.Context) {
	var req IndicatorCorrelationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	variables, series, err := h.builder.BuildIndicatorSeries(req.Prices)
	if err != nil {
		respondError(c, err)
		return
	}

	matrix, err := h.engine.ComputeCorrelationMatrix(variables, series)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{
		"matrix":   matrix,
		"insights": h.engine.GenerateInsights(matrix),
	})
}
