package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/VL13N/FullStackNexus-sub005/internal/models"
	"github.com/VL13N/FullStackNexus-sub005/internal/services"
)

// AlertsHandler exposes rule CRUD and prediction processing over HTTP.
type AlertsHandler struct {
	engine *services.AlertEngine
}

// NewAlertsHandler creates an alerts handler.
func NewAlertsHandler(engine *services.AlertEngine) *AlertsHandler {
	return &AlertsHandler{engine: engine}
}

// CreateRule handles POST /api/alerts/rules.
func (h *AlertsHandler) CreateRule(c *gin.Context) {
	var rule models.AlertRule
	if err := c.ShouldBindJSON(&rule); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	created, err := h.engine.CreateRule(c.Request.Context(), rule)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, created)
}

// UpdateRule handles PUT /api/alerts/rules/:id.
func (h *AlertsHandler) UpdateRule(c *gin.Context) {
	var update models.AlertRuleUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	updated, err := h.engine.UpdateRule(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, updated)
}

// DeleteRule handles DELETE /api/alerts/rules/:id.
func (h *AlertsHandler) DeleteRule(c *gin.Context) {
	if err := h.engine.DeleteRule(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": c.Param("id")})
}

// GetRule handles GET /api/alerts/rules/:id.
func (h *AlertsHandler) GetRule(c *gin.Context) {
	rule, err := h.engine.GetRule(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, rule)
}

// ListRules handles GET /api/alerts/rules.
func (h *AlertsHandler) ListRules(c *gin.Context) {
	respondOK(c, h.engine.ListRules())
}

// ProcessPrediction handles POST /api/alerts/process: evaluates all enabled
// rules against the posted prediction record.
func (h *AlertsHandler) ProcessPrediction(c *gin.Context) {
	var record models.PredictionRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	triggered, err := h.engine.ProcessIncomingPrediction(c.Request.Context(), &record)
	if err != nil {
		respondError(c, err)
		return
	}
	if triggered == nil {
		triggered = []models.TriggeredAlert{}
	}
	respondOK(c, gin.H{"triggered": triggered, "count": len(triggered)})
}

// GetActiveAlerts handles GET /api/alerts/active.
func (h *AlertsHandler) GetActiveAlerts(c *gin.Context) {
	respondOK(c, h.engine.GetActiveAlerts())
}

// GetHistory handles GET /api/alerts/history?limit=N.
func (h *AlertsHandler) GetHistory(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondBadRequest(c, "invalid limit parameter")
			return
		}
		limit = parsed
	}
	respondOK(c, h.engine.GetHistory(limit))
}

// AcknowledgeAlert handles POST /api/alerts/acknowledge/:id.
func (h *AlertsHandler) AcknowledgeAlert(c *gin.Context) {
	if err := h.engine.AcknowledgeAlert(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"acknowledged": c.Param("id")})
}

// GetStatistics handles GET /api/alerts/statistics.
func (h *AlertsHandler) GetStatistics(c *gin.Context) {
	respondOK(c, h.engine.GetStatistics())
}

// GetConditionFields handles GET /api/alerts/fields: the supported condition
// field names for rule builders.
func (h *AlertsHandler) GetConditionFields(c *gin.Context) {
	respondOK(c, services.ConditionFields())
}
