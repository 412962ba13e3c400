package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/VL13N/FullStackNexus-sub005/internal/models"
	"github.com/VL13N/FullStackNexus-sub005/internal/utils"
)

// alertHistoryLimit bounds the in-memory alert history.
const alertHistoryLimit = 1000

// newAlertsChannel is the broadcast channel triggered alerts are published on.
const newAlertsChannel = "new_alerts"

// predictionFieldExtractors maps condition field names onto prediction record
// accessors. Unknown names are rejected at rule-creation time instead of
// failing silently during evaluation.
var predictionFieldExtractors = map[string]func(*models.PredictionRecord) float64{
	"predicted_change_percent": func(p *models.PredictionRecord) float64 { return p.PredictedChangePercent },
	"confidence":               func(p *models.PredictionRecord) float64 { return p.Confidence },
	"predicted_price":          func(p *models.PredictionRecord) float64 { return p.PredictedPrice },
	"volatility":               func(p *models.PredictionRecord) float64 { return p.Volatility },
	"pillar_scores.technical":  func(p *models.PredictionRecord) float64 { return p.PillarScores.Technical },
	"pillar_scores.social":     func(p *models.PredictionRecord) float64 { return p.PillarScores.Social },
	"pillar_scores.fundamental": func(p *models.PredictionRecord) float64 {
		return p.PillarScores.Fundamental
	},
	"pillar_scores.astrology": func(p *models.PredictionRecord) float64 { return p.PillarScores.Astrology },
}

// AlertRuleRepository persists rules, triggered alerts and trigger counts.
// Implementations must not retry internally; the engine propagates failures
// as service-unavailable without corrupting its own state.
type AlertRuleRepository interface {
	SaveRule(ctx context.Context, rule *models.AlertRule) error
	DeleteRule(ctx context.Context, id string) error
	SaveTriggeredAlert(ctx context.Context, alert *models.TriggeredAlert) error
	AcknowledgeAlert(ctx context.Context, id string) error
}

// Broadcaster delivers triggered-alert batches to subscribers. Publish is
// fire-and-forget from the engine's perspective.
type Broadcaster interface {
	Publish(ctx context.Context, channel string, payload interface{}) error
}

// AlertEngine evaluates user-defined threshold rules against incoming
// prediction records, deduplicates triggers per (rule, timestamp) pair and
// pushes triggered alerts to the broadcast collaborator.
type AlertEngine struct {
	mu        sync.Mutex
	rules     map[string]*models.AlertRule
	ruleOrder []string
	history   []models.TriggeredAlert
	seen      map[string]time.Time

	repo        AlertRuleRepository
	broadcaster Broadcaster
	dispatch    chan []models.TriggeredAlert
	logger      *logrus.Logger
	now         func() time.Time
}

// NewAlertEngine creates an alert engine. The repository and broadcaster are
// optional; a nil value disables persistence or broadcast respectively.
func NewAlertEngine(repo AlertRuleRepository, broadcaster Broadcaster, logger *logrus.Logger) *AlertEngine {
	if logger == nil {
		logger = logrus.New()
	}
	ae := &AlertEngine{
		rules:       make(map[string]*models.AlertRule),
		seen:        make(map[string]time.Time),
		repo:        repo,
		broadcaster: broadcaster,
		dispatch:    make(chan []models.TriggeredAlert, 64),
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
	if broadcaster != nil {
		go ae.dispatchLoop()
	}
	return ae
}

// dispatchLoop drains the dispatch buffer so a slow or disconnected
// subscriber never blocks rule evaluation.
func (ae *AlertEngine) dispatchLoop() {
	for batch := range ae.dispatch {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := ae.broadcaster.Publish(ctx, newAlertsChannel, batch); err != nil {
			ae.logger.WithError(err).Warn("Failed to broadcast triggered alerts")
		}
		cancel()
	}
}

// validateRule enforces rule constraints shared by create and update.
func validateRule(rule *models.AlertRule) error {
	if rule.Name == "" {
		return utils.NewValidationError("rule name is required")
	}
	if len(rule.Conditions) == 0 {
		return utils.NewValidationError("rule conditions must be non-empty")
	}
	for _, cond := range rule.Conditions {
		if !cond.Operator.Valid() {
			return utils.NewValidationErrorf("unsupported operator %q", cond.Operator)
		}
		if _, ok := predictionFieldExtractors[cond.Field]; !ok {
			return utils.NewValidationErrorf("unknown condition field %q", cond.Field)
		}
	}
	return nil
}

// CreateRule validates and stores a new alert rule.
func (ae *AlertEngine) CreateRule(ctx context.Context, rule models.AlertRule) (*models.AlertRule, error) {
	if err := validateRule(&rule); err != nil {
		return nil, err
	}

	rule.ID = uuid.New().String()
	rule.TriggeredCount = 0
	rule.CreatedAt = ae.now()
	rule.UpdatedAt = rule.CreatedAt
	if rule.Severity == "" {
		rule.Severity = models.SeverityInfo
	}

	if ae.repo != nil {
		if err := ae.repo.SaveRule(ctx, &rule); err != nil {
			return nil, utils.NewServiceUnavailableError("rule store", err)
		}
	}

	ae.mu.Lock()
	ae.rules[rule.ID] = &rule
	ae.ruleOrder = append(ae.ruleOrder, rule.ID)
	ae.mu.Unlock()

	ae.logger.WithFields(logrus.Fields{
		"rule_id":    rule.ID,
		"rule_name":  rule.Name,
		"conditions": len(rule.Conditions),
	}).Info("Alert rule created")

	return &rule, nil
}

// applyRuleUpdate merges the update's set fields into the rule. Trigger state
// is never part of an update, so concurrent trigger counting survives.
func applyRuleUpdate(rule *models.AlertRule, update models.AlertRuleUpdate, now time.Time) {
	if update.Name != nil {
		rule.Name = *update.Name
	}
	if update.Description != nil {
		rule.Description = *update.Description
	}
	if update.Conditions != nil {
		rule.Conditions = *update.Conditions
	}
	if update.Severity != nil {
		rule.Severity = *update.Severity
	}
	if update.Enabled != nil {
		rule.Enabled = *update.Enabled
	}
	rule.UpdatedAt = now
}

// UpdateRule applies a partial update to an existing rule.
func (ae *AlertEngine) UpdateRule(ctx context.Context, id string, update models.AlertRuleUpdate) (*models.AlertRule, error) {
	ae.mu.Lock()
	existing, ok := ae.rules[id]
	if !ok {
		ae.mu.Unlock()
		return nil, utils.NewValidationErrorf("rule %q not found", id)
	}
	candidate := *existing
	applyRuleUpdate(&candidate, update, ae.now())
	if err := validateRule(&candidate); err != nil {
		ae.mu.Unlock()
		return nil, err
	}
	ae.mu.Unlock()

	if ae.repo != nil {
		if err := ae.repo.SaveRule(ctx, &candidate); err != nil {
			return nil, utils.NewServiceUnavailableError("rule store", err)
		}
	}

	// Re-apply the set fields onto the live rule rather than replacing it,
	// so a trigger recorded during the store round trip is not clobbered.
	ae.mu.Lock()
	defer ae.mu.Unlock()
	live, ok := ae.rules[id]
	if !ok {
		return nil, utils.NewValidationErrorf("rule %q not found", id)
	}
	applyRuleUpdate(live, update, candidate.UpdatedAt)
	updated := *live
	return &updated, nil
}

// DeleteRule removes a rule from the store.
func (ae *AlertEngine) DeleteRule(ctx context.Context, id string) error {
	ae.mu.Lock()
	_, ok := ae.rules[id]
	ae.mu.Unlock()
	if !ok {
		return utils.NewValidationErrorf("rule %q not found", id)
	}

	if ae.repo != nil {
		if err := ae.repo.DeleteRule(ctx, id); err != nil {
			return utils.NewServiceUnavailableError("rule store", err)
		}
	}

	ae.mu.Lock()
	delete(ae.rules, id)
	for i, rid := range ae.ruleOrder {
		if rid == id {
			ae.ruleOrder = append(ae.ruleOrder[:i], ae.ruleOrder[i+1:]...)
			break
		}
	}
	ae.mu.Unlock()
	return nil
}

// GetRule returns a copy of the rule with the given id.
func (ae *AlertEngine) GetRule(id string) (*models.AlertRule, error) {
	ae.mu.Lock()
	defer ae.mu.Unlock()
	rule, ok := ae.rules[id]
	if !ok {
		return nil, utils.NewValidationErrorf("rule %q not found", id)
	}
	copied := *rule
	return &copied, nil
}

// ListRules returns all rules in creation order.
func (ae *AlertEngine) ListRules() []models.AlertRule {
	ae.mu.Lock()
	defer ae.mu.Unlock()
	out := make([]models.AlertRule, 0, len(ae.ruleOrder))
	for _, id := range ae.ruleOrder {
		if rule, ok := ae.rules[id]; ok {
			out = append(out, *rule)
		}
	}
	return out
}

// EvaluateConditions reports whether every condition of a rule matches the
// prediction record. A rule with zero conditions never matches.
func (ae *AlertEngine) EvaluateConditions(rule *models.AlertRule, record *models.PredictionRecord) bool {
	if rule == nil || record == nil || len(rule.Conditions) == 0 {
		return false
	}
	for _, cond := range rule.Conditions {
		extractor, ok := predictionFieldExtractors[cond.Field]
		if !ok {
			return false
		}
		if !compareCondition(extractor(record), cond.Operator, cond.Value) {
			return false
		}
	}
	return true
}

func compareCondition(fieldValue float64, op models.ConditionOperator, threshold float64) bool {
	switch op {
	case models.OperatorGTE:
		return fieldValue >= threshold
	case models.OperatorLTE:
		return fieldValue <= threshold
	case models.OperatorEQ:
		return fieldValue == threshold
	case models.OperatorNEQ:
		return fieldValue != threshold
	case models.OperatorGT:
		return fieldValue > threshold
	case models.OperatorLT:
		return fieldValue < threshold
	}
	return false
}

// ProcessIncomingPrediction evaluates all enabled rules against a prediction
// record. Matching rules trigger at most once per (rule, timestamp) pair.
// Triggered alerts are appended to history and emitted as one batched
// new_alerts event.
func (ae *AlertEngine) ProcessIncomingPrediction(ctx context.Context, record *models.PredictionRecord) ([]models.TriggeredAlert, error) {
	if record == nil {
		return nil, utils.NewValidationError("prediction record is required")
	}
	if !record.IsFinite() {
		return nil, utils.NewValidationError("prediction record contains non-finite values")
	}

	ae.mu.Lock()
	var triggered []models.TriggeredAlert
	for _, id := range ae.ruleOrder {
		rule, ok := ae.rules[id]
		if !ok || !rule.Enabled {
			continue
		}
		dedupKey := rule.ID + "|" + record.Timestamp.UTC().Format(time.RFC3339Nano)
		if _, dup := ae.seen[dedupKey]; dup {
			continue
		}
		if !ae.EvaluateConditions(rule, record) {
			continue
		}

		ae.seen[dedupKey] = ae.now()
		rule.TriggeredCount++
		alert := models.TriggeredAlert{
			ID:          uuid.New().String(),
			RuleID:      rule.ID,
			RuleName:    rule.Name,
			Severity:    rule.Severity,
			TriggeredAt: ae.now(),
			Snapshot:    *record,
		}
		triggered = append(triggered, alert)
	}

	ae.history = append(ae.history, triggered...)
	if len(ae.history) > alertHistoryLimit {
		ae.history = ae.history[len(ae.history)-alertHistoryLimit:]
	}
	ae.mu.Unlock()

	if len(triggered) == 0 {
		return nil, nil
	}

	var persistErr error
	if ae.repo != nil {
		for i := range triggered {
			if err := ae.repo.SaveTriggeredAlert(ctx, &triggered[i]); err != nil {
				// The in-memory trigger state above is already committed;
				// the caller still sees the store failure.
				ae.logger.WithError(err).Warn("Failed to persist triggered alert")
				if persistErr == nil {
					persistErr = utils.NewServiceUnavailableError("alert store", err)
				}
			}
		}
	}

	if ae.broadcaster != nil {
		select {
		case ae.dispatch <- triggered:
		default:
			ae.logger.Warn("Alert dispatch buffer full, dropping broadcast batch")
		}
	}

	ae.logger.WithFields(logrus.Fields{
		"triggered": len(triggered),
		"timestamp": record.Timestamp,
	}).Info("Processed incoming prediction")

	return triggered, persistErr
}

// GetActiveAlerts returns unacknowledged alerts, newest first.
func (ae *AlertEngine) GetActiveAlerts() []models.TriggeredAlert {
	ae.mu.Lock()
	defer ae.mu.Unlock()
	out := make([]models.TriggeredAlert, 0)
	for i := len(ae.history) - 1; i >= 0; i-- {
		if !ae.history[i].Acknowledged {
			out = append(out, ae.history[i])
		}
	}
	return out
}

// GetHistory returns up to limit alerts, newest first. A non-positive limit
// returns the full retained history.
func (ae *AlertEngine) GetHistory(limit int) []models.TriggeredAlert {
	ae.mu.Lock()
	defer ae.mu.Unlock()
	out := make([]models.TriggeredAlert, 0, len(ae.history))
	for i := len(ae.history) - 1; i >= 0; i-- {
		out = append(out, ae.history[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// AcknowledgeAlert marks an alert as acknowledged.
func (ae *AlertEngine) AcknowledgeAlert(ctx context.Context, id string) error {
	ae.mu.Lock()
	var found *models.TriggeredAlert
	for i := range ae.history {
		if ae.history[i].ID == id {
			found = &ae.history[i]
			break
		}
	}
	if found == nil {
		ae.mu.Unlock()
		return utils.NewValidationErrorf("alert %q not found", id)
	}
	found.Acknowledged = true
	ae.mu.Unlock()

	if ae.repo != nil {
		if err := ae.repo.AcknowledgeAlert(ctx, id); err != nil {
			return utils.NewServiceUnavailableError("alert store", err)
		}
	}
	return nil
}

// GetStatistics aggregates the rule store and alert history with wall-clock
// windows for the 24h and 7d counts.
func (ae *AlertEngine) GetStatistics() models.AlertStatistics {
	ae.mu.Lock()
	defer ae.mu.Unlock()

	stats := models.AlertStatistics{TotalRules: len(ae.rules)}

	mostTriggered := ""
	maxCount := 0
	for _, id := range ae.ruleOrder {
		rule, ok := ae.rules[id]
		if !ok {
			continue
		}
		if rule.Enabled {
			stats.EnabledRules++
		}
		if rule.TriggeredCount > maxCount {
			maxCount = rule.TriggeredCount
			mostTriggered = rule.Name
		}
	}
	stats.MostTriggeredRule = mostTriggered

	now := ae.now()
	for _, alert := range ae.history {
		if !alert.Acknowledged {
			stats.ActiveAlerts++
		}
		age := now.Sub(alert.TriggeredAt)
		if age <= 24*time.Hour {
			stats.Alerts24h++
		}
		if age <= 7*24*time.Hour {
			stats.Alerts7d++
		}
	}
	return stats
}

// ConditionFields returns the supported condition field names, sorted.
func ConditionFields() []string {
	fields := make([]string, 0, len(predictionFieldExtractors))
	for name := range predictionFieldExtractors {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	return fields
}
