package models

import "time"

// ConditionOperator is a comparison applied to one prediction field.
type ConditionOperator string

const (
	OperatorGTE ConditionOperator = ">="
	OperatorLTE ConditionOperator = "<="
	OperatorEQ  ConditionOperator = "=="
	OperatorNEQ ConditionOperator = "!="
	OperatorGT  ConditionOperator = ">"
	OperatorLT  ConditionOperator = "<"
)

// Valid reports whether the operator is in the supported set.
func (op ConditionOperator) Valid() bool {
	switch op {
	case OperatorGTE, OperatorLTE, OperatorEQ, OperatorNEQ, OperatorGT, OperatorLT:
		return true
	}
	return false
}

// AlertCondition is one threshold check within a rule. Field names address
// prediction record fields; pillar scores are reached with dotted paths such
// as "pillar_scores.technical".
type AlertCondition struct {
	Field    string            `json:"field"`
	Operator ConditionOperator `json:"operator"`
	Value    float64           `json:"value"`
}

// AlertSeverity ranks a triggered alert for display and delivery ordering.
type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "info"
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

// AlertRule is a user-defined alert definition. Conditions are AND-combined;
// a rule with zero conditions never matches. TriggeredCount is incremented
// only by the evaluation step.
type AlertRule struct {
	ID             string           `json:"id" db:"id"`
	Name           string           `json:"name" db:"name"`
	Description    string           `json:"description" db:"description"`
	Conditions     []AlertCondition `json:"conditions"`
	Severity       AlertSeverity    `json:"severity" db:"severity"`
	Enabled        bool             `json:"enabled" db:"enabled"`
	TriggeredCount int              `json:"triggered_count" db:"triggered_count"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at" db:"updated_at"`
}

// AlertRuleUpdate is a partial rule update. Nil fields keep previous values.
type AlertRuleUpdate struct {
	Name        *string           `json:"name,omitempty"`
	Description *string           `json:"description,omitempty"`
	Conditions  *[]AlertCondition `json:"conditions,omitempty"`
	Severity    *AlertSeverity    `json:"severity,omitempty"`
	Enabled     *bool             `json:"enabled,omitempty"`
}

// TriggeredAlert is created when every condition of a rule matches an
// incoming prediction. Immutable after creation except for Acknowledged.
type TriggeredAlert struct {
	ID           string           `json:"id" db:"id"`
	RuleID       string           `json:"rule_id" db:"rule_id"`
	RuleName     string           `json:"rule_name" db:"rule_name"`
	Severity     AlertSeverity    `json:"severity" db:"severity"`
	TriggeredAt  time.Time        `json:"triggered_at" db:"triggered_at"`
	Acknowledged bool             `json:"acknowledged" db:"acknowledged"`
	Snapshot     PredictionRecord `json:"snapshot"`
}

// AlertStatistics aggregates the rule store and alert history.
type AlertStatistics struct {
	TotalRules        int    `json:"total_rules"`
	EnabledRules      int    `json:"enabled_rules"`
	ActiveAlerts      int    `json:"active_alerts"`
	Alerts24h         int    `json:"alerts_24h"`
	Alerts7d          int    `json:"alerts_7d"`
	MostTriggeredRule string `json:"most_triggered_rule"`
}
