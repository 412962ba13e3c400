package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/VL13N/FullStackNexus-sub005/internal/models"
)

// DatabasePool defines the interface for database pool operations.
// This interface allows for both real pool and mock pool implementations.
type DatabasePool interface {
	// QueryRow executes a query that is expected to return at most one row.
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	// Exec executes a query without returning any rows.
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	// Query executes a query that returns rows.
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// AlertRepository persists alert rules, triggered alerts and trade outcomes.
// It performs no retries; callers decide how to react to failures.
type AlertRepository struct {
	pool DatabasePool
}

// NewAlertRepository creates a new alert repository.
func NewAlertRepository(pool DatabasePool) *AlertRepository {
	return &AlertRepository{pool: pool}
}

// SaveRule upserts an alert rule. Conditions are stored as a JSON document.
func (r *AlertRepository) SaveRule(ctx context.Context, rule *models.AlertRule) error {
	conditions, err := json.Marshal(rule.Conditions)
	if err != nil {
		return fmt.Errorf("failed to encode rule conditions: %w", err)
	}

	query := `
		INSERT INTO alert_rules (id, name, description, conditions, severity, enabled, triggered_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id)
		DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			conditions = EXCLUDED.conditions,
			severity = EXCLUDED.severity,
			enabled = EXCLUDED.enabled,
			triggered_count = EXCLUDED.triggered_count,
			updated_at = EXCLUDED.updated_at`

	_, err = r.pool.Exec(ctx, query,
		rule.ID, rule.Name, rule.Description, conditions, string(rule.Severity),
		rule.Enabled, rule.TriggeredCount, rule.CreatedAt, rule.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save alert rule: %w", err)
	}
	return nil
}

// DeleteRule removes a rule by id.
func (r *AlertRepository) DeleteRule(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM alert_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete alert rule: %w", err)
	}
	return nil
}

// ListRules returns all stored rules ordered by creation time.
func (r *AlertRepository) ListRules(ctx context.Context) ([]models.AlertRule, error) {
	query := `
		SELECT id, name, description, conditions, severity, enabled, triggered_count, created_at, updated_at
		FROM alert_rules
		ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query alert rules: %w", err)
	}
	defer rows.Close()

	var rules []models.AlertRule
	for rows.Next() {
		var rule models.AlertRule
		var conditions []byte
		var severity string
		if err := rows.Scan(&rule.ID, &rule.Name, &rule.Description, &conditions,
			&severity, &rule.Enabled, &rule.TriggeredCount, &rule.CreatedAt, &rule.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan alert rule: %w", err)
		}
		if err := json.Unmarshal(conditions, &rule.Conditions); err != nil {
			return nil, fmt.Errorf("failed to decode rule conditions: %w", err)
		}
		rule.Severity = models.AlertSeverity(severity)
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// SaveTriggeredAlert inserts a triggered alert with its prediction snapshot.
func (r *AlertRepository) SaveTriggeredAlert(ctx context.Context, alert *models.TriggeredAlert) error {
	snapshot, err := json.Marshal(alert.Snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode alert snapshot: %w", err)
	}

	query := `
		INSERT INTO triggered_alerts (id, rule_id, rule_name, severity, triggered_at, acknowledged, snapshot)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = r.pool.Exec(ctx, query,
		alert.ID, alert.RuleID, alert.RuleName, string(alert.Severity),
		alert.TriggeredAt, alert.Acknowledged, snapshot)
	if err != nil {
		return fmt.Errorf("failed to save triggered alert: %w", err)
	}
	return nil
}

// AcknowledgeAlert marks a triggered alert as acknowledged.
func (r *AlertRepository) AcknowledgeAlert(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE triggered_alerts SET acknowledged = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to acknowledge alert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("alert %s not found", id)
	}
	return nil
}

// SaveTradeOutcome appends a realized trade result to the performance log.
func (r *AlertRepository) SaveTradeOutcome(ctx context.Context, outcome *models.TradeOutcome) error {
	query := `
		INSERT INTO trade_outcomes (id, symbol, return_percent, win, closed_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query,
		outcome.ID, outcome.Symbol, outcome.ReturnPercent, outcome.Win, outcome.ClosedAt)
	if err != nil {
		return fmt.Errorf("failed to save trade outcome: %w", err)
	}
	return nil
}

// RecentAlertCount returns the number of alerts triggered since the cutoff.
func (r *AlertRepository) RecentAlertCount(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM triggered_alerts WHERE triggered_at >= $1`, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count recent alerts: %w", err)
	}
	return count, nil
}
