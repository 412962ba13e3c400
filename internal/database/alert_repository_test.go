package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VL13N/FullStackNexus-sub005/internal/models"
)

// mockAlertPool wraps pgxmock.PgxPoolIface to implement DatabasePool.
type mockAlertPool struct {
	mock pgxmock.PgxPoolIface
}

func newMockAlertPool(mock pgxmock.PgxPoolIface) DatabasePool {
	return &mockAlertPool{mock: mock}
}

func (m *mockAlertPool) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return m.mock.QueryRow(ctx, sql, args...)
}

func (m *mockAlertPool) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	result, err := m.mock.Exec(ctx, sql, args...)
	if err == nil {
		rows := result.RowsAffected()
		return pgconn.NewCommandTag(fmt.Sprintf("UPDATE %d", rows)), nil
	}
	return pgconn.CommandTag{}, err
}

func (m *mockAlertPool) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return m.mock.Query(ctx, sql, args...)
}

func testAlertRule() *models.AlertRule {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return &models.AlertRule{
		ID:          "rule-1",
		Name:        "high confidence",
		Description: "fires on confident predictions",
		Conditions: []models.AlertCondition{
			{Field: "confidence", Operator: models.OperatorGTE, Value: 0.8},
		},
		Severity:  models.SeverityWarning,
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestAlertRepository_SaveRule(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAlertRepository(newMockAlertPool(mock))
	rule := testAlertRule()

	mock.ExpectExec("INSERT INTO alert_rules").
		WithArgs(rule.ID, rule.Name, rule.Description, pgxmock.AnyArg(), string(rule.Severity),
			rule.Enabled, rule.TriggeredCount, rule.CreatedAt, rule.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.SaveRule(context.Background(), rule))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAlertRepository_SaveRule_DatabaseError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAlertRepository(newMockAlertPool(mock))
	rule := testAlertRule()

	mock.ExpectExec("INSERT INTO alert_rules").
		WithArgs(rule.ID, rule.Name, rule.Description, pgxmock.AnyArg(), string(rule.Severity),
			rule.Enabled, rule.TriggeredCount, rule.CreatedAt, rule.UpdatedAt).
		WillReturnError(fmt.Errorf("connection refused"))

	err = repo.SaveRule(context.Background(), rule)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save alert rule")
}

func TestAlertRepository_DeleteRule(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAlertRepository(newMockAlertPool(mock))

	mock.ExpectExec("DELETE FROM alert_rules").
		WithArgs("rule-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, repo.DeleteRule(context.Background(), "rule-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAlertRepository_ListRules(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAlertRepository(newMockAlertPool(mock))
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	conditions := []byte(`[{"field":"confidence","operator":">=","value":0.8}]`)

	rows := pgxmock.NewRows([]string{
		"id", "name", "description", "conditions", "severity", "enabled", "triggered_count", "created_at", "updated_at",
	}).AddRow("rule-1", "high confidence", "desc", conditions, "warning", true, 3, now, now)

	mock.ExpectQuery("SELECT (.+) FROM alert_rules").WillReturnRows(rows)

	rules, err := repo.ListRules(context.Background())
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "rule-1", rules[0].ID)
	assert.Equal(t, models.SeverityWarning, rules[0].Severity)
	assert.Equal(t, 3, rules[0].TriggeredCount)
	require.Len(t, rules[0].Conditions, 1)
	assert.Equal(t, "confidence", rules[0].Conditions[0].Field)
	assert.Equal(t, models.OperatorGTE, rules[0].Conditions[0].Operator)
}

func TestAlertRepository_SaveTriggeredAlert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAlertRepository(newMockAlertPool(mock))
	alert := &models.TriggeredAlert{
		ID:          "alert-1",
		RuleID:      "rule-1",
		RuleName:    "high confidence",
		Severity:    models.SeverityCritical,
		TriggeredAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Snapshot:    models.PredictionRecord{Confidence: 0.9, PredictedPrice: 105},
	}

	mock.ExpectExec("INSERT INTO triggered_alerts").
		WithArgs(alert.ID, alert.RuleID, alert.RuleName, string(alert.Severity),
			alert.TriggeredAt, alert.Acknowledged, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.SaveTriggeredAlert(context.Background(), alert))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAlertRepository_AcknowledgeAlert(t *testing.T) {
	t.Run("existing alert", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewAlertRepository(newMockAlertPool(mock))
		mock.ExpectExec("UPDATE triggered_alerts SET acknowledged").
			WithArgs("alert-1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, repo.AcknowledgeAlert(context.Background(), "alert-1"))
	})

	t.Run("missing alert", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewAlertRepository(newMockAlertPool(mock))
		mock.ExpectExec("UPDATE triggered_alerts SET acknowledged").
			WithArgs("missing").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err = repo.AcknowledgeAlert(context.Background(), "missing")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestAlertRepository_SaveTradeOutcome(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAlertRepository(newMockAlertPool(mock))
	outcome := &models.TradeOutcome{
		ID:            "trade-1",
		Symbol:        "SOL",
		ReturnPercent: decimal.NewFromFloat(4.2),
		Win:           true,
		ClosedAt:      time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}

	mock.ExpectExec("INSERT INTO trade_outcomes").
		WithArgs(outcome.ID, outcome.Symbol, outcome.ReturnPercent, outcome.Win, outcome.ClosedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.SaveTradeOutcome(context.Background(), outcome))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAlertRepository_RecentAlertCount(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAlertRepository(newMockAlertPool(mock))
	since := time.Now().Add(-24 * time.Hour)

	mock.ExpectQuery("SELECT COUNT(.+) FROM triggered_alerts").
		WithArgs(since).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.RecentAlertCount(context.Background(), since)
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}
