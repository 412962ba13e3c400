package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeRecommendation is the directional action produced by position sizing.
type TradeRecommendation string

const (
	RecommendationBuy  TradeRecommendation = "BUY"
	RecommendationSell TradeRecommendation = "SELL"
	RecommendationHold TradeRecommendation = "HOLD"
)

// RiskSettings holds the tunable limits for position sizing. Out-of-range
// updates are clamped into the documented bounds rather than rejected.
type RiskSettings struct {
	MaxRiskPerTrade    float64 `json:"max_risk_per_trade"`   // (0, 0.1]
	KellyFraction      float64 `json:"kelly_fraction"`       // [0, 1], acts as the max-Kelly cap
	FixedFraction      float64 `json:"fixed_fraction"`       // >= 0
	MinConfidence      float64 `json:"min_confidence"`       // [0, 1]
	MaxPositionSize    float64 `json:"max_position_size"`    // (0, 1]
	VolatilityLookback int     `json:"volatility_lookback"`  // samples
	EmergencyStopLoss  float64 `json:"emergency_stop_loss"`  // fraction of entry price
	AccountBalance     float64 `json:"account_balance"`      // USD
}

// RiskSettingsUpdate is a partial settings update. Nil fields keep their
// previous values.
type RiskSettingsUpdate struct {
	MaxRiskPerTrade    *float64 `json:"max_risk_per_trade,omitempty"`
	KellyFraction      *float64 `json:"kelly_fraction,omitempty"`
	FixedFraction      *float64 `json:"fixed_fraction,omitempty"`
	MinConfidence      *float64 `json:"min_confidence,omitempty"`
	MaxPositionSize    *float64 `json:"max_position_size,omitempty"`
	VolatilityLookback *int     `json:"volatility_lookback,omitempty"`
	EmergencyStopLoss  *float64 `json:"emergency_stop_loss,omitempty"`
	AccountBalance     *float64 `json:"account_balance,omitempty"`
}

// RiskMetrics describes the downside exposure of a sized position.
type RiskMetrics struct {
	RiskPercentage float64 `json:"risk_percentage"`
	StopLossPrice  float64 `json:"stop_loss_price"`
	Volatility     float64 `json:"volatility"`
	PotentialLoss  float64 `json:"potential_loss"`
}

// SizingBreakdown exposes the intermediate fractions behind a recommendation.
type SizingBreakdown struct {
	KellyFraction    float64 `json:"kelly_fraction"`
	FixedFraction    float64 `json:"fixed_fraction"`
	CombinedFraction float64 `json:"combined_fraction"`
}

// ModelMetrics carries the predictor-derived inputs used for sizing.
type ModelMetrics struct {
	Confidence     float64 `json:"confidence"`
	WinProbability float64 `json:"win_probability"`
	ExpectedReturn float64 `json:"expected_return"`
}

// PositionSizingResult is the full sizing response. When Success is false,
// PositionSize is zero and Reason names the violated constraint.
type PositionSizingResult struct {
	Success            bool                `json:"success"`
	Recommendation     TradeRecommendation `json:"recommendation"`
	PositionSize       float64             `json:"position_size"`
	PositionValue      float64             `json:"position_value"`
	PositionPercentage float64             `json:"position_percentage"`
	RiskMetrics        RiskMetrics         `json:"risk_metrics"`
	Sizing             SizingBreakdown     `json:"sizing"`
	ModelMetrics       ModelMetrics        `json:"model_metrics"`
	Reason             string              `json:"reason,omitempty"`
}

// KellyResult is the standalone Kelly criterion output.
type KellyResult struct {
	KellyFraction  float64 `json:"kelly_fraction"`
	ExpectedReturn float64 `json:"expected_return"`
	WinProbability float64 `json:"win_probability"`
}

// SizingScenario is one row of a stress-test table produced by the
// position-sizing simulator.
type SizingScenario struct {
	Confidence     float64             `json:"confidence"`
	Prediction     float64             `json:"prediction"`
	Recommendation TradeRecommendation `json:"recommendation"`
	PositionSize   float64             `json:"position_size"`
	PositionValue  float64             `json:"position_value"`
	RiskPercentage float64             `json:"risk_percentage"`
}

// SimulationSummary aggregates a scenario table.
type SimulationSummary struct {
	BuyCount            int     `json:"buy_count"`
	SellCount           int     `json:"sell_count"`
	HoldCount           int     `json:"hold_count"`
	AveragePositionSize float64 `json:"average_position_size"`
}

// SimulationResult is the full simulator response.
type SimulationResult struct {
	Scenarios []SizingScenario  `json:"scenarios"`
	Summary   SimulationSummary `json:"summary"`
}

// TradeOutcome is one realized trade result appended to the performance log.
type TradeOutcome struct {
	ID            string          `json:"id" db:"id"`
	Symbol        string          `json:"symbol" db:"symbol"`
	ReturnPercent decimal.Decimal `json:"return_percent" db:"return_percent"`
	Win           bool            `json:"win" db:"win"`
	ClosedAt      time.Time       `json:"closed_at" db:"closed_at"`
}

// PerformanceStats summarizes the performance log. All fields are zero when
// the log is empty.
type PerformanceStats struct {
	TotalTrades int     `json:"total_trades"`
	WinRate     float64 `json:"win_rate"` // percent, [0, 100]
	TotalReturn float64 `json:"total_return"`
	SharpeRatio float64 `json:"sharpe_ratio"`
}
