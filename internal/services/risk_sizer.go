package services

import (
	"math"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/VL13N/FullStackNexus-sub005/internal/models"
)

const (
	// minViableBalance is the smallest account balance that can open a
	// meaningfully sized position.
	minViableBalance = 10.0

	// defaultVolatility is the fallback used when the price history is too
	// short to estimate volatility.
	defaultVolatility = 0.2

	// annualizationFactor scales hourly return stddev to a yearly figure.
	annualizationFactor = 365 * 24

	// expectedReturnScale maps a [-1, 1] prediction onto an expected
	// fractional return for the Kelly payoff ratio.
	expectedReturnScale = 0.1
)

// DefaultRiskSettings returns the baseline sizing limits restored at
// construction time.
func DefaultRiskSettings() models.RiskSettings {
	return models.RiskSettings{
		MaxRiskPerTrade:    0.02,
		KellyFraction:      0.25,
		FixedFraction:      0.05,
		MinConfidence:      0.6,
		MaxPositionSize:    0.1,
		VolatilityLookback: 24,
		EmergencyStopLoss:  0.05,
		AccountBalance:     10000,
	}
}

// RiskSizer computes recommended position sizes from directional predictions,
// blending a Kelly-criterion estimate with fixed-fractional sizing under hard
// risk caps. Settings updates are atomic with respect to concurrent sizing
// calls, and the trade performance log is append-only.
type RiskSizer struct {
	mu       sync.RWMutex
	settings models.RiskSettings
	outcomes []models.TradeOutcome
	logger   *logrus.Logger
}

// NewRiskSizer creates a risk sizer with default settings.
func NewRiskSizer(logger *logrus.Logger) *RiskSizer {
	if logger == nil {
		logger = logrus.New()
	}
	return &RiskSizer{
		settings: DefaultRiskSettings(),
		logger:   logger,
	}
}

// NewRiskSizerWithSettings creates a risk sizer seeded from configuration.
// The seed passes through the same clamping as a runtime settings update.
func NewRiskSizerWithSettings(seed models.RiskSettings, logger *logrus.Logger) *RiskSizer {
	rs := NewRiskSizer(logger)
	rs.UpdateSettings(models.RiskSettingsUpdate{
		MaxRiskPerTrade:    &seed.MaxRiskPerTrade,
		KellyFraction:      &seed.KellyFraction,
		FixedFraction:      &seed.FixedFraction,
		MinConfidence:      &seed.MinConfidence,
		MaxPositionSize:    &seed.MaxPositionSize,
		VolatilityLookback: &seed.VolatilityLookback,
		EmergencyStopLoss:  &seed.EmergencyStopLoss,
		AccountBalance:     &seed.AccountBalance,
	})
	return rs
}

// Settings returns a copy of the current risk settings.
func (rs *RiskSizer) Settings() models.RiskSettings {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.settings
}

// UpdateSettings merges the provided fields into the current settings.
// Every field is clamped into its valid range; out-of-range values are
// silently corrected, never rejected. Unset fields keep previous values.
func (rs *RiskSizer) UpdateSettings(update models.RiskSettingsUpdate) models.RiskSettings {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	s := &rs.settings
	if update.MaxRiskPerTrade != nil {
		s.MaxRiskPerTrade = clamp(*update.MaxRiskPerTrade, 0.001, 0.1)
	}
	if update.KellyFraction != nil {
		s.KellyFraction = clamp(*update.KellyFraction, 0, 1)
	}
	if update.FixedFraction != nil {
		s.FixedFraction = clamp(*update.FixedFraction, 0, 1)
	}
	if update.MinConfidence != nil {
		s.MinConfidence = clamp(*update.MinConfidence, 0, 1)
	}
	if update.MaxPositionSize != nil {
		s.MaxPositionSize = clamp(*update.MaxPositionSize, 0.01, 1)
	}
	if update.VolatilityLookback != nil {
		s.VolatilityLookback = clampInt(*update.VolatilityLookback, 2, 720)
	}
	if update.EmergencyStopLoss != nil {
		s.EmergencyStopLoss = clamp(*update.EmergencyStopLoss, 0.005, 0.5)
	}
	if update.AccountBalance != nil {
		s.AccountBalance = math.Max(*update.AccountBalance, 0)
	}

	rs.logger.WithFields(logrus.Fields{
		"max_risk_per_trade": s.MaxRiskPerTrade,
		"kelly_fraction":     s.KellyFraction,
		"min_confidence":     s.MinConfidence,
		"max_position_size":  s.MaxPositionSize,
	}).Info("Risk settings updated")

	return rs.settings
}

// CalculateVolatility estimates annualized volatility as the sample standard
// deviation of simple returns over the price history. Histories shorter than
// two points fall back to a fixed default.
func (rs *RiskSizer) CalculateVolatility(priceHistory []float64) float64 {
	returns := simpleReturns(priceHistory)
	if len(returns) < 1 {
		return defaultVolatility
	}
	stddev := calculateStdDev(returns)
	if stddev == 0 && len(returns) < 2 {
		return defaultVolatility
	}
	return stddev * math.Sqrt(annualizationFactor)
}

// CalculateKellyCriterion computes the classic Kelly fraction
// f* = (b*p - q) / b with the payoff ratio b derived from the expected
// return over volatility. The fraction is zero whenever the edge is
// non-positive, and never exceeds the configured max-Kelly cap.
func (rs *RiskSizer) CalculateKellyCriterion(winProbability, expectedReturn, volatility float64) models.KellyResult {
	return kellyCriterion(rs.Settings(), winProbability, expectedReturn, volatility)
}

// kellyCriterion sizes against an already-snapshotted settings value so a
// sizing call never mixes two settings states.
func kellyCriterion(settings models.RiskSettings, winProbability, expectedReturn, volatility float64) models.KellyResult {
	result := models.KellyResult{
		ExpectedReturn: expectedReturn,
		WinProbability: winProbability,
	}

	if !isFinite(winProbability) || !isFinite(expectedReturn) || !isFinite(volatility) {
		return result
	}
	if expectedReturn <= 0 || winProbability <= 0.5 || winProbability >= 1 {
		return result
	}

	if volatility <= 0 {
		volatility = defaultVolatility
	}

	b := expectedReturn / volatility
	if b <= 0 {
		return result
	}

	p := winProbability
	q := 1 - p
	kelly := (b*p - q) / b

	result.KellyFraction = clamp(kelly, 0, settings.KellyFraction)
	return result
}

// CalculatePositionSize sizes a position for a directional prediction.
//
// Confidence below the configured floor and balances too small to trade are
// rejected with a reason naming the constraint. Upper bounds behave
// differently: the position fraction is clamped to MaxPositionSize and then
// scaled down so the risked percentage never exceeds MaxRiskPerTrade.
func (rs *RiskSizer) CalculatePositionSize(prediction, confidence, currentPrice, accountBalance float64, priceHistory []float64) models.PositionSizingResult {
	settings := rs.Settings()

	result := models.PositionSizingResult{
		Recommendation: models.RecommendationHold,
		ModelMetrics: models.ModelMetrics{
			Confidence:     confidence,
			WinProbability: confidence,
		},
	}

	if !isFinite(prediction) || !isFinite(confidence) || !isFinite(currentPrice) || !isFinite(accountBalance) {
		result.Reason = "computation error: non-finite input"
		return result
	}
	if currentPrice <= 0 {
		result.Reason = "computation error: price must be positive"
		return result
	}
	if confidence < settings.MinConfidence {
		result.Reason = "insufficient confidence: below minimum threshold"
		return result
	}
	if accountBalance < minViableBalance {
		result.Reason = "insufficient balance: too small to open a position"
		return result
	}

	volatility := rs.CalculateVolatility(priceHistory)
	result.RiskMetrics.Volatility = volatility

	switch {
	case prediction > 0:
		result.Recommendation = models.RecommendationBuy
	case prediction < 0:
		result.Recommendation = models.RecommendationSell
	default:
		// No directional edge: hold with zero size.
		result.Success = true
		return result
	}

	expectedReturn := math.Abs(prediction) * expectedReturnScale
	result.ModelMetrics.ExpectedReturn = expectedReturn

	kelly := kellyCriterion(settings, confidence, expectedReturn, volatility)
	fixed := settings.FixedFraction * confidence

	combined := (kelly.KellyFraction + fixed) / 2
	combined /= 1 + volatility
	combined = math.Min(combined, settings.MaxPositionSize)

	positionValue := combined * accountBalance
	positionSize := positionValue / currentPrice

	// Risk cap binds rather than rejects: scale the position down so the
	// risked percentage lands exactly on the limit.
	riskPercentage := combined * settings.EmergencyStopLoss * 100
	maxRiskPct := settings.MaxRiskPerTrade * 100
	if riskPercentage > maxRiskPct {
		scale := maxRiskPct / riskPercentage
		combined *= scale
		positionValue *= scale
		positionSize *= scale
		riskPercentage = maxRiskPct
	}

	stopLossPrice := currentPrice * (1 - settings.EmergencyStopLoss)
	if result.Recommendation == models.RecommendationSell {
		stopLossPrice = currentPrice * (1 + settings.EmergencyStopLoss)
	}

	result.Success = true
	result.PositionSize = positionSize
	result.PositionValue = positionValue
	result.PositionPercentage = combined * 100
	result.Sizing = models.SizingBreakdown{
		KellyFraction:    kelly.KellyFraction,
		FixedFraction:    fixed,
		CombinedFraction: combined,
	}
	result.RiskMetrics.RiskPercentage = riskPercentage
	result.RiskMetrics.StopLossPrice = stopLossPrice
	result.RiskMetrics.PotentialLoss = positionValue * settings.EmergencyStopLoss

	rs.logger.WithFields(logrus.Fields{
		"recommendation": result.Recommendation,
		"position_value": positionValue,
		"combined":       combined,
		"volatility":     volatility,
	}).Debug("Calculated position size")

	return result
}

// RecordTradeOutcome appends a realized trade result to the performance log.
func (rs *RiskSizer) RecordTradeOutcome(outcome models.TradeOutcome) {
	if outcome.ClosedAt.IsZero() {
		outcome.ClosedAt = time.Now().UTC()
	}
	rs.mu.Lock()
	rs.outcomes = append(rs.outcomes, outcome)
	rs.mu.Unlock()
}

// PerformanceStats aggregates the performance log. All fields are zero when
// no trades have been recorded.
func (rs *RiskSizer) PerformanceStats() models.PerformanceStats {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	stats := models.PerformanceStats{TotalTrades: len(rs.outcomes)}
	if stats.TotalTrades == 0 {
		return stats
	}

	wins := 0
	returns := make([]float64, 0, len(rs.outcomes))
	total := decimal.Zero
	for _, o := range rs.outcomes {
		if o.Win {
			wins++
		}
		total = total.Add(o.ReturnPercent)
		returns = append(returns, o.ReturnPercent.InexactFloat64())
	}

	stats.WinRate = float64(wins) / float64(stats.TotalTrades) * 100
	stats.TotalReturn = total.InexactFloat64()

	stddev := calculateStdDev(returns)
	if stddev > 0 {
		stats.SharpeRatio = calculateMeanFloat64(returns) / stddev
	}
	return stats
}

// SimulatePositionSizing runs a grid of synthetic scenarios spanning
// confidence in [0.3, 1] and prediction in [-1, 1], each sized against a
// deterministic synthetic price history. The result includes a summary of
// recommendation counts and average position size.
func (rs *RiskSizer) SimulatePositionSizing() models.SimulationResult {
	settings := rs.Settings()

	confidences := []float64{0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0}
	predictions := []float64{-1, -0.75, -0.5, -0.25, 0, 0.25, 0.5, 0.75, 1}

	history := syntheticPriceHistory(100.0, settings.VolatilityLookback)

	result := models.SimulationResult{
		Scenarios: make([]models.SizingScenario, 0, len(confidences)*len(predictions)),
	}

	var totalSize float64
	for _, conf := range confidences {
		for _, pred := range predictions {
			sized := rs.CalculatePositionSize(pred, conf, 100.0, settings.AccountBalance, history)
			scenario := models.SizingScenario{
				Confidence:     conf,
				Prediction:     pred,
				Recommendation: sized.Recommendation,
				PositionSize:   sized.PositionSize,
				PositionValue:  sized.PositionValue,
				RiskPercentage: sized.RiskMetrics.RiskPercentage,
			}
			if !sized.Success {
				scenario.Recommendation = models.RecommendationHold
			}
			result.Scenarios = append(result.Scenarios, scenario)

			switch scenario.Recommendation {
			case models.RecommendationBuy:
				result.Summary.BuyCount++
			case models.RecommendationSell:
				result.Summary.SellCount++
			default:
				result.Summary.HoldCount++
			}
			totalSize += scenario.PositionSize
		}
	}

	if len(result.Scenarios) > 0 {
		result.Summary.AveragePositionSize = totalSize / float64(len(result.Scenarios))
	}
	return result
}

// syntheticPriceHistory builds a deterministic oscillating price walk used by
// the simulator so runs are reproducible.
func syntheticPriceHistory(base float64, points int) []float64 {
	if points < 8 {
		points = 8
	}
	history := make([]float64, points)
	price := base
	for i := range history {
		drift := math.Sin(float64(i)*0.7) * 0.01
		price *= 1 + drift
		history[i] = price
	}
	return history
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
