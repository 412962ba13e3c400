package models

import (
	"math"
	"time"
)

// PredictionDirection is the directional call attached to a prediction.
type PredictionDirection string

const (
	DirectionBullish PredictionDirection = "bullish"
	DirectionBearish PredictionDirection = "bearish"
	DirectionNeutral PredictionDirection = "neutral"
)

// PillarScores holds the four sub-scores composing a prediction's rationale.
// Scores are on a 0-100 scale.
type PillarScores struct {
	Technical   float64 `json:"technical" db:"technical_score"`
	Social      float64 `json:"social" db:"social_score"`
	Fundamental float64 `json:"fundamental" db:"fundamental_score"`
	Astrology   float64 `json:"astrology" db:"astrology_score"`
}

// PredictionRecord is an incoming prediction event from the model sidecar.
// The alert and risk engines treat it as read-only input.
type PredictionRecord struct {
	PredictedChangePercent float64             `json:"predicted_change_percent" db:"predicted_change_percent"`
	Confidence             float64             `json:"confidence" db:"confidence"`
	PredictedPrice         float64             `json:"predicted_price" db:"predicted_price"`
	Direction              PredictionDirection `json:"direction" db:"direction"`
	PillarScores           PillarScores        `json:"pillar_scores"`
	Volatility             float64             `json:"volatility" db:"volatility"`
	Timestamp              time.Time           `json:"timestamp" db:"timestamp"`
}

// IsFinite reports whether all numeric fields carry finite values.
func (p *PredictionRecord) IsFinite() bool {
	for _, v := range []float64{
		p.PredictedChangePercent,
		p.Confidence,
		p.PredictedPrice,
		p.PillarScores.Technical,
		p.PillarScores.Social,
		p.PillarScores.Fundamental,
		p.PillarScores.Astrology,
		p.Volatility,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
