package services

import (
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/VL13N/FullStackNexus-sub005/internal/models"
	"github.com/VL13N/FullStackNexus-sub005/internal/utils"
)

// minCorrelationSamples is the smallest series length accepted when building
// a correlation matrix.
const minCorrelationSamples = 3

// pillarVariables are the variable names treated as pillar scores when
// grouping insights. Everything else is treated as an asset/market series.
var pillarVariables = map[string]bool{
	"technical":   true,
	"social":      true,
	"fundamental": true,
	"astrology":   true,
}

// CorrelationEngine computes pairwise Pearson correlations over aligned
// numeric series and derives human-readable insights from the matrix.
type CorrelationEngine struct {
	logger *logrus.Logger
}

// NewCorrelationEngine creates a new correlation engine instance.
func NewCorrelationEngine(logger *logrus.Logger) *CorrelationEngine {
	if logger == nil {
		logger = logrus.New()
	}
	return &CorrelationEngine{logger: logger}
}

// CalculatePearsonCorrelation returns the Pearson coefficient of two aligned
// series. Mismatched lengths, empty input and zero-variance series all
// resolve to 0 rather than an error. Non-finite entries are dropped pairwise
// before computing, so the result is always finite and within [-1, 1].
func (ce *CorrelationEngine) CalculatePearsonCorrelation(x, y []float64) float64 {
	if len(x) == 0 || len(x) != len(y) {
		return 0
	}
	fx, fy := filterFinitePairs(x, y)
	if len(fx) == 0 {
		return 0
	}
	return calculateCorrelation(fx, fy)
}

// ComputeCorrelationMatrix builds the full symmetric correlation matrix over
// a named series mapping. The variables slice fixes the row/column order and
// must list a key per series; this keeps input key order stable across calls.
func (ce *CorrelationEngine) ComputeCorrelationMatrix(variables []string, data map[string][]float64) (*models.CorrelationMatrix, error) {
	if len(variables) == 0 {
		return nil, utils.NewValidationError("Insufficient data: no series provided")
	}

	length := -1
	for _, name := range variables {
		series, ok := data[name]
		if !ok {
			return nil, utils.NewValidationErrorf("missing series for variable %q", name)
		}
		if len(series) < minCorrelationSamples {
			return nil, utils.NewValidationErrorf("Insufficient data: series %q has %d samples, need at least %d", name, len(series), minCorrelationSamples)
		}
		if length == -1 {
			length = len(series)
		} else if len(series) != length {
			return nil, utils.NewValidationErrorf("series length mismatch: %q has %d samples, expected %d", name, len(series), length)
		}
	}

	n := len(variables)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
		matrix[i][i] = 1.0
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			corr := ce.CalculatePearsonCorrelation(data[variables[i]], data[variables[j]])
			matrix[i][j] = corr
			matrix[j][i] = corr
		}
	}

	ce.logger.WithFields(logrus.Fields{
		"variables": n,
		"samples":   length,
	}).Debug("Computed correlation matrix")

	return &models.CorrelationMatrix{
		Matrix:    matrix,
		Variables: variables,
	}, nil
}

// GenerateInsights scans the upper triangle of a correlation matrix once and
// reports the strongest positive, strongest negative and weakest (closest to
// zero) pairs. Ties keep the first pair encountered in row-major order.
func (ce *CorrelationEngine) GenerateInsights(cm *models.CorrelationMatrix) *models.CorrelationInsights {
	insights := &models.CorrelationInsights{
		CrossAssetCorrelations: []models.CorrelationPair{},
		PillarRelationships:    []models.CorrelationPair{},
	}
	if cm == nil || len(cm.Variables) < 2 {
		return insights
	}

	n := len(cm.Variables)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pair := models.CorrelationPair{
				VariableA:   cm.Variables[i],
				VariableB:   cm.Variables[j],
				Correlation: cm.Matrix[i][j],
			}

			if insights.StrongestPositive == nil || pair.Correlation > insights.StrongestPositive.Correlation {
				p := pair
				insights.StrongestPositive = &p
			}
			if insights.StrongestNegative == nil || pair.Correlation < insights.StrongestNegative.Correlation {
				p := pair
				insights.StrongestNegative = &p
			}
			if insights.WeakestCorrelation == nil || math.Abs(pair.Correlation) < math.Abs(insights.WeakestCorrelation.Correlation) {
				p := pair
				insights.WeakestCorrelation = &p
			}

			if isPillarVariable(pair.VariableA) && isPillarVariable(pair.VariableB) {
				insights.PillarRelationships = append(insights.PillarRelationships, pair)
			} else if !isPillarVariable(pair.VariableA) && !isPillarVariable(pair.VariableB) {
				insights.CrossAssetCorrelations = append(insights.CrossAssetCorrelations, pair)
			}
		}
	}

	return insights
}

func isPillarVariable(name string) bool {
	return pillarVariables[strings.ToLower(name)]
}
