package models

// CorrelationMatrix pairs a symmetric N x N Pearson matrix with the ordered
// variable names labeling its rows and columns.
type CorrelationMatrix struct {
	Matrix    [][]float64 `json:"matrix"`
	Variables []string    `json:"variables"`
}

// CorrelationPair names one off-diagonal cell of a correlation matrix.
type CorrelationPair struct {
	VariableA   string  `json:"variable_a"`
	VariableB   string  `json:"variable_b"`
	Correlation float64 `json:"correlation"`
}

// CorrelationInsights summarizes the notable relationships in a matrix.
type CorrelationInsights struct {
	StrongestPositive      *CorrelationPair  `json:"strongest_positive"`
	StrongestNegative      *CorrelationPair  `json:"strongest_negative"`
	WeakestCorrelation     *CorrelationPair  `json:"weakest_correlation"`
	CrossAssetCorrelations []CorrelationPair `json:"cross_asset_correlations"`
	PillarRelationships    []CorrelationPair `json:"pillar_relationships"`
}
