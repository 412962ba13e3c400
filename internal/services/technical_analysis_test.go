package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VL13N/FullStackNexus-sub005/internal/utils"
)

func testPriceSeries(n int) []float64 {
	prices := make([]float64, n)
	price := 100.0
	for i := range prices {
		price *= 1 + math.Sin(float64(i)*0.5)*0.02
		prices[i] = price
	}
	return prices
}

func TestBuildIndicatorSeries(t *testing.T) {
	builder := NewTechnicalSeriesBuilder(nil)

	t.Run("too few prices", func(t *testing.T) {
		_, _, err := builder.BuildIndicatorSeries(testPriceSeries(20))
		require.Error(t, err)
		assert.True(t, utils.IsValidationError(err))
		assert.Contains(t, err.Error(), "Insufficient data")
	})

	t.Run("aligned series over a full history", func(t *testing.T) {
		variables, series, err := builder.BuildIndicatorSeries(testPriceSeries(120))
		require.NoError(t, err)
		assert.Equal(t, []string{"price", "sma", "ema", "rsi", "macd"}, variables)

		length := len(series["price"])
		require.GreaterOrEqual(t, length, minCorrelationSamples)
		for _, name := range variables {
			require.Contains(t, series, name)
			assert.Len(t, series[name], length, "series %q not aligned", name)
			for _, v := range series[name] {
				assert.False(t, math.IsNaN(v), "series %q contains NaN", name)
			}
		}
	})

	t.Run("feeds the correlation engine", func(t *testing.T) {
		variables, series, err := builder.BuildIndicatorSeries(testPriceSeries(120))
		require.NoError(t, err)

		engine := NewCorrelationEngine(nil)
		cm, err := engine.ComputeCorrelationMatrix(variables, series)
		require.NoError(t, err)
		require.Len(t, cm.Matrix, len(variables))

		// SMA and EMA are both smoothed price: they should track the price
		// series positively.
		priceIdx, emaIdx := 0, 2
		assert.Positive(t, cm.Matrix[priceIdx][emaIdx])
	})
}
