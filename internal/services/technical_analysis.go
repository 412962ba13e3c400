package services

import (
	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/momentum"
	"github.com/cinar/indicator/v2/trend"
	"github.com/sirupsen/logrus"

	"github.com/VL13N/FullStackNexus-sub005/internal/utils"
)

// Default indicator periods used when building the correlation input series.
const (
	defaultSMAPeriod        = 14
	defaultEMAPeriod        = 14
	defaultRSIPeriod        = 14
	defaultMACDFastPeriod   = 12
	defaultMACDSlowPeriod   = 26
	defaultMACDSignalPeriod = 9
)

// TechnicalSeriesBuilder derives indicator series (SMA, EMA, RSI, MACD) from
// a raw price history and aligns them with the price series so the result
// can feed directly into the correlation engine.
type TechnicalSeriesBuilder struct {
	logger *logrus.Logger
}

// NewTechnicalSeriesBuilder creates a series builder instance.
func NewTechnicalSeriesBuilder(logger *logrus.Logger) *TechnicalSeriesBuilder {
	if logger == nil {
		logger = logrus.New()
	}
	return &TechnicalSeriesBuilder{logger: logger}
}

// BuildIndicatorSeries computes indicator series over the price history and
// truncates everything to the shortest common tail, keeping the series
// aligned sample-for-sample. The returned variable order is stable:
// price first, then indicators.
func (tsb *TechnicalSeriesBuilder) BuildIndicatorSeries(prices []float64) ([]string, map[string][]float64, error) {
	needed := defaultMACDSlowPeriod + defaultMACDSignalPeriod
	if len(prices) < needed {
		return nil, nil, utils.NewValidationErrorf("Insufficient data: need at least %d prices, got %d", needed, len(prices))
	}

	sma := helper.ChanToSlice(trend.NewSmaWithPeriod[float64](defaultSMAPeriod).Compute(helper.SliceToChan(prices)))
	ema := helper.ChanToSlice(trend.NewEmaWithPeriod[float64](defaultEMAPeriod).Compute(helper.SliceToChan(prices)))
	rsi := helper.ChanToSlice(momentum.NewRsiWithPeriod[float64](defaultRSIPeriod).Compute(helper.SliceToChan(prices)))

	macdLine, macdSignal := trend.NewMacdWithPeriod[float64](defaultMACDFastPeriod, defaultMACDSlowPeriod, defaultMACDSignalPeriod).Compute(helper.SliceToChan(prices))
	macd := helper.ChanToSlice(macdLine)
	_ = helper.ChanToSlice(macdSignal)

	series := map[string][]float64{
		"price": prices,
		"sma":   sma,
		"ema":   ema,
		"rsi":   rsi,
		"macd":  macd,
	}

	// Indicators warm up over different window lengths; trim every series to
	// the shortest common tail so the correlation input stays rectangular.
	minLen := len(prices)
	for _, s := range series {
		if len(s) < minLen {
			minLen = len(s)
		}
	}
	if minLen < minCorrelationSamples {
		return nil, nil, utils.NewValidationErrorf("Insufficient data: aligned series have only %d samples", minLen)
	}
	for name, s := range series {
		series[name] = s[len(s)-minLen:]
	}

	variables := []string{"price", "sma", "ema", "rsi", "macd"}

	tsb.logger.WithFields(logrus.Fields{
		"input_prices": len(prices),
		"aligned_len":  minLen,
	}).Debug("Built indicator series")

	return variables, series, nil
}
