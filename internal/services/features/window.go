package features

import (
	"PriceCast/internal/domain/models"
)

// InferenceRow synthesizes a feature row from a newest-first window of observations.
// The window must hold at least predictionDays rows; lag_i is window[i-1]. Rolling
// statistics use whatever leading rows are available, so ma_20 falls back to the
// full-window mean and volatility_5 and daily_return fall back to 0.
// One-hot keys are emitted only for the given ticker and the newest sector; the
// schema's conform step zero-fills the rest.
func InferenceRow(window []models.PriceObservation, predictionDays int) map[string]float64 {
	vals := make(map[string]float64, len(LagFields)*predictionDays+7)
	if len(window) == 0 {
		return vals
	}
	for i := 1; i <= predictionDays && i <= len(window); i++ {
		for _, f := range LagFields {
			vals[LagColumn(f, i)] = fieldValue(f, window[i-1])
		}
	}

	c := closes(window)
	vals[ColMA5] = mean(leading(c, shortWindow))
	vals[ColMA10] = mean(leading(c, mediumWindow))
	vals[ColMA20] = mean(leading(c, longWindow))

	if vol := sampleStd(leading(c, shortWindow)); finite(vol) {
		vals[ColVolatility5] = vol
	} else {
		vals[ColVolatility5] = 0
	}
	if len(c) >= 2 {
		vals[ColDailyReturn] = pctChange(c[0], c[1])
	} else {
		vals[ColDailyReturn] = 0
	}

	vals[TickerColumn(window[0].Ticker)] = 1
	vals[SectorColumn(window[0].Sector)] = 1
	return vals
}

func leading(xs []float64, n int) []float64 {
	return xs[:min(n, len(xs))]
}
