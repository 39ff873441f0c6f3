package features

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"PriceCast/internal/domain/models"
)

func closes(obs []models.PriceObservation) []float64 {
	out := make([]float64, len(obs))
	for i, o := range obs {
		out[i] = o.Close
	}
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	return stat.Mean(xs, nil)
}

// sampleStd is the unbiased (n-1) standard deviation; NaN for fewer than two values.
func sampleStd(xs []float64) float64 {
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.StdDev(xs, nil)
}

func pctChange(cur, prev float64) float64 {
	return (cur - prev) / prev
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
