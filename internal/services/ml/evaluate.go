package ml

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

type Scores struct {
	MAE  float64
	MSE  float64
	RMSE float64
	R2   float64
}

// Evaluate scores predictions against actual values. R2 is 1 for a perfect fit of a
// constant target and 0 for any imperfect fit of one.
func Evaluate(actual, predicted []float64) Scores {
	n := len(actual)
	if n == 0 || n != len(predicted) {
		return Scores{MAE: math.NaN(), MSE: math.NaN(), RMSE: math.NaN(), R2: math.NaN()}
	}
	var absSum, ssRes float64
	for i := range actual {
		d := actual[i] - predicted[i]
		absSum += math.Abs(d)
		ssRes += d * d
	}
	m := stat.Mean(actual, nil)
	var ssTot float64
	for _, v := range actual {
		ssTot += (v - m) * (v - m)
	}

	s := Scores{
		MAE: absSum / float64(n),
		MSE: ssRes / float64(n),
	}
	s.RMSE = math.Sqrt(s.MSE)
	switch {
	case ssTot > 0:
		s.R2 = 1 - ssRes/ssTot
	case ssRes == 0:
		s.R2 = 1
	}
	return s
}
