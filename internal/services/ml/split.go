package ml

import (
	"errors"
	"math"
	"math/rand"
)

var ErrInvalidFraction = errors.New("ml: test fraction must be in (0,1)")

// TrainTestSplit partitions row indices 0..n-1 with a seeded permutation.
// The test partition holds ceil(frac*n) rows.
func TrainTestSplit(n int, frac float64, seed int64) (train, test []int, err error) {
	if !(frac > 0 && frac < 1) {
		return nil, nil, ErrInvalidFraction
	}
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	nTest := min(int(math.Ceil(frac*float64(n))), n)
	return perm[nTest:], perm[:nTest], nil
}

// Take selects rows of x and y by index.
func Take(x [][]float64, y []float64, idx []int) ([][]float64, []float64) {
	xs := make([][]float64, len(idx))
	ys := make([]float64, len(idx))
	for i, r := range idx {
		xs[i] = x[r]
		ys[i] = y[r]
	}
	return xs, ys
}
