package ml

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linearData(n int, seed int64) ([][]float64, []float64) {
	rng := rand.New(rand.NewSource(seed))
	x := make([][]float64, n)
	y := make([]float64, n)
	for i := range x {
		a, b := rng.Float64()*10, rng.Float64()*10
		x[i] = []float64{a, b, 3}
		y[i] = 2*a + 0.5*b
	}
	return x, y
}

func TestScaler(t *testing.T) {
	x := [][]float64{{1, 5}, {3, 5}, {5, 5}}
	s, err := FitScaler(x)
	require.NoError(t, err)

	assert.Equal(t, []float64{3, 5}, s.Mean())
	assert.InDelta(t, math.Sqrt(8.0/3.0), s.Scale()[0], 1e-12)
	assert.Equal(t, 1.0, s.Scale()[1])

	out := s.Transform([]float64{3, 7})
	assert.InDelta(t, 0, out[0], 1e-12)
	assert.InDelta(t, 2, out[1], 1e-12)

	all := s.TransformAll(x)
	assert.InDelta(t, 0, all[0][1], 1e-12)
}

func TestScalerErrors(t *testing.T) {
	_, err := FitScaler(nil)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = FitScaler([][]float64{{1, 2}, {1}})
	assert.Error(t, err)
}

func TestTreeFitsStep(t *testing.T) {
	x := [][]float64{{1}, {2}, {3}, {10}, {11}, {12}}
	y := []float64{0, 0, 0, 5, 5, 5}
	idx := []int{0, 1, 2, 3, 4, 5}

	tree := FitTree(x, y, idx, TreeParams{}, rand.New(rand.NewSource(1)))
	assert.Equal(t, 0.0, tree.Predict([]float64{2.5}))
	assert.Equal(t, 5.0, tree.Predict([]float64{100}))
	assert.Equal(t, 1, tree.Depth())
	assert.Equal(t, 2, tree.Leaves())
}

func TestTreeParamsLimitGrowth(t *testing.T) {
	x, y := linearData(200, 3)
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}

	shallow := FitTree(x, y, idx, TreeParams{MaxDepth: 2}, rand.New(rand.NewSource(1)))
	assert.LessOrEqual(t, shallow.Depth(), 2)

	wide := FitTree(x, y, idx, TreeParams{MinSamplesLeaf: 50}, rand.New(rand.NewSource(1)))
	assert.LessOrEqual(t, wide.Leaves(), 4)
}

func TestTreeConstantTargetIsSingleLeaf(t *testing.T) {
	x := [][]float64{{1}, {2}, {3}}
	y := []float64{7, 7, 7}
	tree := FitTree(x, y, []int{0, 1, 2}, TreeParams{}, rand.New(rand.NewSource(1)))
	assert.Equal(t, 1, tree.Leaves())
	assert.Equal(t, 7.0, tree.Predict([]float64{50}))
}

func TestForestDeterministic(t *testing.T) {
	x, y := linearData(150, 7)
	p := ForestParams{NTrees: 12, Seed: 42, Workers: 1, Tree: TreeParams{MaxFeatures: 2}}

	a, err := FitForest(context.Background(), x, y, p)
	require.NoError(t, err)
	p.Workers = 4
	b, err := FitForest(context.Background(), x, y, p)
	require.NoError(t, err)

	assert.Equal(t, 12, a.NumTrees())
	assert.Equal(t, a.PredictAll(x), b.PredictAll(x))

	p.Seed = 43
	c, err := FitForest(context.Background(), x, y, p)
	require.NoError(t, err)
	assert.NotEqual(t, a.PredictAll(x), c.PredictAll(x))
}

func TestForestLearnsSignal(t *testing.T) {
	x, y := linearData(300, 11)
	f, err := FitForest(context.Background(), x, y, ForestParams{NTrees: 20, Seed: 1, Workers: 2})
	require.NoError(t, err)

	xt, yt := linearData(100, 12)
	s := Evaluate(yt, f.PredictAll(xt))
	assert.Greater(t, s.R2, 0.9)
}

func TestForestErrors(t *testing.T) {
	_, err := FitForest(context.Background(), nil, nil, ForestParams{})
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = FitForest(context.Background(), [][]float64{{1}}, []float64{1, 2}, ForestParams{})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	x, y := linearData(10, 1)
	_, err = FitForest(ctx, x, y, ForestParams{NTrees: 3})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTrainTestSplit(t *testing.T) {
	train, test, err := TrainTestSplit(10, 0.2, 42)
	require.NoError(t, err)
	assert.Len(t, test, 2)
	assert.Len(t, train, 8)

	seen := map[int]bool{}
	for _, i := range append(append([]int{}, train...), test...) {
		assert.False(t, seen[i])
		seen[i] = true
	}
	assert.Len(t, seen, 10)

	train2, test2, _ := TrainTestSplit(10, 0.2, 42)
	assert.Equal(t, train, train2)
	assert.Equal(t, test, test2)

	_, test, _ = TrainTestSplit(9, 0.25, 1)
	assert.Len(t, test, 3)

	for _, frac := range []float64{0, 1, -0.1, math.NaN()} {
		_, _, err := TrainTestSplit(10, frac, 1)
		assert.ErrorIs(t, err, ErrInvalidFraction)
	}
}

func TestTake(t *testing.T) {
	x := [][]float64{{0}, {1}, {2}}
	y := []float64{10, 11, 12}
	xs, ys := Take(x, y, []int{2, 0})
	assert.Equal(t, [][]float64{{2}, {0}}, xs)
	assert.Equal(t, []float64{12, 10}, ys)
}

func TestEvaluate(t *testing.T) {
	s := Evaluate([]float64{1, 2, 3}, []float64{1, 2, 5})
	assert.InDelta(t, 2.0/3.0, s.MAE, 1e-12)
	assert.InDelta(t, 4.0/3.0, s.MSE, 1e-12)
	assert.InDelta(t, math.Sqrt(4.0/3.0), s.RMSE, 1e-12)
	assert.InDelta(t, -1.0, s.R2, 1e-12)

	assert.Equal(t, 1.0, Evaluate([]float64{4, 4}, []float64{4, 4}).R2)
	assert.Equal(t, 0.0, Evaluate([]float64{4, 4}, []float64{4, 5}).R2)
	assert.True(t, math.IsNaN(Evaluate(nil, nil).MAE))
}
