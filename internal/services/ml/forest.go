package ml

import (
	"context"
	"fmt"
	"math/rand"

	"golang.org/x/sync/errgroup"
)

// ForestParams configure a bootstrap-aggregated regression forest.
type ForestParams struct {
	NTrees  int
	Seed    int64
	Workers int
	Tree    TreeParams
}

// Forest averages the predictions of independently bootstrapped trees.
type Forest struct {
	trees []*Tree
}

// FitForest trains p.NTrees trees on bootstrap samples of (x, y). Each tree draws from
// its own source seeded off p.Seed, so the result does not depend on Workers.
func FitForest(ctx context.Context, x [][]float64, y []float64, p ForestParams) (*Forest, error) {
	if len(x) == 0 {
		return nil, ErrEmptyInput
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("ml: %d rows but %d targets", len(x), len(y))
	}
	if p.NTrees < 1 {
		p.NTrees = 1
	}
	if p.Workers < 1 {
		p.Workers = 1
	}

	master := rand.New(rand.NewSource(p.Seed))
	seeds := make([]int64, p.NTrees)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	trees := make([]*Tree, p.NTrees)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Workers)
	for i := range trees {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(seeds[i]))
			trees[i] = FitTree(x, y, bootstrap(len(x), rng), p.Tree, rng)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fit forest: %w", err)
	}
	return &Forest{trees: trees}, nil
}

func bootstrap(n int, rng *rand.Rand) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = rng.Intn(n)
	}
	return idx
}

func (f *Forest) Predict(x []float64) float64 {
	if len(f.trees) == 0 {
		return 0
	}
	var s float64
	for _, t := range f.trees {
		s += t.Predict(x)
	}
	return s / float64(len(f.trees))
}

func (f *Forest) PredictAll(x [][]float64) []float64 {
	out := make([]float64, len(x))
	for i, row := range x {
		out[i] = f.Predict(row)
	}
	return out
}

func (f *Forest) NumTrees() int { return len(f.trees) }
