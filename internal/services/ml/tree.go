package ml

import (
	"math"
	"math/rand"
	"sort"
)

// TreeParams bound the growth of a regression tree. Zero MaxDepth means unlimited;
// zero MaxFeatures means every feature is considered at each split.
type TreeParams struct {
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxFeatures     int
}

func (p TreeParams) withDefaults() TreeParams {
	if p.MinSamplesSplit < 2 {
		p.MinSamplesSplit = 2
	}
	if p.MinSamplesLeaf < 1 {
		p.MinSamplesLeaf = 1
	}
	return p
}

type node struct {
	feature   int
	threshold float64
	left      int
	right     int
	value     float64
	leaf      bool
}

// Tree is a CART regression tree split on squared error.
type Tree struct {
	nodes []node
}

type treeBuilder struct {
	x      [][]float64
	y      []float64
	params TreeParams
	rng    *rand.Rand
	nodes  []node
	feats  []int
}

// FitTree grows a tree on the rows of x selected by idx (repeats allowed).
func FitTree(x [][]float64, y []float64, idx []int, params TreeParams, rng *rand.Rand) *Tree {
	b := &treeBuilder{x: x, y: y, params: params.withDefaults(), rng: rng}
	if len(x) > 0 {
		b.feats = make([]int, len(x[0]))
		for i := range b.feats {
			b.feats[i] = i
		}
	}
	work := make([]int, len(idx))
	copy(work, idx)
	b.grow(work, 0)
	return &Tree{nodes: b.nodes}
}

func (b *treeBuilder) grow(idx []int, depth int) int {
	id := len(b.nodes)
	b.nodes = append(b.nodes, node{leaf: true, value: b.meanOf(idx)})

	if len(idx) < b.params.MinSamplesSplit ||
		(b.params.MaxDepth > 0 && depth >= b.params.MaxDepth) ||
		b.pure(idx) {
		return id
	}

	feature, threshold, ok := b.bestSplit(idx)
	if !ok {
		return id
	}

	// partition in place: <= threshold first
	i, j := 0, len(idx)-1
	for i <= j {
		if b.x[idx[i]][feature] <= threshold {
			i++
		} else {
			idx[i], idx[j] = idx[j], idx[i]
			j--
		}
	}
	if i == 0 || i == len(idx) {
		return id
	}
	left := b.grow(idx[:i], depth+1)
	right := b.grow(idx[i:], depth+1)

	b.nodes[id] = node{feature: feature, threshold: threshold, left: left, right: right}
	return id
}

func (b *treeBuilder) bestSplit(idx []int) (int, float64, bool) {
	n := len(idx)
	minLeaf := b.params.MinSamplesLeaf

	var total, totalSq float64
	for _, r := range idx {
		total += b.y[r]
		totalSq += b.y[r] * b.y[r]
	}
	parentSSE := totalSq - total*total/float64(n)

	bestGain := 1e-12 * math.Max(1, math.Abs(parentSSE))
	bestFeature, bestThreshold, found := -1, 0.0, false

	sorted := make([]int, n)
	for _, f := range b.candidates() {
		copy(sorted, idx)
		sort.Slice(sorted, func(a, c int) bool { return b.x[sorted[a]][f] < b.x[sorted[c]][f] })

		var leftSum, leftSq float64
		for k := 0; k < n-1; k++ {
			yv := b.y[sorted[k]]
			leftSum += yv
			leftSq += yv * yv

			nl := k + 1
			nr := n - nl
			if nl < minLeaf || nr < minLeaf {
				continue
			}
			cur, next := b.x[sorted[k]][f], b.x[sorted[k+1]][f]
			if cur == next {
				continue
			}
			rightSum := total - leftSum
			rightSq := totalSq - leftSq
			sse := (leftSq - leftSum*leftSum/float64(nl)) + (rightSq - rightSum*rightSum/float64(nr))
			if gain := parentSSE - sse; gain > bestGain {
				bestGain = gain
				bestFeature = f
				bestThreshold = cur + (next-cur)/2
				if bestThreshold >= next {
					bestThreshold = cur
				}
				found = true
			}
		}
	}
	return bestFeature, bestThreshold, found
}

// candidates returns the features examined at one split, a random subset when MaxFeatures is set.
func (b *treeBuilder) candidates() []int {
	k := b.params.MaxFeatures
	if k <= 0 || k >= len(b.feats) {
		return b.feats
	}
	b.rng.Shuffle(len(b.feats), func(i, j int) { b.feats[i], b.feats[j] = b.feats[j], b.feats[i] })
	out := make([]int, k)
	copy(out, b.feats[:k])
	sort.Ints(out)
	return out
}

func (b *treeBuilder) meanOf(idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	var s float64
	for _, r := range idx {
		s += b.y[r]
	}
	return s / float64(len(idx))
}

func (b *treeBuilder) pure(idx []int) bool {
	for _, r := range idx[1:] {
		if b.y[r] != b.y[idx[0]] {
			return false
		}
	}
	return true
}

// Predict walks x down to a leaf.
func (t *Tree) Predict(x []float64) float64 {
	if len(t.nodes) == 0 {
		return 0
	}
	i := 0
	for !t.nodes[i].leaf {
		n := t.nodes[i]
		if x[n.feature] <= n.threshold {
			i = n.left
		} else {
			i = n.right
		}
	}
	return t.nodes[i].value
}

// Depth is the number of edges on the longest root-to-leaf path.
func (t *Tree) Depth() int {
	if len(t.nodes) == 0 {
		return 0
	}
	var walk func(i int) int
	walk = func(i int) int {
		n := t.nodes[i]
		if n.leaf {
			return 0
		}
		return 1 + max(walk(n.left), walk(n.right))
	}
	return walk(0)
}

func (t *Tree) Leaves() int {
	c := 0
	for _, n := range t.nodes {
		if n.leaf {
			c++
		}
	}
	return c
}
