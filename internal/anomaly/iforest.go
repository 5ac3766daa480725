package anomaly

import (
	"math"
	"math/rand"
)

// point is one (unit_price, quantity) observation.
type point [2]float64

// ForestConfig controls the unsupervised outlier model. Contamination is the
// expected fraction of outliers in the data; the seed keeps scoring
// deterministic across runs.
type ForestConfig struct {
	Trees         int
	SampleSize    int
	Contamination float64
	Seed          int64
}

// DefaultForestConfig mirrors the tuning the analyzer ships with.
func DefaultForestConfig() ForestConfig {
	return ForestConfig{
		Trees:         100,
		SampleSize:    256,
		Contamination: 0.25,
		Seed:          42,
	}
}

type treeNode struct {
	splitDim   int
	splitValue float64
	left       *treeNode
	right      *treeNode
	size       int // external node only
}

// Forest is an isolation forest: an ensemble of random binary trees where
// isolated points end up in shallow leaves. Scores are normalized by the
// average path length of an unsuccessful BST search.
type Forest struct {
	trees      []*treeNode
	sampleSize int
}

// FitForest builds the ensemble on the given observations.
func FitForest(cfg ForestConfig, data []point) *Forest {
	if cfg.Trees <= 0 {
		cfg.Trees = 100
	}
	if cfg.SampleSize <= 0 {
		cfg.SampleSize = 256
	}
	sample := cfg.SampleSize
	if sample > len(data) {
		sample = len(data)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	maxDepth := int(math.Ceil(math.Log2(math.Max(2, float64(sample)))))

	f := &Forest{sampleSize: sample}
	for t := 0; t < cfg.Trees; t++ {
		sub := subsample(rng, data, sample)
		f.trees = append(f.trees, buildTree(rng, sub, 0, maxDepth))
	}
	return f
}

// Score returns the anomaly score in (0, 1]; higher means more isolated.
func (f *Forest) Score(p point) float64 {
	var sum float64
	for _, t := range f.trees {
		sum += pathLength(t, p, 0)
	}
	avg := sum / float64(len(f.trees))
	denom := avgPathLength(f.sampleSize)
	if denom == 0 {
		return 0
	}
	return math.Pow(2, -avg/denom)
}

func subsample(rng *rand.Rand, data []point, n int) []point {
	if n >= len(data) {
		sub := make([]point, len(data))
		copy(sub, data)
		return sub
	}
	perm := rng.Perm(len(data))
	sub := make([]point, n)
	for i := 0; i < n; i++ {
		sub[i] = data[perm[i]]
	}
	return sub
}

func buildTree(rng *rand.Rand, data []point, depth, maxDepth int) *treeNode {
	if len(data) <= 1 || depth >= maxDepth {
		return &treeNode{size: len(data)}
	}

	// dims with spread; identical points cannot be split further
	var dims []int
	for d := 0; d < 2; d++ {
		lo, hi := minMax(data, d)
		if hi > lo {
			dims = append(dims, d)
		}
	}
	if len(dims) == 0 {
		return &treeNode{size: len(data)}
	}

	dim := dims[rng.Intn(len(dims))]
	lo, hi := minMax(data, dim)
	split := lo + rng.Float64()*(hi-lo)

	var left, right []point
	for _, p := range data {
		if p[dim] < split {
			left = append(left, p)
		} else {
			right = append(right, p)
		}
	}
	return &treeNode{
		splitDim:   dim,
		splitValue: split,
		left:       buildTree(rng, left, depth+1, maxDepth),
		right:      buildTree(rng, right, depth+1, maxDepth),
	}
}

func pathLength(n *treeNode, p point, depth int) float64 {
	if n.left == nil {
		return float64(depth) + avgPathLength(n.size)
	}
	if p[n.splitDim] < n.splitValue {
		return pathLength(n.left, p, depth+1)
	}
	return pathLength(n.right, p, depth+1)
}

// avgPathLength is c(n), the expected path length of an unsuccessful search
// in a binary search tree of n nodes.
func avgPathLength(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	default:
		h := math.Log(float64(n-1)) + 0.5772156649
		return 2*h - 2*float64(n-1)/float64(n)
	}
}

func minMax(data []point, dim int) (float64, float64) {
	lo, hi := data[0][dim], data[0][dim]
	for _, p := range data[1:] {
		if p[dim] < lo {
			lo = p[dim]
		}
		if p[dim] > hi {
			hi = p[dim]
		}
	}
	return lo, hi
}

// percentile with linear interpolation over a sorted slice.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
