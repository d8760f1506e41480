// Package forest implements a small random-forest-style regressor:
// bootstrap-bagged CART regression trees with variance-reduction splits and
// a random feature subset per split. For a fixed seed the fitted ensemble
// is fully deterministic.
package forest

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"golang.org/x/exp/rand"
)

// Defaults applied by New for zero Config fields.
const (
	DefaultTrees    = 100
	DefaultMaxDepth = 10
	DefaultMinLeaf  = 2
)

// Config controls ensemble shape and determinism.
type Config struct {
	// Trees is the number of bagged trees.
	Trees int
	// MaxDepth bounds tree depth.
	MaxDepth int
	// MinLeaf is the minimum number of samples in a leaf.
	MinLeaf int
	// Features is the number of features considered per split;
	// 0 selects max(1, p/3).
	Features int
	// Seed drives all randomness (bootstrap sampling and feature
	// selection). The same seed and data always produce the same model.
	Seed uint64
}

// Regressor is a fitted ensemble. The zero value is not usable; construct
// with New and call Fit before Predict.
type Regressor struct {
	cfg       Config
	trees     []*node
	nFeatures int
}

type node struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64
	left      *node
	right     *node
}

// New returns an unfitted regressor with defaults applied.
func New(cfg Config) *Regressor {
	if cfg.Trees <= 0 {
		cfg.Trees = DefaultTrees
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	if cfg.MinLeaf <= 0 {
		cfg.MinLeaf = DefaultMinLeaf
	}
	return &Regressor{cfg: cfg}
}

// Fit trains the ensemble on X (rows of equal length) against y. A constant
// target is not an error: every tree degenerates to a single leaf predicting
// the mean.
func (r *Regressor) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return errors.New("forest: no training rows")
	}
	if len(X) != len(y) {
		return fmt.Errorf("forest: %d rows but %d targets", len(X), len(y))
	}
	p := len(X[0])
	for i, row := range X {
		if len(row) != p {
			return fmt.Errorf("forest: row %d has %d features, want %d", i, len(row), p)
		}
	}

	mtry := r.cfg.Features
	if mtry <= 0 {
		mtry = p / 3
		if mtry < 1 {
			mtry = 1
		}
	}
	if mtry > p {
		mtry = p
	}

	rng := rand.New(rand.NewSource(r.cfg.Seed))
	r.nFeatures = p
	r.trees = make([]*node, r.cfg.Trees)
	for t := range r.trees {
		// Bootstrap sample with replacement.
		idx := make([]int, len(X))
		for i := range idx {
			idx[i] = rng.Intn(len(X))
		}
		r.trees[t] = r.grow(X, y, idx, 0, mtry, rng)
	}
	return nil
}

// Predict returns the ensemble prediction (mean over trees) for one row.
func (r *Regressor) Predict(x []float64) float64 {
	var sum float64
	for _, t := range r.trees {
		sum += t.predict(x)
	}
	return sum / float64(len(r.trees))
}

// PredictAll predicts every row of X.
func (r *Regressor) PredictAll(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, x := range X {
		out[i] = r.Predict(x)
	}
	return out
}

// NumTrees reports the ensemble size after fitting.
func (r *Regressor) NumTrees() int { return len(r.trees) }

// NumFeatures reports the feature count seen at fit time.
func (r *Regressor) NumFeatures() int { return r.nFeatures }

func (n *node) predict(x []float64) float64 {
	for !n.leaf {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

// grow recursively builds a tree over the sample indices idx.
func (r *Regressor) grow(X [][]float64, y []float64, idx []int, depth, mtry int, rng *rand.Rand) *node {
	mean := meanAt(y, idx)
	if depth >= r.cfg.MaxDepth || len(idx) < 2*r.cfg.MinLeaf || sseAt(y, idx, mean) == 0 {
		return &node{leaf: true, value: mean}
	}

	feature, threshold, ok := r.bestSplit(X, y, idx, mtry, rng)
	if !ok {
		return &node{leaf: true, value: mean}
	}

	var left, right []int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < r.cfg.MinLeaf || len(right) < r.cfg.MinLeaf {
		return &node{leaf: true, value: mean}
	}

	return &node{
		feature:   feature,
		threshold: threshold,
		left:      r.grow(X, y, left, depth+1, mtry, rng),
		right:     r.grow(X, y, right, depth+1, mtry, rng),
	}
}

// bestSplit searches a random subset of mtry features for the threshold
// minimizing the summed squared error of the two halves.
func (r *Regressor) bestSplit(X [][]float64, y []float64, idx []int, mtry int, rng *rand.Rand) (int, float64, bool) {
	p := len(X[0])
	perm := rng.Perm(p)[:mtry]

	bestSSE := math.Inf(1)
	bestFeature, bestThreshold := -1, 0.0

	vals := make([]float64, len(idx))
	for _, f := range perm {
		for i, ix := range idx {
			vals[i] = X[ix][f]
		}
		sort.Float64s(vals)

		for i := 0; i+1 < len(vals); i++ {
			if vals[i] == vals[i+1] {
				continue
			}
			threshold := (vals[i] + vals[i+1]) / 2
			sse := splitSSE(X, y, idx, f, threshold)
			if sse < bestSSE {
				bestSSE = sse
				bestFeature = f
				bestThreshold = threshold
			}
		}
	}
	return bestFeature, bestThreshold, bestFeature >= 0
}

// splitSSE computes the summed squared error of both halves of a candidate
// split.
func splitSSE(X [][]float64, y []float64, idx []int, feature int, threshold float64) float64 {
	var lSum, rSum float64
	var lN, rN int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			lSum += y[i]
			lN++
		} else {
			rSum += y[i]
			rN++
		}
	}
	if lN == 0 || rN == 0 {
		return math.Inf(1)
	}
	lMean, rMean := lSum/float64(lN), rSum/float64(rN)

	var sse float64
	for _, i := range idx {
		var d float64
		if X[i][feature] <= threshold {
			d = y[i] - lMean
		} else {
			d = y[i] - rMean
		}
		sse += d * d
	}
	return sse
}

func meanAt(y []float64, idx []int) float64 {
	var sum float64
	for _, i := range idx {
		sum += y[i]
	}
	return sum / float64(len(idx))
}

func sseAt(y []float64, idx []int, mean float64) float64 {
	var sse float64
	for _, i := range idx {
		d := y[i] - mean
		sse += d * d
	}
	return sse
}
