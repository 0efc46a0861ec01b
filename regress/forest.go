package regress

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"airbnb-pricer/utils"
)

// ForestRegressor averages an ensemble of regression trees. With ExtraRandom
// set it behaves as an extremely randomized ensemble: no bootstrap and
// random split thresholds. Each tree gets a deterministic seed derived from
// the forest seed, so a fixed seed yields a fixed model regardless of how
// many workers fit trees concurrently.
type ForestRegressor struct {
	NEstimators     int
	MaxDepth        int
	MinSamplesSplit int
	MaxFeatures     int // 0 means one third of the features, tree-regression style
	Bootstrap       bool
	ExtraRandom     bool
	Seed            int64
	Workers         int

	Trees []*TreeRegressor
}

// ForestOption configures a ForestRegressor.
type ForestOption func(*ForestRegressor)

func WithNEstimators(n int) ForestOption { return func(f *ForestRegressor) { f.NEstimators = n } }
func WithForestMaxDepth(d int) ForestOption {
	return func(f *ForestRegressor) { f.MaxDepth = d }
}
func WithForestMinSamplesSplit(n int) ForestOption {
	return func(f *ForestRegressor) { f.MinSamplesSplit = n }
}
func WithBootstrap(b bool) ForestOption  { return func(f *ForestRegressor) { f.Bootstrap = b } }
func WithExtraRandom(b bool) ForestOption {
	return func(f *ForestRegressor) { f.ExtraRandom = b }
}
func WithForestSeed(seed int64) ForestOption { return func(f *ForestRegressor) { f.Seed = seed } }
func WithWorkers(n int) ForestOption         { return func(f *ForestRegressor) { f.Workers = n } }

// NewForestRegressor returns a forest with sensible defaults.
func NewForestRegressor(opts ...ForestOption) *ForestRegressor {
	f := &ForestRegressor{
		NEstimators:     100,
		MinSamplesSplit: 2,
		Bootstrap:       true,
		Seed:            1,
		Workers:         4,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Fit trains every tree of the ensemble on a bounded worker pool.
func (f *ForestRegressor) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return errors.New("forest: empty training matrix")
	}
	if len(y) != len(X) {
		return errors.New("forest: X and y length mismatch")
	}
	n := len(X)
	nFeatures := len(X[0])

	maxFeatures := f.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = nFeatures / 3
		if maxFeatures < 1 {
			maxFeatures = 1
		}
	}

	f.Trees = make([]*TreeRegressor, f.NEstimators)
	pool := utils.NewWorkerPool(f.Workers)

	var mu sync.Mutex
	var firstErr error

	for t := 0; t < f.NEstimators; t++ {
		t := t
		pool.Submit(func() {
			treeSeed := f.Seed + int64(t)
			tree := NewTreeRegressor(
				WithMaxDepth(f.MaxDepth),
				WithMinSamplesSplit(f.MinSamplesSplit),
				WithMaxFeatures(maxFeatures),
				WithRandomThreshold(f.ExtraRandom),
				WithTreeSeed(treeSeed),
			)

			idx := make([]int, n)
			if f.Bootstrap {
				rnd := rand.New(rand.NewSource(treeSeed))
				for i := range idx {
					idx[i] = rnd.Intn(n)
				}
			} else {
				for i := range idx {
					idx[i] = i
				}
			}

			if err := tree.FitIndices(X, y, idx); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("forest: tree %d: %w", t, err)
				}
				mu.Unlock()
				return
			}
			f.Trees[t] = tree
		})
	}
	pool.Wait()

	return firstErr
}

// Predict averages the predictions of all trees.
func (f *ForestRegressor) Predict(X [][]float64) []float64 {
	out := make([]float64, len(X))
	if len(f.Trees) == 0 {
		return out
	}
	for _, tree := range f.Trees {
		if tree == nil {
			continue
		}
		for i, p := range tree.Predict(X) {
			out[i] += p
		}
	}
	for i := range out {
		out[i] /= float64(len(f.Trees))
	}
	return out
}

// FeatureImportances averages the per-tree importances.
func (f *ForestRegressor) FeatureImportances() []float64 {
	if len(f.Trees) == 0 {
		return nil
	}
	var imp []float64
	counted := 0
	for _, tree := range f.Trees {
		if tree == nil {
			continue
		}
		ti := tree.FeatureImportances()
		if imp == nil {
			imp = make([]float64, len(ti))
		}
		for j, v := range ti {
			imp[j] += v
		}
		counted++
	}
	if counted == 0 {
		return imp
	}
	total := 0.0
	for j := range imp {
		imp[j] /= float64(counted)
		total += imp[j]
	}
	if total > 0 && math.Abs(total-1) > 1e-9 {
		for j := range imp {
			imp[j] /= total
		}
	}
	return imp
}
