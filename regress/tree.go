package regress

import (
	"errors"
	"math"
	"math/rand"
	"sort"
)

// TreeRegressor is a CART-style regression tree splitting on variance
// reduction. With RandomThreshold set it picks split points uniformly at
// random between the feature minimum and maximum (extremely randomized
// trees) instead of scanning every candidate split.
type TreeRegressor struct {
	MaxDepth        int // 0 means no depth limit
	MinSamplesSplit int
	MaxFeatures     int // 0 means consider all features
	RandomThreshold bool
	Seed            int64

	Root      *TreeNode
	NFeatures int
}

// TreeNode is one node of a fitted tree. Fields are exported for gob.
type TreeNode struct {
	Leaf      bool
	Feature   int
	Threshold float64
	Value     float64
	Gain      float64 // total impurity decrease contributed by this split
	N         int
	Left      *TreeNode
	Right     *TreeNode
}

// TreeOption configures a TreeRegressor.
type TreeOption func(*TreeRegressor)

func WithMaxDepth(d int) TreeOption        { return func(t *TreeRegressor) { t.MaxDepth = d } }
func WithMinSamplesSplit(n int) TreeOption { return func(t *TreeRegressor) { t.MinSamplesSplit = n } }
func WithMaxFeatures(k int) TreeOption     { return func(t *TreeRegressor) { t.MaxFeatures = k } }
func WithRandomThreshold(b bool) TreeOption {
	return func(t *TreeRegressor) { t.RandomThreshold = b }
}
func WithTreeSeed(seed int64) TreeOption { return func(t *TreeRegressor) { t.Seed = seed } }

// NewTreeRegressor returns a tree with sensible defaults.
func NewTreeRegressor(opts ...TreeOption) *TreeRegressor {
	t := &TreeRegressor{
		MaxDepth:        0,
		MinSamplesSplit: 2,
		MaxFeatures:     0,
		Seed:            1,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Fit builds the tree over all rows of X.
func (t *TreeRegressor) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return errors.New("tree: empty training matrix")
	}
	if len(y) != len(X) {
		return errors.New("tree: X and y length mismatch")
	}
	t.NFeatures = len(X[0])

	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}
	rnd := rand.New(rand.NewSource(t.Seed))
	t.Root = t.build(X, y, idx, 0, rnd)
	return nil
}

// FitIndices builds the tree over a bootstrap sample given by row indices.
func (t *TreeRegressor) FitIndices(X [][]float64, y []float64, idx []int) error {
	if len(X) == 0 || len(idx) == 0 {
		return errors.New("tree: empty training sample")
	}
	t.NFeatures = len(X[0])
	rnd := rand.New(rand.NewSource(t.Seed))
	t.Root = t.build(X, y, idx, 0, rnd)
	return nil
}

func (t *TreeRegressor) build(X [][]float64, y []float64, idx []int, depth int, rnd *rand.Rand) *TreeNode {
	node := &TreeNode{N: len(idx)}

	sum, sumSq := 0.0, 0.0
	for _, i := range idx {
		sum += y[i]
		sumSq += y[i] * y[i]
	}
	n := float64(len(idx))
	node.Value = sum / n
	parentSS := sumSq - sum*sum/n

	if parentSS <= 0 ||
		len(idx) < t.MinSamplesSplit ||
		(t.MaxDepth > 0 && depth >= t.MaxDepth) {
		node.Leaf = true
		return node
	}

	feature, threshold, gain := t.findSplit(X, y, idx, parentSS, rnd)
	if gain <= 0 {
		node.Leaf = true
		return node
	}

	left := make([]int, 0, len(idx))
	right := make([]int, 0, len(idx))
	for _, i := range idx {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		node.Leaf = true
		return node
	}

	node.Feature = feature
	node.Threshold = threshold
	node.Gain = gain
	node.Left = t.build(X, y, left, depth+1, rnd)
	node.Right = t.build(X, y, right, depth+1, rnd)
	return node
}

// findSplit returns the best (feature, threshold) over a random feature
// subset, with gain measured as the decrease in total squared error.
func (t *TreeRegressor) findSplit(X [][]float64, y []float64, idx []int, parentSS float64, rnd *rand.Rand) (int, float64, float64) {
	features := t.candidateFeatures(rnd)

	bestFeature, bestThreshold, bestGain := -1, 0.0, 0.0
	for _, j := range features {
		var thr, gain float64
		var ok bool
		if t.RandomThreshold {
			thr, gain, ok = randomSplit(X, y, idx, j, parentSS, rnd)
		} else {
			thr, gain, ok = exhaustiveSplit(X, y, idx, j, parentSS)
		}
		if ok && gain > bestGain {
			bestFeature, bestThreshold, bestGain = j, thr, gain
		}
	}
	return bestFeature, bestThreshold, bestGain
}

func (t *TreeRegressor) candidateFeatures(rnd *rand.Rand) []int {
	k := t.MaxFeatures
	if k <= 0 || k >= t.NFeatures {
		k = t.NFeatures
	}
	perm := rnd.Perm(t.NFeatures)
	return perm[:k]
}

// exhaustiveSplit scans every boundary between consecutive sorted values.
func exhaustiveSplit(X [][]float64, y []float64, idx []int, feature int, parentSS float64) (float64, float64, bool) {
	order := make([]int, len(idx))
	copy(order, idx)
	sort.Slice(order, func(a, b int) bool {
		return X[order[a]][feature] < X[order[b]][feature]
	})

	total, totalSq := 0.0, 0.0
	for _, i := range order {
		total += y[i]
		totalSq += y[i] * y[i]
	}
	n := float64(len(order))

	bestGain, bestThr := 0.0, 0.0
	found := false
	leftSum, leftSq := 0.0, 0.0

	for k := 0; k < len(order)-1; k++ {
		i := order[k]
		leftSum += y[i]
		leftSq += y[i] * y[i]

		v, next := X[i][feature], X[order[k+1]][feature]
		if v == next {
			continue
		}

		ln := float64(k + 1)
		rn := n - ln
		leftSS := leftSq - leftSum*leftSum/ln
		rightSum := total - leftSum
		rightSS := (totalSq - leftSq) - rightSum*rightSum/rn

		gain := parentSS - leftSS - rightSS
		if gain > bestGain {
			bestGain = gain
			bestThr = (v + next) / 2
			found = true
		}
	}
	return bestThr, bestGain, found
}

// randomSplit draws one uniform threshold in (min, max) for the feature.
func randomSplit(X [][]float64, y []float64, idx []int, feature int, parentSS float64, rnd *rand.Rand) (float64, float64, bool) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, i := range idx {
		v := X[i][feature]
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo >= hi {
		return 0, 0, false
	}
	thr := lo + rnd.Float64()*(hi-lo)

	leftSum, leftSq, ln := 0.0, 0.0, 0.0
	total, totalSq := 0.0, 0.0
	for _, i := range idx {
		total += y[i]
		totalSq += y[i] * y[i]
		if X[i][feature] <= thr {
			leftSum += y[i]
			leftSq += y[i] * y[i]
			ln++
		}
	}
	n := float64(len(idx))
	rn := n - ln
	if ln == 0 || rn == 0 {
		return 0, 0, false
	}

	leftSS := leftSq - leftSum*leftSum/ln
	rightSum := total - leftSum
	rightSS := (totalSq - leftSq) - rightSum*rightSum/rn
	gain := parentSS - leftSS - rightSS
	if gain <= 0 {
		return 0, 0, false
	}
	return thr, gain, true
}

// Predict walks each row down the tree.
func (t *TreeRegressor) Predict(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, row := range X {
		out[i] = predictRow(t.Root, row)
	}
	return out
}

func predictRow(node *TreeNode, row []float64) float64 {
	for node != nil && !node.Leaf {
		if row[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	if node == nil {
		return 0
	}
	return node.Value
}

// FeatureImportances returns the normalized total impurity decrease per
// feature.
func (t *TreeRegressor) FeatureImportances() []float64 {
	imp := make([]float64, t.NFeatures)
	accumulateGains(t.Root, imp)

	total := 0.0
	for _, v := range imp {
		total += v
	}
	if total > 0 {
		for j := range imp {
			imp[j] /= total
		}
	}
	return imp
}

func accumulateGains(node *TreeNode, imp []float64) {
	if node == nil || node.Leaf {
		return
	}
	if node.Feature >= 0 && node.Feature < len(imp) {
		imp[node.Feature] += node.Gain
	}
	accumulateGains(node.Left, imp)
	accumulateGains(node.Right, imp)
}
