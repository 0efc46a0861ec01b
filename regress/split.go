package regress

import "math/rand"

// TrainTestSplit randomly splits X, y into train and test sets. The split is
// fully determined by the seed, so repeated runs over identical data produce
// identical partitions.
func TrainTestSplit(X [][]float64, y []float64, testSize float64, seed int64) (XTrain, XTest [][]float64, yTrain, yTest []float64) {
	n := len(X)
	rnd := rand.New(rand.NewSource(seed))
	indices := rnd.Perm(n)

	nTest := int(float64(n) * testSize)
	for i, idx := range indices {
		if i < nTest {
			XTest = append(XTest, X[idx])
			yTest = append(yTest, y[idx])
		} else {
			XTrain = append(XTrain, X[idx])
			yTrain = append(yTrain, y[idx])
		}
	}
	return
}

// KFold partitions n row indices into k folds for cross-validation.
func KFold(n, k int, seed int64) [][]int {
	rnd := rand.New(rand.NewSource(seed))
	indices := rnd.Perm(n)

	folds := make([][]int, k)
	for i, idx := range indices {
		folds[i%k] = append(folds[i%k], idx)
	}
	return folds
}
