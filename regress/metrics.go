package regress

import "math"

// MSE is the mean squared error.
func MSE(yTrue, yPred []float64) float64 {
	n := float64(len(yTrue))
	if n == 0 {
		return 0
	}
	s := 0.0
	for i := range yTrue {
		d := yPred[i] - yTrue[i]
		s += d * d
	}
	return s / n
}

// MAE is the mean absolute error.
func MAE(yTrue, yPred []float64) float64 {
	n := float64(len(yTrue))
	if n == 0 {
		return 0
	}
	s := 0.0
	for i := range yTrue {
		s += math.Abs(yPred[i] - yTrue[i])
	}
	return s / n
}

// RMSE is the root mean squared error.
func RMSE(yTrue, yPred []float64) float64 { return math.Sqrt(MSE(yTrue, yPred)) }

// R2 is the coefficient of determination.
func R2(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range yTrue {
		mean += v
	}
	mean /= float64(len(yTrue))

	ssTot, ssRes := 0.0, 0.0
	for i := range yTrue {
		d := yTrue[i] - mean
		ssTot += d * d
		r := yTrue[i] - yPred[i]
		ssRes += r * r
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

// MAPE is the mean absolute percentage error, skipping zero targets.
func MAPE(yTrue, yPred []float64) float64 {
	s, n := 0.0, 0
	for i := range yTrue {
		if yTrue[i] == 0 {
			continue
		}
		s += math.Abs((yTrue[i] - yPred[i]) / yTrue[i])
		n++
	}
	if n == 0 {
		return 0
	}
	return s / float64(n)
}
