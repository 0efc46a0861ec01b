package regress

import "math"

// StandardScaler standardizes each column to zero mean and unit variance.
// A fitted scaler can be carried inside a model bundle and reapplied at
// inference time.
type StandardScaler struct {
	Mean   []float64
	Std    []float64
	Fitted bool
}

// NewStandardScaler returns an unfitted scaler.
func NewStandardScaler() *StandardScaler { return &StandardScaler{} }

// Fit computes per-column mean and standard deviation. Zero-variance columns
// get a unit deviation so Transform is a no-op for them.
func (s *StandardScaler) Fit(X [][]float64) {
	if len(X) == 0 {
		return
	}
	rows, cols := len(X), len(X[0])
	s.Mean = make([]float64, cols)
	s.Std = make([]float64, cols)

	for j := 0; j < cols; j++ {
		sum := 0.0
		for i := 0; i < rows; i++ {
			sum += X[i][j]
		}
		s.Mean[j] = sum / float64(rows)

		v := 0.0
		for i := 0; i < rows; i++ {
			d := X[i][j] - s.Mean[j]
			v += d * d
		}
		s.Std[j] = math.Sqrt(v / float64(rows))
		if s.Std[j] == 0 {
			s.Std[j] = 1
		}
	}
	s.Fitted = true
}

// Transform returns a standardized copy of X.
func (s *StandardScaler) Transform(X [][]float64) [][]float64 {
	if !s.Fitted {
		return X
	}
	out := make([][]float64, len(X))
	for i, row := range X {
		r := make([]float64, len(row))
		for j, v := range row {
			r[j] = (v - s.Mean[j]) / s.Std[j]
		}
		out[i] = r
	}
	return out
}

// FitTransform fits the scaler and returns the transformed matrix.
func (s *StandardScaler) FitTransform(X [][]float64) [][]float64 {
	s.Fit(X)
	return s.Transform(X)
}
