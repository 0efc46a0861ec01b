package regress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearRegressionExactFit(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}, {4}, {5}}
	y := []float64{3, 5, 7, 9, 11} // y = 2x + 1

	m := NewLinearRegression()
	require.NoError(t, m.Fit(X, y))

	assert.InDelta(t, 2.0, m.Coef[0], 1e-9)
	assert.InDelta(t, 1.0, m.Intercept, 1e-9)

	pred := m.Predict([][]float64{{10}})
	assert.InDelta(t, 21.0, pred[0], 1e-9)
}

func TestLinearRegressionTwoFeatures(t *testing.T) {
	// y = 3*x1 - 2*x2 + 5
	X := [][]float64{
		{1, 0}, {0, 1}, {2, 1}, {1, 2}, {3, 3}, {4, 1},
	}
	y := make([]float64, len(X))
	for i, row := range X {
		y[i] = 3*row[0] - 2*row[1] + 5
	}

	m := NewLinearRegression()
	require.NoError(t, m.Fit(X, y))

	assert.InDelta(t, 3.0, m.Coef[0], 1e-8)
	assert.InDelta(t, -2.0, m.Coef[1], 1e-8)
	assert.InDelta(t, 5.0, m.Intercept, 1e-8)
}

func TestLinearRegressionUnderdetermined(t *testing.T) {
	m := NewLinearRegression()
	err := m.Fit([][]float64{{1, 2}}, []float64{3})
	assert.Error(t, err)
}

func TestLinearRegressionEmptyInput(t *testing.T) {
	m := NewLinearRegression()
	assert.Error(t, m.Fit(nil, nil))
}
