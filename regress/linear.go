package regress

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// LinearRegression is an ordinary least-squares model solved by QR
// decomposition. Fields are exported so a fitted model can be gob-encoded
// inside a bundle.
type LinearRegression struct {
	Coef      []float64
	Intercept float64
}

// NewLinearRegression returns an unfitted OLS model.
func NewLinearRegression() *LinearRegression { return &LinearRegression{} }

// Fit solves min ||Xb - y|| with an intercept column.
func (m *LinearRegression) Fit(X [][]float64, y []float64) error {
	n := len(X)
	if n == 0 {
		return errors.New("linear: empty training matrix")
	}
	p := len(X[0])
	if len(y) != n {
		return errors.New("linear: X and y length mismatch")
	}
	if n < p+1 {
		return fmt.Errorf("linear: %d rows cannot determine %d coefficients", n, p+1)
	}

	a := mat.NewDense(n, p+1, nil)
	for i, row := range X {
		a.Set(i, 0, 1)
		for j, v := range row {
			a.Set(i, j+1, v)
		}
	}
	b := mat.NewVecDense(n, append([]float64(nil), y...))

	var qr mat.QR
	qr.Factorize(a)

	var beta mat.VecDense
	if err := qr.SolveVecTo(&beta, false, b); err != nil {
		return fmt.Errorf("linear: least squares solve: %w", err)
	}

	m.Intercept = beta.AtVec(0)
	m.Coef = make([]float64, p)
	for j := 0; j < p; j++ {
		m.Coef[j] = beta.AtVec(j + 1)
	}
	return nil
}

// Predict returns fitted values for the rows of X.
func (m *LinearRegression) Predict(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, row := range X {
		sum := m.Intercept
		for j, v := range row {
			if j < len(m.Coef) {
				sum += m.Coef[j] * v
			}
		}
		out[i] = sum
	}
	return out
}
