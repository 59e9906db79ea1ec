package backend

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// ols is ordinary least squares with optional L2 regularization, solved via
// the normal equations with a Cholesky factorization.
type ols struct {
	ridge float64
	w     *mat.VecDense
}

func newOLS(params Params) *ols {
	return &ols{ridge: params["ridge"]}
}

func (m *ols) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 || len(X) != len(y) {
		return errors.New("ols: feature rows must match labels")
	}
	rows := len(X)
	cols := len(X[0]) + 1 // intercept column

	a := mat.NewDense(rows, cols, nil)
	for i, row := range X {
		a.Set(i, 0, 1)
		for j, v := range row {
			a.Set(i, j+1, v)
		}
	}
	b := mat.NewVecDense(rows, y)

	var ata mat.SymDense
	ata.SymOuterK(1, a.T())
	if m.ridge > 0 {
		for i := 0; i < cols; i++ {
			ata.SetSym(i, i, ata.At(i, i)+m.ridge)
		}
	}

	var atb mat.VecDense
	atb.MulVec(a.T(), b)

	var chol mat.Cholesky
	if !chol.Factorize(&ata) {
		return errors.New("ols: singular design matrix")
	}
	m.w = mat.NewVecDense(cols, nil)
	if err := chol.SolveVecTo(m.w, &atb); err != nil {
		return err
	}
	return nil
}

func (m *ols) Predict(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, row := range X {
		sum := m.w.AtVec(0)
		for j, v := range row {
			sum += m.w.AtVec(j+1) * v
		}
		out[i] = sum
	}
	return out
}
