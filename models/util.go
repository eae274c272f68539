package models

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// withOnes returns a copy of x with a leading column of ones so the first coefficient acts as
// the intercept
func withOnes(x mat.Matrix) *mat.Dense {
	m, n := x.Dims()
	out := mat.NewDense(m, n+1, nil)
	out.Apply(func(i, j int, _ float64) float64 {
		if j == 0 {
			return 1.0
		}
		return x.At(i, j-1)
	}, out)
	return out
}

// targetSlice flattens a single column target matrix and checks it lines up with x
func targetSlice(x, y mat.Matrix) ([]float64, error) {
	if x == nil {
		return nil, ErrNoTrainingMatrix
	}
	if y == nil {
		return nil, ErrNoTargetMatrix
	}
	m, _ := x.Dims()
	ym, _ := y.Dims()
	if ym != m {
		return nil, fmt.Errorf("training data has %d rows and target has %d row, %w", m, ym, ErrTargetLenMismatch)
	}
	return mat.Col(nil, 0, y), nil
}

// linearPredict computes x * coef + intercept for every row of x
func linearPredict(x mat.Matrix, coef []float64, intercept float64) ([]float64, error) {
	if x == nil {
		return nil, ErrNoDesignMatrix
	}
	m, n := x.Dims()
	if n != len(coef) {
		return nil, fmt.Errorf("got %d features in design matrix, but expected %d, %w", n, len(coef), ErrFeatureLenMismatch)
	}

	var res mat.VecDense
	res.MulVec(x, mat.NewVecDense(n, coef))

	out := make([]float64, m)
	for i := 0; i < m; i++ {
		out[i] = res.AtVec(i) + intercept
	}
	return out, nil
}
