// Package mat holds small helpers around gonum dense matrices used when slicing a design
// matrix into cross validation folds.
package mat

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrColMismatch     = errors.New("column size mismatch")
	ErrRowOutOfBounds  = errors.New("row is out of bounds")
	ErrNoRowsSelected  = errors.New("no rows selected")
	ErrColumnsMismatch = errors.New("columns have different lengths")
)

// NewDenseFromArray builds a dense matrix from a row major slice of slices. Every row must
// have the same number of columns.
func NewDenseFromArray(x [][]float64) (*mat.Dense, error) {
	m := len(x)
	if m == 0 {
		return nil, mat.ErrZeroLength
	}

	n := -1
	for i, row := range x {
		if n >= 0 && len(row) != n {
			return nil, fmt.Errorf("at row %d, %w", i, ErrColMismatch)
		}
		if n < 0 {
			n = len(row)
		}
	}
	if n == 0 {
		return nil, mat.ErrZeroLength
	}

	// flatten to row order
	data := make([]float64, 0, m*n)
	for _, row := range x {
		data = append(data, row...)
	}
	return mat.NewDense(m, n, data), nil
}

// NewDenseFromColumns builds a dense matrix where each input slice becomes a column.
func NewDenseFromColumns(cols [][]float64) (*mat.Dense, error) {
	n := len(cols)
	if n == 0 {
		return nil, mat.ErrZeroLength
	}
	m := len(cols[0])
	if m == 0 {
		return nil, mat.ErrZeroLength
	}
	for j, col := range cols {
		if len(col) != m {
			return nil, fmt.Errorf("column %d has %d rows instead of %d, %w", j, len(col), m, ErrColumnsMismatch)
		}
	}

	x := mat.NewDense(m, n, nil)
	for j, col := range cols {
		x.SetCol(j, col)
	}
	return x, nil
}

// SelectRows copies the rows at the given indices, in order, into a new matrix.
func SelectRows(x mat.Matrix, idx []int) (*mat.Dense, error) {
	if len(idx) == 0 {
		return nil, ErrNoRowsSelected
	}
	m, n := x.Dims()
	out := mat.NewDense(len(idx), n, nil)
	for i, r := range idx {
		if r < 0 || r >= m {
			return nil, fmt.Errorf("row %d with %d rows, %w", r, m, ErrRowOutOfBounds)
		}
		out.SetRow(i, mat.Row(nil, r, x))
	}
	return out, nil
}

// SelectElems copies the values at the given indices, in order.
func SelectElems(y []float64, idx []int) ([]float64, error) {
	out := make([]float64, 0, len(idx))
	for _, i := range idx {
		if i < 0 || i >= len(y) {
			return nil, fmt.Errorf("index %d with %d elements, %w", i, len(y), ErrRowOutOfBounds)
		}
		out = append(out, y[i])
	}
	return out, nil
}
