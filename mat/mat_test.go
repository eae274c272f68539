package mat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNewDenseFromArray(t *testing.T) {
	testData := map[string]struct {
		rows [][]float64
		err  error
	}{
		"nil":          {nil, mat.ErrZeroLength},
		"no columns":   {[][]float64{{}, {}}, mat.ErrZeroLength},
		"scalar":       {[][]float64{{7}}, nil},
		"weekly spend": {[][]float64{{120, 3}, {80, 0}, {95, 1}}, nil},
		"ragged":       {[][]float64{{1, 2}, {3}}, ErrColMismatch},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			x, err := NewDenseFromArray(td.rows)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)

			m, n := x.Dims()
			require.Equal(t, len(td.rows), m)
			require.Equal(t, len(td.rows[0]), n)
			for i, row := range td.rows {
				assert.Equal(t, row, mat.Row(nil, i, x))
			}
		})
	}
}

func TestNewDenseFromColumns(t *testing.T) {
	x, err := NewDenseFromColumns([][]float64{{1, 2, 3}, {4, 5, 6}})
	require.Nil(t, err)

	m, n := x.Dims()
	assert.Equal(t, 3, m)
	assert.Equal(t, 2, n)
	assert.Equal(t, []float64{2, 5}, mat.Row(nil, 1, x))

	_, err = NewDenseFromColumns([][]float64{{1, 2, 3}, {4, 5}})
	assert.ErrorIs(t, err, ErrColumnsMismatch)

	_, err = NewDenseFromColumns(nil)
	assert.ErrorIs(t, err, mat.ErrZeroLength)
}

func TestSelectRows(t *testing.T) {
	x := mat.NewDense(4, 2, []float64{
		1, 2,
		3, 4,
		5, 6,
		7, 8,
	})

	out, err := SelectRows(x, []int{1, 3})
	require.Nil(t, err)
	assert.Equal(t, []float64{3, 4}, mat.Row(nil, 0, out))
	assert.Equal(t, []float64{7, 8}, mat.Row(nil, 1, out))

	// writes to the selection never reach the source
	out.Set(0, 0, 100)
	assert.Equal(t, 3.0, x.At(1, 0))

	_, err = SelectRows(x, []int{4})
	assert.ErrorIs(t, err, ErrRowOutOfBounds)

	_, err = SelectRows(x, nil)
	assert.ErrorIs(t, err, ErrNoRowsSelected)
}

func TestSelectElems(t *testing.T) {
	out, err := SelectElems([]float64{10, 20, 30}, []int{0, 2})
	require.Nil(t, err)
	assert.Equal(t, []float64{10, 30}, out)

	_, err = SelectElems([]float64{10}, []int{-1})
	assert.ErrorIs(t, err, ErrRowOutOfBounds)
}
