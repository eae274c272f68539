package attribution

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestDecomposeLinearSumsToPrediction(t *testing.T) {
	x := mat.NewDense(2, 2, []float64{
		1, 2,
		3, 4,
	})
	coef := []float64{0.5, -0.3}
	intercept := 1.0

	res, err := DecomposeLinear(x, []string{"a", "b"}, coef, intercept, nil)
	require.Nil(t, err)

	assert.Equal(t, []string{"a", "b", InterceptColumn}, res.Columns)
	assert.InDeltaSlice(t, []float64{0.9, 1.3}, res.RowSums(), 1e-9)
	assert.Nil(t, res.Dates)
}

func TestDecomposeLinearTotals(t *testing.T) {
	x := mat.NewDense(3, 2, []float64{
		1, 2,
		3, 4,
		5, 6,
	})

	res, err := DecomposeLinear(x, []string{"a", "b"}, []float64{0.5, 0.3}, 2.0, nil)
	require.Nil(t, err)

	testData := map[string]struct {
		expected float64
	}{
		"a":             {0.5 * (1 + 3 + 5)},
		"b":             {0.3 * (2 + 4 + 6)},
		InterceptColumn: {2.0 * 3},
	}
	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			total, exists := res.Total(name)
			require.True(t, exists)
			assert.InDelta(t, td.expected, total, 1e-12)
		})
	}

	_, exists := res.Total("missing")
	assert.False(t, exists)
}

func TestDecomposeLinearDates(t *testing.T) {
	x := mat.NewDense(2, 1, []float64{1, 2})
	dates := []time.Time{
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
	}

	res, err := DecomposeLinear(x, []string{"a"}, []float64{1}, 0, dates)
	require.Nil(t, err)
	assert.Equal(t, dates, res.Dates)
	// dates never appear as a contribution column
	assert.Equal(t, []string{"a", InterceptColumn}, res.Columns)
	assert.Len(t, res.Totals, 2)

	_, err = DecomposeLinear(x, []string{"a"}, []float64{1}, 0, dates[:1])
	assert.ErrorIs(t, err, ErrDateLenMismatch)
}

func TestDecomposeLinearErrors(t *testing.T) {
	x := mat.NewDense(2, 2, []float64{1, 2, 3, 4})

	testData := map[string]struct {
		x     mat.Matrix
		names []string
		coef  []float64
		err   error
	}{
		"no matrix":     {nil, []string{"a", "b"}, []float64{1, 1}, ErrNoFeatureMatrix},
		"name mismatch": {x, []string{"a"}, []float64{1, 1}, ErrFeatureLenMismatch},
		"coef mismatch": {x, []string{"a", "b"}, []float64{1}, ErrCoefLenMismatch},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			_, err := DecomposeLinear(td.x, td.names, td.coef, 0, nil)
			assert.ErrorIs(t, err, td.err)
		})
	}
}

func TestDecomposeLinearRowSumInvariant(t *testing.T) {
	m, n := 50, 4
	data := make([]float64, m*n)
	for i := range data {
		data[i] = float64((i*37)%101) / 7.0
	}
	x := mat.NewDense(m, n, data)
	coef := []float64{1.25, -0.75, 3.5, 0.01}
	intercept := 42.0

	res, err := DecomposeLinear(x, []string{"a", "b", "c", "d"}, coef, intercept, nil)
	require.Nil(t, err)

	var pred mat.VecDense
	pred.MulVec(x, mat.NewVecDense(n, coef))
	sums := res.RowSums()
	for i := 0; i < m; i++ {
		assert.InDelta(t, pred.AtVec(i)+intercept, sums[i], 1e-9)
	}
}
