package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScores(t *testing.T) {
	testData := map[string]struct {
		predicted []float64
		actual    []float64
		expected  *Scores
		err       error
	}{
		"perfect": {
			predicted: []float64{1, 2, 3},
			actual:    []float64{1, 2, 3},
			expected:  &Scores{MSE: 0, MAPE: 0, R2: 1},
		},
		"off by one": {
			predicted: []float64{2, 3, 4},
			actual:    []float64{1, 2, 4},
			expected:  &Scores{MSE: 2.0 / 3.0, MAPE: 0.5, R2: 1 - 2.0/(14.0/3.0)},
		},
		"nan skipped": {
			predicted: []float64{1, math.NaN(), 3},
			actual:    []float64{2, 5, 3},
			expected:  &Scores{MSE: 0.5, MAPE: 0.25, R2: -1.0},
		},
		"length mismatch": {
			predicted: []float64{1, 2},
			actual:    []float64{1},
			err:       ErrResLenMismatch,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := NewScores(td.predicted, td.actual)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.InDelta(t, td.expected.MSE, res.MSE, 1e-9, "mse")
			assert.InDelta(t, td.expected.MAPE, res.MAPE, 1e-9, "mape")
			assert.InDelta(t, td.expected.R2, res.R2, 1e-9, "r2")
		})
	}
}

func TestMAPEZeroActual(t *testing.T) {
	mape, err := MAPE([]float64{1}, []float64{0})
	require.Nil(t, err)
	assert.Greater(t, mape, 1e12)

	mape, err = MAPE([]float64{0}, []float64{0})
	require.Nil(t, err)
	assert.Equal(t, 0.0, mape)
}

func TestRSquaredConstantActual(t *testing.T) {
	r2, err := RSquared([]float64{3, 3, 3}, []float64{3, 3, 3})
	require.Nil(t, err)
	assert.Equal(t, 1.0, r2)

	r2, err = RSquared([]float64{2, 3, 4}, []float64{3, 3, 3})
	require.Nil(t, err)
	assert.Equal(t, 0.0, r2)
}
