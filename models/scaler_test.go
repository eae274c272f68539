package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestStandardScaler(t *testing.T) {
	x := mat.NewDense(4, 2, []float64{
		1, 5,
		2, 5,
		3, 5,
		4, 5,
	})

	var s StandardScaler
	out, err := s.FitTransform(x)
	require.Nil(t, err)

	assert.InDeltaSlice(t, []float64{2.5, 5}, s.Mean, 1e-12)
	// population standard deviation, constant column left unscaled
	assert.InDeltaSlice(t, []float64{1.118033988749895, 1}, s.Scale, 1e-12)

	col := mat.Col(nil, 0, out)
	assert.InDeltaSlice(t, []float64{-1.3416407864998738, -0.4472135954999579, 0.4472135954999579, 1.3416407864998738}, col, 1e-12)
	assert.Equal(t, []float64{0, 0, 0, 0}, mat.Col(nil, 1, out))

	// the source matrix is never modified
	assert.Equal(t, 1.0, x.At(0, 0))
}

func TestStandardScalerReusesFitStatistics(t *testing.T) {
	train := mat.NewDense(2, 1, []float64{0, 2})
	test := mat.NewDense(2, 1, []float64{4, 6})

	var s StandardScaler
	require.Nil(t, s.Fit(train))

	out, err := s.Transform(test)
	require.Nil(t, err)
	assert.Equal(t, []float64{3, 5}, mat.Col(nil, 0, out))
}

func TestStandardScalerErrors(t *testing.T) {
	var s StandardScaler
	_, err := s.Transform(mat.NewDense(1, 1, []float64{1}))
	assert.ErrorIs(t, err, ErrUnfitScaler)

	require.Nil(t, s.Fit(mat.NewDense(2, 2, []float64{1, 2, 3, 4})))
	_, err = s.Transform(mat.NewDense(1, 1, []float64{1}))
	assert.ErrorIs(t, err, ErrScalerFeatureLength)

	assert.ErrorIs(t, s.Fit(nil), ErrNoTrainingMatrix)
}
