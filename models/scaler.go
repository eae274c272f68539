package models

import (
	"errors"
	"fmt"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrUnfitScaler         = errors.New("scaler has not been fit")
	ErrScalerFeatureLength = errors.New("number of features does not match the fitted scaler")
)

// StandardScaler standardizes each feature to zero mean and unit variance using the population
// standard deviation. Features with zero variance are left unscaled.
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// Fit computes the per feature mean and scale from the columns of x
func (s *StandardScaler) Fit(x mat.Matrix) error {
	if x == nil {
		return ErrNoTrainingMatrix
	}
	_, n := x.Dims()

	mean := make([]float64, n)
	scale := make([]float64, n)
	for j := 0; j < n; j++ {
		col := mat.Col(nil, j, x)
		mu, err := stats.Mean(col)
		if err != nil {
			return fmt.Errorf("unable to compute mean of feature %d, %w", j, err)
		}
		sd, err := stats.StandardDeviationPopulation(col)
		if err != nil {
			return fmt.Errorf("unable to compute standard deviation of feature %d, %w", j, err)
		}
		if sd == 0 {
			sd = 1.0
		}
		mean[j] = mu
		scale[j] = sd
	}
	s.Mean = mean
	s.Scale = scale
	return nil
}

// Transform returns a new matrix with the fitted mean removed and divided by the fitted scale
func (s *StandardScaler) Transform(x mat.Matrix) (*mat.Dense, error) {
	if s == nil || s.Mean == nil {
		return nil, ErrUnfitScaler
	}
	if x == nil {
		return nil, ErrNoDesignMatrix
	}
	m, n := x.Dims()
	if n != len(s.Mean) {
		return nil, fmt.Errorf("got %d features, but scaler was fit with %d, %w", n, len(s.Mean), ErrScalerFeatureLength)
	}

	out := mat.NewDense(m, n, nil)
	out.Apply(func(i, j int, v float64) float64 {
		return (v - s.Mean[j]) / s.Scale[j]
	}, x)
	return out, nil
}

// FitTransform fits the scaler on x and returns the transformed x
func (s *StandardScaler) FitTransform(x mat.Matrix) (*mat.Dense, error) {
	if err := s.Fit(x); err != nil {
		return nil, err
	}
	return s.Transform(x)
}
