package models

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var ErrResLenMismatch = errors.New("predicted and actual have different lengths")

// Scores tracks the fit scores of a set of predictions
type Scores struct {
	MSE  float64 `json:"mean_squared_error"`
	MAPE float64 `json:"mean_absolute_percentage_error"`
	R2   float64 `json:"r_squared"`
}

// NewScores calculates the fit scores given the predicted and actual input slice values
func NewScores(predicted, actual []float64) (*Scores, error) {
	mse, err := MSE(predicted, actual)
	if err != nil {
		return nil, fmt.Errorf("unable to compute mean squared error, %w", err)
	}
	mape, err := MAPE(predicted, actual)
	if err != nil {
		return nil, fmt.Errorf("unable to compute mean absolute percentage error, %w", err)
	}
	r2, err := RSquared(predicted, actual)
	if err != nil {
		return nil, fmt.Errorf("unable to compute r-squared, %w", err)
	}
	return &Scores{MSE: mse, MAPE: mape, R2: r2}, nil
}

// pairs drops every position where either series is NaN
func pairs(predicted, actual []float64) ([]float64, []float64, error) {
	if len(predicted) != len(actual) {
		return nil, nil, fmt.Errorf("expected %d, but got %d, %w", len(actual), len(predicted), ErrResLenMismatch)
	}
	p := make([]float64, 0, len(predicted))
	a := make([]float64, 0, len(actual))
	for i := range actual {
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) {
			continue
		}
		p = append(p, predicted[i])
		a = append(a, actual[i])
	}
	return p, a, nil
}

func sumSquaredResiduals(p, a []float64) float64 {
	var ss float64
	for i := range a {
		d := a[i] - p[i]
		ss += d * d
	}
	return ss
}

// MSE computes mean((y-yhat)^2) over the non NaN pairs. No pairs scores 0.
func MSE(predicted, actual []float64) (float64, error) {
	p, a, err := pairs(predicted, actual)
	if err != nil || len(a) == 0 {
		return 0, err
	}
	return sumSquaredResiduals(p, a) / float64(len(a)), nil
}

// MAPE calculates mean(abs(y-yhat)/max(abs(y), eps)). Actual values of zero are floored at
// machine epsilon rather than skipped, so a miss on a zero target produces a very large error.
func MAPE(predicted, actual []float64) (float64, error) {
	p, a, err := pairs(predicted, actual)
	if err != nil || len(a) == 0 {
		return 0, err
	}

	eps := math.Nextafter(1.0, 2.0) - 1.0
	pct := make([]float64, len(a))
	for i := range a {
		pct[i] = math.Abs(a[i]-p[i]) / math.Max(math.Abs(a[i]), eps)
	}
	return floats.Sum(pct) / float64(len(a)), nil
}

// RSquared computes the coefficient of determination where 1.0 is a perfect fit. A constant
// actual series scores 1.0 when predicted exactly and 0.0 otherwise.
func RSquared(predicted, actual []float64) (float64, error) {
	p, a, err := pairs(predicted, actual)
	if err != nil {
		return 0, err
	}
	r2 := stat.RSquaredFrom(p, a, nil)
	if !math.IsNaN(r2) && !math.IsInf(r2, 0) {
		return r2, nil
	}
	if sumSquaredResiduals(p, a) == 0 {
		return 1.0, nil
	}
	return 0.0, nil
}
