// Package models is a collection of linear regression fitting implementations used to
// attribute an outcome to media spend and control features
package models

import (
	"gonum.org/v1/gonum/mat"
)

// Model is a fitted linear regression. y is always a single column matrix aligned with the rows
// of x.
type Model interface {
	Fit(x, y mat.Matrix) error
	Predict(x mat.Matrix) ([]float64, error)
	Score(x, y mat.Matrix) (float64, error)
	Intercept() float64
	Coef() []float64
}
