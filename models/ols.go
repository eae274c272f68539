package models

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// MaxConditionNumber is the largest condition number of the design accepted before a fit is
// treated as singular
const MaxConditionNumber = 1e12

// OLSOptions configures an ordinary least squares fit
type OLSOptions struct {
	FitIntercept bool
}

// Validate runs basic validation on OLS options
func (o *OLSOptions) Validate() (*OLSOptions, error) {
	if o == nil {
		o = NewDefaultOLSOptions()
	}
	return o, nil
}

func NewDefaultOLSOptions() *OLSOptions {
	return &OLSOptions{
		FitIntercept: true,
	}
}

// OLSRegression solves unpenalized least squares with a QR factorization. It backs diagnostics
// such as variance inflation factors where no regularization is wanted.
type OLSRegression struct {
	opt       *OLSOptions
	coef      []float64
	intercept float64
	fit       bool
}

func NewOLSRegression(opt *OLSOptions) (*OLSRegression, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &OLSRegression{
		opt: opt,
	}, nil
}

// Fit solves for the coefficients minimizing the squared residuals of x against y. Rank
// deficient designs, such as perfectly collinear features, return ErrSingularMatrix.
func (o *OLSRegression) Fit(x, y mat.Matrix) error {
	if o.opt == nil {
		return ErrNoOptions
	}
	yArr, err := targetSlice(x, y)
	if err != nil {
		return err
	}

	design := x
	if o.opt.FitIntercept {
		design = withOnes(x)
	}

	var qr mat.QR
	qr.Factorize(design)
	if cond := qr.Cond(); cond > MaxConditionNumber {
		return fmt.Errorf("condition number %g, %w", cond, ErrSingularMatrix)
	}

	var sol mat.VecDense
	if err := qr.SolveVecTo(&sol, false, mat.NewVecDense(len(yArr), yArr)); err != nil {
		var cond mat.Condition
		if errors.As(err, &cond) {
			return fmt.Errorf("condition number %g, %w", float64(cond), ErrSingularMatrix)
		}
		return err
	}

	c := make([]float64, sol.Len())
	for i := range c {
		c[i] = sol.AtVec(i)
	}

	o.intercept = 0
	o.coef = c
	if o.opt.FitIntercept {
		o.intercept = c[0]
		o.coef = c[1:]
	}
	o.fit = true
	return nil
}

func (o *OLSRegression) Predict(x mat.Matrix) ([]float64, error) {
	if o.opt == nil {
		return nil, ErrNoOptions
	}
	if !o.fit {
		return nil, ErrUnfitModel
	}
	return linearPredict(x, o.coef, o.intercept)
}

// Score computes the coefficient of determination of the prediction
func (o *OLSRegression) Score(x, y mat.Matrix) (float64, error) {
	if o.opt == nil {
		return 0.0, ErrNoOptions
	}
	yArr, err := targetSlice(x, y)
	if err != nil {
		return 0.0, err
	}

	res, err := o.Predict(x)
	if err != nil {
		return 0.0, err
	}
	return RSquared(res, yArr)
}

func (o *OLSRegression) Intercept() float64 {
	return o.intercept
}

func (o *OLSRegression) Coef() []float64 {
	c := make([]float64, len(o.coef))
	copy(c, o.coef)
	return c
}
