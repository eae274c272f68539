package models

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	DefaultAlpha      = 0.1
	DefaultL1Ratio    = 0.5
	DefaultIterations = 20000
	DefaultTolerance  = 1e-4
)

var (
	ErrNegativeAlpha      = errors.New("negative alpha")
	ErrL1RatioRange       = errors.New("l1 ratio must be within [0, 1]")
	ErrNegativeIterations = errors.New("negative iterations")
	ErrNegativeTolerance  = errors.New("negative tolerance")
	ErrWarmStartCoefSize  = errors.New("warm start coefficients do not have the same number of coefficients as training features")
)

// ElasticNetOptions represents input options to run the Elastic Net Regression
type ElasticNetOptions struct {
	// WarmStartCoef is used to prime the coordinate descent to reduce the training time if a previous
	// fit has been performed. Does not include the intercept.
	WarmStartCoef []float64

	// Alpha is the overall penalty strength. Must be non-negative. 0.0 results in converging to
	// Ordinary Least Squares (OLS).
	Alpha float64

	// L1Ratio mixes the penalty between L1 (1.0, lasso) and L2 (0.0, ridge).
	L1Ratio float64

	// Iterations is the maximum number of times the fit loops through training all coefficients.
	Iterations int

	// Tolerance is the smallest coefficient change relative to the largest coefficient on each
	// iteration to determine when to stop iterating.
	Tolerance float64

	// FitIntercept centers the features and target before fitting and recovers the intercept
	// from the means afterwards.
	FitIntercept bool

	// Positive constrains every coefficient to be non-negative.
	Positive bool
}

// Validate runs basic validation on Elastic Net options
func (e *ElasticNetOptions) Validate() (*ElasticNetOptions, error) {
	if e == nil {
		e = NewDefaultElasticNetOptions()
	}

	if e.Alpha < 0 {
		return nil, ErrNegativeAlpha
	}
	if e.L1Ratio < 0 || e.L1Ratio > 1 {
		return nil, fmt.Errorf("got %.3f, %w", e.L1Ratio, ErrL1RatioRange)
	}
	if e.Iterations < 0 {
		return nil, ErrNegativeIterations
	}
	if e.Tolerance < 0 {
		return nil, ErrNegativeTolerance
	}
	return e, nil
}

// NewDefaultElasticNetOptions returns a default set of Elastic Net Regression options
func NewDefaultElasticNetOptions() *ElasticNetOptions {
	return &ElasticNetOptions{
		Alpha:         DefaultAlpha,
		L1Ratio:       DefaultL1Ratio,
		Iterations:    DefaultIterations,
		Tolerance:     DefaultTolerance,
		WarmStartCoef: nil,
		FitIntercept:  true,
	}
}

// ElasticNetRegression computes a linear regression with a mixed L1/L2 penalty using cyclic
// coordinate descent. The objective minimized is
//
//	1/(2m) * ||y - Xw - b||^2 + alpha * l1ratio * ||w||_1 + 0.5 * alpha * (1 - l1ratio) * ||w||^2
//
// alpha = 0 converges to OLS and l1ratio = 1 is the lasso.
type ElasticNetRegression struct {
	opt *ElasticNetOptions

	coef      []float64
	intercept float64
	nIter     int
	fit       bool
}

// NewElasticNetRegression initializes an Elastic Net model ready for fitting
func NewElasticNetRegression(opt *ElasticNetOptions) (*ElasticNetRegression, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &ElasticNetRegression{
		opt: opt,
	}, nil
}

// Fit the model according to the given training data. y must be a single column matrix.
func (e *ElasticNetRegression) Fit(x, y mat.Matrix) error {
	if e.opt == nil {
		return ErrNoOptions
	}
	yArr, err := targetSlice(x, y)
	if err != nil {
		return err
	}
	m, n := x.Dims()

	if e.opt.WarmStartCoef != nil && len(e.opt.WarmStartCoef) != n {
		return fmt.Errorf("warm start has %d coefficients instead of %d, %w", len(e.opt.WarmStartCoef), n, ErrWarmStartCoefSize)
	}

	// column major copies so each coordinate update is a contiguous dot product
	xcols := make([][]float64, n)
	xmean := make([]float64, n)
	for j := 0; j < n; j++ {
		xcols[j] = mat.Col(nil, j, x)
	}

	yc := make([]float64, m)
	copy(yc, yArr)
	var ymean float64
	if e.opt.FitIntercept {
		for j := 0; j < n; j++ {
			xmean[j] = stat.Mean(xcols[j], nil)
			floats.AddConst(-xmean[j], xcols[j])
		}
		ymean = stat.Mean(yc, nil)
		floats.AddConst(-ymean, yc)
	}

	xdot := make([]float64, n)
	for j := 0; j < n; j++ {
		xdot[j] = floats.Dot(xcols[j], xcols[j])
	}

	// penalties scaled by the number of observations to match the 1/(2m) loss term
	l1 := e.opt.Alpha * e.opt.L1Ratio * float64(m)
	l2 := e.opt.Alpha * (1.0 - e.opt.L1Ratio) * float64(m)

	// tracks current coefficients
	beta := make([]float64, n)
	if e.opt.WarmStartCoef != nil {
		copy(beta, e.opt.WarmStartCoef)
	}

	// residual is kept in sync with beta after every coordinate update
	residual := make([]float64, m)
	copy(residual, yc)
	for j := 0; j < n; j++ {
		if beta[j] != 0 {
			floats.AddScaled(residual, -beta[j], xcols[j])
		}
	}

	e.nIter = 0
	for i := 0; i < e.opt.Iterations; i++ {
		e.nIter = i + 1
		maxCoef := 0.0
		maxUpdate := 0.0

		// loop through all features and minimize loss function
		for j := 0; j < n; j++ {
			betaCurr := beta[j]
			if xdot[j] == 0 {
				// constant feature after centering carries no signal
				if betaCurr != 0 {
					beta[j] = 0
					maxUpdate = math.Max(maxUpdate, math.Abs(betaCurr))
				}
				continue
			}

			obsCol := xcols[j]
			rho := floats.Dot(obsCol, residual) + betaCurr*xdot[j]

			var betaNext float64
			if e.opt.Positive && rho < 0 {
				betaNext = 0
			} else {
				betaNext = SoftThreshold(rho, l1) / (xdot[j] + l2)
			}

			if delta := betaNext - betaCurr; delta != 0 {
				floats.AddScaled(residual, -delta, obsCol)
			}
			beta[j] = betaNext

			maxCoef = math.Max(maxCoef, math.Abs(betaNext))
			maxUpdate = math.Max(maxUpdate, math.Abs(betaNext-betaCurr))
		}

		// break early if we've achieved the desired tolerance
		if maxUpdate <= e.opt.Tolerance*maxCoef {
			break
		}
	}

	e.coef = beta
	e.intercept = 0
	if e.opt.FitIntercept {
		e.intercept = ymean - floats.Dot(xmean, beta)
	}
	e.fit = true
	return nil
}

// Predict using the Elastic Net model
func (e *ElasticNetRegression) Predict(x mat.Matrix) ([]float64, error) {
	if e.opt == nil {
		return nil, ErrNoOptions
	}
	if !e.fit {
		return nil, ErrUnfitModel
	}
	return linearPredict(x, e.coef, e.intercept)
}

// Score computes the coefficient of determination of the prediction
func (e *ElasticNetRegression) Score(x, y mat.Matrix) (float64, error) {
	if e.opt == nil {
		return 0.0, ErrNoOptions
	}
	yArr, err := targetSlice(x, y)
	if err != nil {
		return 0.0, err
	}

	res, err := e.Predict(x)
	if err != nil {
		return 0.0, err
	}
	return RSquared(res, yArr)
}

// Intercept returns the computed intercept if FitIntercept is set to true. Defaults to 0.0 if not set.
func (e *ElasticNetRegression) Intercept() float64 {
	return e.intercept
}

// Coef returns a slice of the trained coefficients in the same order of the training feature Matrix by column.
func (e *ElasticNetRegression) Coef() []float64 {
	c := make([]float64, len(e.coef))
	copy(c, e.coef)
	return c
}

// Iterations returns the number of coordinate descent passes the last fit ran
func (e *ElasticNetRegression) Iterations() int {
	return e.nIter
}

// SoftThreshold shrinks x towards zero by gamma, returning 0.0 if |x| is less than or equal to gamma
func SoftThreshold(x, gamma float64) float64 {
	res := math.Max(0, math.Abs(x)-gamma)
	if res == 0 {
		return 0
	}
	if math.Signbit(x) {
		return -res
	}
	return res
}
