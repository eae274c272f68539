// Package train searches elastic net hyperparameters with time series cross validation and
// refits the winning combination on the full dataset.
package train

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/aouyang1/go-attribution/models"
)

const (
	DefaultNSplits  = 3
	DefaultTestSize = 4
	DefaultGap      = 0
)

var (
	ErrEmptyGrid          = errors.New("empty hyperparameter grid")
	ErrNoCrossValidator   = errors.New("no cross validator")
	ErrInvalidParallelism = errors.New("parallelization must be non-negative")
	ErrNoCells            = errors.New("no grid cells to select from")
)

// Params is one hyperparameter combination of the grid
type Params struct {
	Alpha   float64 `json:"alpha"`
	L1Ratio float64 `json:"l1_ratio"`
}

// Grid lists the candidate values of every hyperparameter
type Grid struct {
	Alpha   []float64 `json:"alpha"`
	L1Ratio []float64 `json:"l1_ratio"`
}

func NewDefaultGrid() Grid {
	return Grid{
		Alpha:   []float64{models.DefaultAlpha},
		L1Ratio: []float64{models.DefaultL1Ratio},
	}
}

// Params expands the grid with l1 ratio as the outer loop and alpha as the inner loop. The
// order decides which combination wins an exact tie.
func (g Grid) Params() []Params {
	params := make([]Params, 0, len(g.Alpha)*len(g.L1Ratio))
	for _, l1 := range g.L1Ratio {
		for _, a := range g.Alpha {
			params = append(params, Params{Alpha: a, L1Ratio: l1})
		}
	}
	return params
}

// Options configures the grid search
type Options struct {
	// Positive constrains every coefficient to be non-negative
	Positive bool

	// Standardize fits a StandardScaler on every training fold and applies it to its test fold.
	// The final refit scales the full dataset.
	Standardize bool

	CV   *models.TimeSeriesCV
	Grid Grid

	Iterations int
	Tolerance  float64

	// Parallelization is the number of grid cells evaluated concurrently. 0 uses the number of
	// CPUs.
	Parallelization int
}

func NewDefaultOptions() *Options {
	return &Options{
		CV:         models.NewTimeSeriesCV(DefaultNSplits, DefaultTestSize, DefaultGap),
		Grid:       NewDefaultGrid(),
		Iterations: models.DefaultIterations,
		Tolerance:  models.DefaultTolerance,
	}
}

// Validate runs basic validation on the training options
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		o = NewDefaultOptions()
	}
	if o.CV == nil {
		return nil, ErrNoCrossValidator
	}
	if len(o.Grid.Alpha) == 0 || len(o.Grid.L1Ratio) == 0 {
		return nil, fmt.Errorf("%d alphas and %d l1 ratios, %w", len(o.Grid.Alpha), len(o.Grid.L1Ratio), ErrEmptyGrid)
	}
	for _, p := range o.Grid.Params() {
		if _, err := o.elasticNetOptions(p).Validate(); err != nil {
			return nil, fmt.Errorf("invalid grid cell alpha=%g l1_ratio=%g, %w", p.Alpha, p.L1Ratio, err)
		}
	}
	if o.Parallelization < 0 {
		return nil, fmt.Errorf("got %d, %w", o.Parallelization, ErrInvalidParallelism)
	}
	return o, nil
}

func (o *Options) workers() int {
	if o.Parallelization > 0 {
		return o.Parallelization
	}
	return runtime.NumCPU()
}

func (o *Options) elasticNetOptions(p Params) *models.ElasticNetOptions {
	return &models.ElasticNetOptions{
		Alpha:        p.Alpha,
		L1Ratio:      p.L1Ratio,
		Iterations:   o.Iterations,
		Tolerance:    o.Tolerance,
		FitIntercept: true,
		Positive:     o.Positive,
	}
}
