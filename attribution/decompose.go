// Package attribution splits linear model predictions into per feature contributions and
// relates media contributions back to spend.
package attribution

import (
	"errors"
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const InterceptColumn = "intercept"

var (
	ErrNoFeatureMatrix    = errors.New("no feature matrix")
	ErrFeatureLenMismatch = errors.New("number of feature names does not match the number of features")
	ErrCoefLenMismatch    = errors.New("number of coefficients does not match the number of features")
	ErrDateLenMismatch    = errors.New("number of dates does not match the number of rows")
)

// Total is the summed contribution of one column
type Total struct {
	Feature string  `json:"feature"`
	Total   float64 `json:"total"`
}

// ContributionResult holds the per row contribution of every feature, followed by a constant
// intercept column, and the column totals. Dates is nil when no dates were given.
type ContributionResult struct {
	Dates         []time.Time
	Columns       []string
	Contributions *mat.Dense
	Totals        []Total
}

// Total returns the summed contribution of a column
func (c *ContributionResult) Total(name string) (float64, bool) {
	for _, t := range c.Totals {
		if t.Feature == name {
			return t.Total, true
		}
	}
	return 0, false
}

// RowSums adds up every contribution of each row, which equals the model prediction
func (c *ContributionResult) RowSums() []float64 {
	m, _ := c.Contributions.Dims()
	sums := make([]float64, m)
	for i := 0; i < m; i++ {
		sums[i] = floats.Sum(c.Contributions.RawRowView(i))
	}
	return sums
}

// DecomposeLinear computes contrib[r][j] = x[r][j] * coef[j] and appends the intercept as a
// constant column. x must be the features as the model saw them, so scaled features when the
// model was fit on standardized data. dates is optional.
func DecomposeLinear(x mat.Matrix, names []string, coef []float64, intercept float64, dates []time.Time) (*ContributionResult, error) {
	if x == nil {
		return nil, ErrNoFeatureMatrix
	}
	m, n := x.Dims()
	if len(names) != n {
		return nil, fmt.Errorf("got %d names for %d features, %w", len(names), n, ErrFeatureLenMismatch)
	}
	if len(coef) != n {
		return nil, fmt.Errorf("got %d coefficients for %d features, %w", len(coef), n, ErrCoefLenMismatch)
	}
	if dates != nil && len(dates) != m {
		return nil, fmt.Errorf("got %d dates for %d rows, %w", len(dates), m, ErrDateLenMismatch)
	}

	contrib := mat.NewDense(m, n+1, nil)
	contrib.Apply(func(i, j int, _ float64) float64 {
		if j == n {
			return intercept
		}
		return x.At(i, j) * coef[j]
	}, contrib)

	columns := make([]string, 0, n+1)
	columns = append(columns, names...)
	columns = append(columns, InterceptColumn)

	totals := make([]Total, n+1)
	for j, name := range columns {
		totals[j] = Total{Feature: name, Total: floats.Sum(mat.Col(nil, j, contrib))}
	}

	var d []time.Time
	if dates != nil {
		d = make([]time.Time, m)
		copy(d, dates)
	}
	return &ContributionResult{
		Dates:         d,
		Columns:       columns,
		Contributions: contrib,
		Totals:        totals,
	}, nil
}
