// Package stats holds fit diagnostics: the coefficient table, variance inflation factors, per
// column summaries and outlier detection.
package stats

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/aouyang1/go-attribution/models"
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrMinimumFeatures    = errors.New("need at least 2 features to compute VIF")
	ErrFeatureLenMismatch = errors.New("some feature length is not consistent")
	ErrFeatureLen         = errors.New("need more observations than features")
	ErrNoValues           = errors.New("no values to summarize")
)

// CoefRow pairs a feature with its fitted coefficient
type CoefRow struct {
	Feature string  `json:"feature"`
	Coef    float64 `json:"coef"`
}

// CoefTable returns the coefficients sorted descending. Equal coefficients keep feature order.
func CoefTable(names []string, coef []float64) ([]CoefRow, error) {
	if len(names) != len(coef) {
		return nil, fmt.Errorf("%d names and %d coefficients, %w", len(names), len(coef), ErrFeatureLenMismatch)
	}
	rows := make([]CoefRow, len(names))
	for i := range names {
		rows[i] = CoefRow{Feature: names[i], Coef: coef[i]}
	}
	slices.SortStableFunc(rows, func(a, b CoefRow) int {
		return cmp.Compare(b.Coef, a.Coef)
	})
	return rows, nil
}

// DetectOutliers returns the indices of values beyond the [lowerPerc, upperPerc] percentile range
// widened on both sides by tukeyFactor times the range.
func DetectOutliers(y []float64, lowerPerc, upperPerc, tukeyFactor float64) []int {
	if len(y) == 0 {
		return nil
	}
	lowerPerc = math.Max(lowerPerc, 0.0)
	upperPerc = math.Min(upperPerc, 1.0)
	tukeyFactor = math.Max(tukeyFactor, 0.0)

	yCopy := make([]float64, len(y))
	copy(yCopy, y)
	sort.Float64s(yCopy)
	lowerIdx := int(math.Floor(float64(len(yCopy)) * lowerPerc))
	upperIdx := min(int(math.Ceil(float64(len(yCopy))*upperPerc)), len(yCopy)-1)

	lower := yCopy[lowerIdx]
	upper := yCopy[upperIdx]
	innerRange := upper - lower
	lower -= innerRange * tukeyFactor
	upper += innerRange * tukeyFactor

	var outlierIdx []int
	for i := 0; i < len(y); i++ {
		if y[i] > upper || y[i] < lower {
			outlierIdx = append(outlierIdx, i)
		}
	}
	return outlierIdx
}

// VIF is the variance inflation factor of one feature
type VIF struct {
	Feature string  `json:"feature"`
	RSquare float64 `json:"r_squared"`
	VIF     float64 `json:"vif"`
}

// VarianceInflationFactor regresses every column of x on the remaining columns with an intercept
// and reports 1/(1-R^2). Perfectly collinear columns report +Inf.
func VarianceInflationFactor(names []string, x mat.Matrix) ([]VIF, error) {
	m, n := x.Dims()
	if n < 2 {
		return nil, ErrMinimumFeatures
	}
	if len(names) != n {
		return nil, fmt.Errorf("%d names for %d features, %w", len(names), n, ErrFeatureLenMismatch)
	}
	if m <= n {
		return nil, fmt.Errorf("%d observations for %d features, %w", m, n, ErrFeatureLen)
	}

	others := mat.NewDense(m, n-1, nil)
	res := make([]VIF, 0, n)
	for j := 0; j < n; j++ {
		c := 0
		for k := 0; k < n; k++ {
			if k == j {
				continue
			}
			others.SetCol(c, mat.Col(nil, k, x))
			c++
		}
		target := mat.NewDense(m, 1, mat.Col(nil, j, x))

		ols, err := models.NewOLSRegression(nil)
		if err != nil {
			return nil, err
		}
		if err := ols.Fit(others, target); err != nil {
			if errors.Is(err, models.ErrSingularMatrix) {
				res = append(res, VIF{Feature: names[j], RSquare: 1, VIF: math.Inf(1)})
				continue
			}
			return nil, fmt.Errorf("unable to regress feature %s, %w", names[j], err)
		}
		r2, err := ols.Score(others, target)
		if err != nil {
			return nil, fmt.Errorf("unable to score feature %s, %w", names[j], err)
		}

		vif := math.Inf(1)
		if r2 < 1 {
			vif = 1.0 / (1.0 - r2)
		}
		res = append(res, VIF{Feature: names[j], RSquare: r2, VIF: vif})
	}
	return res, nil
}

// Summary describes the distribution of a column, ignoring null values
type Summary struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Nulls  int     `json:"nulls"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
	Sum    float64 `json:"sum"`
}

// Summarize computes the summary of a column. Std is the sample standard deviation and the
// quartiles are the medians of the lower and upper halves of the sorted values.
func Summarize(name string, x []float64) (Summary, error) {
	vals := make(stats.Float64Data, 0, len(x))
	for _, v := range x {
		if math.IsNaN(v) {
			continue
		}
		vals = append(vals, v)
	}
	s := Summary{Column: name, Count: len(vals), Nulls: len(x) - len(vals)}
	if len(vals) == 0 {
		return s, fmt.Errorf("column %s, %w", name, ErrNoValues)
	}

	var err error
	if s.Mean, err = vals.Mean(); err != nil {
		return s, err
	}
	if s.Min, err = vals.Min(); err != nil {
		return s, err
	}
	if s.Max, err = vals.Max(); err != nil {
		return s, err
	}
	if s.Median, err = vals.Median(); err != nil {
		return s, err
	}
	s.Q1, s.Q3 = s.Median, s.Median
	if len(vals) > 1 {
		q, err := stats.Quartile(vals)
		if err != nil {
			return s, err
		}
		s.Q1, s.Q3 = q.Q1, q.Q3
	}
	if s.Sum, err = vals.Sum(); err != nil {
		return s, err
	}
	if len(vals) > 1 {
		if s.Std, err = vals.StandardDeviationSample(); err != nil {
			return s, err
		}
	}
	return s, nil
}
