package feature

import (
	"fmt"

	"github.com/aouyang1/go-attribution/timedataset"
)

// Adstock applies geometric carryover, out[0] = x[0] and out[t] = x[t] + alpha*out[t-1].
// The recursion is infinite impulse response, so maxLag is accepted for configuration
// compatibility but never truncates the carryover.
func Adstock(x []float64, alpha float64, maxLag int) []float64 {
	out := make([]float64, len(x))
	var carry float64
	for t, v := range x {
		carry = v + alpha*carry
		out[t] = carry
	}
	return out
}

// ApplyAdstock appends a <col>__adstock column for every col using alphas[col], or 0.0 when the
// column has no alpha configured.
func ApplyAdstock(t *timedataset.Table, cols []string, alphas map[string]float64, maxLag int) (*timedataset.Table, error) {
	out := t
	for _, c := range cols {
		x, err := t.NumericColumn(c)
		if err != nil {
			return nil, fmt.Errorf("unable to adstock column, %w", err)
		}
		alpha := alphas[c]
		out, err = out.WithColumn(AdstockName(c), Adstock(x, alpha, maxLag))
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
