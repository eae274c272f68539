package feature

import (
	"fmt"
	"math"
	"strings"

	"github.com/aouyang1/go-attribution/timedataset"
)

const (
	DefaultEC50  = 1.0
	DefaultSlope = 1.0

	hillEpsilon = 1e-12
)

// HillParams shapes the Hill saturation curve. EC50 is the input giving half of the maximum
// response and Slope controls how steep the transition is.
type HillParams struct {
	EC50  float64 `json:"ec50" yaml:"ec50"`
	Slope float64 `json:"slope" yaml:"slope"`
}

func NewDefaultHillParams() HillParams {
	return HillParams{
		EC50:  DefaultEC50,
		Slope: DefaultSlope,
	}
}

// Hill maps every value to x^s / (x^s + ec50^s + 1e-12) after clamping negatives to zero. The
// result lies in [0, 1), is ~0.5 at ec50 and is monotone non decreasing in x.
func Hill(x []float64, p HillParams) []float64 {
	es := math.Pow(p.EC50, p.Slope)
	out := make([]float64, len(x))
	for i, v := range x {
		xs := math.Pow(math.Max(v, 0), p.Slope)
		out[i] = xs / (xs + es + hillEpsilon)
	}
	return out
}

// ApplySaturation appends a <col>__sat column for every col. Parameters are looked up by the
// column name first, then by the spend column it was derived from, falling back to the defaults.
func ApplySaturation(t *timedataset.Table, cols []string, params map[string]HillParams) (*timedataset.Table, error) {
	out := t
	for _, c := range cols {
		x, err := t.NumericColumn(c)
		if err != nil {
			return nil, fmt.Errorf("unable to saturate column, %w", err)
		}
		out, err = out.WithColumn(SaturationName(c), Hill(x, lookupHillParams(params, c)))
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func lookupHillParams(params map[string]HillParams, col string) HillParams {
	if p, exists := params[col]; exists {
		return p
	}
	if base, found := strings.CutSuffix(col, AdstockSuffix); found {
		if p, exists := params[base]; exists {
			return p
		}
	}
	return NewDefaultHillParams()
}
