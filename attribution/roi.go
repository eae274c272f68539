package attribution

import (
	"strings"
)

// ROI relates the contribution of a media feature to the spend behind it. Ratio is nil when
// the spend is zero.
type ROI struct {
	Feature      string   `json:"feature"`
	Contribution float64  `json:"contribution"`
	Spend        float64  `json:"spend"`
	Ratio        *float64 `json:"roi"`
}

// ComputeROI divides every contribution total by the spend keyed by the same feature name.
// Features without spend are reported with zero spend and no ratio.
//
// This is a rough, directional estimate: it ignores baseline lift and interaction effects
// between channels.
func ComputeROI(contrib []Total, spend map[string]float64) []ROI {
	res := make([]ROI, 0, len(contrib))
	for _, c := range contrib {
		r := ROI{
			Feature:      c.Feature,
			Contribution: c.Total,
			Spend:        spend[c.Feature],
		}
		if r.Spend != 0 {
			ratio := r.Contribution / r.Spend
			r.Ratio = &ratio
		}
		res = append(res, r)
	}
	return res
}

// MediaTotals keeps the totals whose feature name starts with any of the spend column names, in
// their original order.
func MediaTotals(totals []Total, spendCols []string) []Total {
	var res []Total
	for _, t := range totals {
		if _, ok := matchSpendCol(t.Feature, spendCols); ok {
			res = append(res, t)
		}
	}
	return res
}

// SpendByFeature maps every feature derived from a spend column to that column's spend total.
// A feature is derived from the longest spend column name it starts with, so tv__adstock__sat
// takes the spend of tv. This goes beyond an exact name match, under which a transformed media
// feature never finds its spend and its roi is always null.
func SpendByFeature(features []string, spendCols []string, spendTotals map[string]float64) map[string]float64 {
	res := make(map[string]float64)
	for _, f := range features {
		col, ok := matchSpendCol(f, spendCols)
		if !ok {
			continue
		}
		res[f] = spendTotals[col]
	}
	return res
}

func matchSpendCol(feature string, spendCols []string) (string, bool) {
	var best string
	var found bool
	for _, c := range spendCols {
		if strings.HasPrefix(feature, c) && len(c) >= len(best) {
			best = c
			found = true
		}
	}
	return best, found
}
