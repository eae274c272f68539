package train

import (
	"github.com/aouyang1/go-attribution/models"
)

// FoldMetrics scores one cross validation fold of a grid cell
type FoldMetrics struct {
	Fold    int     `json:"fold"`
	Alpha   float64 `json:"alpha"`
	L1Ratio float64 `json:"l1_ratio"`
	MAPE    float64 `json:"mape"`
	R2      float64 `json:"r2"`
	MSE     float64 `json:"mse"`
}

// CellResult holds the cross validation results of one hyperparameter combination
type CellResult struct {
	Params  Params        `json:"params"`
	Folds   []FoldMetrics `json:"folds"`
	AvgMAPE float64       `json:"avg_mape"`
	AvgR2   float64       `json:"avg_r2"`
}

func newCellResult(p Params, folds []FoldMetrics) CellResult {
	var mape, r2 float64
	for _, f := range folds {
		mape += f.MAPE
		r2 += f.R2
	}
	if n := float64(len(folds)); n > 0 {
		mape /= n
		r2 /= n
	}
	return CellResult{
		Params:  p,
		Folds:   folds,
		AvgMAPE: mape,
		AvgR2:   r2,
	}
}

func newFoldMetrics(fold int, p Params, s *models.Scores) FoldMetrics {
	return FoldMetrics{
		Fold:    fold,
		Alpha:   p.Alpha,
		L1Ratio: p.L1Ratio,
		MAPE:    s.MAPE,
		R2:      s.R2,
		MSE:     s.MSE,
	}
}

// Better reports whether a strictly beats b, comparing (avg MAPE, -avg R2) lexicographically
func Better(a, b CellResult) bool {
	if a.AvgMAPE != b.AvgMAPE {
		return a.AvgMAPE < b.AvgMAPE
	}
	return -a.AvgR2 < -b.AvgR2
}

// SelectBest returns the best cell in grid order. A later cell replaces the current best only
// when it is strictly better, so the earliest cell wins an exact tie.
func SelectBest(cells []CellResult) (CellResult, error) {
	if len(cells) == 0 {
		return CellResult{}, ErrNoCells
	}
	best := cells[0]
	for _, c := range cells[1:] {
		if Better(c, best) {
			best = c
		}
	}
	return best, nil
}
