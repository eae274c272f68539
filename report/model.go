// Package report writes the artifacts of an attribution run: csv tables, json documents, the
// configuration used and html charts.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/aouyang1/go-attribution/models"
	"github.com/aouyang1/go-attribution/stats"
	"github.com/aouyang1/go-attribution/train"
	"gonum.org/v1/gonum/floats"
)

// Model is the serializeable summary of a fit: the winning hyperparameters, the coefficients in
// feature order, the scaler when features were standardized and the cross validation scores.
type Model struct {
	TrainStart       time.Time              `json:"train_start"`
	TrainEnd         time.Time              `json:"train_end"`
	Target           string                 `json:"target"`
	TargetTransform  string                 `json:"target_transform"`
	FeatureTransform string                 `json:"feature_transform"`
	BestParams       train.Params           `json:"best_params"`
	Scores           Scores                 `json:"scores"`
	Intercept        float64                `json:"intercept"`
	Coefficients     []stats.CoefRow        `json:"coefficients"`
	Scaler           *models.StandardScaler `json:"scaler,omitempty"`
	FoldMetrics      []train.FoldMetrics    `json:"fold_metrics"`
}

// Scores are the fold averages of the selected grid cell
type Scores struct {
	AvgMAPE float64 `json:"avg_mape"`
	AvgR2   float64 `json:"avg_r2"`
	AvgMSE  float64 `json:"avg_mse"`
}

// ModelInfo describes the data the fit was trained on
type ModelInfo struct {
	Target           string
	TargetTransform  string
	FeatureTransform string
	Features         []string
	Dates            []time.Time
}

// NewModel assembles the model summary of a fit
func NewModel(fit *train.FitResult, info ModelInfo) (Model, error) {
	if len(info.Features) != len(fit.Coef) {
		return Model{}, fmt.Errorf("%d features and %d coefficients, %w", len(info.Features), len(fit.Coef), stats.ErrFeatureLenMismatch)
	}

	coef := make([]stats.CoefRow, len(fit.Coef))
	for i, name := range info.Features {
		coef[i] = stats.CoefRow{Feature: name, Coef: fit.Coef[i]}
	}

	m := Model{
		Target:           info.Target,
		TargetTransform:  info.TargetTransform,
		FeatureTransform: info.FeatureTransform,
		BestParams:       fit.BestParams,
		Scores:           averageScores(fit.FoldMetrics),
		Intercept:        fit.Intercept,
		Coefficients:     coef,
		Scaler:           fit.Scaler,
		FoldMetrics:      fit.FoldMetrics,
	}
	if n := len(info.Dates); n > 0 {
		m.TrainStart = info.Dates[0]
		m.TrainEnd = info.Dates[n-1]
	}
	return m, nil
}

func averageScores(folds []train.FoldMetrics) Scores {
	if len(folds) == 0 {
		return Scores{}
	}
	mape := make([]float64, len(folds))
	r2 := make([]float64, len(folds))
	mse := make([]float64, len(folds))
	for i, f := range folds {
		mape[i], r2[i], mse[i] = f.MAPE, f.R2, f.MSE
	}
	n := float64(len(folds))
	return Scores{
		AvgMAPE: floats.Sum(mape) / n,
		AvgR2:   floats.Sum(r2) / n,
		AvgMSE:  floats.Sum(mse) / n,
	}
}

func indentExpand(indent string, growth int) string {
	return strings.Repeat(indent, growth)
}

// TablePrint writes a human readable summary of the model. Coefficients shrunk to zero print as
// "...".
func (m Model) TablePrint(w io.Writer, prefix, indent string) error {
	if _, err := fmt.Fprintf(w, "%s%sModel:\n", prefix, indentExpand(indent, 0)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%sTarget: %s (%s)    Features: %s\n",
		prefix, indentExpand(indent, 1),
		m.Target, m.TargetTransform, m.FeatureTransform); err != nil {
		return err
	}
	if !m.TrainStart.IsZero() {
		if _, err := fmt.Fprintf(w, "%s%sTraining Range: %s to %s\n",
			prefix, indentExpand(indent, 1),
			m.TrainStart.Format(time.DateOnly), m.TrainEnd.Format(time.DateOnly)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "%s%sAlpha: %.4g    L1 Ratio: %.4g    Standardized: %t\n",
		prefix, indentExpand(indent, 1),
		m.BestParams.Alpha, m.BestParams.L1Ratio, m.Scaler != nil); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "%s%sScores:\n", prefix, indentExpand(indent, 0)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%sMAPE: %.3f    MSE: %.3f    R2: %.3f\n",
		prefix, indentExpand(indent, 1),
		m.Scores.AvgMAPE,
		m.Scores.AvgMSE,
		m.Scores.AvgR2,
	); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "%s%sCoefficients:\n", prefix, indentExpand(indent, 0)); err != nil {
		return err
	}
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintf(tbl, "%s%sFeature\tValue\t\n", prefix, indentExpand(indent, 1)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(tbl, "%s%s%s\t%.3f\t\n", prefix, indentExpand(indent, 1), "intercept", m.Intercept); err != nil {
		return err
	}
	for _, c := range m.Coefficients {
		val := fmt.Sprintf("%.3f", c.Coef)
		if c.Coef == 0 {
			val = "..."
		}
		if _, err := fmt.Fprintf(tbl, "%s%s%s\t%s\t\n", prefix, indentExpand(indent, 1), c.Feature, val); err != nil {
			return err
		}
	}
	return tbl.Flush()
}
