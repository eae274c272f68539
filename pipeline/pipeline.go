// Package pipeline runs an attribution end to end: read, validate and clean the data, transform
// the media columns, fit the elastic net with time series cross validation, decompose the fit into
// contributions and write the reports.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/aouyang1/go-attribution/attribution"
	"github.com/aouyang1/go-attribution/config"
	"github.com/aouyang1/go-attribution/dataio"
	"github.com/aouyang1/go-attribution/feature"
	"github.com/aouyang1/go-attribution/report"
	"github.com/aouyang1/go-attribution/stats"
	"github.com/aouyang1/go-attribution/timedataset"
	"github.com/aouyang1/go-attribution/train"
)

const (
	OutlierLowerPerc   = 0.25
	OutlierUpperPerc   = 0.75
	OutlierTukeyFactor = 1.5
)

var ErrNoConfig = errors.New("no configuration")

// Result carries every intermediate product of a run
type Result struct {
	Report        timedataset.Report
	Table         *timedataset.Table
	Design        *feature.DesignMatrix
	Fit           *train.FitResult
	Model         report.Model
	Contributions *attribution.ContributionResult
	ROI           []attribution.ROI
	Coef          []stats.CoefRow
	VIF           []stats.VIF
	Summaries     []stats.Summary
	Outliers      []int
	Predicted     []float64
	ReportsDir    string
}

// ValidateOnly reads the configured data and runs the data quality checks without fitting
func ValidateOnly(cfg *config.Config) (*timedataset.Table, timedataset.Report, error) {
	if cfg == nil {
		return nil, timedataset.Report{}, ErrNoConfig
	}
	tbl, err := dataio.ReadTable(cfg.Data.Path, cfg.Data.DateCol)
	if err != nil {
		return nil, timedataset.Report{}, fmt.Errorf("unable to read data, %w", err)
	}

	rep, err := timedataset.Validate(tbl, cfg.Data.TargetCol, cfg.RequiredColumns(), cfg.Validation.EnforceMonotonicDates)
	if err != nil {
		return nil, timedataset.Report{}, fmt.Errorf("data validation failed, %w", err)
	}
	for _, w := range rep.Warnings {
		slog.Warn("data quality warning", "path", cfg.Data.Path, "warning", w)
	}
	return tbl, rep, nil
}

// Run executes the full attribution. cfgPath is copied into the reports directory when set.
func Run(ctx context.Context, cfg *config.Config, cfgPath string) (*Result, error) {
	start := time.Now()
	tbl, rep, err := ValidateOnly(cfg)
	if err != nil {
		return nil, err
	}
	slog.Info("read data", "path", cfg.Data.Path, "rows", tbl.Len(), "columns", len(tbl.Columns()), "ok", rep.OK)

	tbl = tbl.Clean()

	tbl, featureCols, err := transform(tbl, cfg)
	if err != nil {
		return nil, err
	}

	tbl, dropped, err := tbl.DropNulls(append([]string{cfg.Data.TargetCol}, featureCols...))
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		slog.Warn("dropped rows with null values", "rows", dropped)
	}

	dm, err := feature.BuildXY(tbl, cfg.Data.TargetCol, featureCols, cfg.Model.TargetTransform, cfg.Model.FeatureTransform)
	if err != nil {
		return nil, fmt.Errorf("unable to build design matrix, %w", err)
	}

	fit, err := train.FitElasticNetTSCV(ctx, dm.X, dm.Y, cfg.TrainOptions())
	if err != nil {
		return nil, fmt.Errorf("unable to fit model, %w", err)
	}

	res := &Result{
		Report:     rep,
		Table:      tbl,
		Design:     dm,
		Fit:        fit,
		ReportsDir: cfg.Outputs.ReportsDir,
	}
	if err := res.attribute(cfg); err != nil {
		return nil, err
	}
	if err := res.diagnose(cfg); err != nil {
		return nil, err
	}
	if err := res.write(cfg, cfgPath); err != nil {
		return nil, fmt.Errorf("unable to write reports, %w", err)
	}

	slog.Info("attribution complete",
		"alpha", fit.BestParams.Alpha,
		"l1_ratio", fit.BestParams.L1Ratio,
		"avg_mape", res.Model.Scores.AvgMAPE,
		"avg_r2", res.Model.Scores.AvgR2,
		"reports_dir", cfg.Outputs.ReportsDir,
		"elapsed", time.Since(start),
	)
	return res, nil
}

// transform applies adstock, saturation and the holiday control in that order and returns the
// feature columns: the transformed media columns followed by the controls.
func transform(tbl *timedataset.Table, cfg *config.Config) (*timedataset.Table, []string, error) {
	media := slices.Clone(cfg.Variables.MediaSpendCols)
	controls := slices.Clone(cfg.Variables.ControlCols)
	tf := cfg.Transforms

	var err error
	if tf.Adstock.Enabled {
		tbl, err = feature.ApplyAdstock(tbl, media, tf.Adstock.Alphas, tf.Adstock.MaxLag)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to apply adstock, %w", err)
		}
		for i, c := range media {
			media[i] = feature.AdstockName(c)
		}
	}

	if tf.Saturation.Enabled {
		tbl, err = feature.ApplySaturation(tbl, media, cfg.HillParams())
		if err != nil {
			return nil, nil, fmt.Errorf("unable to apply saturation, %w", err)
		}
		for i, c := range media {
			media[i] = feature.SaturationName(c)
		}
	}

	if tf.Holidays.Enabled {
		tbl, err = feature.ApplyHolidays(tbl, tf.Holidays.Country)
		if err != nil {
			return nil, nil, err
		}
		if !slices.Contains(controls, feature.HolidayColumn) {
			controls = append(controls, feature.HolidayColumn)
		}
	}

	slog.Debug("built features", "media", media, "controls", controls)
	return tbl, append(media, controls...), nil
}

// attribute decomposes the in sample fit into contributions and relates the media contributions
// to spend.
func (r *Result) attribute(cfg *config.Config) error {
	xs, err := r.Fit.Transform(r.Design.X)
	if err != nil {
		return err
	}

	r.Contributions, err = attribution.DecomposeLinear(xs, r.Design.FeatureNames, r.Fit.Coef, r.Fit.Intercept, r.Table.T)
	if err != nil {
		return fmt.Errorf("unable to decompose contributions, %w", err)
	}

	spendCols := cfg.Variables.MediaSpendCols
	spendTotals := make(map[string]float64, len(spendCols))
	for _, c := range spendCols {
		if spendTotals[c], err = r.Table.Sum(c); err != nil {
			return err
		}
	}

	media := attribution.MediaTotals(r.Contributions.Totals, spendCols)
	names := make([]string, len(media))
	for i, m := range media {
		names[i] = m.Feature
	}
	r.ROI = attribution.ComputeROI(media, attribution.SpendByFeature(names, spendCols, spendTotals))

	r.Predicted, err = r.Fit.Predict(r.Design.X)
	if err != nil {
		return err
	}

	r.Model, err = report.NewModel(r.Fit, report.ModelInfo{
		Target:           cfg.Data.TargetCol,
		TargetTransform:  transformName(cfg.Model.TargetTransform),
		FeatureTransform: transformName(cfg.Model.FeatureTransform),
		Features:         r.Design.FeatureNames,
		Dates:            r.Table.T,
	})
	return err
}

func transformName(name string) string {
	tr, err := feature.ParseTransform(name)
	if err != nil {
		return name
	}
	return string(tr)
}

// diagnose computes the coefficient table, collinearity, column summaries and target outliers.
// Diagnostics that cannot be computed for the data shape are skipped.
func (r *Result) diagnose(cfg *config.Config) error {
	var err error
	r.Coef, err = stats.CoefTable(r.Design.FeatureNames, r.Fit.Coef)
	if err != nil {
		return err
	}

	r.VIF, err = stats.VarianceInflationFactor(r.Design.FeatureNames, r.Design.X)
	switch {
	case errors.Is(err, stats.ErrMinimumFeatures), errors.Is(err, stats.ErrFeatureLen):
		slog.Warn("skipping variance inflation factor", "error", err.Error())
	case err != nil:
		return err
	}
	for _, v := range r.VIF {
		if v.VIF > 10 {
			slog.Warn("high collinearity", "feature", v.Feature, "vif", v.VIF)
		}
	}

	cols := append([]string{cfg.Data.TargetCol}, cfg.Variables.MediaSpendCols...)
	for _, c := range r.Design.FeatureNames {
		if !slices.Contains(cols, c) {
			cols = append(cols, c)
		}
	}
	r.Summaries = make([]stats.Summary, 0, len(cols))
	for _, c := range cols {
		vals, err := r.Table.Column(c)
		if err != nil {
			return err
		}
		s, err := stats.Summarize(c, vals)
		if err != nil {
			slog.Warn("skipping column summary", "column", c, "error", err.Error())
			continue
		}
		r.Summaries = append(r.Summaries, s)
	}

	r.Outliers = stats.DetectOutliers(r.Design.Y, OutlierLowerPerc, OutlierUpperPerc, OutlierTukeyFactor)
	if len(r.Outliers) > 0 {
		slog.Warn("target outliers detected", "count", len(r.Outliers))
	}
	return nil
}

func (r *Result) write(cfg *config.Config, cfgPath string) error {
	w, err := report.NewWriter(cfg.Outputs.ReportsDir)
	if err != nil {
		return err
	}

	if cfgPath != "" {
		if err := w.CopyConfig(cfgPath); err != nil {
			return err
		}
	}
	if err := w.WriteJSON(report.ModelFile, r.Model); err != nil {
		return err
	}
	if err := w.WriteJSON(report.ValidationFile, r.Report); err != nil {
		return err
	}
	if err := w.WriteCoefTable(r.Coef); err != nil {
		return err
	}
	if err := w.WriteCVMetrics(r.Fit.FoldMetrics); err != nil {
		return err
	}
	if err := w.WriteContributions(r.Contributions); err != nil {
		return err
	}
	if err := w.WriteContributionTotals(r.Contributions.Totals); err != nil {
		return err
	}
	if err := w.WriteROI(r.ROI); err != nil {
		return err
	}
	if err := w.WriteVIF(r.VIF); err != nil {
		return err
	}
	if err := w.WriteFeatureSummary(r.Summaries); err != nil {
		return err
	}
	if cfg.Outputs.Plots {
		if err := w.WritePlots(r.Table.T, r.Design.Y, r.Predicted, r.Contributions.Totals); err != nil {
			return err
		}
	}
	return nil
}
