package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aouyang1/go-attribution/feature"
	"github.com/aouyang1/go-attribution/models"
	"github.com/aouyang1/go-attribution/train"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullConfig = `
data:
  path: data/marketing.csv
  date_col: date
  target_col: revenue
variables:
  media_spend_cols: [spend_tv, spend_search]
  control_cols: [temperature]
transforms:
  adstock:
    enabled: true
    alphas:
      spend_tv: 0.5
      spend_search: 0.2
    max_lag: 8
  saturation:
    enabled: true
    params:
      spend_tv:
        ec50: 300
        slope: 1.5
      spend_search__adstock:
        ec50: 100
  holidays:
    enabled: true
    country: gb
model:
  target_transform: log1p
  feature_transform: none
  positive_media: true
  standardize: true
  random_state: 42
  cv:
    n_splits: 4
    test_size: 8
    gap: 1
  hyperparams:
    alpha: [0.01, 0.1, 1.0]
    l1_ratio: [0.2, 0.8]
  parallelization: 2
validation:
  enforce_monotonic_dates: true
outputs:
  reports_dir: out/reports
  plots: true
`

const minimalConfig = `
data:
  path: data.csv
  date_col: date
  target_col: y
variables:
  media_spend_cols: [spend_a]
`

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.Nil(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, fullConfig))
	require.Nil(t, err)

	assert.Equal(t, "data/marketing.csv", cfg.Data.Path)
	assert.Equal(t, []string{"spend_tv", "spend_search", "temperature"}, cfg.RequiredColumns())
	assert.True(t, cfg.Transforms.Adstock.Enabled)
	assert.Equal(t, 0.5, cfg.Transforms.Adstock.Alphas["spend_tv"])
	assert.Equal(t, 8, cfg.Transforms.Adstock.MaxLag)
	assert.Equal(t, "gb", cfg.Transforms.Holidays.Country)
	assert.Equal(t, "log1p", cfg.Model.TargetTransform)
	assert.True(t, cfg.Validation.EnforceMonotonicDates)
	assert.Equal(t, "out/reports", cfg.Outputs.ReportsDir)
	assert.True(t, cfg.Outputs.Plots)

	expectedHill := map[string]feature.HillParams{
		"spend_tv":              {EC50: 300, Slope: 1.5},
		"spend_search__adstock": {EC50: 100, Slope: feature.DefaultSlope},
	}
	assert.Equal(t, expectedHill, cfg.HillParams())

	opt := cfg.TrainOptions()
	assert.True(t, opt.Positive)
	assert.True(t, opt.Standardize)
	assert.Equal(t, models.NewTimeSeriesCV(4, 8, 1), opt.CV)
	assert.Equal(t, train.Grid{Alpha: []float64{0.01, 0.1, 1.0}, L1Ratio: []float64{0.2, 0.8}}, opt.Grid)
	assert.Equal(t, models.DefaultIterations, opt.Iterations)
	assert.Equal(t, 2, opt.Parallelization)

	_, err = opt.Validate()
	assert.Nil(t, err)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.Nil(t, err)

	assert.False(t, cfg.Transforms.Adstock.Enabled)
	assert.False(t, cfg.Transforms.Saturation.Enabled)
	assert.Equal(t, DefaultCountry, cfg.Transforms.Holidays.Country)
	assert.Equal(t, "none", cfg.Model.TargetTransform)
	assert.Equal(t, "none", cfg.Model.FeatureTransform)
	assert.Equal(t, CVConfig{NSplits: 3, TestSize: 4, Gap: 0}, cfg.Model.CV)
	assert.Equal(t, []float64{0.1}, cfg.Model.Hyperparams.Alpha)
	assert.Equal(t, []float64{0.5}, cfg.Model.Hyperparams.L1Ratio)
	assert.Equal(t, 20000, cfg.Model.MaxIter)
	assert.Equal(t, 1e-4, cfg.Model.Tolerance)
	assert.Equal(t, DefaultReportsDir, cfg.Outputs.ReportsDir)
	assert.Empty(t, cfg.HillParams())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ATTRIB_DATA_PATH", "/tmp/other.parquet")
	t.Setenv("ATTRIB_REPORTS_DIR", "/tmp/reports")
	t.Setenv("ATTRIB_PARALLELIZATION", "3")
	t.Setenv("ATTRIB_PLOTS", "true")

	cfg, err := Load(writeConfig(t, minimalConfig))
	require.Nil(t, err)
	assert.Equal(t, "/tmp/other.parquet", cfg.Data.Path)
	assert.Equal(t, "/tmp/reports", cfg.Outputs.ReportsDir)
	assert.Equal(t, 3, cfg.Model.Parallelization)
	assert.True(t, cfg.Outputs.Plots)
}

func TestLoadErrors(t *testing.T) {
	testData := map[string]struct {
		content string
		err     error
	}{
		"missing target": {
			content: `
data: {path: a.csv, date_col: date}
variables: {media_spend_cols: [a]}
`,
			err: ErrInvalidConfig,
		},
		"no media columns": {
			content: `
data: {path: a.csv, date_col: date, target_col: y}
`,
			err: ErrInvalidConfig,
		},
		"unknown transform": {
			content: minimalConfig + `
model:
  target_transform: sqrt
`,
			err: ErrInvalidConfig,
		},
		"empty grid": {
			content: minimalConfig + `
model:
  hyperparams:
    alpha: []
`,
			err: ErrInvalidConfig,
		},
		"l1 ratio out of range": {
			content: minimalConfig + `
model:
  hyperparams:
    l1_ratio: [1.5]
`,
			err: ErrInvalidConfig,
		},
		"invalid cv": {
			content: minimalConfig + `
model:
  cv: {n_splits: 0}
`,
			err: ErrInvalidConfig,
		},
		"unknown country": {
			content: minimalConfig + `
transforms:
  holidays: {enabled: true, country: atlantis}
`,
			err: ErrInvalidConfig,
		},
		"zero ec50": {
			content: minimalConfig + `
transforms:
  saturation:
    enabled: true
    params: {spend_a: {ec50: 0, slope: 1}}
`,
			err: ErrInvalidConfig,
		},
		"empty file": {
			content: "",
			err:     ErrInvalidConfig,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, td.content))
			assert.ErrorIs(t, err, td.err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestValidateMessageUsesYAMLKeys(t *testing.T) {
	cfg := NewDefaultConfig()
	err := cfg.Validate()
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "data.path")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
