package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/aouyang1/go-attribution/models"
	"github.com/aouyang1/go-attribution/stats"
	"github.com/aouyang1/go-attribution/train"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFit() *train.FitResult {
	return &train.FitResult{
		Coef:      []float64{1.5, 0},
		Intercept: 10,
		Scaler:    &models.StandardScaler{Mean: []float64{1, 2}, Scale: []float64{0.5, 1}},
		FoldMetrics: []train.FoldMetrics{
			{Fold: 0, Alpha: 0.1, L1Ratio: 0.5, MAPE: 0.2, R2: 0.8, MSE: 2},
			{Fold: 1, Alpha: 0.1, L1Ratio: 0.5, MAPE: 0.4, R2: 0.6, MSE: 4},
		},
		BestParams: train.Params{Alpha: 0.1, L1Ratio: 0.5},
	}
}

func TestNewModel(t *testing.T) {
	info := ModelInfo{
		Target:           "revenue",
		TargetTransform:  "log1p",
		FeatureTransform: "none",
		Features:         []string{"tv", "search"},
		Dates: []time.Time{
			time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC),
		},
	}

	m, err := NewModel(newTestFit(), info)
	require.Nil(t, err)
	assert.Equal(t, []stats.CoefRow{{Feature: "tv", Coef: 1.5}, {Feature: "search", Coef: 0}}, m.Coefficients)
	assert.Equal(t, info.Dates[0], m.TrainStart)
	assert.Equal(t, info.Dates[2], m.TrainEnd)
	assert.InDelta(t, 0.3, m.Scores.AvgMAPE, 1e-12)
	assert.InDelta(t, 0.7, m.Scores.AvgR2, 1e-12)
	assert.InDelta(t, 3.0, m.Scores.AvgMSE, 1e-12)

	out, err := json.Marshal(m)
	require.Nil(t, err)
	var res Model
	require.Nil(t, json.Unmarshal(out, &res))
	assert.Equal(t, m.BestParams, res.BestParams)
	assert.Equal(t, m.Scaler, res.Scaler)
	assert.Equal(t, m.Coefficients, res.Coefficients)

	_, err = NewModel(newTestFit(), ModelInfo{Features: []string{"tv"}})
	assert.ErrorIs(t, err, stats.ErrFeatureLenMismatch)
}

func TestModelTablePrint(t *testing.T) {
	m, err := NewModel(newTestFit(), ModelInfo{
		Target:           "revenue",
		TargetTransform:  "none",
		FeatureTransform: "none",
		Features:         []string{"tv", "search"},
	})
	require.Nil(t, err)

	var buf bytes.Buffer
	require.Nil(t, m.TablePrint(&buf, "", "  "))
	out := buf.String()
	assert.Contains(t, out, "Target: revenue (none)")
	assert.Contains(t, out, "MAPE: 0.300")
	assert.Contains(t, out, "1.500")
	assert.Contains(t, out, "...")
	assert.NotContains(t, out, "Training Range")
}
