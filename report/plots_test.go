package report

import (
	"bytes"
	"math"
	"os"
	"testing"
	"time"

	"github.com/aouyang1/go-attribution/attribution"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContributionShares(t *testing.T) {
	testData := map[string]struct {
		totals   []attribution.Total
		expected []Share
	}{
		"excludes intercept and sorts": {
			totals: []attribution.Total{
				{Feature: "search", Total: 25},
				{Feature: "tv", Total: 75},
				{Feature: attribution.InterceptColumn, Total: 1000},
			},
			expected: []Share{
				{Feature: "tv", Share: 0.75},
				{Feature: "search", Share: 0.25},
			},
		},
		"zero sum": {
			totals: []attribution.Total{
				{Feature: "a", Total: 1},
				{Feature: "b", Total: -1},
			},
			expected: []Share{
				{Feature: "a", Share: 0},
				{Feature: "b", Share: 0},
			},
		},
		"only intercept": {
			totals:   []attribution.Total{{Feature: attribution.InterceptColumn, Total: 5}},
			expected: []Share{},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res := ContributionShares(td.totals)
			require.Len(t, res, len(td.expected))
			for i := range td.expected {
				assert.Equal(t, td.expected[i].Feature, res[i].Feature)
				assert.InDelta(t, td.expected[i].Share, res[i].Share, 1e-12)
			}
		})
	}
}

func TestRenderPlots(t *testing.T) {
	dates := []time.Time{
		time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC),
	}
	totals := []attribution.Total{{Feature: "tv", Total: 3}, {Feature: attribution.InterceptColumn, Total: 1}}

	var buf bytes.Buffer
	require.Nil(t, RenderPlots(&buf, dates, []float64{1, 2}, []float64{1.5, math.NaN()}, totals))
	out := buf.String()
	assert.Contains(t, out, "Actual vs Predicted")
	assert.Contains(t, out, "Contribution Share")
	assert.Contains(t, out, "2025-01-13")

	err := RenderPlots(&buf, dates, []float64{1}, []float64{1, 2}, totals)
	assert.ErrorIs(t, err, ErrSeriesLenMismatch)
}

func TestWritePlots(t *testing.T) {
	w := newTestWriter(t)
	dates := []time.Time{time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)}
	require.Nil(t, w.WritePlots(dates, []float64{1}, []float64{1}, []attribution.Total{{Feature: "tv", Total: 1}}))

	info, err := os.Stat(w.Path(PlotsFile))
	require.Nil(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
