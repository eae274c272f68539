package report

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"time"

	"github.com/aouyang1/go-attribution/attribution"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

var ErrSeriesLenMismatch = errors.New("series length does not match the number of dates")

// Share is the fraction of the non intercept contribution attributed to a feature
type Share struct {
	Feature string
	Share   float64
}

// ContributionShares drops the intercept, sorts the totals descending and divides each by their
// sum. Shares are all zero when the totals sum to zero.
func ContributionShares(totals []attribution.Total) []Share {
	shares := make([]Share, 0, len(totals))
	var sum float64
	for _, t := range totals {
		if t.Feature == attribution.InterceptColumn {
			continue
		}
		shares = append(shares, Share{Feature: t.Feature, Share: t.Total})
		sum += t.Total
	}
	slices.SortStableFunc(shares, func(a, b Share) int {
		switch {
		case a.Share > b.Share:
			return -1
		case a.Share < b.Share:
			return 1
		}
		return 0
	})
	for i := range shares {
		if sum == 0 {
			shares[i].Share = 0
			continue
		}
		shares[i].Share /= sum
	}
	return shares
}

// LineActualPredicted generates an echart line chart of the target against the in sample model
// prediction.
func LineActualPredicted(t []time.Time, actual, predicted []float64) (*charts.Line, error) {
	if len(actual) != len(t) || len(predicted) != len(t) {
		return nil, fmt.Errorf("%d dates, %d actual, %d predicted, %w", len(t), len(actual), len(predicted), ErrSeriesLenMismatch)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: "Actual vs Predicted",
			},
		),
	)

	xAxis := make([]string, len(t))
	lineDataActual := make([]opts.LineData, len(t))
	lineDataPredicted := make([]opts.LineData, len(t))
	for i := range t {
		xAxis[i] = FormatDate(t[i])
		lineDataActual[i] = lineValue(actual[i])
		lineDataPredicted[i] = lineValue(predicted[i])
	}

	line.SetXAxis(xAxis).
		AddSeries("Actual", lineDataActual).
		AddSeries("Predicted", lineDataPredicted)
	return line, nil
}

func lineValue(v float64) opts.LineData {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return opts.LineData{Value: "-"}
	}
	return opts.LineData{Value: v}
}

// BarContributionShare generates an echart bar chart of each feature's share of the non intercept
// contribution.
func BarContributionShare(totals []attribution.Total) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: "Contribution Share",
			},
		),
	)

	shares := ContributionShares(totals)
	xAxis := make([]string, len(shares))
	barData := make([]opts.BarData, len(shares))
	for i, s := range shares {
		xAxis[i] = s.Feature
		barData[i] = opts.BarData{Value: s.Share}
	}

	bar.SetXAxis(xAxis).AddSeries("Share", barData)
	return bar
}

// RenderPlots renders both charts onto a single html page
func RenderPlots(w io.Writer, t []time.Time, actual, predicted []float64, totals []attribution.Total) error {
	line, err := LineActualPredicted(t, actual, predicted)
	if err != nil {
		return err
	}
	page := components.NewPage()
	page.AddCharts(
		line,
		BarContributionShare(totals),
	)
	return page.Render(w)
}

// WritePlots renders the charts into plots.html
func (w *Writer) WritePlots(t []time.Time, actual, predicted []float64, totals []attribution.Total) error {
	file, err := os.Create(w.Path(PlotsFile))
	if err != nil {
		return err
	}
	defer file.Close()

	if err := RenderPlots(file, t, actual, predicted, totals); err != nil {
		return err
	}
	return file.Close()
}
