package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/aouyang1/go-attribution/attribution"
	"github.com/aouyang1/go-attribution/dataio"
	"github.com/aouyang1/go-attribution/stats"
	"github.com/aouyang1/go-attribution/train"
	"github.com/goccy/go-json"
)

const (
	CoefTableFile          = "coef_table.csv"
	CVMetricsFile          = "cv_metrics.csv"
	ContributionsFile      = "contributions_timeseries.csv"
	ContributionTotalsFile = "contribution_totals.csv"
	ROIFile                = "roi_summary.csv"
	VIFFile                = "vif.csv"
	FeatureSummaryFile     = "feature_summary.csv"
	ModelFile              = "model.json"
	ValidationFile         = "validation.json"
	ConfigUsedFile         = "config_used.yml"
	PlotsFile              = "plots.html"
)

// Writer writes report artifacts into a single directory
type Writer struct {
	Dir string
}

// NewWriter creates dir, including parents, and returns a writer into it
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create reports directory, %w", err)
	}
	return &Writer{Dir: dir}, nil
}

// Path returns the location of a report file
func (w *Writer) Path(name string) string {
	return filepath.Join(w.Dir, name)
}

func (w *Writer) writeCSV(name string, header []string, rows [][]string) error {
	f, err := os.Create(w.Path(name))
	if err != nil {
		return err
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return f.Close()
}

// WriteJSON writes v as indented json
func (w *Writer) WriteJSON(name string, v any) error {
	bytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(w.Path(name), bytes, 0o644)
}

// CopyConfig copies the configuration file verbatim for provenance
func (w *Writer) CopyConfig(src string) error {
	bytes, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(w.Path(ConfigUsedFile), bytes, 0o644)
}

func (w *Writer) WriteCoefTable(rows []stats.CoefRow) error {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = []string{r.Feature, dataio.FormatFloat(r.Coef)}
	}
	return w.writeCSV(CoefTableFile, []string{"feature", "coef"}, out)
}

func (w *Writer) WriteCVMetrics(folds []train.FoldMetrics) error {
	out := make([][]string, len(folds))
	for i, f := range folds {
		out[i] = []string{
			strconv.Itoa(f.Fold),
			dataio.FormatFloat(f.Alpha),
			dataio.FormatFloat(f.L1Ratio),
			dataio.FormatFloat(f.MAPE),
			dataio.FormatFloat(f.R2),
			dataio.FormatFloat(f.MSE),
		}
	}
	return w.writeCSV(CVMetricsFile, []string{"fold", "alpha", "l1_ratio", "mape", "r2", "mse"}, out)
}

// WriteContributions writes one row per date with every feature contribution and the intercept
func (w *Writer) WriteContributions(c *attribution.ContributionResult) error {
	m, n := c.Contributions.Dims()
	header := make([]string, 0, n+1)
	if c.Dates != nil {
		header = append(header, "date")
	}
	header = append(header, c.Columns...)

	out := make([][]string, m)
	for i := 0; i < m; i++ {
		row := make([]string, 0, len(header))
		if c.Dates != nil {
			row = append(row, FormatDate(c.Dates[i]))
		}
		for _, v := range c.Contributions.RawRowView(i) {
			row = append(row, dataio.FormatFloat(v))
		}
		out[i] = row
	}
	return w.writeCSV(ContributionsFile, header, out)
}

func (w *Writer) WriteContributionTotals(totals []attribution.Total) error {
	out := make([][]string, len(totals))
	for i, t := range totals {
		out[i] = []string{t.Feature, dataio.FormatFloat(t.Total)}
	}
	return w.writeCSV(ContributionTotalsFile, []string{"feature", "total"}, out)
}

// WriteROI writes the roi summary, leaving the roi cell blank when it is undefined
func (w *Writer) WriteROI(rois []attribution.ROI) error {
	out := make([][]string, len(rois))
	for i, r := range rois {
		ratio := ""
		if r.Ratio != nil {
			ratio = dataio.FormatFloat(*r.Ratio)
		}
		out[i] = []string{r.Feature, dataio.FormatFloat(r.Contribution), dataio.FormatFloat(r.Spend), ratio}
	}
	return w.writeCSV(ROIFile, []string{"feature", "contribution", "spend", "roi"}, out)
}

func (w *Writer) WriteVIF(vifs []stats.VIF) error {
	out := make([][]string, len(vifs))
	for i, v := range vifs {
		out[i] = []string{v.Feature, dataio.FormatFloat(v.RSquare), dataio.FormatFloat(v.VIF)}
	}
	return w.writeCSV(VIFFile, []string{"feature", "r_squared", "vif"}, out)
}

func (w *Writer) WriteFeatureSummary(sums []stats.Summary) error {
	out := make([][]string, len(sums))
	for i, s := range sums {
		out[i] = []string{
			s.Column,
			strconv.Itoa(s.Count),
			strconv.Itoa(s.Nulls),
			dataio.FormatFloat(s.Mean),
			dataio.FormatFloat(s.Std),
			dataio.FormatFloat(s.Min),
			dataio.FormatFloat(s.Q1),
			dataio.FormatFloat(s.Median),
			dataio.FormatFloat(s.Q3),
			dataio.FormatFloat(s.Max),
			dataio.FormatFloat(s.Sum),
		}
	}
	return w.writeCSV(FeatureSummaryFile,
		[]string{"column", "count", "nulls", "mean", "std", "min", "q1", "median", "q3", "max", "sum"}, out)
}

// FormatDate prints midnight UTC times as a plain date and anything else as RFC3339
func FormatDate(t time.Time) string {
	t = t.UTC()
	if t.Equal(t.Truncate(24 * time.Hour)) {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.RFC3339)
}
