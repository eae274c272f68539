package feature

import (
	"fmt"
	"time"

	"github.com/aouyang1/go-attribution/event"
	"github.com/aouyang1/go-attribution/timedataset"
)

// defaultPeriod is used when a table is too short to infer its frequency
const defaultPeriod = 24 * time.Hour

// RowPeriod returns the inferred spacing between rows, or one day when it cannot be inferred
func RowPeriod(t timedataset.TimeSlice) time.Duration {
	freq, err := t.EstimateFreq()
	if err != nil {
		return defaultPeriod
	}
	return freq
}

// HolidayIndicator returns 1.0 for every row whose period [t, t+period) overlaps any event and
// 0.0 otherwise.
func HolidayIndicator(t timedataset.TimeSlice, period time.Duration, events []event.Event) []float64 {
	out := make([]float64, len(t))
	for i, ts := range t {
		end := ts.Add(period)
		for _, e := range events {
			if e.Overlaps(ts, end) {
				out[i] = 1.0
				break
			}
		}
	}
	return out
}

// ApplyHolidays appends a holiday indicator column built from the public holidays of country
// over the table's date range. Every date must be parsed, as it is after Clean.
func ApplyHolidays(t *timedataset.Table, country string) (*timedataset.Table, error) {
	times := t.Times()
	if len(times) == 0 {
		return nil, fmt.Errorf("unable to build holiday feature, %w", timedataset.ErrNoTableData)
	}
	for i := range times {
		if !t.DateParsed(i) {
			return nil, fmt.Errorf("unable to build holiday feature at row %d, %w", i, timedataset.ErrUnparseableDate)
		}
	}

	period := RowPeriod(times)
	events, err := event.CountryHolidays(country, times.StartTime(), times.EndTime().Add(period))
	if err != nil {
		return nil, fmt.Errorf("unable to build holiday feature, %w", err)
	}
	return t.WithColumn(HolidayColumn, HolidayIndicator(times, period, events))
}
