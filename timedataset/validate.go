package timedataset

import (
	"fmt"
	"math"
	"slices"
)

// Report summarizes the data quality checks run before any transform. Warnings never stop the
// pipeline; OK is true only when there are none.
type Report struct {
	OK       bool     `json:"ok"`
	Warnings []string `json:"warnings"`
}

// Validate checks a raw table before transforms. The date, target and required columns must be
// present and the target must be numeric, otherwise an error is returned. Unparseable dates,
// null targets and, when enforceMonotonic is set, dates out of order are reported as warnings.
func Validate(t *Table, targetCol string, required []string, enforceMonotonic bool) (Report, error) {
	if t == nil {
		return Report{}, ErrNoTableData
	}

	all := append([]string{t.DateCol, targetCol}, required...)
	var missing []string
	for _, c := range all {
		if !t.HasColumn(c) && !slices.Contains(missing, c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return Report{}, fmt.Errorf("%v, %w", missing, ErrMissingColumns)
	}

	warnings := []string{}

	// blank dates are nulls rather than parse failures
	var nBad int
	for i, raw := range t.Dates {
		if !t.dateOK[i] && !isBlank(raw) {
			nBad++
		}
	}
	if nBad > 0 {
		warnings = append(warnings, fmt.Sprintf("%d date values could not be parsed", nBad))
	}

	if enforceMonotonic && !datesNonDecreasing(t) {
		warnings = append(warnings, "Dates are not monotonically increasing")
	}

	if !t.IsNumeric(targetCol) {
		return Report{}, fmt.Errorf("target column '%s', %w", targetCol, ErrNonNumericColumn)
	}
	var nNull int
	for _, v := range t.values[targetCol] {
		if math.IsNaN(v) {
			nNull++
		}
	}
	if nNull > 0 {
		warnings = append(warnings, fmt.Sprintf("Target column has %d null values", nNull))
	}

	return Report{
		OK:       len(warnings) == 0,
		Warnings: warnings,
	}, nil
}

func datesNonDecreasing(t *Table) bool {
	last := -1
	for i := 0; i < t.Len(); i++ {
		if !t.dateOK[i] {
			continue
		}
		if last >= 0 && t.T[i].Before(t.T[last]) {
			return false
		}
		last = i
	}
	return true
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' {
			return false
		}
	}
	return true
}
