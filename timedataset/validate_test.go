package timedataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTable(t *testing.T, header []string, records [][]string) *Table {
	table, err := FromRecords(header, records, "date")
	require.Nil(t, err)
	return table
}

func TestValidate(t *testing.T) {
	good := [][]string{
		{"2025-01-01", "10", "1"},
		{"2025-01-02", "20", "2"},
		{"2025-01-03", "30", "3"},
	}

	testData := map[string]struct {
		header           []string
		records          [][]string
		required         []string
		enforceMonotonic bool
		expected         Report
		contains         string
		err              error
	}{
		"valid data passes": {
			header:   []string{"date", "y", "spend_a"},
			records:  good,
			expected: Report{OK: true, Warnings: []string{}},
		},
		"missing required column": {
			header:   []string{"date", "y", "spend_a"},
			records:  good,
			required: []string{"nonexistent"},
			err:      ErrMissingColumns,
		},
		"non numeric target": {
			header:  []string{"date", "y"},
			records: [][]string{{"2025-01-01", "not_a_number"}},
			err:     ErrNonNumericColumn,
		},
		"null target warns": {
			header:  []string{"date", "y"},
			records: [][]string{{"2025-01-01", "1"}, {"2025-01-02", ""}},
			expected: Report{
				OK:       false,
				Warnings: []string{"Target column has 1 null values"},
			},
		},
		"unparseable dates warn": {
			header:  []string{"date", "y"},
			records: [][]string{{"2025-01-01", "1"}, {"not-a-date", "2"}, {"", "3"}},
			expected: Report{
				OK:       false,
				Warnings: []string{"1 date values could not be parsed"},
			},
		},
		"monotonic dates enforced": {
			header:           []string{"date", "y"},
			records:          [][]string{{"2025-01-03", "1"}, {"2025-01-01", "2"}, {"2025-01-02", "3"}},
			enforceMonotonic: true,
			expected: Report{
				OK:       false,
				Warnings: []string{"Dates are not monotonically increasing"},
			},
		},
		"monotonic dates not enforced": {
			header:   []string{"date", "y"},
			records:  [][]string{{"2025-01-03", "1"}, {"2025-01-01", "2"}},
			expected: Report{OK: true, Warnings: []string{}},
		},
		"repeated dates are monotonic": {
			header:           []string{"date", "y"},
			records:          [][]string{{"2025-01-01", "1"}, {"2025-01-01", "2"}, {"2025-01-02", "3"}},
			enforceMonotonic: true,
			expected:         Report{OK: true, Warnings: []string{}},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			table := newTestTable(t, td.header, td.records)
			report, err := Validate(table, "y", td.required, td.enforceMonotonic)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected, report)
		})
	}
}

func TestValidateMissingTarget(t *testing.T) {
	table := newTestTable(t, []string{"date", "y"}, [][]string{{"2025-01-01", "1"}})
	_, err := Validate(table, "revenue", nil, false)
	assert.ErrorIs(t, err, ErrMissingColumns)
	assert.Contains(t, err.Error(), "revenue")

	_, err = Validate(nil, "y", nil, false)
	assert.ErrorIs(t, err, ErrNoTableData)
}
