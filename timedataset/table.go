package timedataset

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

var (
	ErrNoTableData         = errors.New("no table data")
	ErrMissingColumns      = errors.New("missing required columns")
	ErrColumnNotFound      = errors.New("column not found")
	ErrColumnLenMismatch   = errors.New("column has a different length than the table")
	ErrDuplicateColumn     = errors.New("duplicate column name")
	ErrRecordLenMismatch   = errors.New("record has a different number of fields than the header")
	ErrCannotInferFreq     = errors.New("cannot infer frequency from time data")
	ErrNonNumericColumn    = errors.New("column is not numeric")
	ErrUnparseableDate     = errors.New("date value could not be parsed")
	ErrDateColumnConflicts = errors.New("date column cannot be used as a value column")
)

// dateLayouts are tried in order when parsing a raw date value
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02",
	"2006/01/02 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04:05",
	"20060102",
	"02-Jan-2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// ParseDate parses a raw date string using the first matching layout. Dates without a zone are
// interpreted as UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty value, %w", ErrUnparseableDate)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("got %q, %w", s, ErrUnparseableDate)
}

// Table is an in-memory time series table with one date column and any number of named value
// columns aligned row by row. Raw date strings are kept next to their parsed values so data
// quality checks can report what could not be parsed. Null numeric cells are NaN.
type Table struct {
	DateCol string
	Dates   []string
	T       []time.Time

	dateOK  []bool
	names   []string
	values  map[string][]float64
	numeric map[string]bool
}

// NewTable returns an empty table over the given raw dates. Every date is parsed with ParseDate;
// unparseable values keep a zero time and are reported by Validate.
func NewTable(dateCol string, dates []string) *Table {
	n := len(dates)
	t := &Table{
		DateCol: dateCol,
		Dates:   make([]string, n),
		T:       make([]time.Time, n),
		dateOK:  make([]bool, n),
		values:  make(map[string][]float64),
		numeric: make(map[string]bool),
	}
	copy(t.Dates, dates)
	for i, d := range dates {
		parsed, err := ParseDate(d)
		if err != nil {
			continue
		}
		t.T[i] = parsed
		t.dateOK[i] = true
	}
	return t
}

// NewTableFromTimes returns an empty table over already parsed times. Raw dates are formatted as
// RFC3339.
func NewTableFromTimes(dateCol string, times []time.Time) *Table {
	dates := make([]string, len(times))
	for i, ts := range times {
		dates[i] = ts.UTC().Format(time.RFC3339)
	}
	return NewTable(dateCol, dates)
}

// FromRecords builds a table from a header and string records, the shape produced by csv and
// spreadsheet readers. dateCol must be present in the header. A column is numeric when every
// non blank cell parses as a float; blank and unparseable cells become NaN.
func FromRecords(header []string, records [][]string, dateCol string) (*Table, error) {
	if len(header) == 0 {
		return nil, ErrNoTableData
	}
	dateIdx := slices.Index(header, dateCol)
	if dateIdx < 0 {
		return nil, fmt.Errorf("%v, %w", []string{dateCol}, ErrMissingColumns)
	}

	dates := make([]string, len(records))
	for i, rec := range records {
		if len(rec) != len(header) {
			return nil, fmt.Errorf("record %d has %d fields, expected %d, %w", i, len(rec), len(header), ErrRecordLenMismatch)
		}
		dates[i] = rec[dateIdx]
	}

	t := NewTable(dateCol, dates)
	for j, name := range header {
		if j == dateIdx {
			continue
		}
		vals := make([]float64, len(records))
		numeric := true
		for i, rec := range records {
			vals[i], numeric = parseCell(rec[j], numeric)
		}
		if err := t.addColumn(name, vals, numeric); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func parseCell(s string, numeric bool) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "null") || strings.EqualFold(s, "na") {
		return math.NaN(), numeric
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN(), false
	}
	return v, numeric
}

// AddColumn appends a column in place. Intended for readers building a table; transforms should
// use WithColumn.
func (t *Table) AddColumn(name string, values []float64, numeric bool) error {
	vals := make([]float64, len(values))
	copy(vals, values)
	return t.addColumn(name, vals, numeric)
}

func (t *Table) addColumn(name string, values []float64, numeric bool) error {
	if name == t.DateCol {
		return fmt.Errorf("%s, %w", name, ErrDateColumnConflicts)
	}
	if _, exists := t.values[name]; exists {
		return fmt.Errorf("%s, %w", name, ErrDuplicateColumn)
	}
	if len(values) != t.Len() {
		return fmt.Errorf("column %s has %d values, table has %d rows, %w", name, len(values), t.Len(), ErrColumnLenMismatch)
	}
	t.names = append(t.names, name)
	t.values[name] = values
	t.numeric[name] = numeric
	return nil
}

// Len returns the number of rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Dates)
}

// Columns returns the value column names in order, excluding the date column
func (t *Table) Columns() []string {
	return slices.Clone(t.names)
}

// HasColumn reports whether name is the date column or a value column
func (t *Table) HasColumn(name string) bool {
	if name == t.DateCol {
		return true
	}
	_, ok := t.values[name]
	return ok
}

// IsNumeric reports whether every non null cell of the column is a number
func (t *Table) IsNumeric(name string) bool {
	return t.numeric[name]
}

// Column returns a copy of the named value column
func (t *Table) Column(name string) ([]float64, error) {
	vals, ok := t.values[name]
	if !ok {
		return nil, fmt.Errorf("%s, %w", name, ErrColumnNotFound)
	}
	return slices.Clone(vals), nil
}

// NumericColumn returns a copy of the named column, failing when it holds non numeric cells
func (t *Table) NumericColumn(name string) ([]float64, error) {
	vals, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	if !t.numeric[name] {
		return nil, fmt.Errorf("%s, %w", name, ErrNonNumericColumn)
	}
	return vals, nil
}

// Sum adds up the non null values of a column
func (t *Table) Sum(name string) (float64, error) {
	vals, ok := t.values[name]
	if !ok {
		return 0, fmt.Errorf("%s, %w", name, ErrColumnNotFound)
	}
	var sum float64
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		sum += v
	}
	return sum, nil
}

// WithColumn returns a new table with the column appended, or replaced when the name already
// exists. The receiver is left untouched.
func (t *Table) WithColumn(name string, values []float64) (*Table, error) {
	if name == t.DateCol {
		return nil, fmt.Errorf("%s, %w", name, ErrDateColumnConflicts)
	}
	if len(values) != t.Len() {
		return nil, fmt.Errorf("column %s has %d values, table has %d rows, %w", name, len(values), t.Len(), ErrColumnLenMismatch)
	}

	next := t.shallowCopy()
	if _, exists := next.values[name]; !exists {
		next.names = append(next.names, name)
	}
	next.values[name] = slices.Clone(values)
	next.numeric[name] = true
	return next, nil
}

// shallowCopy copies the column index but shares column slices, which are never mutated after
// they are added.
func (t *Table) shallowCopy() *Table {
	next := &Table{
		DateCol: t.DateCol,
		Dates:   t.Dates,
		T:       t.T,
		dateOK:  t.dateOK,
		names:   slices.Clone(t.names),
		values:  make(map[string][]float64, len(t.values)),
		numeric: make(map[string]bool, len(t.numeric)),
	}
	for k, v := range t.values {
		next.values[k] = v
	}
	for k, v := range t.numeric {
		next.numeric[k] = v
	}
	return next
}

// DateParsed reports whether the raw date of row i was parsed successfully
func (t *Table) DateParsed(i int) bool {
	return t.dateOK[i]
}

// Times returns the parsed dates as a TimeSlice
func (t *Table) Times() TimeSlice {
	return TimeSlice(slices.Clone(t.T))
}

func (t *Table) selectRows(idx []int) *Table {
	next := &Table{
		DateCol: t.DateCol,
		Dates:   make([]string, len(idx)),
		T:       make([]time.Time, len(idx)),
		dateOK:  make([]bool, len(idx)),
		names:   slices.Clone(t.names),
		values:  make(map[string][]float64, len(t.values)),
		numeric: make(map[string]bool, len(t.numeric)),
	}
	for i, r := range idx {
		next.Dates[i] = t.Dates[r]
		next.T[i] = t.T[r]
		next.dateOK[i] = t.dateOK[r]
	}
	for name, vals := range t.values {
		sel := make([]float64, len(idx))
		for i, r := range idx {
			sel[i] = vals[r]
		}
		next.values[name] = sel
		next.numeric[name] = t.numeric[name]
	}
	return next
}

// SortByDate returns a new table stably sorted ascending by parsed date. Rows with unparseable
// dates sort last in their original order.
func (t *Table) SortByDate() *Table {
	idx := indexAll(t.Len())
	slices.SortStableFunc(idx, func(a, b int) int {
		okA, okB := t.dateOK[a], t.dateOK[b]
		switch {
		case okA && okB:
			return t.T[a].Compare(t.T[b])
		case okA:
			return -1
		case okB:
			return 1
		}
		return 0
	})
	return t.selectRows(idx)
}

// Clean drops rows whose date could not be parsed and sorts the remainder ascending by date.
// Rows sharing a date keep their original order.
func (t *Table) Clean() *Table {
	idx := make([]int, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		if t.dateOK[i] {
			idx = append(idx, i)
		}
	}
	return t.selectRows(idx).SortByDate()
}

// DropNulls returns a new table without the rows holding a null in any of cols, along with the
// number of rows dropped.
func (t *Table) DropNulls(cols []string) (*Table, int, error) {
	vals := make([][]float64, len(cols))
	for j, c := range cols {
		v, ok := t.values[c]
		if !ok {
			return nil, 0, fmt.Errorf("%s, %w", c, ErrColumnNotFound)
		}
		vals[j] = v
	}

	idx := make([]int, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		keep := true
		for _, v := range vals {
			if math.IsNaN(v[i]) {
				keep = false
				break
			}
		}
		if keep {
			idx = append(idx, i)
		}
	}
	return t.selectRows(idx), t.Len() - len(idx), nil
}

func indexAll(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}
