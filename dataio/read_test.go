package dataio

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aouyang1/go-attribution/timedataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.Nil(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadTableCSV(t *testing.T) {
	path := writeFile(t, "data.csv",
		"date,revenue,spend_tv,region\n"+
			"2025-01-06,100.5,10,east\n"+
			"2025-01-13,,20,west\n"+
			"bad-date,120,30,east\n",
	)

	tbl, err := ReadTable(path, "date")
	require.Nil(t, err)
	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, []string{"revenue", "spend_tv", "region"}, tbl.Columns())
	assert.Equal(t, []string{"2025-01-06", "2025-01-13", "bad-date"}, tbl.Dates)
	assert.True(t, tbl.DateParsed(0))
	assert.False(t, tbl.DateParsed(2))

	rev, err := tbl.NumericColumn("revenue")
	require.Nil(t, err)
	assert.Equal(t, 100.5, rev[0])
	assert.True(t, math.IsNaN(rev[1]))

	assert.True(t, tbl.IsNumeric("spend_tv"))
	assert.False(t, tbl.IsNumeric("region"))
}

func TestReadTableCSVByteOrderMark(t *testing.T) {
	path := writeFile(t, "bom.csv", "\ufeffdate,y\n2025-01-06,1\n")

	tbl, err := ReadTable(path, "date")
	require.Nil(t, err)
	assert.Equal(t, []string{"y"}, tbl.Columns())
}

func TestReadTableErrors(t *testing.T) {
	testData := map[string]struct {
		name    string
		content string
		dateCol string
		err     error
	}{
		"unsupported extension": {"data.json", "{}", "date", ErrUnsupportedExtension},
		"empty csv":             {"empty.csv", "", "date", ErrEmptyFile},
		"missing date column":   {"nodate.csv", "day,y\n2025-01-06,1\n", "date", timedataset.ErrMissingColumns},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, td.name, td.content)
			_, err := ReadTable(path, td.dateCol)
			assert.ErrorIs(t, err, td.err)
		})
	}
}

func TestReadTableMissingFile(t *testing.T) {
	_, err := ReadTable(filepath.Join(t.TempDir(), "nope.csv"), "date")
	assert.ErrorIs(t, err, ErrFileNotFound)

	// the existence check runs before the extension check
	_, err = ReadTable(filepath.Join(t.TempDir(), "nope.json"), "date")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestReadTableExcel(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetList()[0]
	cells := map[string]any{
		"A1": "date", "B1": "revenue", "C1": "spend_tv",
		"A2": time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), "B2": 100.5, "C2": 10,
		"A3": "2025-01-13", "B3": 110.0,
	}
	for cell, v := range cells {
		require.Nil(t, f.SetCellValue(sheet, cell, v))
	}
	path := filepath.Join(t.TempDir(), "data.xlsx")
	require.Nil(t, f.SaveAs(path))
	require.Nil(t, f.Close())

	tbl, err := ReadTable(path, "date")
	require.Nil(t, err)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, []string{"revenue", "spend_tv"}, tbl.Columns())

	expected := []time.Time{
		time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC),
	}
	for i, e := range expected {
		assert.True(t, tbl.DateParsed(i))
		assert.True(t, e.Equal(tbl.T[i]), "expected %s, got %s", e, tbl.T[i])
	}

	rev, err := tbl.NumericColumn("revenue")
	require.Nil(t, err)
	assert.InDeltaSlice(t, []float64{100.5, 110.0}, rev, 1e-9)

	spend, err := tbl.NumericColumn("spend_tv")
	require.Nil(t, err)
	assert.Equal(t, 10.0, spend[0])
	assert.True(t, math.IsNaN(spend[1]))
}

func TestExcelDate(t *testing.T) {
	testData := map[string]struct {
		input    string
		expected string
	}{
		"serial":       {"45292", "2024-01-01T00:00:00Z"},
		"yyyymmdd":     {"20240101", "20240101"},
		"text date":    {"2024-01-01", "2024-01-01"},
		"beyond range": {"3000000", "3000000"},
		"negative":     {"-5", "-5"},
		"blank":        {"", ""},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, excelDate(td.input))
		})
	}
}

func TestReadTableExcelIntegerDates(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetList()[0]
	rows := [][]any{
		{"date", "revenue"},
		{20240101, 100.0},
		{20240108, 120.0},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.Nil(t, err)
		require.Nil(t, f.SetSheetRow(sheet, cell, &row))
	}
	path := filepath.Join(t.TempDir(), "data.xlsx")
	require.Nil(t, f.SaveAs(path))
	require.Nil(t, f.Close())

	tbl, err := ReadTable(path, "date")
	require.Nil(t, err)
	tbl = tbl.Clean()
	require.Equal(t, 2, tbl.Len())
	assert.True(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Equal(tbl.T[0]))
	assert.True(t, time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC).Equal(tbl.T[1]))
}

func TestEpochTime(t *testing.T) {
	expected := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	testData := map[string]struct {
		input int64
	}{
		"seconds": {expected.Unix()},
		"millis":  {expected.UnixMilli()},
		"micros":  {expected.UnixMicro()},
		"nanos":   {expected.UnixNano()},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.True(t, expected.Equal(epochTime(td.input)))
		})
	}
}
