// Package dataio reads and writes time series tables from csv, parquet and excel files. The file
// format is chosen from the extension.
package dataio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/aouyang1/go-attribution/timedataset"
	"github.com/parquet-go/parquet-go"
	"github.com/xuri/excelize/v2"
)

var (
	ErrFileNotFound         = errors.New("data file not found")
	ErrUnsupportedExtension = errors.New("unsupported file type")
	ErrEmptyFile            = errors.New("file has no header row")
	ErrNoSheets             = errors.New("workbook has no sheets")
)

const (
	ExtCSV     = ".csv"
	ExtParquet = ".parquet"
	ExtXLSX    = ".xlsx"
	ExtXLS     = ".xls"
)

// ReadTable loads the file at path into a table keyed by dateCol
func ReadTable(path, dateCol string) (*timedataset.Table, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s, %w", path, ErrFileNotFound)
		}
		return nil, err
	}

	var (
		header  []string
		records [][]string
		err     error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ExtCSV:
		header, records, err = readCSV(path)
	case ExtParquet:
		header, records, err = readParquet(path, dateCol)
	case ExtXLSX, ExtXLS:
		header, records, err = readExcel(path, dateCol)
	default:
		return nil, fmt.Errorf("got %q, %w", filepath.Ext(path), ErrUnsupportedExtension)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s, %w", path, err)
	}
	return timedataset.FromRecords(header, records, dateCol)
}

func readCSV(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, ErrEmptyFile
		}
		return nil, nil, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	return header, records, nil
}

func readExcel(path, dateCol string) ([]string, [][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, ErrNoSheets
	}

	// raw values keep numbers unformatted and dates as excel serial numbers
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, ErrEmptyFile
	}

	header := rows[0]
	dateIdx := -1
	for j, name := range header {
		if name == dateCol {
			dateIdx = j
			break
		}
	}

	records := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		// trailing empty cells are omitted by excelize
		rec := make([]string, len(header))
		copy(rec, row)
		if dateIdx >= 0 {
			rec[dateIdx] = excelDate(rec[dateIdx])
		}
		records = append(records, rec)
	}
	return header, records, nil
}

// maxExcelSerial is the serial number of 9999-12-31, the last date a workbook can hold
const maxExcelSerial = 2958465

// excelDate converts a serial date cell into an RFC3339 string. Values that already parse as a
// date, such as a yyyymmdd integer, and values outside the serial range are returned as is.
func excelDate(s string) string {
	if _, err := timedataset.ParseDate(s); err == nil {
		return s
	}
	serial, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || serial <= 0 || serial > maxExcelSerial {
		return s
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return s
	}
	return t.UTC().Format(time.RFC3339)
}

func readParquet(path, dateCol string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := parquet.NewReader(f)
	defer r.Close()

	cols := r.Schema().Columns()
	header := make([]string, len(cols))
	for j, p := range cols {
		header[j] = strings.Join(p, ".")
	}

	records := make([][]string, 0, r.NumRows())
	buf := make([]parquet.Row, 128)
	for {
		n, err := r.ReadRows(buf)
		for _, row := range buf[:n] {
			rec := make([]string, len(header))
			for _, v := range row {
				c := v.Column()
				if c < 0 || c >= len(rec) {
					continue
				}
				rec[c] = parquetCell(v, header[c] == dateCol)
			}
			records = append(records, rec)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, nil, err
		}
		if n == 0 {
			break
		}
	}
	return header, records, nil
}

// parquetCell renders a parquet value as the string form FromRecords parses. Integer date columns
// are epoch days for INT32 and epoch timestamps for INT64 with the unit inferred from magnitude.
func parquetCell(v parquet.Value, isDate bool) string {
	if v.IsNull() {
		return ""
	}
	switch v.Kind() {
	case parquet.Boolean:
		if v.Boolean() {
			return "1"
		}
		return "0"
	case parquet.Int32:
		if isDate {
			return time.Unix(int64(v.Int32())*86400, 0).UTC().Format(time.RFC3339)
		}
		return strconv.FormatInt(int64(v.Int32()), 10)
	case parquet.Int64:
		if isDate {
			return epochTime(v.Int64()).Format(time.RFC3339Nano)
		}
		return strconv.FormatInt(v.Int64(), 10)
	case parquet.Float:
		return strconv.FormatFloat(float64(v.Float()), 'g', -1, 32)
	case parquet.Double:
		d := v.Double()
		if math.IsNaN(d) {
			return ""
		}
		return strconv.FormatFloat(d, 'g', -1, 64)
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return string(v.ByteArray())
	}
	return v.String()
}

func epochTime(ts int64) time.Time {
	abs := ts
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1e17:
		return time.Unix(0, ts).UTC()
	case abs >= 1e14:
		return time.UnixMicro(ts).UTC()
	case abs >= 1e11:
		return time.UnixMilli(ts).UTC()
	}
	return time.Unix(ts, 0).UTC()
}
