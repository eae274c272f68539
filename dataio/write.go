package dataio

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aouyang1/go-attribution/timedataset"
	"github.com/parquet-go/parquet-go"
)

// WriteTable writes the table to path, choosing csv or parquet from the extension. Parent
// directories are created as needed.
func WriteTable(path string, t *timedataset.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ExtCSV:
		return writeCSV(path, t)
	case ExtParquet:
		return writeParquet(path, t)
	default:
		return fmt.Errorf("got %q, %w", filepath.Ext(path), ErrUnsupportedExtension)
	}
}

// FormatFloat renders a value the way every writer in this package does. NaN is blank.
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeCSV(path string, t *timedataset.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cols := t.Columns()
	data := make([][]float64, len(cols))
	for j, name := range cols {
		if data[j], err = t.Column(name); err != nil {
			return err
		}
	}

	w := csv.NewWriter(f)
	if err := w.Write(append([]string{t.DateCol}, cols...)); err != nil {
		return err
	}
	rec := make([]string, len(cols)+1)
	for i := 0; i < t.Len(); i++ {
		rec[0] = t.Dates[i]
		for j := range cols {
			rec[j+1] = FormatFloat(data[j][i])
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func writeParquet(path string, t *timedataset.Table) error {
	cols := t.Columns()
	group := parquet.Group{t.DateCol: parquet.String()}
	for _, name := range cols {
		group[name] = parquet.Optional(parquet.Leaf(parquet.DoubleType))
	}
	schema := parquet.NewSchema("table", group)

	// groups order their leaves by name so every value needs its leaf index
	dateLeaf, _ := schema.Lookup(t.DateCol)
	leaves := make([]int, len(cols))
	data := make([][]float64, len(cols))
	for j, name := range cols {
		leaf, ok := schema.Lookup(name)
		if !ok {
			return fmt.Errorf("%s, %w", name, timedataset.ErrColumnNotFound)
		}
		leaves[j] = leaf.ColumnIndex

		vals, err := t.Column(name)
		if err != nil {
			return err
		}
		data[j] = vals
	}

	rows := make([]parquet.Row, t.Len())
	for i := range rows {
		row := make(parquet.Row, len(cols)+1)
		row[dateLeaf.ColumnIndex] = parquet.ByteArrayValue([]byte(t.Dates[i])).Level(0, 0, dateLeaf.ColumnIndex)
		for j := range cols {
			v := data[j][i]
			if math.IsNaN(v) {
				row[leaves[j]] = parquet.NullValue().Level(0, 0, leaves[j])
				continue
			}
			row[leaves[j]] = parquet.DoubleValue(v).Level(0, 1, leaves[j])
		}
		rows[i] = row
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := parquet.NewWriter(f, schema)
	if _, err := w.WriteRows(rows); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return f.Close()
}
