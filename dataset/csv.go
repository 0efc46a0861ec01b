package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// nullTokens are cell values treated as missing on read.
var nullTokens = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "NaN": {}, "nan": {}, "null": {},
}

func isNullToken(s string) bool {
	_, ok := nullTokens[strings.TrimSpace(s)]
	return ok
}

// ReadCSV parses a CSV stream into a frame. Column kinds are inferred: a
// column is numeric when every non-missing cell parses as a number.
func ReadCSV(r io.Reader) (*Frame, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("dataset: read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset: csv has no header row")
	}

	header := records[0]
	rows := records[1:]
	f := New()

	for j, name := range header {
		raw := make([]string, len(rows))
		for i, rec := range rows {
			if j < len(rec) {
				raw[i] = strings.TrimSpace(rec[j])
			}
		}

		numeric := true
		for _, v := range raw {
			if isNullToken(v) {
				continue
			}
			if _, err := cast.ToFloat64E(v); err != nil {
				numeric = false
				break
			}
		}

		if numeric {
			nums := make([]float64, len(raw))
			for i, v := range raw {
				if isNullToken(v) {
					nums[i] = math.NaN()
					continue
				}
				nums[i], _ = cast.ToFloat64E(v)
			}
			f.AddNumeric(name, nums)
		} else {
			strs := make([]string, len(raw))
			for i, v := range raw {
				if isNullToken(v) {
					continue
				}
				strs[i] = v
			}
			f.AddString(name, strs)
		}
	}
	return f, nil
}

// ReadCSVFile parses the CSV file at path.
func ReadCSVFile(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %q: %w", path, err)
	}
	defer file.Close()
	return ReadCSV(file)
}

// WriteCSV serializes the frame. Missing values are written as empty cells.
func (f *Frame) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(f.Names()); err != nil {
		return fmt.Errorf("dataset: write header: %w", err)
	}

	rows := f.Rows()
	record := make([]string, f.Width())
	for i := 0; i < rows; i++ {
		for j := range f.cols {
			c := &f.cols[j]
			if c.IsNull(i) {
				record[j] = ""
			} else if c.Kind == Numeric {
				record[j] = strconv.FormatFloat(c.Nums[i], 'g', -1, 64)
			} else {
				record[j] = c.Strs[i]
			}
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("dataset: write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteCSVFile writes the frame to path, creating intermediate directories.
func (f *Frame) WriteCSVFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("dataset: create output dir: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dataset: create %q: %w", path, err)
	}
	defer file.Close()
	return f.WriteCSV(file)
}
