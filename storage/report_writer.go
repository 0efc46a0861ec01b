package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ReportWriter writes a tabular report to a CSV file. It is safe for
// concurrent use.
type ReportWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewReportWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewReportWriter(path string, header []string) (*ReportWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("report: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("report: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("report: write header: %w", err)
	}
	w.Flush()

	return &ReportWriter{file: f, writer: w}, nil
}

// WriteRows appends the given records to the report.
func (r *ReportWriter) WriteRows(rows [][]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, row := range rows {
		if err := r.writer.Write(row); err != nil {
			return fmt.Errorf("report: write row: %w", err)
		}
	}
	r.writer.Flush()
	return r.writer.Error()
}

// Close flushes and closes the underlying file.
func (r *ReportWriter) Close() error {
	r.writer.Flush()
	return r.file.Close()
}
