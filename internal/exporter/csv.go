package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Zeyna175/data-processor-app/internal/config"
	"github.com/Zeyna175/data-processor-app/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance. paths may be nil, in
// which case relative paths are used as given.
func NewCSVWriter(paths *config.Paths, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{paths: paths, logger: logger}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // UTF-8 BOM so Excel recognizes the encoding
}

// WriteTable writes table as CSV with a header row. Null cells are empty.
func (w *CSVWriter) WriteTable(filePath string, table *domain.Table, bom bool) (string, error) {
	records := make([][]string, table.Rows())
	cols := table.Columns()
	for i := range records {
		rec := make([]string, len(cols))
		for j, c := range cols {
			rec[j] = formatCell(c.Values[i])
		}
		records[i] = rec
	}

	return w.WriteCSV(filePath, WriteOptions{
		Headers:   table.ColumnNames(),
		Records:   records,
		BOMPrefix: bom,
	})
}

// WriteCSV writes data to a CSV file and returns the resolved path
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) (string, error) {
	fullPath := resolvePath(w.paths, filePath)

	w.logger.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	file, err := createFile(fullPath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if options.BOMPrefix {
		if _, err := file.Write(utf8BOM); err != nil {
			return "", fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return "", fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("failed to flush csv: %w", err)
	}
	return fullPath, file.Close()
}

func createFile(fullPath string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	return file, nil
}

// resolvePath keeps absolute paths and places relative ones in the
// processed directory
func resolvePath(paths *config.Paths, filePath string) string {
	if filepath.IsAbs(filePath) || paths == nil {
		return filePath
	}
	return paths.GetProcessedPath(filePath)
}
