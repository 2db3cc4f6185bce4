package exporter

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Zeyna175/data-processor-app/internal/config"
	"github.com/Zeyna175/data-processor-app/internal/infrastructure"
	"github.com/Zeyna175/data-processor-app/pkg/contracts/domain"
)

// ErrUnsupportedFormat is returned for an unknown output format
var ErrUnsupportedFormat = errors.New("unsupported output format")

type pathResolver func(string) string

// Exporter dispatches a table to the writer for the requested format
type Exporter struct {
	csv   *CSVWriter
	excel *ExcelWriter
	json    *JSONWriter
	resolve pathResolver
	bom     bool
}

// NewExporter creates an exporter. Relative output paths resolve into the
// processed directory of paths when it is non-nil.
func NewExporter(paths *config.Paths, csvBOM bool, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	logger = infrastructure.WithComponent(logger, "exporter")
	resolve := func(p string) string { return resolvePath(paths, p) }

	return &Exporter{
		csv:     NewCSVWriter(paths, logger),
		excel:   &ExcelWriter{paths: resolve, logger: logger},
		json:    &JSONWriter{paths: resolve, logger: logger},
		resolve: resolve,
		bom:     csvBOM,
	}
}

// Target returns the path Export writes to for path
func (e *Exporter) Target(path string) string {
	return e.resolve(path)
}

// Export writes table to path in format and returns the written path
func (e *Exporter) Export(path string, format Format, table *domain.Table) (string, error) {
	if table == nil {
		return "", fmt.Errorf("export %s: nil table", path)
	}

	switch format {
	case FormatCSV:
		return e.csv.WriteTable(path, table, e.bom)
	case FormatExcel:
		return e.excel.WriteTable(path, table)
	case FormatJSON:
		return e.json.WriteTable(path, table)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Export writes table to path without path resolution or a CSV BOM
func Export(path string, format Format, table *domain.Table) error {
	_, err := NewExporter(nil, false, nil).Export(path, format, table)
	return err
}
