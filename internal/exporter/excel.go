package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/Zeyna175/data-processor-app/pkg/contracts/domain"
)

// SheetName is the worksheet every export writes to
const SheetName = "Sheet1"

// ExcelWriter writes tables as xlsx workbooks
type ExcelWriter struct {
	paths  pathResolver
	logger *slog.Logger
}

// WriteTable writes table to a single-sheet workbook. Numbers are stored as
// numeric cells, nulls as empty cells.
func (w *ExcelWriter) WriteTable(filePath string, table *domain.Table) (string, error) {
	fullPath := w.paths(filePath)

	w.logger.Info("Writing Excel file",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("record_count", table.Rows()))

	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, table.Cols())
	for i, name := range table.ColumnNames() {
		header[i] = name
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return "", fmt.Errorf("failed to write header row: %w", err)
	}

	cols := table.Columns()
	for r := 0; r < table.Rows(); r++ {
		row := make([]interface{}, len(cols))
		for j, c := range cols {
			row[j] = jsonCell(c.Values[r])
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return "", err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return "", fmt.Errorf("failed to write row %d: %w", r, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := f.SaveAs(fullPath); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}
	return fullPath, nil
}
