package dataprocessing

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/Zeyna175/data-processor-app/pkg/contracts/domain"
)

const excelStrategy = "excel:first-sheet"

// oleSignature opens Compound File Binary documents such as BIFF .xls
var oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// parseExcel reads the first sheet of a workbook. The first row is the
// header; rows wider than the header get "Unnamed: i" columns.
func parseExcel(raw []byte) (*domain.Table, error) {
	if bytes.HasPrefix(raw, oleSignature) {
		return nil, ErrLegacyWorkbook
	}
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q: %w", sheets[0], errNoRows)
	}

	header := rows[0]
	width := len(header)
	for _, row := range rows[1:] {
		if len(row) > width {
			width = len(row)
		}
	}
	for len(header) < width {
		header = append(header, "")
	}

	data := make([][]domain.Value, 0, len(rows)-1)
	for _, row := range rows[1:] {
		cells := make([]domain.Value, len(row))
		for i, cell := range row {
			cells[i] = parseCell(cell)
		}
		data = append(data, cells)
	}
	return tableFromRows(header, data)
}
