package exporter

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Zeyna175/data-processor-app/pkg/contracts/domain"
)

// Format is an output file format
type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
	FormatJSON  Format = "json"
)

// SupportedFormats lists the accepted output formats
var SupportedFormats = []Format{FormatCSV, FormatExcel, FormatJSON}

// ParseFormat accepts csv, excel (or xlsx) and json, case-insensitively
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "excel", "xlsx":
		return FormatExcel, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Extension returns the file extension, without dot, for f
func (f Format) Extension() string {
	if f == FormatExcel {
		return "xlsx"
	}
	return string(f)
}

// formatCell renders a cell for CSV output. Numbers use the shortest
// representation that round-trips.
func formatCell(v domain.Value) string {
	if v.IsNumber() {
		return formatFloat(v.Num)
	}
	return v.String()
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// jsonCell maps a cell to a JSON-encodable value. Non-finite numbers have
// no JSON form and become null.
func jsonCell(v domain.Value) interface{} {
	if v.IsNumber() && (math.IsInf(v.Num, 0) || math.IsNaN(v.Num)) {
		return nil
	}
	return v.Interface()
}
