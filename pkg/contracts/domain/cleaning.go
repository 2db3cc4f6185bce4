package domain

import (
	"path/filepath"
	"strings"
)

// FileType is the declared format of an input file
type FileType string

const (
	FileTypeCSV   FileType = "csv"
	FileTypeExcel FileType = "excel"
	FileTypeJSON  FileType = "json"
	FileTypeXML   FileType = "xml"
)

// SupportedExtensions lists the upload extensions accepted by the service
var SupportedExtensions = []string{"csv", "xlsx", "xls", "json", "xml"}

// FileTypeFromExtension maps a filename or bare extension to its declared
// type. xlsx and xls collapse to excel.
func FileTypeFromExtension(name string) (FileType, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" {
		ext = strings.ToLower(strings.TrimPrefix(name, "."))
	}
	switch ext {
	case "csv":
		return FileTypeCSV, true
	case "xlsx", "xls", "excel":
		return FileTypeExcel, true
	case "json":
		return FileTypeJSON, true
	case "xml":
		return FileTypeXML, true
	}
	return "", false
}

// Cleaning option values
const (
	MissingMean   = "mean"
	MissingMedian = "median"
	MissingZero   = "zero"

	OutlierIQR    = "iqr"
	OutlierZScore = "zscore"

	OutlierCap    = "cap"
	OutlierRemove = "remove"

	NormalizeStandard = "standard"
	NormalizeMinMax   = "minmax"
	NormalizeNone     = "none"
)

// Options configures one pipeline run
type Options struct {
	MissingStrategy string   `json:"missing_strategy" yaml:"missing_strategy" validate:"required,oneof=mean median zero"`
	OutlierMethod   string   `json:"outlier_method" yaml:"outlier_method" validate:"required,oneof=iqr zscore"`
	OutlierAction   string   `json:"outlier_action" yaml:"outlier_action" validate:"required,oneof=cap remove"`
	DuplicateSubset []string `json:"duplicate_subset,omitempty" yaml:"duplicate_subset" validate:"omitempty,dive,required"`
	Normalization   string   `json:"normalization" yaml:"normalization" validate:"required,oneof=standard minmax none"`
}

// DefaultOptions returns the options used when a caller supplies none
func DefaultOptions() Options {
	return Options{
		MissingStrategy: MissingMean,
		OutlierMethod:   OutlierIQR,
		OutlierAction:   OutlierCap,
		Normalization:   NormalizeStandard,
	}
}

// Stats describes what a pipeline run changed
type Stats struct {
	InitialRows          int            `json:"initial_rows"`
	InitialColumns       int            `json:"initial_columns"`
	FinalRows            int            `json:"final_rows"`
	FinalColumns         int            `json:"final_columns"`
	RowsRemoved          int            `json:"rows_removed"`
	MissingStrategy      string         `json:"missing_strategy"`
	MissingValues        map[string]int `json:"missing_values"`
	OutlierMethod        string         `json:"outlier_method"`
	OutlierAction        string         `json:"outlier_action"`
	Outliers             map[string]int `json:"outliers"`
	DuplicatesFound      int            `json:"duplicates_found"`
	DuplicatesRemoved    int            `json:"duplicates_removed"`
	Normalization        string         `json:"normalization"`
	NormalizationApplied bool           `json:"normalization_applied"`
}

// NewStats creates an empty stats record for the given options
func NewStats(opts Options) *Stats {
	return &Stats{
		MissingStrategy: opts.MissingStrategy,
		MissingValues:   make(map[string]int),
		OutlierMethod:   opts.OutlierMethod,
		OutlierAction:   opts.OutlierAction,
		Outliers:        make(map[string]int),
		Normalization:   opts.Normalization,
	}
}

// AnalysisReport is the read-only preview of a loaded table
type AnalysisReport struct {
	Filename      string            `json:"filename,omitempty"`
	FileType      FileType          `json:"file_type,omitempty"`
	TotalRows     int               `json:"total_rows"`
	TotalColumns  int               `json:"total_columns"`
	Columns       []string          `json:"columns"`
	MissingValues map[string]int    `json:"missing_values"`
	Duplicates    int               `json:"duplicates"`
	Outliers      map[string]int    `json:"outliers"`
	ColumnTypes   map[string]string `json:"column_types"`
	LoadStrategy  string            `json:"load_strategy,omitempty"`
	Placeholder   bool              `json:"placeholder"`
}
