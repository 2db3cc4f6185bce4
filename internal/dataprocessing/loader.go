package dataprocessing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/Zeyna175/data-processor-app/internal/infrastructure"
	"github.com/Zeyna175/data-processor-app/pkg/contracts/domain"
)

// LoadResult is a loaded table and how it was obtained
type LoadResult struct {
	Table *domain.Table
	// Strategy names the decoding strategy that produced the table, or
	// "placeholder:<type>" for the fallback sample
	Strategy    string
	Placeholder bool
}

// Loader turns csv, excel, json and xml files into tables. CSV, JSON and
// XML input that no strategy can decode yields a fixed placeholder table
// instead of an error. Excel failures propagate.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader that logs through logger
func NewLoader(logger *slog.Logger) *Loader {
	return &Loader{logger: infrastructure.WithComponent(logger, "loader")}
}

// Load reads the file once and decodes it as fileType
func (l *Loader) Load(ctx context.Context, path string, fileType domain.FileType) (*LoadResult, error) {
	if !supportedType(fileType) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFileType, fileType)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, FileType: fileType, Err: err}
	}
	res, err := l.LoadBytes(ctx, raw, fileType)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
		}
		return nil, err
	}
	l.logger.InfoContext(ctx, "file loaded",
		slog.String("path", path),
		slog.String("file_type", string(fileType)),
		slog.String("strategy", res.Strategy),
		slog.Int("rows", res.Table.Rows()),
		slog.Int("columns", res.Table.Cols()))
	return res, nil
}

// LoadBytes decodes content already in memory
func (l *Loader) LoadBytes(ctx context.Context, raw []byte, fileType domain.FileType) (*LoadResult, error) {
	var lad *ladder
	switch fileType {
	case domain.FileTypeCSV:
		lad = l.csvStrategies(raw)
	case domain.FileTypeJSON:
		lad = l.jsonStrategies(raw)
	case domain.FileTypeXML:
		lad = l.xmlStrategies(raw)
	case domain.FileTypeExcel:
		table, err := parseExcel(raw)
		if err != nil {
			return nil, &LoadError{FileType: fileType, Err: err}
		}
		return &LoadResult{Table: table, Strategy: excelStrategy}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFileType, fileType)
	}

	a, err := lad.run(ctx)
	if err == nil {
		return &LoadResult{Table: a.table, Strategy: a.strategy}, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, &LoadError{FileType: fileType, Err: ctxErr}
	}

	table, _ := placeholderFor(fileType)
	l.logger.WarnContext(ctx, "all decoding strategies failed, using placeholder data",
		slog.String("file_type", string(fileType)),
		slog.String("error", err.Error()))
	return &LoadResult{
		Table:       table,
		Strategy:    "placeholder:" + string(fileType),
		Placeholder: true,
	}, nil
}

func supportedType(t domain.FileType) bool {
	switch t {
	case domain.FileTypeCSV, domain.FileTypeExcel, domain.FileTypeJSON, domain.FileTypeXML:
		return true
	}
	return false
}
