package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Zeyna175/data-processor-app/internal/config"
	"github.com/Zeyna175/data-processor-app/internal/dataprocessing"
	apperrors "github.com/Zeyna175/data-processor-app/internal/errors"
	"github.com/Zeyna175/data-processor-app/internal/exporter"
	"github.com/Zeyna175/data-processor-app/internal/files"
	"github.com/Zeyna175/data-processor-app/internal/infrastructure"
	"github.com/Zeyna175/data-processor-app/internal/validation"
	"github.com/Zeyna175/data-processor-app/pkg/contracts/domain"
)

// ProcessRequest describes one cleaning run
type ProcessRequest struct {
	// Path of the input file
	Path string
	// FileType is derived from Path when empty
	FileType domain.FileType
	Options  domain.Options
	// OutputFormat is csv, excel or json; empty means csv
	OutputFormat string
	// OutputName overrides the derived processed_<base>.<ext> name
	OutputName string
}

// ProcessResult is what a cleaning run produced
type ProcessResult struct {
	Stats        *domain.Stats `json:"stats"`
	OutputFile   string        `json:"processed_file"`
	OutputPath   string        `json:"-"`
	Rows         int           `json:"rows"`
	Columns      int           `json:"columns"`
	LoadStrategy string        `json:"load_strategy"`
	Placeholder  bool          `json:"placeholder"`
}

// CleaningService loads, analyzes, cleans and exports files
type CleaningService struct {
	loader    *dataprocessing.Loader
	analyzer  *dataprocessing.Analyzer
	exporter  *exporter.Exporter
	validator *validation.FileValidator
	tracer    trace.Tracer
	metrics   *infrastructure.CleaningMetrics
	logger    *slog.Logger
}

// CleaningServiceOptions carries the optional collaborators
type CleaningServiceOptions struct {
	// Paths places relative output names in the processed directory
	Paths   *config.Paths
	CSVBOM  bool
	Tracer  trace.Tracer
	Metrics *infrastructure.CleaningMetrics
	Logger  *slog.Logger
}

// NewCleaningService creates a cleaning service
func NewCleaningService(opts CleaningServiceOptions) *CleaningService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer(infrastructure.InstrumentationName)
	}

	logger.Info("CleaningService initialized",
		slog.Bool("csv_bom", opts.CSVBOM),
		slog.Bool("metrics", opts.Metrics != nil))

	return &CleaningService{
		loader:    dataprocessing.NewLoader(logger),
		analyzer:  dataprocessing.NewAnalyzer(logger),
		exporter:  exporter.NewExporter(opts.Paths, opts.CSVBOM, logger),
		validator: validation.NewFileValidator(logger),
		tracer:    tracer,
		metrics:   opts.Metrics,
		logger:    infrastructure.WithComponent(logger, "cleaning_service"),
	}
}

// Analyze loads path and returns its read-only report
func (s *CleaningService) Analyze(ctx context.Context, path string, fileType domain.FileType) (*domain.AnalysisReport, error) {
	ctx, span := s.tracer.Start(ctx, "CleaningService.Analyze",
		trace.WithAttributes(attribute.String("file.path", path)))
	defer span.End()

	res, ft, err := s.load(ctx, path, fileType)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	report := s.analyzer.Analyze(ctx, res.Table)
	report.FileType = ft
	report.LoadStrategy = res.Strategy
	report.Placeholder = res.Placeholder

	infrastructure.SetSpanAttributes(ctx, map[string]interface{}{
		"table.rows":    report.TotalRows,
		"table.columns": report.TotalColumns,
		"load.strategy": res.Strategy,
	})
	return report, nil
}

// Process cleans the file named by req and writes the result. Options are
// validated before the file is read.
func (s *CleaningService) Process(ctx context.Context, req ProcessRequest) (*ProcessResult, error) {
	ctx, span := s.tracer.Start(ctx, "CleaningService.Process",
		trace.WithAttributes(attribute.String("file.path", req.Path)))
	defer span.End()

	result, err := s.process(ctx, req)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}
	infrastructure.SetSpanAttributes(ctx, map[string]interface{}{
		"stats.initial_rows": result.Stats.InitialRows,
		"stats.final_rows":   result.Stats.FinalRows,
		"stats.rows_removed": result.Stats.RowsRemoved,
		"output.file":        result.OutputFile,
	})
	return result, nil
}

func (s *CleaningService) process(ctx context.Context, req ProcessRequest) (*ProcessResult, error) {
	if err := validation.ValidateOptions(req.Options); err != nil {
		return nil, optionsError(err)
	}
	format, err := exporter.ParseFormat(req.OutputFormat)
	if err != nil {
		return nil, apperrors.NewAppValidationError("invalid output_format", err).
			WithContext("allowed", exporter.SupportedFormats)
	}

	res, ft, err := s.load(ctx, req.Path, req.FileType)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	cleaned, stats, err := dataprocessing.NewPipeline(req.Options, s.logger).Process(ctx, res.Table)
	s.metrics.RecordPipelineRun(ctx, time.Since(start), res.Table.Rows(), rowsRemoved(stats), err)
	if err != nil {
		return nil, s.pipelineError(ctx, err)
	}

	name := req.OutputName
	if name == "" {
		name = files.ProcessedName(req.Path, format.Extension())
	}
	if err := s.validator.ValidateOutputDirectory(filepath.Dir(s.exporter.Target(name))); err != nil {
		return nil, apperrors.NewStorageError("output directory is not usable", err)
	}
	written, err := s.exporter.Export(name, format, cleaned)
	if err != nil {
		infrastructure.WithError(s.logger, err).ErrorContext(ctx, "export failed",
			slog.String("output", name))
		return nil, apperrors.NewStorageError("failed to write processed file", err)
	}

	s.logger.InfoContext(ctx, "file processed",
		slog.String("input", req.Path),
		slog.String("file_type", string(ft)),
		slog.String("output", written),
		slog.Int("rows", cleaned.Rows()),
		slog.Int("columns", cleaned.Cols()))

	return &ProcessResult{
		Stats:        stats,
		OutputFile:   name,
		OutputPath:   written,
		Rows:         cleaned.Rows(),
		Columns:      cleaned.Cols(),
		LoadStrategy: res.Strategy,
		Placeholder:  res.Placeholder,
	}, nil
}

func (s *CleaningService) load(ctx context.Context, path string, fileType domain.FileType) (*dataprocessing.LoadResult, domain.FileType, error) {
	if fileType == "" {
		ft, err := validation.DetectFileType(path)
		if err != nil {
			return nil, "", apperrors.NewAppValidationError("cannot determine file type", fmt.Errorf("%w: %v", ErrInvalidFileType, err))
		}
		fileType = ft
	}

	if err := s.validator.ValidateFile(path); err != nil {
		if errors.Is(err, validation.ErrFileNotFound) {
			return nil, fileType, apperrors.NewNotFoundError("file").WithContext("path", path)
		}
		return nil, fileType, apperrors.NewAppValidationError("input file is not usable", err)
	}

	res, err := s.loader.Load(ctx, path, fileType)
	if err != nil {
		s.metrics.RecordLoad(ctx, string(fileType), "", false, err)
		if errors.Is(err, dataprocessing.ErrLegacyWorkbook) {
			return nil, fileType, apperrors.NewAppValidationError("unsupported workbook format", err)
		}
		if errors.Is(err, dataprocessing.ErrUnsupportedFileType) {
			return nil, fileType, apperrors.NewAppValidationError("unsupported file type", fmt.Errorf("%w: %v", ErrInvalidFileType, err))
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fileType, ctxErr
		}
		return nil, fileType, apperrors.NewParsingError("failed to load file", err).
			WithContext("stage", "load")
	}
	s.metrics.RecordLoad(ctx, string(fileType), res.Strategy, res.Placeholder, nil)
	return res, fileType, nil
}

func (s *CleaningService) pipelineError(ctx context.Context, err error) error {
	if errors.Is(err, validation.ErrInvalidOptions) {
		return optionsError(err)
	}
	if errors.Is(err, dataprocessing.ErrUnknownColumn) {
		return apperrors.NewAppValidationError("invalid duplicate_subset", err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	stage := "pipeline"
	var se *dataprocessing.StageError
	if errors.As(err, &se) {
		stage = se.Stage
	}
	infrastructure.WithError(s.logger, err).ErrorContext(ctx, "pipeline failed",
		slog.String("stage", stage))
	return apperrors.NewProcessingError(stage, err)
}

// optionsError turns option validation failures into a validation AppError
// that lists every offending field
func optionsError(err error) error {
	appErr := apperrors.NewAppValidationError("invalid cleaning options", err)
	var oe *validation.OptionsError
	if errors.As(err, &oe) {
		appErr.WithContext("errors", oe.Fields)
	}
	return appErr
}

func rowsRemoved(stats *domain.Stats) int {
	if stats == nil {
		return 0
	}
	return stats.RowsRemoved
}
