package dataprocessing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Zeyna175/data-processor-app/internal/infrastructure"
	"github.com/Zeyna175/data-processor-app/internal/validation"
	"github.com/Zeyna175/data-processor-app/pkg/contracts/domain"
)

// stage is one step of the cleaning pipeline. It mutates the table in place
// and records what it did.
type stage interface {
	Name() string
	Apply(ctx context.Context, table *domain.Table, stats *domain.Stats) error
}

// Pipeline runs imputation, outlier handling, deduplication, normalization
// and the final tally, in that order. A Pipeline holds no state between
// calls; build one per request.
type Pipeline struct {
	opts   domain.Options
	logger *slog.Logger
	stages []stage
}

// NewPipeline builds a pipeline for the given options
func NewPipeline(opts domain.Options, logger *slog.Logger) *Pipeline {
	logger = infrastructure.WithComponent(logger, "pipeline")
	return &Pipeline{
		opts:   opts,
		logger: logger,
		stages: []stage{
			&imputeStage{strategy: opts.MissingStrategy, logger: logger},
			&outlierStage{method: opts.OutlierMethod, action: opts.OutlierAction, logger: logger},
			&dedupStage{subset: opts.DuplicateSubset},
			&normalizeStage{method: opts.Normalization, logger: logger},
			finalizeStage{},
		},
	}
}

// Process cleans a copy of table and returns it with the run's stats. The
// input table is never modified. Only invalid options, an unknown
// duplicate_subset column or a broken table abort the run.
func (p *Pipeline) Process(ctx context.Context, table *domain.Table) (*domain.Table, *domain.Stats, error) {
	if table == nil {
		return nil, nil, errors.New("nil table")
	}
	if err := validation.ValidateOptions(p.opts); err != nil {
		return nil, nil, err
	}
	if err := table.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid table: %w", err)
	}
	for _, name := range p.opts.DuplicateSubset {
		if _, ok := table.Column(name); !ok {
			return nil, nil, fmt.Errorf("duplicate_subset: %w %q", ErrUnknownColumn, name)
		}
	}

	work := table.Clone()
	stats := domain.NewStats(p.opts)
	stats.InitialRows = work.Rows()
	stats.InitialColumns = work.Cols()

	for _, s := range p.stages {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		start := time.Now()
		if err := s.Apply(ctx, work, stats); err != nil {
			return nil, nil, &StageError{Stage: s.Name(), Err: err}
		}
		if err := work.Validate(); err != nil {
			return nil, nil, &StageError{Stage: s.Name(), Err: fmt.Errorf("table left inconsistent: %w", err)}
		}
		p.logger.DebugContext(ctx, "stage completed",
			slog.String("stage", s.Name()),
			slog.Int("rows", work.Rows()),
			slog.Duration("duration", time.Since(start)))
	}

	p.logger.InfoContext(ctx, "pipeline completed",
		slog.Int("initial_rows", stats.InitialRows),
		slog.Int("final_rows", stats.FinalRows),
		slog.Int("rows_removed", stats.RowsRemoved),
		slog.Bool("normalization_applied", stats.NormalizationApplied))
	return work, stats, nil
}
