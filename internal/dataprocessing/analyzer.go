package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Zeyna175/data-processor-app/internal/infrastructure"
	"github.com/Zeyna175/data-processor-app/pkg/contracts/domain"
)

// Analyzer computes a read-only preview of a table
type Analyzer struct {
	logger *slog.Logger
}

// NewAnalyzer creates an analyzer
func NewAnalyzer(logger *slog.Logger) *Analyzer {
	return &Analyzer{logger: infrastructure.WithComponent(logger, "analyzer")}
}

// Analyze reports counts, missing values, duplicates, IQR outliers and
// column types. Each metric is computed on its own; a metric that fails is
// logged and left empty without affecting the others. The table is not
// modified.
func (a *Analyzer) Analyze(ctx context.Context, table *domain.Table) *domain.AnalysisReport {
	report := &domain.AnalysisReport{
		Columns:       []string{},
		MissingValues: map[string]int{},
		Outliers:      map[string]int{},
		ColumnTypes:   map[string]string{},
	}
	if table == nil {
		return report
	}

	a.metric(ctx, "shape", func() error {
		report.TotalRows = table.Rows()
		report.TotalColumns = table.Cols()
		report.Columns = table.ColumnNames()
		return nil
	})
	a.metric(ctx, "missing_values", func() error {
		report.MissingValues = MissingCounts(table)
		return nil
	})
	a.metric(ctx, "duplicates", func() error {
		report.Duplicates = CountDuplicates(table, nil)
		return nil
	})
	a.metric(ctx, "outliers", func() error {
		report.Outliers = IQROutlierCounts(table)
		return nil
	})
	a.metric(ctx, "column_types", func() error {
		types := make(map[string]string, table.Cols())
		for _, c := range table.Columns() {
			types[c.Name] = string(c.Kind)
		}
		report.ColumnTypes = types
		return nil
	})
	return report
}

// metric runs fn, turning a panic into a logged failure
func (a *Analyzer) metric(ctx context.Context, name string, fn func() error) {
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return fn()
	}()
	if err != nil {
		a.logger.WarnContext(ctx, "analysis metric failed",
			slog.String("metric", name),
			slog.String("error", err.Error()))
	}
}

// MissingCounts returns the null count of every column that has at least one
func MissingCounts(table *domain.Table) map[string]int {
	out := make(map[string]int)
	for _, c := range table.Columns() {
		if n := c.NullCount(); n > 0 {
			out[c.Name] = n
		}
	}
	return out
}

// CountDuplicates returns how many rows repeat an earlier row over cols
// (every column when cols is empty)
func CountDuplicates(table *domain.Table, cols []*domain.Column) int {
	return countTrue(duplicateMask(table, cols))
}

// duplicateMask flags every row equal to an earlier one over cols
func duplicateMask(table *domain.Table, cols []*domain.Column) []bool {
	mask := make([]bool, table.Rows())
	seen := make(map[string]struct{}, table.Rows())
	for i := range mask {
		key := table.RowKey(i, cols)
		if _, dup := seen[key]; dup {
			mask[i] = true
			continue
		}
		seen[key] = struct{}{}
	}
	return mask
}

// IQROutlierCounts counts values outside the 1.5*IQR fences in each numeric
// column. Columns without spread are skipped.
func IQROutlierCounts(table *domain.Table) map[string]int {
	out := make(map[string]int)
	for _, c := range table.NumericColumns() {
		_, _, lower, upper, ok := iqrBounds(c.Floats())
		if !ok {
			continue
		}
		n := 0
		for _, v := range c.Values {
			if v.IsNumber() && (v.Num < lower || v.Num > upper) {
				n++
			}
		}
		if n > 0 {
			out[c.Name] = n
		}
	}
	return out
}

func countTrue(mask []bool) int {
	n := 0
	for _, b := range mask {
		if b {
			n++
		}
	}
	return n
}
