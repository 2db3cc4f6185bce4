package dataprocessing

import (
	"context"
	"log/slog"
	"math"

	"github.com/Zeyna175/data-processor-app/pkg/contracts/domain"
)

const (
	unknownText     = "Unknown"
	zscoreThreshold = 3.0
)

// imputeStage fills missing cells. Numeric and all-null columns get the
// mean, median or zero; text columns get their most frequent value.
type imputeStage struct {
	strategy string
	logger   *slog.Logger
}

func (s *imputeStage) Name() string { return "impute" }

func (s *imputeStage) Apply(ctx context.Context, table *domain.Table, stats *domain.Stats) error {
	for _, c := range table.Columns() {
		missing := c.NullCount()
		if missing == 0 {
			continue
		}
		var fill domain.Value
		switch c.Kind {
		case domain.KindText:
			fill = textMode(c)
		default:
			fill = domain.Number(s.numericFill(ctx, c))
		}
		for i, v := range c.Values {
			if v.IsNull() {
				c.Values[i] = fill
			}
		}
		c.InferKind()
		stats.MissingValues[c.Name] = missing
	}
	return nil
}

func (s *imputeStage) numericFill(ctx context.Context, c *domain.Column) float64 {
	vals := c.Floats()
	var (
		fill float64
		err  error
	)
	switch s.strategy {
	case domain.MissingMedian:
		fill, err = median(vals)
	case domain.MissingZero:
		return 0
	default:
		fill, err = mean(vals)
	}
	if err != nil || math.IsInf(fill, 0) {
		s.logger.DebugContext(ctx, "fill value undefined, using 0",
			slog.String("column", c.Name),
			slog.String("strategy", s.strategy))
		return 0
	}
	return fill
}

// textMode returns the most frequent non-null cell, the smallest one on
// ties, or "Unknown" when the column has none
func textMode(c *domain.Column) domain.Value {
	type entry struct {
		value domain.Value
		count int
	}
	var order []*entry
	counts := make(map[string]*entry)
	for _, v := range c.Values {
		if v.IsNull() {
			continue
		}
		k := v.String()
		if v.IsNumber() {
			k = "\x00" + k
		}
		e, ok := counts[k]
		if !ok {
			e = &entry{value: v}
			counts[k] = e
			order = append(order, e)
		}
		e.count++
	}
	var best *entry
	for _, e := range order {
		if best == nil || e.count > best.count || (e.count == best.count && valueLess(e.value, best.value)) {
			best = e
		}
	}
	if best == nil {
		return domain.Text(unknownText)
	}
	return best.value
}

// valueLess orders numbers before text, numbers ascending, text bytewise
func valueLess(a, b domain.Value) bool {
	switch {
	case a.IsNumber() && b.IsNumber():
		return a.Num < b.Num
	case a.IsNumber() != b.IsNumber():
		return a.IsNumber()
	}
	return a.String() < b.String()
}

// outlierStage caps or removes outliers in each numeric column. IQR caps
// to Q1/Q3; z-score caps both tails to the mean.
type outlierStage struct {
	method string
	action string
	logger *slog.Logger
}

func (s *outlierStage) Name() string { return "outliers" }

func (s *outlierStage) Apply(ctx context.Context, table *domain.Table, stats *domain.Stats) error {
	for _, c := range table.NumericColumns() {
		b, ok := s.bounds(ctx, c)
		if !ok {
			continue
		}
		flagged := make([]bool, len(c.Values))
		n := 0
		for i, v := range c.Values {
			if v.IsNumber() && b.outside(v.Num) {
				flagged[i] = true
				n++
			}
		}
		if n == 0 {
			continue
		}
		stats.Outliers[c.Name] = n

		if s.action == domain.OutlierRemove {
			table.DropRows(flagged)
			continue
		}
		for i, v := range c.Values {
			switch {
			case !flagged[i]:
			case v.Num < b.lower:
				c.Values[i] = domain.Number(b.capLow)
			default:
				c.Values[i] = domain.Number(b.capHigh)
			}
		}
	}
	return nil
}

// outlierBounds are the fences of one column and what capped values become
type outlierBounds struct {
	lower, upper    float64
	capLow, capHigh float64
	strict          bool
	center, spread  float64
}

func (b outlierBounds) outside(v float64) bool {
	if b.strict {
		return math.Abs(v-b.center)/b.spread > zscoreThreshold
	}
	return v < b.lower || v > b.upper
}

func (s *outlierStage) bounds(ctx context.Context, c *domain.Column) (outlierBounds, bool) {
	vals := c.Floats()
	if len(vals) == 0 {
		return outlierBounds{}, false
	}
	if s.method == domain.OutlierZScore {
		m, err := mean(vals)
		if err != nil {
			return outlierBounds{}, false
		}
		sd, err := stdDev(vals, 1)
		if err != nil || !(sd > 0) || math.IsInf(sd, 0) {
			s.logger.DebugContext(ctx, "skipping column without spread",
				slog.String("column", c.Name),
				slog.String("method", s.method))
			return outlierBounds{}, false
		}
		return outlierBounds{
			lower:  m - zscoreThreshold*sd,
			upper:  m + zscoreThreshold*sd,
			capLow: m, capHigh: m,
			strict: true, center: m, spread: sd,
		}, true
	}

	q1, q3, lower, upper, ok := iqrBounds(vals)
	if !ok {
		s.logger.DebugContext(ctx, "skipping column without spread",
			slog.String("column", c.Name),
			slog.String("method", s.method))
		return outlierBounds{}, false
	}
	return outlierBounds{lower: lower, upper: upper, capLow: q1, capHigh: q3}, true
}

// dedupStage counts full-row duplicates, then drops repeats over the
// subset (or the full row), keeping the first occurrence
type dedupStage struct {
	subset []string
}

func (s *dedupStage) Name() string { return "deduplicate" }

func (s *dedupStage) Apply(_ context.Context, table *domain.Table, stats *domain.Stats) error {
	stats.DuplicatesFound = CountDuplicates(table, nil)

	var cols []*domain.Column
	for _, name := range s.subset {
		if c, ok := table.Column(name); ok {
			cols = append(cols, c)
		}
	}
	stats.DuplicatesRemoved = table.DropRows(duplicateMask(table, cols))
	return nil
}

// normalizeStage rescales numeric columns. Results are computed before the
// table is touched; any non-finite result leaves the table unchanged.
type normalizeStage struct {
	method string
	logger *slog.Logger
}

func (s *normalizeStage) Name() string { return "normalize" }

func (s *normalizeStage) Apply(ctx context.Context, table *domain.Table, stats *domain.Stats) error {
	stats.NormalizationApplied = false
	if s.method == domain.NormalizeNone {
		return nil
	}
	cols := table.NumericColumns()
	if table.Rows() == 0 || len(cols) == 0 {
		return nil
	}

	scaled := make([][]domain.Value, len(cols))
	for j, c := range cols {
		out, err := s.rescale(c)
		if err != nil {
			s.logger.WarnContext(ctx, "normalization failed, keeping original values",
				slog.String("column", c.Name),
				slog.String("method", s.method),
				slog.String("error", err.Error()))
			return nil
		}
		scaled[j] = out
	}
	for j, c := range cols {
		c.Values = scaled[j]
	}
	stats.NormalizationApplied = true
	return nil
}

func (s *normalizeStage) rescale(c *domain.Column) ([]domain.Value, error) {
	vals := c.Floats()
	var shift, scale float64
	switch s.method {
	case domain.NormalizeMinMax:
		lo, hi := minMax(vals)
		shift, scale = lo, hi-lo
	default:
		m, err := mean(vals)
		if err != nil {
			return nil, err
		}
		sd, err := stdDev(vals, 0)
		if err != nil {
			return nil, err
		}
		shift, scale = m, sd
	}
	if scale == 0 {
		scale = 1
	}

	out := make([]domain.Value, len(c.Values))
	for i, v := range c.Values {
		if !v.IsNumber() {
			out[i] = v
			continue
		}
		r := (v.Num - shift) / scale
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return nil, errNonFinite
		}
		out[i] = domain.Number(r)
	}
	return out, nil
}

// finalizeStage records the final shape
type finalizeStage struct{}

func (finalizeStage) Name() string { return "finalize" }

func (finalizeStage) Apply(_ context.Context, table *domain.Table, stats *domain.Stats) error {
	stats.FinalRows = table.Rows()
	stats.FinalColumns = table.Cols()
	stats.RowsRemoved = stats.InitialRows - stats.FinalRows
	return nil
}
