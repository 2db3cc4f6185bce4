package dataprocessing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Zeyna175/data-processor-app/pkg/contracts/domain"
)

// strategy is one named way of turning the raw file into a table
type strategy struct {
	name string
	// group ties strategies that share a text encoding. A decode failure
	// skips the rest of the group.
	group string
	run   func() (*domain.Table, error)
}

// attempt is the tagged result of running one strategy
type attempt struct {
	strategy string
	table    *domain.Table
	err      error
}

func (a attempt) ok() bool { return a.err == nil && a.table != nil }

// ladder runs strategies in order until one succeeds
type ladder struct {
	format     string
	strategies []strategy
	logger     *slog.Logger
}

func newLadder(format string, logger *slog.Logger) *ladder {
	return &ladder{format: format, logger: logger}
}

func (l *ladder) add(name, group string, run func() (*domain.Table, error)) *ladder {
	l.strategies = append(l.strategies, strategy{name: name, group: group, run: run})
	return l
}

// run returns the first successful attempt. When every strategy fails the
// returned error joins each attempt's failure.
func (l *ladder) run(ctx context.Context) (attempt, error) {
	var failures []attempt
	skipGroup := ""
	for _, s := range l.strategies {
		if err := ctx.Err(); err != nil {
			return attempt{}, err
		}
		if skipGroup != "" && s.group == skipGroup {
			continue
		}
		a := attempt{strategy: s.name}
		a.table, a.err = s.run()
		if a.err == nil && a.table == nil {
			a.err = errNoRows
		}
		if a.ok() {
			l.logger.DebugContext(ctx, "decoding strategy succeeded",
				slog.String("format", l.format),
				slog.String("strategy", s.name),
				slog.Int("rows", a.table.Rows()),
				slog.Int("columns", a.table.Cols()))
			return a, nil
		}

		l.logger.DebugContext(ctx, "decoding strategy failed",
			slog.String("format", l.format),
			slog.String("strategy", s.name),
			slog.String("error", a.err.Error()))
		failures = append(failures, a)

		var de *decodeError
		if errors.As(a.err, &de) && s.group != "" {
			skipGroup = s.group
		} else {
			skipGroup = ""
		}
	}
	return attempt{}, exhausted(failures)
}

func exhausted(failures []attempt) error {
	parts := make([]string, 0, len(failures))
	for _, f := range failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.strategy, f.err))
	}
	return fmt.Errorf("%w (%s)", ErrStrategiesExhausted, strings.Join(parts, "; "))
}
