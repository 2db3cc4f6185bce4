package dataprocessing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Zeyna175/data-processor-app/internal/shared/testutil"
	"github.com/Zeyna175/data-processor-app/pkg/contracts/domain"
)

func TestAnalyzer_Analyze(t *testing.T) {
	table := domain.NewTable().
		MustAddColumn("name", cells("Jean", "Marie", "Jean", "Paul", "Ana", "Leo", "Eva", "Max", "Zoe")...).
		MustAddColumn("score", cells(1, 2, 1, 3, 3, 3, 4, nil, 100)...).
		MustAddColumn("empty", cells(nil, nil, nil, nil, nil, nil, nil, nil, nil)...)

	logger, handler := testutil.NewTestLogger(t)
	report := NewAnalyzer(logger).Analyze(context.Background(), table)

	assert.Equal(t, 9, report.TotalRows)
	assert.Equal(t, 3, report.TotalColumns)
	assert.Equal(t, []string{"name", "score", "empty"}, report.Columns)
	assert.Equal(t, map[string]int{"score": 1, "empty": 9}, report.MissingValues)
	assert.Equal(t, 1, report.Duplicates)
	assert.Equal(t, map[string]int{"score": 1}, report.Outliers)
	assert.Equal(t, map[string]string{"name": "text", "score": "numeric", "empty": "null"}, report.ColumnTypes)
	testutil.AssertNoErrors(t, handler)

	// read-only
	assert.Equal(t, 9, table.Rows())
	score, _ := table.Column("score")
	assert.True(t, score.Values[7].IsNull())
	assert.Equal(t, 100.0, score.Values[8].Num)
}

func TestAnalyzer_NilTable(t *testing.T) {
	report := NewAnalyzer(nil).Analyze(context.Background(), nil)

	assert.Zero(t, report.TotalRows)
	assert.Empty(t, report.Columns)
	assert.NotNil(t, report.MissingValues)
	assert.NotNil(t, report.Outliers)
	assert.NotNil(t, report.ColumnTypes)
}

func TestAnalyzer_MetricPanicIsolated(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	a := NewAnalyzer(logger)

	ran := false
	a.metric(context.Background(), "broken", func() error { panic("boom") })
	a.metric(context.Background(), "next", func() error { ran = true; return nil })

	assert.True(t, ran)
	record, ok := handler.FindRecord("analysis metric failed")
	if assert.True(t, ok) {
		assert.Equal(t, "broken", record.Attrs["metric"])
	}
}

func TestCountDuplicates(t *testing.T) {
	table := domain.NewTable().
		MustAddColumn("a", cells(1, 1, 1, nil, nil)...).
		MustAddColumn("b", cells("x", "x", "y", nil, nil)...)

	assert.Equal(t, 2, CountDuplicates(table, nil))

	a, _ := table.Column("a")
	assert.Equal(t, 3, CountDuplicates(table, []*domain.Column{a}))
}
