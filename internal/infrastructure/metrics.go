package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// CleaningMetrics holds the application metrics
type CleaningMetrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram

	// Loader metrics
	FilesLoadedTotal     metric.Int64Counter
	LoadFailuresTotal    metric.Int64Counter
	PlaceholderFallbacks metric.Int64Counter

	// Pipeline metrics
	PipelineRunsTotal metric.Int64Counter
	PipelineDuration  metric.Float64Histogram
	RowsProcessed     metric.Int64Counter
	RowsRemoved       metric.Int64Counter
}

// CreateCleaningMetrics creates the application instruments on meter
func CreateCleaningMetrics(meter metric.Meter) (*CleaningMetrics, error) {
	m := &CleaningMetrics{}
	var err error

	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	); err != nil {
		return nil, err
	}
	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.FilesLoadedTotal, err = meter.Int64Counter(
		"files_loaded_total",
		metric.WithDescription("Files loaded, by file type and decoding strategy"),
	); err != nil {
		return nil, err
	}
	if m.LoadFailuresTotal, err = meter.Int64Counter(
		"file_load_failures_total",
		metric.WithDescription("Files that could not be loaded"),
	); err != nil {
		return nil, err
	}
	if m.PlaceholderFallbacks, err = meter.Int64Counter(
		"placeholder_fallbacks_total",
		metric.WithDescription("Loads that fell back to placeholder data"),
	); err != nil {
		return nil, err
	}
	if m.PipelineRunsTotal, err = meter.Int64Counter(
		"pipeline_runs_total",
		metric.WithDescription("Cleaning pipeline runs, by status"),
	); err != nil {
		return nil, err
	}
	if m.PipelineDuration, err = meter.Float64Histogram(
		"pipeline_duration_seconds",
		metric.WithDescription("Cleaning pipeline duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.RowsProcessed, err = meter.Int64Counter(
		"pipeline_rows_processed_total",
		metric.WithDescription("Rows fed into the cleaning pipeline"),
	); err != nil {
		return nil, err
	}
	if m.RowsRemoved, err = meter.Int64Counter(
		"pipeline_rows_removed_total",
		metric.WithDescription("Rows removed by outlier removal or deduplication"),
	); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordLoad records a successful or failed load
func (m *CleaningMetrics) RecordLoad(ctx context.Context, fileType, strategy string, placeholder bool, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("file_type", fileType))
	if err != nil {
		m.LoadFailuresTotal.Add(ctx, 1, attrs)
		return
	}
	m.FilesLoadedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("file_type", fileType),
		attribute.String("strategy", strategy),
	))
	if placeholder {
		m.PlaceholderFallbacks.Add(ctx, 1, attrs)
	}
}

// RecordPipelineRun records one pipeline execution
func (m *CleaningMetrics) RecordPipelineRun(ctx context.Context, duration time.Duration, initialRows, rowsRemoved int, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	attrs := metric.WithAttributes(attribute.String("status", status))
	m.PipelineRunsTotal.Add(ctx, 1, attrs)
	m.PipelineDuration.Record(ctx, duration.Seconds(), attrs)
	if err == nil {
		m.RowsProcessed.Add(ctx, int64(initialRows))
		m.RowsRemoved.Add(ctx, int64(rowsRemoved))
	}
}

// RecordHTTPRequest records one served request
func (m *CleaningMetrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, duration.Seconds(), attrs)
}
