// Package services holds the application logic behind the HTTP handlers and
// the CLI.
//
// CleaningService wires the loader, analyzer, pipeline and exporter
// together for one file at a time. Every call is synchronous and shares no
// mutable state with other calls; the logger, tracer and metric
// instruments are the only shared values. Failures come back as
// *errors.AppError values whose type decides the HTTP status.
//
// HealthService reports liveness, storage readiness and the accepted file
// formats.
package services
