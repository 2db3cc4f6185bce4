// Package http implements the HTTP handlers of the cleaning service. Handlers
// stay thin: they parse the request, call a service and render the result.
//
// # Routes
//
// All routes are mounted under /api:
//
//	POST /upload               multipart "file", cleaned with the configured defaults
//	POST /analyze              multipart "file", returns the analysis report
//	POST /process              {"filename", "options", "output_format"}
//	GET  /files                processed outputs, newest first
//	GET  /download/{filename}  a processed output as an attachment
//	GET  /status               accepted input and output formats
//	GET  /health               liveness plus storage readiness
//
// # Error Handling
//
// Every failure is rendered as an RFC 7807 problem by the shared
// ErrorHandler:
//
//	{
//	    "type": "/errors/validation",
//	    "title": "Bad Request",
//	    "status": 400,
//	    "detail": "Request validation failed",
//	    "instance": "/api/process",
//	    "error_code": "VALIDATION_FAILED"
//	}
//
// Validation problems answer 400, unknown uploads 404 and load or pipeline
// failures 500 with the failing stage in the "stage" member.
package http
