// Package app wires configuration, logging, telemetry, services and the HTTP
// router into a runnable Application and manages its lifecycle.
//
// # Initialization Flow
//
//	1. Resolve and create the uploads, processed and logs directories
//	2. Initialize OpenTelemetry and the cleaning metrics
//	3. Create the cleaning, health and file services
//	4. Build the chi router and its middleware chain
//	5. Create the HTTP server
//
// # Usage
//
//	cfg, err := config.Load()
//	logger, err := infrastructure.InitializeLogger(cfg.Logging)
//	application, err := app.NewApplication(cfg, logger)
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// Run blocks until SIGINT or SIGTERM, then shuts the server down within the
// configured shutdown timeout.
package app
