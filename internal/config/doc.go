// Package config provides configuration management for the data processor.
//
// # Configuration Sources
//
// Configuration is built in layers, later layers winning:
//
//	1. Default values (Default)
//	2. A YAML file: $CLEANER_CONFIG_FILE, config.yaml or configs/config.yaml
//	3. Environment variables (highest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern CLEANER_<SECTION>_<FIELD>:
//
//	CLEANER_SERVER_PORT=5000
//	CLEANER_LOGGING_LEVEL=debug
//	CLEANER_SECURITY_ALLOWED_ORIGINS=http://localhost:4200,https://app.example.com
//	CLEANER_PROCESSING_MISSING_STRATEGY=median
//	CLEANER_PATHS_UPLOADS_DIR=/var/lib/cleaner/uploads
//
// # Path Management
//
// Paths resolves the upload, processed and log directories:
//
//	paths, err := config.NewPaths(cfg.Paths)
//	out := paths.GetProcessedPath("processed_sales.csv")
package config
