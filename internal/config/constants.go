package config

import (
	"time"

	"github.com/Zeyna175/data-processor-app/pkg/contracts"
)

// Application constants
const (
	AppName    = "data-processor"
	AppVersion = contracts.Version

	// EnvPrefix prefixes every environment variable, e.g. CLEANER_SERVER_PORT
	EnvPrefix = "CLEANER"

	DefaultPort           = 5000
	DefaultRequestTimeout = 2 * time.Minute

	// Rate limiting, requests per second
	DefaultRateLimit = 10
	DefaultBurstSize = 20

	// Upload limits
	DefaultMaxUploadBytes = 16 << 20 // 16MB

	// File paths (relative to the base directory)
	DefaultUploadsDir   = "uploads"
	DefaultProcessedDir = "processed"
	DefaultLogsDir      = "logs"
	DefaultLogFile      = "app.log"

	// ProcessedPrefix names cleaned output files
	ProcessedPrefix = "processed_"
)
