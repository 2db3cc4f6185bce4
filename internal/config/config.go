package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"github.com/Zeyna175/data-processor-app/internal/validation"
	"github.com/Zeyna175/data-processor-app/pkg/contracts/domain"
)

// Config represents the complete application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server" envconfig:"SERVER"`
	Security   SecurityConfig   `yaml:"security" envconfig:"SECURITY"`
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	Paths      PathsConfig      `yaml:"paths" envconfig:"PATHS"`
	Processing ProcessingConfig `yaml:"processing" envconfig:"PROCESSING"`
	Telemetry  TelemetryConfig  `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST"`
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system locations. Relative paths are resolved
// against BaseDir.
type PathsConfig struct {
	BaseDir      string `yaml:"base_dir" envconfig:"BASE_DIR"`
	UploadsDir   string `yaml:"uploads_dir" envconfig:"UPLOADS_DIR"`
	ProcessedDir string `yaml:"processed_dir" envconfig:"PROCESSED_DIR"`
	LogsDir      string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// ProcessingConfig holds the cleaning defaults used when a request names none
type ProcessingConfig struct {
	MissingStrategy string `yaml:"missing_strategy" envconfig:"MISSING_STRATEGY"`
	OutlierMethod   string `yaml:"outlier_method" envconfig:"OUTLIER_METHOD"`
	OutlierAction   string `yaml:"outlier_action" envconfig:"OUTLIER_ACTION"`
	Normalization   string `yaml:"normalization" envconfig:"NORMALIZATION"`
	OutputFormat    string `yaml:"output_format" envconfig:"OUTPUT_FORMAT"`
	MaxUploadBytes  int64  `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES"`
	CSVBOM          bool   `yaml:"csv_bom" envconfig:"CSV_BOM"`
}

// Options returns the configured cleaning defaults
func (p ProcessingConfig) Options() domain.Options {
	return domain.Options{
		MissingStrategy: p.MissingStrategy,
		OutlierMethod:   p.OutlierMethod,
		OutlierAction:   p.OutlierAction,
		Normalization:   p.Normalization,
	}
}

// TelemetryConfig controls OpenTelemetry
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	ServiceVersion string `yaml:"service_version" envconfig:"SERVICE_VERSION"`
	EnableTracing  bool   `yaml:"enable_tracing" envconfig:"ENABLE_TRACING"`
	EnableMetrics  bool   `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`
}

// Load builds the configuration: defaults, then the YAML file if one is
// found, then CLEANER_* environment variables
func Load() (*Config, error) {
	return LoadFile(getConfigFilePath())
}

// LoadFile is Load with an explicit config file. An empty path skips the
// file.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}
	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}
	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Logging.Level)
	}
	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		c.Logging.Output = "both"
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogFile
	}

	if err := validation.ValidateOptions(c.Processing.Options()); err != nil {
		return fmt.Errorf("processing defaults: %w", err)
	}
	switch c.Processing.OutputFormat {
	case "csv", "excel", "json":
	default:
		return fmt.Errorf("invalid output format: %q", c.Processing.OutputFormat)
	}
	if c.Processing.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive")
	}
	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if p := os.Getenv(EnvPrefix + "_CONFIG_FILE"); p != "" {
		return p
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Default returns default configuration
func Default() *Config {
	opts := domain.DefaultOptions()
	return &Config{
		Server: ServerConfig{
			Host:            "",
			Port:            DefaultPort,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  DefaultRequestTimeout,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:4200"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "both",
			FilePath: DefaultLogFile,
		},
		Paths: PathsConfig{
			UploadsDir:   DefaultUploadsDir,
			ProcessedDir: DefaultProcessedDir,
			LogsDir:      DefaultLogsDir,
		},
		Processing: ProcessingConfig{
			MissingStrategy: opts.MissingStrategy,
			OutlierMethod:   opts.OutlierMethod,
			OutlierAction:   opts.OutlierAction,
			Normalization:   opts.Normalization,
			OutputFormat:    "csv",
			MaxUploadBytes:  DefaultMaxUploadBytes,
			CSVBOM:          false,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    AppName,
			ServiceVersion: AppVersion,
			EnableTracing:  false,
			EnableMetrics:  true,
		},
	}
}
