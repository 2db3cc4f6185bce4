package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the resolved file system locations used by the service
type Paths struct {
	BaseDir      string
	UploadsDir   string
	ProcessedDir string
	LogsDir      string
}

// NewPaths resolves the configured directories. Relative entries are joined
// to BaseDir, which defaults to the working directory.
func NewPaths(pc PathsConfig) (*Paths, error) {
	base := pc.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	resolve := func(p, def string) string {
		if p == "" {
			p = def
		}
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}

	return &Paths{
		BaseDir:      base,
		UploadsDir:   resolve(pc.UploadsDir, DefaultUploadsDir),
		ProcessedDir: resolve(pc.ProcessedDir, DefaultProcessedDir),
		LogsDir:      resolve(pc.LogsDir, DefaultLogsDir),
	}, nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.UploadsDir, p.ProcessedDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// GetUploadPath returns the path for an uploaded file
func (p *Paths) GetUploadPath(filename string) string {
	return filepath.Join(p.UploadsDir, filepath.Base(filename))
}

// GetProcessedPath returns the path for a cleaned output file
func (p *Paths) GetProcessedPath(filename string) string {
	return filepath.Join(p.ProcessedDir, filepath.Base(filename))
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// LogPathResolution logs the resolved directories
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("base", p.BaseDir),
			slog.String("uploads", p.UploadsDir),
			slog.String("processed", p.ProcessedDir),
			slog.String("logs", p.LogsDir),
		))
}
