package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/Zeyna175/data-processor-app/internal/config"
	"github.com/Zeyna175/data-processor-app/pkg/contracts"
	"github.com/Zeyna175/data-processor-app/pkg/contracts/domain"
)

// Health states reported by HealthCheck
const (
	StatusHealthy  = "ok"
	StatusDegraded = "degraded"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	paths     *config.Paths
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual dependency health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// APIStatus is the /api/status payload
type APIStatus struct {
	Status           string   `json:"status"`
	Version          string   `json:"version"`
	SupportedFormats []string `json:"supported_formats"`
	OutputFormats    []string `json:"output_formats"`
}

// NewHealthService creates a new health service
func NewHealthService(version string, paths *config.Paths, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("HealthService initialized", slog.String("version", version))

	return &HealthService{
		version:   version,
		paths:     paths,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck reports liveness together with storage readiness
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusHealthy,
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime_seconds": time.Since(hs.startTime).Seconds(),
			"go_version":     runtime.Version(),
			"goroutines":     runtime.NumGoroutine(),
			"git_commit":     contracts.GitCommit,
		},
		Services: make(map[string]ServiceHealth),
	}

	if hs.paths != nil {
		status.Services["uploads"] = checkDirectory(hs.paths.UploadsDir)
		status.Services["processed"] = checkDirectory(hs.paths.ProcessedDir)
	}
	for name, sh := range status.Services {
		if sh.Status != "ready" {
			status.Status = StatusDegraded
			hs.logger.WarnContext(ctx, "HealthCheck: dependency not ready",
				slog.String("dependency", name),
				slog.String("message", sh.Message))
		}
	}

	hs.logger.DebugContext(ctx, "HealthCheck: completed", slog.String("status", status.Status))
	return status
}

// Status lists the accepted input and output formats
func (hs *HealthService) Status() APIStatus {
	return APIStatus{
		Status:           "API active",
		Version:          hs.version,
		SupportedFormats: append([]string(nil), domain.SupportedExtensions...),
		OutputFormats:    []string{"csv", "excel", "json"},
	}
}

func checkDirectory(dir string) ServiceHealth {
	info, err := os.Stat(dir)
	if err != nil {
		return ServiceHealth{Status: "not_ready", Message: fmt.Sprintf("directory unavailable: %v", err)}
	}
	if !info.IsDir() {
		return ServiceHealth{Status: "not_ready", Message: dir + " is not a directory"}
	}
	return ServiceHealth{Status: "ready"}
}
