package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/Zeyna175/data-processor-app/internal/config"
	apperrors "github.com/Zeyna175/data-processor-app/internal/errors"
	"github.com/Zeyna175/data-processor-app/internal/files"
	"github.com/Zeyna175/data-processor-app/internal/infrastructure"
	"github.com/Zeyna175/data-processor-app/internal/middleware"
	"github.com/Zeyna175/data-processor-app/internal/services"
	transporthttp "github.com/Zeyna175/data-processor-app/internal/transport/http"
)

// Application represents the main application
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Logger        *slog.Logger
	Router        chi.Router
	Server        *http.Server
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.CleaningMetrics
	ErrorHandler  *apperrors.ErrorHandler

	// Services
	CleaningService *services.CleaningService
	HealthService   *services.HealthService
	Files           *files.Manager
}

// NewApplication creates and wires the application from cfg. The logger
// must already be initialized; a nil logger uses the global one.
func NewApplication(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	paths, err := config.NewPaths(cfg.Paths)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}
	paths.LogPathResolution(logger)

	providers, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFromTelemetry(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateCleaningMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: providers,
		Metrics:       metrics,
		ErrorHandler:  apperrors.NewErrorHandler(logger, cfg.Logging.Level == "debug"),
	}

	app.CleaningService = services.NewCleaningService(services.CleaningServiceOptions{
		Paths:   paths,
		CSVBOM:  cfg.Processing.CSVBOM,
		Tracer:  providers.Tracer,
		Metrics: metrics,
		Logger:  logger,
	})
	app.HealthService = services.NewHealthService(config.AppVersion, paths, logger)
	app.Files = files.NewManager(paths, cfg.Processing.MaxUploadBytes, logger)

	app.setupRouter()
	app.createServer()
	return app, nil
}

// setupRouter configures the HTTP router
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Tracing("http.server"))
		r.Use(middleware.HTTPMetrics(a.Metrics))
		r.Use(middleware.StructuredLogger(a.Logger))
		r.Use(a.ErrorHandler.Recoverer)
		r.Use(middleware.SecurityHeaders)
		if a.Config.Security.EnableCORS {
			r.Use(middleware.CORS(a.Config.Security.AllowedOrigins))
		}
		if rl := a.Config.Security.RateLimit; rl.Enabled {
			r.Use(middleware.NewRateLimiter(rl.RPS, rl.Burst, a.ErrorHandler, a.Logger).Handler)
		}

		r.Route("/api", a.setupAPIRoutes)

		if a.OTelProviders != nil && a.OTelProviders.PrometheusHTTP != nil {
			r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
		}
	})

	a.Router = r
}

// setupAPIRoutes mounts the JSON API
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Use(render.SetContentType(render.ContentTypeJSON))
	if a.Config.Server.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(a.Config.Server.RequestTimeout))
	}

	health := transporthttp.NewHealthHandler(a.HealthService, a.Logger)
	r.Get("/health", health.HealthCheck)
	r.Get("/status", health.Status)

	cleaning := transporthttp.NewCleaningHandler(transporthttp.CleaningHandlerConfig{
		Service:      a.CleaningService,
		Files:        a.Files,
		Defaults:     a.Config.Processing.Options(),
		OutputFormat: a.Config.Processing.OutputFormat,
		// multipart framing needs headroom over the file itself
		MaxBodyBytes: a.Config.Processing.MaxUploadBytes + 1<<20,
		ErrorHandler: a.ErrorHandler,
		Logger:       a.Logger,
	})
	cleaning.RegisterRoutes(r)
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Addr(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts serving in the background. A listen failure cancels ctx
// through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("address", a.Server.Addr),
		slog.String("level", a.Config.Logging.Level))

	health := a.HealthService.HealthCheck(ctx)
	if health.Status != services.StatusHealthy {
		a.Logger.WarnContext(ctx, "Startup health check warnings",
			slog.Any("services", health.Services))
	}

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started",
		slog.String("uploads_dir", a.Paths.UploadsDir),
		slog.String("processed_dir", a.Paths.ProcessedDir))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted or the server fails
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
		a.Logger.WarnContext(ctx, "Server stopped unexpectedly")
	}

	return a.Stop(ctx)
}
