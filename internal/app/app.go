// Package app assembles the service: configuration, logging, telemetry,
// services, routes and the HTTP server lifecycle.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"ctview/internal/cache"
	"ctview/internal/config"
	apierrors "ctview/internal/errors"
	"ctview/internal/infrastructure"
	custommw "ctview/internal/middleware"
	"ctview/internal/record"
	"ctview/internal/services"
	transporthttp "ctview/internal/transport/http"
	"ctview/internal/validation"
)

const (
	// Version identifies this build in health responses and telemetry.
	Version = "v1.0.0"
	// AppName is the human-readable service name.
	AppName = "CTView - COMTRADE Disturbance Record Viewer"
)

// Application is the dependency-injected service container.
type Application struct {
	Config  *config.Config
	Logger  *slog.Logger
	Router  *chi.Mux
	Server  *http.Server
	OTel    *infrastructure.OTelProviders
	Records *services.RecordService
	Health  *services.HealthService

	bundleValidator *validation.BundleValidator
}

// NewApplication builds the application from configuration.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("name", AppName),
		slog.String("version", Version),
		slog.Int("port", cfg.Server.Port))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	adapter := record.NewAdapter(logger)
	bundles := cache.NewRecordCache(cfg.Cache.MaxBundles)
	bundleValidator := validation.NewBundleValidator(logger, cfg.Upload.MaxFileBytes)
	recordService := services.NewRecordService(
		adapter, bundles, bundleValidator,
		cfg.Cache.MaxLoadedRecords, logger, otelProviders.Meter)
	healthService := services.NewHealthService(recordService, Version, logger)

	app := &Application{
		Config:          cfg,
		Logger:          logger,
		OTel:            otelProviders,
		Records:         recordService,
		Health:          healthService,
		bundleValidator: bundleValidator,
	}
	app.Router = app.setupRouter()
	app.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return app, nil
}

func (app *Application) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(custommw.StructuredLogger(app.Logger))
	r.Use(custommw.Recoverer(app.Logger))
	r.Use(custommw.SecurityHeaders)

	if app.Config.Security.EnableCORS {
		r.Use(custommw.CORS(custommw.CORSConfig{
			AllowedOrigins: app.Config.Security.AllowedOrigins,
		}))
	}
	if app.Config.Security.RateLimit.Enabled {
		limiter := custommw.NewRateLimiter(
			app.Config.Security.RateLimit.RPS,
			app.Config.Security.RateLimit.Burst,
			app.Logger)
		r.Use(limiter.Handler)
	}

	errorHandler := apierrors.NewErrorHandler(app.Logger)
	recordHandler := transporthttp.NewRecordHandler(
		app.Records, app.bundleValidator, app.Logger, errorHandler,
		app.Config.Upload.MaxMemoryBytes)
	healthHandler := transporthttp.NewHealthHandler(app.Health, app.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/records", recordHandler.Routes())
		r.Mount("/health", healthHandler.Routes())
	})
	r.Method(http.MethodGet, "/metrics", transporthttp.MetricsHandler(app.OTel.PrometheusHTTP))

	return r
}

// Run starts the HTTP server and blocks until shutdown: an interrupt or
// termination signal drains in-flight requests, flushes telemetry and
// releases the log file.
func (app *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.Logger.Info("http server listening", slog.String("addr", app.Server.Addr))
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		app.Logger.Info("shutting down",
			slog.String("timeout", app.Config.Server.ShutdownTimeout.String()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
		defer cancel()

		if err := app.Server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		if err := app.OTel.Shutdown(shutdownCtx); err != nil {
			app.Logger.Warn("telemetry shutdown failed", slog.String("error", err.Error()))
		}
		infrastructure.CloseLogFile()
		return nil
	})

	return g.Wait()
}
