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
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"odpulse/internal/config"
	"odpulse/internal/dataset"
	"odpulse/internal/errors"
	"odpulse/internal/exporter"
	"odpulse/internal/infrastructure"
	custommiddleware "odpulse/internal/middleware"
	"odpulse/internal/services"
	handlers "odpulse/internal/transport/http"
	"odpulse/pkg/contracts"
)

const AppName = "Overdose Pulse"

// Application is the dashboard server's dependency container.
type Application struct {
	Config    *config.Config
	Router    *chi.Mux
	Server    *http.Server
	Store     *dataset.Store
	Dashboard *services.DashboardService
	Metrics   *infrastructure.Metrics
	Logger    *slog.Logger
}

// NewApplication wires up configuration, logging, services and routes.
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
		slog.String("version", contracts.Version),
		slog.String("clean_file", cfg.Data.CleanFile))

	app := &Application{
		Config:  cfg,
		Logger:  logger,
		Metrics: infrastructure.NewMetrics(),
	}

	app.initializeServices()
	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices builds the service layer from configuration.
func (a *Application) initializeServices() {
	a.Store = dataset.NewStore(a.Config.Data.CleanFile, a.Logger)
	reports := exporter.NewReportWriter(a.Config.Data.ExportDir, a.Logger)
	a.Dashboard = services.NewDashboardService(a.Store, reports, a.Metrics, a.Logger)
}

// setupRouter configures the HTTP router with all routes.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Ordering: RequestID first so every later middleware and handler
	// sees the trace_id.
	r.Use(custommiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(custommiddleware.StructuredLogger(a.Logger))
	r.Use(custommiddleware.Recoverer(a.Logger))
	r.Use(custommiddleware.SecurityHeaders)
	r.Use(custommiddleware.HTTPMetrics(a.Metrics))

	if a.Config.Security.RateLimit.Enabled {
		r.Use(custommiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}

	errorHandler := errors.NewErrorHandler(a.Logger, false)
	r.NotFound(errorHandler.NotFound)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(custommiddleware.Timeout(a.Config.Server.ReadTimeout, a.Logger))

		healthHandler := handlers.NewHealthHandler(a.Logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/version", healthHandler.Version)

		dashboardHandler := handlers.NewDashboardHandler(a.Dashboard, a.Logger, errorHandler)
		r.Mount("/dashboard", dashboardHandler.Routes())
		r.Mount("/dataset", dashboardHandler.DatasetRoutes())
	})

	// Metrics endpoint stays outside the API group so scrapes skip the
	// rate limiter's accounting of user traffic.
	r.Handle("/metrics", a.Metrics.Handler())

	a.Router = r
}

// createServer builds the HTTP server from configuration.
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Run serves until interrupted, then shuts down gracefully.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.Info("server listening",
			slog.String("address", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.Logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
		defer cancel()

		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		infrastructure.CloseLogFile()
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	a.Logger.Info("application shutdown complete")
	return nil
}
