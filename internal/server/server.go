// Package server assembles the HTTP application: echo, middleware, the
// GraphQL endpoint, health, metrics and the static frontend.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"finance-tracker/internal/config"
	"finance-tracker/internal/graph"
	"finance-tracker/internal/handlers"
	"finance-tracker/internal/middleware"
	"finance-tracker/internal/services"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 30 * time.Second

// Dependencies are the services the HTTP layer exposes
type Dependencies struct {
	Transactions services.TransactionServiceInterface
	Statistics   services.StatisticsServiceInterface
	Advice       services.AdviceServiceInterface
	Auth         services.AuthServiceInterface
	Sessions     services.SessionServiceInterface
	Metrics      services.MetricsRecorderInterface
	Health       handlers.HealthChecker
	Gatherer     prometheus.Gatherer
}

// Server is the configured echo application
type Server struct {
	echo        *echo.Echo
	cfg         *config.Config
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

// New builds the echo application and registers every route.
func New(cfg *config.Config, deps Dependencies, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	resolver := graph.NewResolver(deps.Transactions, deps.Statistics, deps.Advice, deps.Auth, deps.Sessions, logger)
	schema, err := graph.NewSchema(resolver)
	if err != nil {
		return nil, fmt.Errorf("failed to build graphql schema: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.CustomHTTPErrorHandler
	e.Validator = handlers.NewValidator()
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	s := &Server{
		echo:        e,
		cfg:         cfg,
		rateLimiter: middleware.NewRateLimiter(cfg.Security.RateLimitPerSecond, cfg.Security.RateLimitBurst),
		logger:      logger,
	}

	e.Use(middleware.RequestID())
	e.Use(middleware.PanicRecovery())
	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/health" || c.Path() == "/metrics"
		},
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, "request",
				slog.String("trace_id", middleware.GetTraceID(c)),
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			)
			return nil
		},
	}))
	e.Use(middleware.SecurityHeaders())
	// an empty origin list would make echo fall back to "*"
	if len(cfg.Server.CORSAllowOrigins) > 0 {
		e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
			AllowOrigins:     cfg.Server.CORSAllowOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAccept, middleware.TraceIDHeader},
			ExposeHeaders:    []string{middleware.TraceIDHeader},
			AllowCredentials: true,
		}))
	}
	e.Use(echomiddleware.BodyLimit("1M"))

	health := handlers.NewHealthCheckHandler(deps.Health, cfg.AI.Provider)
	e.GET("/health", health.HealthCheck)

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	gql := handlers.NewGraphQLHandler(schema, &cfg.Session, deps.Metrics, logger)
	api := e.Group("/graphql",
		s.rateLimiter.Middleware(),
		middleware.Session(cfg.Session.CookieName, deps.Sessions),
	)
	api.POST("", gql.Handle)
	api.GET("", gql.Handle)

	s.registerStatic()

	return s, nil
}

// registerStatic serves the built frontend with a fallback to index.html so
// client-side routes survive a reload.
func (s *Server) registerStatic() {
	dir := s.cfg.Server.StaticDir
	if dir == "" {
		return
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		s.logger.Warn("static directory not found, frontend will not be served", "dir", dir)
		return
	}

	s.echo.Use(echomiddleware.StaticWithConfig(echomiddleware.StaticConfig{
		Root:  dir,
		HTML5: true,
		Skipper: func(c echo.Context) bool {
			p := c.Request().URL.Path
			return p == "/graphql" || p == "/health" || p == "/metrics"
		},
	}))
}

// Handler exposes the application for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	cleanupCtx, stopCleanup := context.WithCancel(ctx)
	defer stopCleanup()
	go s.rateLimiter.RunCleanup(cleanupCtx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server",
			"address", s.cfg.Address(),
			"environment", s.cfg.Server.Environment,
			"ai_provider", s.cfg.AI.Provider,
		)
		if err := s.echo.Start(s.cfg.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server stopped gracefully")
	return nil
}
