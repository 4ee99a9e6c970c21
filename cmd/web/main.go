package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"review-dashboard/internal/cleaning"
	"review-dashboard/internal/config"
	"review-dashboard/internal/middleware"
	"review-dashboard/internal/observability"
	"review-dashboard/internal/server"
	"review-dashboard/internal/services"
)

const version = "1.0.0"

func newHandler(cfg *config.Config, analytics *services.Analytics, logger *slog.Logger, reg *prometheus.Registry) http.Handler {
	var metrics http.Handler
	if reg != nil {
		metrics = observability.MetricsHandler(reg)
	}
	srv := server.NewServer(analytics, logger, metrics)

	chain := []middleware.Middleware{
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(),
	}
	if reg != nil {
		chain = append(chain, middleware.Metrics(srv.Route))
	}
	chain = append(chain,
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(middleware.NewRateLimiter(cfg.Security), logger),
	)

	return middleware.Chain(chain...)(srv)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", version,
		"data_file", cfg.Data.File,
		"policy", cfg.Data.Policy,
		"workers", cfg.Data.Workers,
	)

	shutdownTracing, err := observability.InitTracing(cfg.Tracing, os.Stdout, logger)
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	policy, err := cleaning.ParsePolicy(cfg.Data.Policy)
	if err != nil {
		logger.Error("invalid cleaning policy", "error", err)
		os.Exit(1)
	}

	analytics := services.NewAnalytics(services.Options{
		Policy:   policy,
		Workers:  cfg.Data.Workers,
		CacheDir: cfg.Data.CacheDir,
		Logger:   logger,
	})

	var reg *prometheus.Registry
	if cfg.Metrics.Enabled {
		reg = observability.InitRegistry()
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Data.LoadTimeout)
	err = analytics.LoadFromFile(ctx, cfg.Data.File)
	cancel()
	if err != nil {
		logger.Error("failed to load review data", "error", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      newHandler(cfg, analytics, logger, reg),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg.Server)
	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("shutting down analytics service", "stats", analytics.Stats())
		return nil
	})
	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		return shutdownTracing(ctx)
	})

	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
