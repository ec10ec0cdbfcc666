package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/UnknownOlympus/plutus/internal/config"
	"github.com/UnknownOlympus/plutus/internal/dashboard"
	"github.com/UnknownOlympus/plutus/internal/metrics"
	"github.com/UnknownOlympus/plutus/internal/repository"
	"github.com/UnknownOlympus/plutus/internal/server"
	"github.com/UnknownOlympus/plutus/internal/services/goals"
	"github.com/UnknownOlympus/plutus/internal/services/tasks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// main is the entry point of the application.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()

	logger := setupLogger(cfg.Env)

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	dtb, err := repository.NewDatabase(ctx, cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer dtb.Close()

	taskRepo := repository.NewTaskRepository(dtb, appMetrics)
	goalRepo := repository.NewGoalRepository(dtb, appMetrics)
	taskService := tasks.NewTaskService(logger, taskRepo, appMetrics)
	goalService := goals.NewGoalService(logger, goalRepo, appMetrics)
	listener := repository.NewListener(logger, taskRepo, goalRepo, appMetrics)

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.InfoContext(ctx, "Starting change listener")
		err := listener.Start(ctx, dtb, cfg.RetryDelay)
		logger.InfoContext(ctx, "Change listener stopped.")
		return err
	})

	group.Go(func() error {
		return server.StartMonitoringServer(ctx, logger, reg, dtb, listener, cfg.HTTP.MetricsPort)
	})

	group.Go(func() error {
		return dashboard.Start(ctx, dashboard.StartOpts{
			Log:     logger,
			Tasks:   taskService,
			Goals:   goalService,
			Live:    listener,
			Metrics: appMetrics,
			Port:    cfg.HTTP.Port,
		})
	})

	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	if err = group.Wait(); err != nil {
		logger.Error("Application stopped with error", "error", err)
		return
	}

	logger.Info("Application stopped gracefully...")
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	withoutTime := func(_ []string, a slog.Attr) slog.Attr {
		if a.Key == slog.TimeKey {
			return slog.Attr{Key: "", Value: slog.Value{}}
		}
		return a
	}

	switch env {
	case envLocal:
		log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	case envProd:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:       slog.LevelWarn,
			ReplaceAttr: withoutTime,
		}))
	default:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:       slog.LevelError,
			ReplaceAttr: withoutTime,
		}))

		log.Error(
			"The env parameter was not specified, or was invalid. Logging will be minimal, by default." +
				" Please specify the value of `env`: local, development, production")
	}

	return log
}
