// Command recalc recomputes the stored aggregate metrics of every voyage.
// It is the one-shot form of POST /maintenance/recalculate, meant for
// backfilling after a data import or a change to the navigation formulas.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pkordes/sailing-logbook/internal/config"
	"github.com/pkordes/sailing-logbook/internal/repo"
	"github.com/pkordes/sailing-logbook/internal/service"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		return 1
	}

	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	// Ctrl-C stops the walk between voyages.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		return 1
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to connect to database", "error", err)
		return 1
	}

	voyageRepo := repo.NewVoyageRepo(pool)
	eventRepo := repo.NewEventRepo(pool)
	metricsSvc := service.NewMetricsService(voyageRepo, eventRepo, logger)

	report, err := metricsSvc.RecalculateAll(ctx)
	if err != nil {
		slog.Error("recalculation aborted", "error", err)
		return 1
	}

	slog.Info("recalculation finished",
		"voyages", report.Voyages,
		"from_events", report.FromEvents,
		"from_endpoints", report.FromEndpoints,
		"cleared", report.Cleared,
		"failed", len(report.Failed),
	)
	for _, id := range report.Failed {
		slog.Warn("voyage not recalculated", "voyage_id", id)
	}
	if len(report.Failed) > 0 {
		return 1
	}
	return 0
}
