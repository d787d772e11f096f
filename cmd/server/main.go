// Package main runs the arxivsync pipeline server: a scheduled
// acquisition/relevance/sync/notify loop fronted by a minimal health and
// manual-trigger HTTP surface.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"arxivsync/internal/api"
	"arxivsync/internal/config"
	"arxivsync/internal/pipeline"
)

//go:generate go run github.com/google/wire/cmd/wire

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := InitializeApplication(ctx)
	if err != nil {
		slog.Error("failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger := app.Logger
	cfg := app.Config

	orchestrator := pipeline.NewOrchestrator(cfg, app.Acquisition, app.Sync, app.Notifier, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	router := api.NewRouter(orchestrator, logger, cfg.IsDevelopment())
	server := &http.Server{
		Addr:           addr,
		Handler:        router,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logger.Info("starting arxivsync server", slog.String("addr", addr), slog.String("mode", cfg.Server.Mode))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	schedulerDone := make(chan struct{})
	if cfg.Scheduler.Enabled {
		go runScheduler(ctx, cfg, orchestrator, logger, schedulerDone)
	} else {
		close(schedulerDone)
	}

	<-ctx.Done()
	logger.Info("shutting down arxivsync")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server forced to shutdown", slog.String("error", err.Error()))
	}

	<-schedulerDone
	logger.Info("arxivsync shutdown complete")
}

// runScheduler fires one orchestrator run per tick until the context is
// cancelled, covering the interval's worth of days each time.
func runScheduler(ctx context.Context, cfg *config.Config, orchestrator *pipeline.Orchestrator, logger *slog.Logger, done chan struct{}) {
	defer close(done)

	interval := config.ParseDuration(cfg.Scheduler.Interval, time.Hour)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	days := int(interval.Hours()/24) + 1

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result, err := orchestrator.Run(ctx, days)
			if err != nil {
				logger.Error("scheduled run failed", slog.String("error", err.Error()))
				continue
			}
			logger.Info("scheduled run complete",
				slog.Int("profiles_synced", len(result.Deltas)),
				slog.Bool("notified", result.Notified))
		}
	}
}
