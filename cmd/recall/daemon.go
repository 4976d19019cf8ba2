package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/flemzord/recall/internal/config"
	"github.com/flemzord/recall/internal/cron"
	"github.com/flemzord/recall/internal/memtools"
	"github.com/flemzord/recall/internal/status"
	"github.com/flemzord/recall/internal/telemetry"
)

func daemonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the scheduler and status endpoint in the foreground",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runDaemon(ctx, cfg, newLogger(cmd))
		},
	}
}

// runDaemon starts the scheduler, the status server, and trace export,
// then blocks until ctx is cancelled.
func runDaemon(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	shutdownTraces, err := telemetry.Setup(ctx, cfg.Telemetry.Endpoint, version)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTraces(flushCtx); err != nil {
			logger.Warn("daemon: trace flush failed", "error", err)
		}
	}()

	repo := openRepo(cfg)
	metrics := status.NewMetrics()

	scheduler := cron.NewScheduler(logger)
	if cfg.Extraction.Schedule != "" {
		job := &cron.ExtractionJob{
			Repo:         repo,
			Dir:          cfg.Extraction.Dir,
			Hours:        cfg.Extraction.Hours,
			Timeout:      cfg.Extraction.Timeout,
			Metrics:      metrics,
			Logger:       logger,
			ScheduleExpr: cfg.Extraction.Schedule,
		}
		if err := scheduler.RegisterJob(job); err != nil {
			return err
		}
	}
	if err := scheduler.RegisterJob(&cron.IntegrityJob{Repo: repo, Logger: logger}); err != nil {
		return err
	}
	if err := scheduler.Start(); err != nil {
		return err
	}

	var server *status.Server
	if cfg.Status.Addr != "" {
		server = status.NewServer(cfg.Status.Addr, repo, metrics, logger)
		server.Start()
	}

	logger.Info("daemon: running", "index", cfg.Memory.IndexPath)
	<-ctx.Done()
	logger.Info("daemon: shutting down")

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if server != nil {
		if err := server.Shutdown(stopCtx); err != nil {
			logger.Warn("daemon: status server shutdown failed", "error", err)
		}
	}
	return scheduler.Stop(stopCtx)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the memory tools over MCP stdio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			s := memtools.NewServer(cfg, openRepo(cfg), status.NewMetrics(), version)
			return mcpserver.ServeStdio(s)
		},
	}
}
