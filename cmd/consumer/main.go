package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"calendar-autobot/config"
	"calendar-autobot/internal/app"
	"calendar-autobot/internal/jobs"
	"calendar-autobot/pkg/log"
)

// main is the entry point for the background worker.
// It consumes calendar tasks from asynq and runs them through the event use case.
func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Failed to load config: ", err)
		return
	}

	logger := log.Init(log.ZapConfig{
		Level:        cfg.Logger.Level,
		Mode:         cfg.Logger.Mode,
		Encoding:     cfg.Logger.Encoding,
		ColorEnabled: cfg.Logger.ColorEnabled,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "Starting consumer service...")

	a, err := app.New(ctx, logger, cfg, app.Options{})
	if err != nil {
		logger.Error(ctx, "Failed to initialize pipeline: ", err)
		return
	}
	defer a.Close()

	srv := jobs.NewServer(logger, app.RedisConnOpt(cfg.Redis), jobs.ServerConfig{
		Queue:       cfg.Jobs.Queue,
		Concurrency: cfg.Jobs.Concurrency,
		Reporter:    a.Reporter,
	})
	mux := asynq.NewServeMux()
	jobs.NewHandler(logger, a.UseCase).Register(mux)

	if err := srv.Start(mux); err != nil {
		logger.Error(ctx, "Failed to start worker: ", err)
		return
	}

	logger.Infof(ctx, "Consumer service running on queue %q. Waiting for shutdown signal...", cfg.Jobs.Queue)
	<-ctx.Done()
	srv.Shutdown()
	logger.Info(ctx, "Consumer service stopped gracefully")
}
