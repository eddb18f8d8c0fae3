package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"calendar-autobot/config"
	_ "calendar-autobot/docs" // Swagger docs
	"calendar-autobot/internal/app"
	eventHTTP "calendar-autobot/internal/event/delivery/http"
	"calendar-autobot/internal/httpserver"
	"calendar-autobot/internal/jobs"
	"calendar-autobot/pkg/log"
)

// @title       Calendar Autobot API
// @description Extracts calendar events from free-form text and syncs them to Google Calendar.
// @version     1
// @host        localhost:8080
// @schemes     http
func main() {
	// 1. Configuration
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Failed to load config: ", err)
		return
	}

	// 2. Logger
	logger := log.Init(log.ZapConfig{
		Level:        cfg.Logger.Level,
		Mode:         cfg.Logger.Mode,
		Encoding:     cfg.Logger.Encoding,
		ColorEnabled: cfg.Logger.ColorEnabled,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "Starting Calendar Autobot API...")
	logger.Infof(ctx, "Environment: %s", cfg.Environment.Name)

	// 3. Event pipeline
	a, err := app.New(ctx, logger, cfg, app.Options{Migrate: true})
	if err != nil {
		logger.Error(ctx, "Failed to initialize pipeline: ", err)
		return
	}
	defer a.Close()

	// 4. Background jobs (optional)
	var enqueuer eventHTTP.Enqueuer
	if cfg.Jobs.Enabled {
		client := jobs.NewClient(logger, app.RedisConnOpt(cfg.Redis), cfg.Jobs.Queue)
		defer client.Close()
		enqueuer = client
		logger.Infof(ctx, "Async jobs enabled on queue %q", cfg.Jobs.Queue)
	} else {
		logger.Info(ctx, "Async jobs disabled, sync requests run inline")
	}

	// 5. HTTP Server
	httpServer, err := httpserver.New(logger, httpserver.Config{
		Logger:          logger,
		Port:            cfg.HTTPServer.Port,
		Mode:            cfg.HTTPServer.Mode,
		Environment:     cfg.Environment.Name,
		EventUseCase:    a.UseCase,
		Jobs:            enqueuer,
		Reporter:        a.Reporter,
		RateLimitPerMin: cfg.RateLimit.PerMin,
		DB:              a.DB,
	})
	if err != nil {
		logger.Error(ctx, "Failed to initialize HTTP server: ", err)
		return
	}

	// 6. Run
	if err := httpServer.Run(ctx); err != nil {
		logger.Error(ctx, "Failed to run server: ", err)
		return
	}

	logger.Info(ctx, "Server stopped gracefully")
}
