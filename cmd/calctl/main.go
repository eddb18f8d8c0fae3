// Command calctl operates the calendar pipeline from a terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"calendar-autobot/config"
	"calendar-autobot/internal/app"
	"calendar-autobot/pkg/log"
)

// env is loaded once before any command runs.
type env struct {
	cfg *config.Config
	l   log.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e := &env{}
	cliApp := &cli.App{
		Name:  "calctl",
		Usage: "extract, sync and maintain calendar events",
		Before: func(c *cli.Context) error {
			_ = godotenv.Load()
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			e.cfg = cfg
			e.l = log.Init(log.ZapConfig{
				Level:        cfg.Logger.Level,
				Mode:         cfg.Logger.Mode,
				Encoding:     cfg.Logger.Encoding,
				ColorEnabled: cfg.Logger.ColorEnabled,
			})
			return nil
		},
		Commands: []*cli.Command{
			e.extractCommand(),
			e.syncPendingCommand(),
			e.removeDuplicatesCommand(),
			e.migrateCommand(),
			e.createUserCommand(),
			e.authorizeCommand(),
		},
	}

	if err := cliApp.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "calctl:", err)
		os.Exit(1)
	}
}

// open builds the full pipeline; the caller closes it.
func (e *env) open(c *cli.Context, opt app.Options) (*app.App, error) {
	ctx := log.NewTraceContext(c.Context)
	return app.New(ctx, e.l, e.cfg, opt)
}
