package jobs

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"calendar-autobot/pkg/errtrack"
	"calendar-autobot/pkg/log"
)

type ServerConfig struct {
	Queue       string
	Concurrency int
	Reporter    errtrack.Reporter
}

// NewServer builds the asynq worker. Failed tasks are logged by asynq and
// reported through cfg.Reporter.
func NewServer(l log.Logger, redis asynq.RedisConnOpt, cfg ServerConfig) *asynq.Server {
	if cfg.Queue == "" {
		cfg.Queue = DefaultQueue
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.Reporter == nil {
		cfg.Reporter = errtrack.Nop{}
	}

	return asynq.NewServer(redis, asynq.Config{
		Concurrency: cfg.Concurrency,
		Queues:      map[string]int{cfg.Queue: 1},
		Logger:      asynqLogger{l: l},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			cfg.Reporter.Report(ctx, err, map[string]string{
				"stage": "jobs",
				"task":  task.Type(),
			})
		}),
	})
}

// asynqLogger adapts log.Logger to asynq.Logger.
type asynqLogger struct {
	l log.Logger
}

func (a asynqLogger) Debug(args ...any) { a.l.Debug(context.Background(), args...) }
func (a asynqLogger) Info(args ...any)  { a.l.Info(context.Background(), args...) }
func (a asynqLogger) Warn(args ...any)  { a.l.Warn(context.Background(), args...) }
func (a asynqLogger) Error(args ...any) { a.l.Error(context.Background(), args...) }
func (a asynqLogger) Fatal(args ...any) { a.l.Fatal(context.Background(), fmt.Sprint(args...)) }
