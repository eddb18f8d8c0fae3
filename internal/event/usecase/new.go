package usecase

import (
	"context"
	"errors"
	"time"

	"calendar-autobot/internal/calsync"
	"calendar-autobot/internal/event/repository"
	"calendar-autobot/internal/extraction"
	"calendar-autobot/internal/model"
	"calendar-autobot/pkg/errtrack"
	"calendar-autobot/pkg/log"
	"calendar-autobot/pkg/retry"
)

// Extractor is satisfied by *extraction.Client.
type Extractor interface {
	ExtractWithFallback(ctx context.Context, in extraction.Input) extraction.Result
}

// SyncEngine is satisfied by *calsync.Engine.
type SyncEngine interface {
	Create(ctx context.Context, user *model.User, ev model.Event) (string, error)
	Update(ctx context.Context, user *model.User, remoteID string, ev model.Event) bool
	Delete(ctx context.Context, user *model.User, remoteID string) bool
	RemoveDuplicates(ctx context.Context, user *model.User) (int, error)
	SyncBatch(ctx context.Context, user *model.User, events []model.Event) calsync.BatchResult
}

// DefaultPersistBackoff is the wait schedule between attempts to save an extraction.
var DefaultPersistBackoff = []time.Duration{time.Second, 2 * time.Second}

const (
	persistAttempts  = 3
	defaultListLimit = 100
	maxListLimit     = 500
)

// Config tunes the use case. Zero values take the defaults.
type Config struct {
	PersistBackoff []time.Duration
	Sleep          retry.Sleeper
	Now            func() time.Time
}

type implUseCase struct {
	l         log.Logger
	repo      repository.Repository
	extractor Extractor
	engine    SyncEngine
	reporter  errtrack.Reporter
	cfg       Config
}

// New creates a new event UseCase implementation.
func New(
	l log.Logger,
	repo repository.Repository,
	extractor Extractor,
	engine SyncEngine,
	reporter errtrack.Reporter,
	cfg Config,
) *implUseCase {
	if cfg.PersistBackoff == nil {
		cfg.PersistBackoff = DefaultPersistBackoff
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if reporter == nil {
		reporter = errtrack.Nop{}
	}
	return &implUseCase{
		l:         l,
		repo:      repo,
		extractor: extractor,
		engine:    engine,
		reporter:  reporter,
		cfg:       cfg,
	}
}

// persistPolicy retries every failure except cancellation of the caller.
func (uc *implUseCase) persistPolicy(ctx context.Context, userID string) retry.Policy {
	return retry.Policy{
		MaxAttempts: persistAttempts,
		Backoff:     uc.cfg.PersistBackoff,
		Retryable: func(err error) bool {
			return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		},
		OnRetry: func(attempt int, wait time.Duration, err error) {
			uc.l.Warnf(ctx, "event.usecase.SaveExtraction: user_id=%s attempt=%d failed, retrying in %s: %v", userID, attempt, wait, err)
		},
		Sleep: uc.cfg.Sleep,
	}
}
