package http

import (
	"context"
	"time"

	"calendar-autobot/internal/event"
	"calendar-autobot/pkg/errtrack"
	"calendar-autobot/pkg/log"
)

// Enqueuer hands long-running calendar work to the background worker.
type Enqueuer interface {
	EnqueueSyncPending(ctx context.Context, userID string) (string, error)
	EnqueueRemoveDuplicates(ctx context.Context, userID string) (string, error)
}

type handler struct {
	l        log.Logger
	uc       event.UseCase
	jobs     Enqueuer
	reporter errtrack.Reporter
	now      func() time.Time
}

// New creates the HTTP handler for the event domain. jobs may be nil, in which
// case async requests run inline.
func New(l log.Logger, uc event.UseCase, jobs Enqueuer, reporter errtrack.Reporter) *handler {
	if reporter == nil {
		reporter = errtrack.Nop{}
	}
	return &handler{
		l:        l,
		uc:       uc,
		jobs:     jobs,
		reporter: reporter,
		now:      time.Now,
	}
}
