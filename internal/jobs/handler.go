package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	"calendar-autobot/internal/calsync"
	"calendar-autobot/internal/event"
	"calendar-autobot/pkg/log"
)

// SyncUseCase is the part of event.UseCase the worker drives.
type SyncUseCase interface {
	SyncPending(ctx context.Context, userID string) (event.SyncPendingOutput, error)
	RemoveDuplicates(ctx context.Context, userID string) (event.RemoveDuplicatesOutput, error)
}

type Handler struct {
	l  log.Logger
	uc SyncUseCase
}

func NewHandler(l log.Logger, uc SyncUseCase) *Handler {
	return &Handler{l: l, uc: uc}
}

// Register routes both task types on mux.
func (h *Handler) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeSyncPending, h.HandleSyncPending)
	mux.HandleFunc(TypeRemoveDuplicates, h.HandleRemoveDuplicates)
}

func (h *Handler) HandleSyncPending(ctx context.Context, t *asynq.Task) error {
	p, err := parsePayload(t)
	if err != nil {
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	ctx = log.NewTraceContext(ctx)

	out, err := h.uc.SyncPending(ctx, p.UserID)
	if err != nil {
		h.l.Errorf(ctx, "jobs.HandleSyncPending: user_id=%s pending=%d synced=%d: %v", p.UserID, out.Pending, out.Synced, err)
		return skipRetryIfFatal(err)
	}

	h.l.Infof(ctx, "jobs.HandleSyncPending: user_id=%s pending=%d synced=%d failed=%d", p.UserID, out.Pending, out.Synced, out.Failed)
	return nil
}

func (h *Handler) HandleRemoveDuplicates(ctx context.Context, t *asynq.Task) error {
	p, err := parsePayload(t)
	if err != nil {
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	ctx = log.NewTraceContext(ctx)

	out, err := h.uc.RemoveDuplicates(ctx, p.UserID)
	if err != nil {
		h.l.Errorf(ctx, "jobs.HandleRemoveDuplicates: user_id=%s: %v", p.UserID, err)
		return skipRetryIfFatal(err)
	}

	h.l.Infof(ctx, "jobs.HandleRemoveDuplicates: user_id=%s removed=%d", p.UserID, out.Removed)
	return nil
}

// skipRetryIfFatal marks errors that a later attempt cannot fix.
func skipRetryIfFatal(err error) error {
	if calsync.IsBatchFatal(err) || errors.Is(err, event.ErrUserNotFound) {
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	return err
}
