package usecase

import (
	"context"

	"calendar-autobot/internal/event"
	repo "calendar-autobot/internal/event/repository"
)

// SyncEvent pushes a single stored event to the user's calendar.
func (uc *implUseCase) SyncEvent(ctx context.Context, input event.SyncEventInput) (event.SyncEventOutput, error) {
	user, err := uc.loadUser(ctx, input.UserID)
	if err != nil {
		return event.SyncEventOutput{}, err
	}
	ev, err := uc.loadEvent(ctx, user.ID, input.EventID)
	if err != nil {
		return event.SyncEventOutput{}, err
	}
	if ev.IsSynced && ev.GoogleEventID != "" {
		return event.SyncEventOutput{Event: ev, AlreadySynced: true}, nil
	}

	remoteID, err := uc.engine.Create(ctx, &user, ev)
	if err != nil {
		uc.l.Warnf(ctx, "uc.SyncEvent: user_id=%s event_id=%s: %v", user.ID, ev.ID, err)
		uc.reporter.Report(ctx, err, map[string]string{"user_id": user.ID, "stage": "sync"})
		return event.SyncEventOutput{}, err
	}
	if err := uc.repo.MarkSynced(ctx, repo.MarkSyncedOptions{EventID: ev.ID, GoogleEventID: remoteID}); err != nil {
		uc.l.Errorf(ctx, "uc.SyncEvent MarkSynced: user_id=%s event_id=%s: %v", user.ID, ev.ID, err)
		return event.SyncEventOutput{}, err
	}

	ev.IsSynced = true
	ev.GoogleEventID = remoteID
	return event.SyncEventOutput{Event: ev}, nil
}

// SyncPending syncs every stored event of the user that is not yet on the
// calendar. A batch-fatal error is returned alongside the partial counts.
func (uc *implUseCase) SyncPending(ctx context.Context, userID string) (event.SyncPendingOutput, error) {
	user, err := uc.loadUser(ctx, userID)
	if err != nil {
		return event.SyncPendingOutput{}, err
	}

	pending, _, err := uc.repo.ListEvents(ctx, repo.ListEventsOptions{UserID: user.ID, UnsyncedOnly: true})
	if err != nil {
		uc.l.Errorf(ctx, "uc.SyncPending ListEvents: user_id=%s: %v", user.ID, err)
		return event.SyncPendingOutput{}, err
	}
	if len(pending) == 0 {
		return event.SyncPendingOutput{}, nil
	}

	res := uc.syncAndRecord(ctx, &user, pending)
	uc.l.Infof(ctx, "uc.SyncPending: user_id=%s pending=%d synced=%d failed=%d", user.ID, len(pending), res.Synced, res.Failed)

	return event.SyncPendingOutput{
		Pending:     len(pending),
		Synced:      res.Synced,
		Failed:      res.Failed,
		SyncWarning: syncWarning(res),
	}, res.Err
}

// RemoveDuplicates deletes repeated remote events from the user's calendar.
func (uc *implUseCase) RemoveDuplicates(ctx context.Context, userID string) (event.RemoveDuplicatesOutput, error) {
	user, err := uc.loadUser(ctx, userID)
	if err != nil {
		return event.RemoveDuplicatesOutput{}, err
	}

	removed, err := uc.engine.RemoveDuplicates(ctx, &user)
	if err != nil {
		uc.l.Warnf(ctx, "uc.RemoveDuplicates: user_id=%s removed=%d: %v", user.ID, removed, err)
		uc.reporter.Report(ctx, err, map[string]string{"user_id": user.ID, "stage": "remove_duplicates"})
		return event.RemoveDuplicatesOutput{Removed: removed}, err
	}
	return event.RemoveDuplicatesOutput{Removed: removed}, nil
}
