package usecase

import (
	"context"

	"calendar-autobot/internal/event"
	repo "calendar-autobot/internal/event/repository"
	"calendar-autobot/internal/event/validator"
)

const (
	remoteUpdateWarning = "Your changes were saved, but your Google Calendar could not be updated."
	remoteDeleteWarning = "The event was removed here, but it could not be removed from your Google Calendar."
)

// ListEvents returns a page of the user's events ordered by start.
func (uc *implUseCase) ListEvents(ctx context.Context, input event.ListEventsInput) (event.ListEventsOutput, error) {
	user, err := uc.loadUser(ctx, input.UserID)
	if err != nil {
		return event.ListEventsOutput{}, err
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := max(input.Offset, 0)

	events, total, err := uc.repo.ListEvents(ctx, repo.ListEventsOptions{
		UserID:       input.UserID,
		UnsyncedOnly: input.UnsyncedOnly,
		From:         input.From,
		To:           input.To,
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		uc.l.Errorf(ctx, "uc.ListEvents: user_id=%s: %v", input.UserID, err)
		return event.ListEventsOutput{}, err
	}

	return event.ListEventsOutput{
		Events:   events,
		Timezone: user.TimezoneName(),
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	}, nil
}

// UpdateEvent validates and stores the edit, then pushes it to the calendar
// when the event is synced. A failed push is reported as a warning; the
// local edit stands.
func (uc *implUseCase) UpdateEvent(ctx context.Context, input event.UpdateEventInput) (event.UpdateEventOutput, error) {
	user, err := uc.loadUser(ctx, input.UserID)
	if err != nil {
		return event.UpdateEventOutput{}, err
	}
	existing, err := uc.loadEvent(ctx, user.ID, input.EventID)
	if err != nil {
		return event.UpdateEventOutput{}, err
	}

	v := validator.New(uc.cfg.Now(), user.Location())
	edited, err := v.Validate(mergeRaw(existing.Raw(), input.Changes))
	if err != nil {
		return event.UpdateEventOutput{}, err
	}
	edited = sanitizeEvent(edited)
	if edited.SameContent(existing) {
		return event.UpdateEventOutput{Event: existing}, nil
	}
	edited.ID = existing.ID

	updated, err := uc.repo.UpdateEvent(ctx, repo.UpdateEventOptions{UserID: user.ID, Event: edited})
	if err != nil {
		uc.l.Errorf(ctx, "uc.UpdateEvent: user_id=%s event_id=%s: %v", user.ID, existing.ID, err)
		return event.UpdateEventOutput{}, err
	}
	if updated.ID == "" {
		return event.UpdateEventOutput{}, event.ErrEventNotFound
	}

	out := event.UpdateEventOutput{Event: updated}
	if existing.IsSynced && existing.GoogleEventID != "" {
		out.RemoteUpdated = uc.engine.Update(ctx, &user, existing.GoogleEventID, updated)
		if !out.RemoteUpdated {
			out.SyncWarning = remoteUpdateWarning
		}
	}
	return out, nil
}

// DeleteEvent removes the remote copy when synced, then the local event.
func (uc *implUseCase) DeleteEvent(ctx context.Context, input event.DeleteEventInput) (event.DeleteEventOutput, error) {
	user, err := uc.loadUser(ctx, input.UserID)
	if err != nil {
		return event.DeleteEventOutput{}, err
	}
	existing, err := uc.loadEvent(ctx, user.ID, input.EventID)
	if err != nil {
		return event.DeleteEventOutput{}, err
	}

	var out event.DeleteEventOutput
	if existing.IsSynced && existing.GoogleEventID != "" {
		out.RemoteDeleted = uc.engine.Delete(ctx, &user, existing.GoogleEventID)
		if !out.RemoteDeleted {
			out.SyncWarning = remoteDeleteWarning
		}
	}

	if err := uc.repo.DeleteEvent(ctx, repo.GetEventOptions{ID: existing.ID, UserID: user.ID}); err != nil {
		uc.l.Errorf(ctx, "uc.DeleteEvent: user_id=%s event_id=%s: %v", user.ID, existing.ID, err)
		return event.DeleteEventOutput{}, err
	}
	return out, nil
}
