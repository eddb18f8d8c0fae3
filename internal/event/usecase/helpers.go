package usecase

import (
	"context"
	"fmt"
	"time"

	"calendar-autobot/internal/calsync"
	"calendar-autobot/internal/event"
	repo "calendar-autobot/internal/event/repository"
	"calendar-autobot/internal/model"
)

func (uc *implUseCase) loadUser(ctx context.Context, userID string) (model.User, error) {
	if userID == "" {
		return model.User{}, event.ErrUserNotFound
	}
	user, err := uc.repo.GetUser(ctx, userID)
	if err != nil {
		uc.l.Errorf(ctx, "loadUser GetUser: user_id=%s: %v", userID, err)
		return model.User{}, err
	}
	if user.ID == "" {
		return model.User{}, event.ErrUserNotFound
	}
	return user, nil
}

func (uc *implUseCase) loadEvent(ctx context.Context, userID, eventID string) (model.Event, error) {
	ev, err := uc.repo.GetEvent(ctx, repo.GetEventOptions{ID: eventID, UserID: userID})
	if err != nil {
		uc.l.Errorf(ctx, "loadEvent GetEvent: user_id=%s event_id=%s: %v", userID, eventID, err)
		return model.Event{}, err
	}
	if ev.ID == "" {
		return model.Event{}, event.ErrEventNotFound
	}
	return ev, nil
}

func (uc *implUseCase) reference(ref time.Time) time.Time {
	if ref.IsZero() {
		return uc.cfg.Now()
	}
	return ref
}

// syncAndRecord pushes events to the calendar and records each success.
// A remote success whose bookkeeping fails is logged; the next sync finds the
// remote copy through duplicate detection instead of creating another.
func (uc *implUseCase) syncAndRecord(ctx context.Context, user *model.User, events []model.Event) calsync.BatchResult {
	res := uc.engine.SyncBatch(ctx, user, events)
	for _, o := range res.Outcomes {
		if o.Err != nil {
			continue
		}
		if err := uc.repo.MarkSynced(ctx, repo.MarkSyncedOptions{EventID: o.EventID, GoogleEventID: o.RemoteID}); err != nil {
			uc.l.Errorf(ctx, "syncAndRecord MarkSynced: user_id=%s event_id=%s: %v", user.ID, o.EventID, err)
			uc.reporter.Report(ctx, err, map[string]string{"user_id": user.ID, "stage": "mark_synced"})
		}
	}
	if res.Err != nil {
		uc.reporter.Report(ctx, res.Err, map[string]string{"user_id": user.ID, "stage": "sync"})
	}
	return res
}

func syncWarning(res calsync.BatchResult) string {
	if res.Err != nil {
		return event.UserMessage(res.Err)
	}
	if res.Failed == 0 {
		return ""
	}
	var first error
	for _, o := range res.Outcomes {
		if o.Err != nil {
			first = o.Err
			break
		}
	}
	return fmt.Sprintf("%d event(s) could not be added to your calendar. %s", res.Failed, event.UserMessage(first))
}

func sanitizeEvent(ev model.Event) model.Event {
	ev.EventName = event.Sanitize(ev.EventName)
	ev.EventDescription = event.Sanitize(ev.EventDescription)
	ev.Location = event.Sanitize(ev.Location)
	return ev
}

// mergeRaw overlays the non-nil fields of changes on base.
func mergeRaw(base, changes model.RawEvent) model.RawEvent {
	pick := func(b, c *string) *string {
		if c != nil {
			return c
		}
		return b
	}
	return model.RawEvent{
		EventName:        pick(base.EventName, changes.EventName),
		EventDescription: pick(base.EventDescription, changes.EventDescription),
		StartDate:        pick(base.StartDate, changes.StartDate),
		StartTime:        pick(base.StartTime, changes.StartTime),
		StartDateTime:    pick(base.StartDateTime, changes.StartDateTime),
		EndDate:          pick(base.EndDate, changes.EndDate),
		EndTime:          pick(base.EndTime, changes.EndTime),
		EndDateTime:      pick(base.EndDateTime, changes.EndDateTime),
		Location:         pick(base.Location, changes.Location),
		Emoji:            pick(base.Emoji, changes.Emoji),
	}
}
