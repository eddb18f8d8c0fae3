package calsync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"calendar-autobot/internal/model"
	"calendar-autobot/pkg/datemath"
	"calendar-autobot/pkg/gcalendar"
	"calendar-autobot/pkg/log"
)

const DefaultRequestTimeout = 30 * time.Second

// EngineConfig bounds each remote call.
type EngineConfig struct {
	RequestTimeout time.Duration
}

// Engine pushes canonical events to the user's dedicated calendar.
type Engine struct {
	l        log.Logger
	tokens   TokenProvider
	resolver *CalendarResolver
	api      CalendarAPI
	cfg      EngineConfig
}

func NewEngine(l log.Logger, tokens TokenProvider, resolver *CalendarResolver, api CalendarAPI, cfg EngineConfig) *Engine {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	return &Engine{l: l, tokens: tokens, resolver: resolver, api: api, cfg: cfg}
}

// target resolves the token and calendar every remote operation needs.
func (e *Engine) target(ctx context.Context, user *model.User) (string, string, error) {
	token, err := e.tokens.EnsureValidAccessToken(ctx, user)
	if err != nil {
		return "", "", err
	}
	calID, err := e.resolver.Resolve(ctx, user, token)
	if err != nil {
		return "", "", err
	}
	return token, calID, nil
}

// Create inserts ev unless an event with the same title already exists on the
// same day, in which case the existing remote id is returned.
func (e *Engine) Create(ctx context.Context, user *model.User, ev model.Event) (string, error) {
	token, calID, err := e.target(ctx, user)
	if err != nil {
		return "", err
	}

	payload, err := BuildPayload(ev, user.TimezoneName())
	if err != nil {
		return "", err
	}

	id, err := e.insert(ctx, user, token, calID, ev, payload)
	if errors.Is(err, ErrNotFound) {
		// The cached calendar was deleted remotely.
		e.resolver.Invalidate(ctx, user.ID)
		user.CalendarID = ""
		if calID, err = e.resolver.Resolve(ctx, user, token); err != nil {
			return "", err
		}
		id, err = e.insert(ctx, user, token, calID, ev, payload)
	}
	return id, err
}

func (e *Engine) insert(ctx context.Context, user *model.User, token, calID string, ev model.Event, payload gcalendar.EventInput) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.RequestTimeout)
	defer cancel()

	existing, err := e.findDuplicate(ctx, user, token, calID, ev, payload.Summary)
	if err != nil {
		return "", err
	}
	if existing != "" {
		e.l.Infof(ctx, "calsync.Engine.Create: user_id=%s event %q already on calendar as %s", user.ID, ev.EventName, existing)
		return existing, nil
	}

	created, err := e.api.InsertEvent(ctx, token, calID, payload)
	if err != nil {
		return "", mapRemote(err)
	}
	return created.ID, nil
}

func (e *Engine) findDuplicate(ctx context.Context, user *model.User, token, calID string, ev model.Event, summary string) (string, error) {
	parser, err := datemath.NewParser(user.TimezoneName())
	if err != nil {
		return "", err
	}
	start, end, err := parser.DayWindow(ev.StartDate)
	if err != nil {
		return "", fmt.Errorf("duplicate check: %w", err)
	}

	items, err := e.api.ListEvents(ctx, token, gcalendar.ListEventsRequest{CalendarID: calID, TimeMin: start, TimeMax: end})
	if err != nil {
		mapped := mapRemote(err)
		if IsBatchFatal(mapped) || errors.Is(mapped, ErrNotFound) {
			return "", mapped
		}
		e.l.Warnf(ctx, "calsync.Engine.findDuplicate: user_id=%s list failed, creating anyway: %v", user.ID, err)
		return "", nil
	}

	name := normalizeTitle(ev.EventName)
	full := normalizeTitle(summary)
	for _, item := range items {
		title := normalizeTitle(item.Summary)
		if title == name || title == full {
			return item.ID, nil
		}
	}
	return "", nil
}

// Update replaces the remote event's content. Failures are logged and reported as false.
func (e *Engine) Update(ctx context.Context, user *model.User, remoteID string, ev model.Event) bool {
	token, calID, err := e.target(ctx, user)
	if err != nil {
		e.l.Warnf(ctx, "calsync.Engine.Update: user_id=%s: %v", user.ID, err)
		return false
	}
	payload, err := BuildPayload(ev, user.TimezoneName())
	if err != nil {
		e.l.Warnf(ctx, "calsync.Engine.Update.BuildPayload: user_id=%s: %v", user.ID, err)
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.RequestTimeout)
	defer cancel()
	if _, err := e.api.UpdateEvent(ctx, token, calID, remoteID, payload); err != nil {
		e.l.Warnf(ctx, "calsync.Engine.Update: user_id=%s remote_id=%s: %v", user.ID, remoteID, mapRemote(err))
		return false
	}
	return true
}

// Delete removes the remote event. An event that is already gone counts as deleted.
func (e *Engine) Delete(ctx context.Context, user *model.User, remoteID string) bool {
	token, calID, err := e.target(ctx, user)
	if err != nil {
		e.l.Warnf(ctx, "calsync.Engine.Delete: user_id=%s: %v", user.ID, err)
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.RequestTimeout)
	defer cancel()
	err = e.api.DeleteEvent(ctx, token, calID, remoteID)
	if err == nil || errors.Is(err, gcalendar.ErrNotFound) {
		return true
	}
	e.l.Warnf(ctx, "calsync.Engine.Delete: user_id=%s remote_id=%s: %v", user.ID, remoteID, mapRemote(err))
	return false
}

type dupKey struct {
	title string
	date  string
}

// RemoveDuplicates deletes every remote event that repeats the title and start
// date of an earlier one. It returns how many were removed.
func (e *Engine) RemoveDuplicates(ctx context.Context, user *model.User) (int, error) {
	token, calID, err := e.target(ctx, user)
	if err != nil {
		return 0, err
	}

	items, err := e.listAll(ctx, token, calID)
	if err != nil {
		return 0, mapRemote(err)
	}

	seen := make(map[dupKey]bool, len(items))
	removed := 0
	for _, item := range items {
		key := dupKey{title: normalizeTitle(item.Summary), date: remoteDate(item.Start)}
		if !seen[key] {
			seen[key] = true
			continue
		}

		err := e.deleteRemote(ctx, token, calID, item.ID)
		if err != nil && !errors.Is(err, gcalendar.ErrNotFound) {
			mapped := mapRemote(err)
			if IsBatchFatal(mapped) {
				return removed, mapped
			}
			e.l.Warnf(ctx, "calsync.Engine.RemoveDuplicates: user_id=%s remote_id=%s: %v", user.ID, item.ID, mapped)
			continue
		}
		removed++
	}

	e.l.Infof(ctx, "calsync.Engine.RemoveDuplicates: user_id=%s scanned=%d removed=%d", user.ID, len(items), removed)
	return removed, nil
}

func (e *Engine) listAll(ctx context.Context, token, calID string) ([]gcalendar.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.RequestTimeout)
	defer cancel()
	return e.api.ListEvents(ctx, token, gcalendar.ListEventsRequest{CalendarID: calID})
}

func (e *Engine) deleteRemote(ctx context.Context, token, calID, remoteID string) error {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.RequestTimeout)
	defer cancel()
	return e.api.DeleteEvent(ctx, token, calID, remoteID)
}

// EventOutcome is the sync result of one event in a batch.
type EventOutcome struct {
	EventID  string
	RemoteID string
	Err      error
}

// BatchResult summarizes SyncBatch. Err is set when a fatal error stopped the batch.
type BatchResult struct {
	Outcomes []EventOutcome
	Synced   int
	Failed   int
	Skipped  int
	Err      error
}

// SyncBatch creates every not-yet-synced event, marking IsSynced and
// GoogleEventID on the slice elements that succeed. Authentication and
// permission failures stop the batch; other failures only affect their event.
func (e *Engine) SyncBatch(ctx context.Context, user *model.User, events []model.Event) BatchResult {
	var res BatchResult
	for i := range events {
		ev := &events[i]
		if ev.IsSynced && ev.GoogleEventID != "" {
			res.Skipped++
			continue
		}

		remoteID, err := e.Create(ctx, user, *ev)
		res.Outcomes = append(res.Outcomes, EventOutcome{EventID: ev.ID, RemoteID: remoteID, Err: err})
		if err != nil {
			res.Failed++
			if IsBatchFatal(err) {
				e.l.Warnf(ctx, "calsync.Engine.SyncBatch: user_id=%s stopping batch: %v", user.ID, err)
				res.Err = err
				return res
			}
			e.l.Warnf(ctx, "calsync.Engine.SyncBatch: user_id=%s event_id=%s: %v", user.ID, ev.ID, err)
			continue
		}

		ev.IsSynced = true
		ev.GoogleEventID = remoteID
		res.Synced++
	}
	return res
}
