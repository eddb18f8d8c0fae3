package calsync

import (
	"context"
	"errors"
	"fmt"

	"calendar-autobot/internal/calsync/refcache"
	"calendar-autobot/internal/model"
	"calendar-autobot/pkg/gcalendar"
	"calendar-autobot/pkg/log"
)

const (
	DefaultCalendarSummary     = "Calendar Autobot"
	DefaultCalendarDescription = "Events extracted automatically from your text and email."
)

// ResolverConfig names the dedicated calendar created for each user.
type ResolverConfig struct {
	Summary     string
	Description string
}

// CalendarResolver finds or creates the user's dedicated calendar.
type CalendarResolver struct {
	l     log.Logger
	api   CalendarAPI
	users CalendarStore
	cache refcache.Cache
	cfg   ResolverConfig
}

func NewCalendarResolver(l log.Logger, api CalendarAPI, users CalendarStore, cache refcache.Cache, cfg ResolverConfig) *CalendarResolver {
	if cfg.Summary == "" {
		cfg.Summary = DefaultCalendarSummary
	}
	if cfg.Description == "" {
		cfg.Description = DefaultCalendarDescription
	}
	return &CalendarResolver{l: l, api: api, users: users, cache: cache, cfg: cfg}
}

// Resolve returns the id of the user's calendar, creating it when the stored
// one is missing or gone. A cached id is checked for existence on every call.
// user.CalendarID is updated in place.
func (r *CalendarResolver) Resolve(ctx context.Context, user *model.User, accessToken string) (string, error) {
	candidate := user.CalendarID
	if id, ok := r.cache.Get(ctx, user.ID); ok {
		candidate = id
	}

	if candidate != "" {
		_, err := r.api.GetCalendar(ctx, accessToken, candidate)
		if err == nil {
			user.CalendarID = candidate
			r.cache.Set(ctx, user.ID, candidate)
			return candidate, nil
		}
		if !errors.Is(err, gcalendar.ErrNotFound) {
			return "", mapRemote(err)
		}
		r.l.Warnf(ctx, "calsync.CalendarResolver: calendar %s for user_id=%s is gone, creating a new one", candidate, user.ID)
		r.cache.Invalidate(ctx, user.ID)
		user.CalendarID = ""
	}

	cal, err := r.api.CreateCalendar(ctx, accessToken, gcalendar.CalendarInput{
		Summary:     r.cfg.Summary,
		Description: r.cfg.Description,
		TimeZone:    user.TimezoneName(),
	})
	if err != nil {
		return "", mapRemote(err)
	}

	if err := r.users.UpdateCalendarID(ctx, user.ID, cal.ID); err != nil {
		r.l.Errorf(ctx, "calsync.CalendarResolver.UpdateCalendarID: user_id=%s: %v", user.ID, err)
		return "", fmt.Errorf("persist calendar id: %w", err)
	}
	user.CalendarID = cal.ID
	r.cache.Set(ctx, user.ID, cal.ID)

	r.l.Infof(ctx, "calsync.CalendarResolver: created calendar %s for user_id=%s", cal.ID, user.ID)
	return cal.ID, nil
}

// Invalidate drops the cached id so the next Resolve re-checks the calendar.
func (r *CalendarResolver) Invalidate(ctx context.Context, userID string) {
	r.cache.Invalidate(ctx, userID)
}
