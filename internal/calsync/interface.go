package calsync

import (
	"context"

	"calendar-autobot/internal/model"
	"calendar-autobot/pkg/gcalendar"
)

// CalendarAPI is the remote calendar surface. *gcalendar.Client satisfies it.
type CalendarAPI interface {
	GetCalendar(ctx context.Context, accessToken, calendarID string) (*gcalendar.Calendar, error)
	CreateCalendar(ctx context.Context, accessToken string, in gcalendar.CalendarInput) (*gcalendar.Calendar, error)
	ListEvents(ctx context.Context, accessToken string, req gcalendar.ListEventsRequest) ([]gcalendar.Event, error)
	InsertEvent(ctx context.Context, accessToken, calendarID string, in gcalendar.EventInput) (*gcalendar.Event, error)
	UpdateEvent(ctx context.Context, accessToken, calendarID, eventID string, in gcalendar.EventInput) (*gcalendar.Event, error)
	DeleteEvent(ctx context.Context, accessToken, calendarID, eventID string) error
}

// CredentialStore persists refreshed grants.
type CredentialStore interface {
	SaveCredential(ctx context.Context, userID string, cred model.SyncCredential) error
}

// CalendarStore persists the id of a user's dedicated calendar.
type CalendarStore interface {
	UpdateCalendarID(ctx context.Context, userID, calendarID string) error
}

// TokenProvider yields an access token that is valid for calendar calls.
type TokenProvider interface {
	EnsureValidAccessToken(ctx context.Context, user *model.User) (string, error)
}
