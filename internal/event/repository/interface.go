package repository

import (
	"context"

	"calendar-autobot/internal/model"
)

// Repository is the composed interface for the event domain data store.
type Repository interface {
	UserRepository
	EventRepository
}

// UserRepository covers users and their calendar bookkeeping.
// GetUser returns a zero-value User (ID == "") when not found.
type UserRepository interface {
	GetUser(ctx context.Context, id string) (model.User, error)
	CreateUser(ctx context.Context, opt CreateUserOptions) (model.User, error)
	UpdateCalendarID(ctx context.Context, userID, calendarID string) error
	SaveCredential(ctx context.Context, userID string, cred model.SyncCredential) error
}

// EventRepository covers text inputs and canonical events.
// Lookups return zero values when nothing matches.
type EventRepository interface {
	SaveExtraction(ctx context.Context, opt SaveExtractionOptions) (model.TextInput, []model.Event, error)
	GetEvent(ctx context.Context, opt GetEventOptions) (model.Event, error)
	ListEvents(ctx context.Context, opt ListEventsOptions) ([]model.Event, int, error)
	UpdateEvent(ctx context.Context, opt UpdateEventOptions) (model.Event, error)
	MarkSynced(ctx context.Context, opt MarkSyncedOptions) error
	DeleteEvent(ctx context.Context, opt GetEventOptions) error
}
