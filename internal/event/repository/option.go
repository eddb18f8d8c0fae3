package repository

import (
	"time"

	"calendar-autobot/internal/model"
)

// CreateUserOptions holds parameters for inserting a new User.
type CreateUserOptions struct {
	Email       string
	Username    string
	Timezone    string
	IsTemporary bool
	Credential  model.SyncCredential
}

// SaveExtractionOptions holds one submission and the events validated from it.
// Both are written in a single transaction.
type SaveExtractionOptions struct {
	UserID              string
	OriginalText        string
	SourceType          model.SourceType
	FromEmail           string
	ExtractedEventsJSON string
	ProcessingStatus    string
	ExtractionStatus    string
	ExtractionError     string
	ExtractedAt         time.Time
	Events              []model.Event
}

// GetEventOptions scopes an event lookup to its owner.
type GetEventOptions struct {
	ID     string
	UserID string
}

// ListEventsOptions holds filter and pagination parameters for listing Events.
// From and To bound start_date inclusively (YYYY-MM-DD).
type ListEventsOptions struct {
	UserID       string
	UnsyncedOnly bool
	From         string
	To           string
	Limit        int
	Offset       int
}

// UpdateEventOptions replaces the content fields of an existing Event.
type UpdateEventOptions struct {
	UserID string
	Event  model.Event
}

// MarkSyncedOptions records the remote id of a synced Event.
type MarkSyncedOptions struct {
	EventID       string
	GoogleEventID string
}
