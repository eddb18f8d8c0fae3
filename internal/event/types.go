package event

import (
	"time"

	"calendar-autobot/internal/model"
)

// --- UseCase Inputs ---

type ProcessTextInput struct {
	UserID   string
	Text     string
	Source   model.SourceType
	AutoSync bool
	// ReferenceDate anchors relative dates. Zero means now.
	ReferenceDate time.Time
}

// PreviewInput runs extraction and validation without touching storage or the calendar.
type PreviewInput struct {
	Text          string
	Timezone      string
	ReferenceDate time.Time
}

type ListEventsInput struct {
	UserID       string
	UnsyncedOnly bool
	From         string
	To           string
	Limit        int
	Offset       int
}

// UpdateEventInput carries the edited fields. Nil fields keep their stored value.
type UpdateEventInput struct {
	UserID  string
	EventID string
	Changes model.RawEvent
}

type DeleteEventInput struct {
	UserID  string
	EventID string
}

type SyncEventInput struct {
	UserID  string
	EventID string
}

// --- UseCase Outputs ---

type ProcessTextOutput struct {
	TextInputID       string
	Events            []model.Event
	EventsExtracted   int
	EventsSynced      int
	EventsSkipped     int
	FromEmail         string
	OfflineExtraction bool
	ExtractionStatus  string
	Message           string
	SyncWarning       string
}

type PreviewOutput struct {
	Events            []model.Event
	FromEmail         string
	OfflineExtraction bool
	ExtractionStatus  string
	Message           string
	Skipped           int
}

type ListEventsOutput struct {
	Events   []model.Event
	Timezone string
	Total    int
	Limit    int
	Offset   int
}

type UpdateEventOutput struct {
	Event         model.Event
	RemoteUpdated bool
	SyncWarning   string
}

type DeleteEventOutput struct {
	RemoteDeleted bool
	SyncWarning   string
}

type SyncEventOutput struct {
	Event         model.Event
	AlreadySynced bool
}

type SyncPendingOutput struct {
	Pending     int
	Synced      int
	Failed      int
	SyncWarning string
}

type RemoveDuplicatesOutput struct {
	Removed int
}
