package model

import "time"

// SourceType tags where a submission came from.
type SourceType string

const (
	SourceManual  SourceType = "manual"
	SourceAPI     SourceType = "api"
	SourceEmail   SourceType = "email"
	SourceWebhook SourceType = "webhook"
)

// Valid reports whether s is a known source.
func (s SourceType) Valid() bool {
	switch s {
	case SourceManual, SourceAPI, SourceEmail, SourceWebhook:
		return true
	}
	return false
}

// Processing states of a TextInput.
const (
	ProcessingCompleted = "completed"
	ProcessingFailed    = "failed"
)

// TextInput records one submission and how extraction went.
type TextInput struct {
	ID                  string     `json:"id" db:"id"`
	UserID              string     `json:"user_id" db:"user_id"`
	OriginalText        string     `json:"original_text" db:"original_text"`
	SourceType          SourceType `json:"source_type" db:"source_type"`
	FromEmail           string     `json:"from_email,omitempty" db:"from_email"`
	ExtractedEventsJSON string     `json:"-" db:"extracted_events_json"`
	ProcessingStatus    string     `json:"processing_status" db:"processing_status"`
	ExtractionStatus    string     `json:"extraction_status" db:"extraction_status"`
	ExtractionError     string     `json:"extraction_error,omitempty" db:"extraction_error"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
}
