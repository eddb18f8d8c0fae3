package model

import "time"

// DefaultEventName replaces a missing or blank title.
const DefaultEventName = "Untitled Event"

// RawEvent is one record as returned by the extraction layer. Every field may be absent.
type RawEvent struct {
	EventName        *string `json:"event_name"`
	EventDescription *string `json:"event_description"`
	StartDate        *string `json:"start_date"`
	StartTime        *string `json:"start_time"`
	StartDateTime    *string `json:"start_datetime"`
	EndDate          *string `json:"end_date"`
	EndTime          *string `json:"end_time"`
	EndDateTime      *string `json:"end_datetime"`
	Location         *string `json:"location"`
	Emoji            *string `json:"emoji"`
}

// Event is the canonical, validated event. Empty optional fields mean absent.
type Event struct {
	ID               string    `json:"id" db:"id"`
	UserID           string    `json:"user_id" db:"user_id"`
	TextInputID      string    `json:"text_input_id" db:"text_input_id"`
	EventName        string    `json:"event_name" db:"event_name"`
	EventDescription string    `json:"event_description" db:"event_description"`
	StartDate        string    `json:"start_date" db:"start_date"`
	StartTime        string    `json:"start_time,omitempty" db:"start_time"`
	StartDateTime    string    `json:"start_datetime,omitempty" db:"start_datetime"`
	EndDate          string    `json:"end_date" db:"end_date"`
	EndTime          string    `json:"end_time,omitempty" db:"end_time"`
	EndDateTime      string    `json:"end_datetime,omitempty" db:"end_datetime"`
	Location         string    `json:"location" db:"location"`
	Emoji            string    `json:"emoji" db:"emoji"`
	IsSynced         bool      `json:"is_synced" db:"is_synced"`
	GoogleEventID    string    `json:"google_event_id,omitempty" db:"google_event_id"`
	ExtractedAt      time.Time `json:"extracted_at" db:"extracted_at"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// Raw converts the canonical content back into a RawEvent, absent fields as nil.
func (e Event) Raw() RawEvent {
	return RawEvent{
		EventName:        ptr(e.EventName),
		EventDescription: ptr(e.EventDescription),
		StartDate:        ptr(e.StartDate),
		StartTime:        ptr(e.StartTime),
		StartDateTime:    ptr(e.StartDateTime),
		EndDate:          ptr(e.EndDate),
		EndTime:          ptr(e.EndTime),
		EndDateTime:      ptr(e.EndDateTime),
		Location:         ptr(e.Location),
		Emoji:            ptr(e.Emoji),
	}
}

// SameContent reports whether two events carry the same validated fields,
// ignoring identity and sync bookkeeping.
func (e Event) SameContent(o Event) bool {
	return e.EventName == o.EventName &&
		e.EventDescription == o.EventDescription &&
		e.StartDate == o.StartDate &&
		e.StartTime == o.StartTime &&
		e.StartDateTime == o.StartDateTime &&
		e.EndDate == o.EndDate &&
		e.EndTime == o.EndTime &&
		e.EndDateTime == o.EndDateTime &&
		e.Location == o.Location &&
		e.Emoji == o.Emoji
}

func ptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// String returns a pointer to s, for building RawEvent literals.
func String(s string) *string {
	return &s
}
