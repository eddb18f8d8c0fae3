package gcalendar

import "time"

// EventTime is either an all-day Date (YYYY-MM-DD) or an RFC3339 DateTime.
type EventTime struct {
	Date     string
	DateTime string
	TimeZone string
}

// EventInput is the payload for inserting or replacing an event.
type EventInput struct {
	Summary     string
	Description string
	Location    string
	Start       EventTime
	End         EventTime
}

// Event is a simplified representation of a Google Calendar event.
type Event struct {
	ID          string
	Summary     string
	Description string
	Location    string
	HtmlLink    string
	Status      string
	Start       EventTime
	End         EventTime
}

// Calendar is a secondary calendar owned by the user.
type Calendar struct {
	ID          string
	Summary     string
	Description string
	TimeZone    string
}

// CalendarInput is the payload for creating a calendar.
type CalendarInput struct {
	Summary     string
	Description string
	TimeZone    string
}

// ListEventsRequest is the input for listing Google Calendar events.
// Zero TimeMin/TimeMax leave the window open on that side.
type ListEventsRequest struct {
	CalendarID string
	TimeMin    time.Time
	TimeMax    time.Time
	PageSize   int64
}
