// Package validator turns raw extracted records into canonical events.
package validator

import (
	"fmt"
	"strings"
	"time"

	"calendar-autobot/internal/model"
	"calendar-autobot/pkg/timefmt"
)

// ValidationError reports a field that could not be salvaged.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validator is deterministic and performs no I/O. ReferenceDate fills a
// missing start date when nothing else provides one.
type Validator struct {
	referenceDate string
}

// New creates a Validator anchored on ref, interpreted in loc.
func New(ref time.Time, loc *time.Location) Validator {
	if loc == nil {
		loc = time.UTC
	}
	return Validator{referenceDate: ref.In(loc).Format(timefmt.DateLayout)}
}

// ReferenceDate returns the YYYY-MM-DD used for undated events.
func (v Validator) ReferenceDate() string {
	return v.referenceDate
}

// Validate cleans raw. Only a malformed date is an error; bad times and
// datetimes are dropped.
func (v Validator) Validate(raw model.RawEvent) (model.Event, error) {
	ev := model.Event{
		EventName:        trimmed(raw.EventName),
		EventDescription: trimmed(raw.EventDescription),
		Location:         trimmed(raw.Location),
		Emoji:            trimmed(raw.Emoji),
		StartDateTime:    timefmt.NormalizeDateTime(trimmed(raw.StartDateTime)),
		EndDateTime:      timefmt.NormalizeDateTime(trimmed(raw.EndDateTime)),
	}
	if ev.EventName == "" {
		ev.EventName = model.DefaultEventName
	}

	var err error
	if ev.StartDate, err = optionalDate("start_date", trimmed(raw.StartDate)); err != nil {
		return model.Event{}, err
	}
	if ev.EndDate, err = optionalDate("end_date", trimmed(raw.EndDate)); err != nil {
		return model.Event{}, err
	}

	ev.StartTime = optionalTime(trimmed(raw.StartTime))
	ev.EndTime = optionalTime(trimmed(raw.EndTime))

	// An explicit start date wins; end_datetime only fills end_date when
	// the start date was itself derived.
	startGiven := ev.StartDate != ""
	if !startGiven {
		if d, ok := timefmt.DatePart(ev.StartDateTime); ok {
			ev.StartDate = d
		} else {
			ev.StartDate = v.referenceDate
		}
	}
	if ev.EndDate == "" {
		ev.EndDate = ev.StartDate
		if d, ok := timefmt.DatePart(ev.EndDateTime); ok && !startGiven {
			ev.EndDate = d
		}
	}

	return ev, nil
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func optionalDate(field, s string) (string, error) {
	if s == "" {
		return "", nil
	}
	d, err := timefmt.ParseDate(s)
	if err != nil {
		return "", &ValidationError{Field: field, Value: s, Err: err}
	}
	return d, nil
}

func optionalTime(s string) string {
	if s == "" {
		return ""
	}
	t, err := timefmt.NormalizeTime(s)
	if err != nil {
		return ""
	}
	return t
}
