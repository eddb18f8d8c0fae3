package calsync

import (
	"fmt"
	"strings"
	"time"

	"calendar-autobot/internal/model"
	"calendar-autobot/pkg/gcalendar"
)

const (
	defaultStartClock = "09:00"
	defaultEndClock   = "10:00"
	wallLayout        = "2006-01-02 15:04"
)

// BuildPayload converts a canonical event into the remote representation in
// the given IANA timezone.
func BuildPayload(ev model.Event, timezone string) (gcalendar.EventInput, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil || timezone == "" {
		loc = time.UTC
	}

	in := gcalendar.EventInput{
		Summary:     Summary(ev),
		Description: ev.EventDescription,
		Location:    strings.TrimSpace(ev.Location),
	}

	if ev.StartDateTime != "" && ev.EndDateTime != "" {
		in.Start = gcalendar.EventTime{DateTime: ev.StartDateTime, TimeZone: loc.String()}
		in.End = gcalendar.EventTime{DateTime: ev.EndDateTime, TimeZone: loc.String()}
		return in, nil
	}

	startClock := ev.StartTime
	if startClock == "" {
		startClock = defaultStartClock
	}
	start, err := time.ParseInLocation(wallLayout, ev.StartDate+" "+startClock, loc)
	if err != nil {
		return gcalendar.EventInput{}, fmt.Errorf("event start %q %q: %w", ev.StartDate, startClock, err)
	}

	endDate := ev.EndDate
	if endDate == "" {
		endDate = ev.StartDate
	}

	var end time.Time
	switch {
	case ev.EndTime != "":
		end, err = time.ParseInLocation(wallLayout, endDate+" "+ev.EndTime, loc)
	case ev.StartTime != "":
		end = start.Add(time.Hour)
	default:
		end, err = time.ParseInLocation(wallLayout, endDate+" "+defaultEndClock, loc)
	}
	if err != nil {
		return gcalendar.EventInput{}, fmt.Errorf("event end %q: %w", endDate, err)
	}
	if !end.After(start) {
		end = start.Add(time.Hour)
	}

	in.Start = gcalendar.EventTime{DateTime: start.Format(time.RFC3339), TimeZone: loc.String()}
	in.End = gcalendar.EventTime{DateTime: end.Format(time.RFC3339), TimeZone: loc.String()}
	return in, nil
}

// Summary is the remote title: the emoji, when present, prefixes the name.
func Summary(ev model.Event) string {
	if ev.Emoji == "" {
		return ev.EventName
	}
	return ev.Emoji + " " + ev.EventName
}

func normalizeTitle(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// remoteDate is the calendar date an event starts on, as written by the server.
func remoteDate(t gcalendar.EventTime) string {
	if t.Date != "" {
		return t.Date
	}
	if len(t.DateTime) >= 10 {
		return t.DateTime[:10]
	}
	return ""
}
