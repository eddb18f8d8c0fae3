// Package ical renders canonical events as an iCalendar feed.
package ical

import (
	"fmt"
	"io"
	"time"

	goical "github.com/emersion/go-ical"

	"calendar-autobot/internal/calsync"
	"calendar-autobot/internal/model"
)

const productID = "-//calendar-autobot//EN"

const emptyCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + productID + "\r\nEND:VCALENDAR\r\n"

// Encode writes events as a VCALENDAR. Times follow the same rules as the
// calendar sync payload, expressed in UTC. now stamps DTSTAMP.
func Encode(w io.Writer, name, timezone string, events []model.Event, now time.Time) error {
	if len(events) == 0 {
		// The encoder rejects a calendar without components.
		_, err := io.WriteString(w, emptyCalendar)
		return err
	}

	cal := goical.NewCalendar()
	cal.Props.SetText(goical.PropVersion, "2.0")
	cal.Props.SetText(goical.PropProductID, productID)
	if name != "" {
		cal.Props.SetText("X-WR-CALNAME", name)
	}
	if timezone != "" {
		cal.Props.SetText("X-WR-TIMEZONE", timezone)
	}

	for _, ev := range events {
		comp, err := toVEvent(ev, timezone, now)
		if err != nil {
			return err
		}
		cal.Children = append(cal.Children, comp)
	}

	if err := goical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}

func toVEvent(ev model.Event, timezone string, now time.Time) (*goical.Component, error) {
	payload, err := calsync.BuildPayload(ev, timezone)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", ev.ID, err)
	}
	start, err := time.Parse(time.RFC3339, payload.Start.DateTime)
	if err != nil {
		return nil, fmt.Errorf("event %s start: %w", ev.ID, err)
	}
	end, err := time.Parse(time.RFC3339, payload.End.DateTime)
	if err != nil {
		return nil, fmt.Errorf("event %s end: %w", ev.ID, err)
	}

	ve := goical.NewComponent(goical.CompEvent)
	ve.Props.SetText(goical.PropUID, ev.ID+"@calendar-autobot")
	ve.Props.SetText(goical.PropSummary, payload.Summary)
	ve.Props.SetDateTime(goical.PropDateTimeStamp, now.UTC())
	ve.Props.SetDateTime(goical.PropDateTimeStart, start.UTC())
	ve.Props.SetDateTime(goical.PropDateTimeEnd, end.UTC())

	if payload.Description != "" {
		ve.Props.SetText(goical.PropDescription, payload.Description)
	}
	if payload.Location != "" {
		ve.Props.SetText(goical.PropLocation, payload.Location)
	}
	return ve, nil
}
