package ical_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	goical "github.com/emersion/go-ical"

	"calendar-autobot/internal/event/ical"
	"calendar-autobot/internal/model"
)

func TestEncode(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	events := []model.Event{
		{ID: "e1", EventName: "Dentist", StartDate: "2024-03-05", StartTime: "15:00", EndDate: "2024-03-05", Location: "Main St"},
		{ID: "e2", EventName: "Flight", Emoji: "✈️", StartDate: "2024-03-02",
			StartDateTime: "2024-03-02T08:00:00+01:00", EndDateTime: "2024-03-02T10:00:00+00:00"},
	}

	var buf bytes.Buffer
	if err := ical.Encode(&buf, "Calendar Autobot", "Europe/Berlin", events, now); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"BEGIN:VCALENDAR", "PRODID:-//calendar-autobot//EN", "UID:e1@calendar-autobot"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}

	cal, err := goical.NewDecoder(strings.NewReader(out)).Decode()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	vevents := cal.Events()
	if len(vevents) != 2 {
		t.Fatalf("expected 2 events, got %d", len(vevents))
	}

	start, err := vevents[0].DateTimeStart(time.UTC)
	if err != nil {
		t.Fatalf("DTSTART: %v", err)
	}
	// 15:00 in Berlin (CET) is 14:00 UTC.
	if want := time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC); !start.Equal(want) {
		t.Errorf("expected start %v, got %v", want, start)
	}
	if loc, _ := vevents[0].Props.Text(goical.PropLocation); loc != "Main St" {
		t.Errorf("expected location, got %q", loc)
	}

	summary, _ := vevents[1].Props.Text(goical.PropSummary)
	if summary != "✈️ Flight" {
		t.Errorf("expected emoji summary, got %q", summary)
	}
	end, _ := vevents[1].DateTimeEnd(time.UTC)
	if want := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC); !end.Equal(want) {
		t.Errorf("expected end %v, got %v", want, end)
	}
}

func TestEncodeEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := ical.Encode(&buf, "", "", nil, time.Now()); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(buf.String(), "END:VCALENDAR") {
		t.Errorf("expected a calendar, got %q", buf.String())
	}
}
