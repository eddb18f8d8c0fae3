package datemath_test

import (
	"testing"
	"time"

	"calendar-autobot/pkg/datemath"
)

func TestNewParser(t *testing.T) {
	if _, err := datemath.NewParser("Asia/Ho_Chi_Minh"); err != nil {
		t.Fatalf("unexpected error creating valid parser: %v", err)
	}
	if _, err := datemath.NewParser("Invalid/Timezone"); err == nil {
		t.Fatalf("expected error for invalid timezone")
	}
	p, err := datemath.NewParser("")
	if err != nil || p.Location() != time.UTC {
		t.Fatalf("empty timezone should default to UTC, got %v %v", p, err)
	}
}

func TestParse(t *testing.T) {
	parser, _ := datemath.NewParser("UTC")
	baseTime := time.Date(2024, 5, 1, 15, 30, 0, 0, time.UTC) // Wednesday
	startOfBase := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		relative string
		want     time.Time
		wantErr  bool
	}{
		{name: "Today", relative: "today", want: startOfBase},
		{name: "Tonight", relative: "Tonight", want: startOfBase},
		{name: "Tomorrow", relative: "tomorrow", want: startOfBase.AddDate(0, 0, 1)},
		{name: "Day after tomorrow", relative: "the day after  tomorrow", want: startOfBase.AddDate(0, 0, 2)},
		{name: "Yesterday", relative: "yesterday", want: startOfBase.AddDate(0, 0, -1)},
		{name: "Next week", relative: "next week", want: startOfBase.AddDate(0, 0, 7)},
		{name: "In 3 days", relative: "in 3 days", want: startOfBase.AddDate(0, 0, 3)},
		{name: "In 2 weeks", relative: "in 2 weeks", want: startOfBase.AddDate(0, 0, 14)},
		{name: "In 1 month", relative: "in 1 month", want: startOfBase.AddDate(0, 1, 0)},
		{name: "Invalid duration", relative: "in a few days", want: baseTime, wantErr: true},
		{name: "Next Monday", relative: "next monday", want: startOfBase.AddDate(0, 0, 5)},
		{name: "Next Wednesday skips today", relative: "next wednesday", want: startOfBase.AddDate(0, 0, 7)},
		{name: "Bare Wednesday is today", relative: "wednesday", want: startOfBase},
		{name: "Bare Friday", relative: "friday", want: startOfBase.AddDate(0, 0, 2)},
		{name: "This Tuesday rolls forward", relative: "this tuesday", want: startOfBase.AddDate(0, 0, 6)},
		{name: "Unknown fallback", relative: "some random day", want: startOfBase},
		{name: "Invalid next weekday", relative: "next funday", want: baseTime, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parser.Parse(tt.relative, baseTime)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Parse() got = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEndOfDayAndWindow(t *testing.T) {
	parser, _ := datemath.NewParser("UTC")
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	if got := parser.EndOfDay(base); !got.Equal(time.Date(2024, 5, 1, 23, 59, 59, 0, time.UTC)) {
		t.Errorf("EndOfDay() got = %v", got)
	}

	start, end, err := parser.DayWindow("2024-05-01")
	if err != nil {
		t.Fatalf("DayWindow: %v", err)
	}
	if !start.Equal(base) || !end.Equal(base.AddDate(0, 0, 1)) {
		t.Errorf("DayWindow got [%v, %v)", start, end)
	}
	if _, _, err := parser.DayWindow("01/05/2024"); err == nil {
		t.Errorf("expected error for bad date")
	}
}

func TestFindDate(t *testing.T) {
	parser, _ := datemath.NewParser("UTC")
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) // Friday
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		text   string
		want   time.Time
		wantOK bool
	}{
		{text: "Meeting with Bob tomorrow at 2pm", want: day(2024, 3, 2), wantOK: true},
		{text: "Dentist on 2024-04-10", want: day(2024, 4, 10), wantOK: true},
		{text: "Conference March 15th", want: day(2024, 3, 15), wantOK: true},
		{text: "Party 3 Feb", want: day(2025, 2, 3), wantOK: true},
		{text: "Review 3/20", want: day(2024, 3, 20), wantOK: true},
		{text: "Review 12/25/24", want: day(2024, 12, 25), wantOK: true},
		{text: "Lunch Friday noon", want: day(2024, 3, 1), wantOK: true},
		{text: "Sync next monday", want: day(2024, 3, 4), wantOK: true},
		{text: "in 2 weeks we ship", want: day(2024, 3, 15), wantOK: true},
		{text: "Buy milk", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := parser.FindDate(tt.text, base)
			if ok != tt.wantOK {
				t.Fatalf("FindDate ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("FindDate got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFindClock(t *testing.T) {
	tests := []struct {
		text   string
		want   string
		wantOK bool
	}{
		{text: "Meeting with Bob tomorrow at 2pm", want: "14:00", wantOK: true},
		{text: "call at 2:30 PM", want: "14:30", wantOK: true},
		{text: "breakfast 7 a.m. sharp", want: "07:00", wantOK: true},
		{text: "12am deploy", want: "00:00", wantOK: true},
		{text: "standup 09:15", want: "09:15", wantOK: true},
		{text: "Lunch Friday noon", want: "12:00", wantOK: true},
		{text: "release at midnight", want: "00:00", wantOK: true},
		{text: "room 42", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := datemath.FindClock(tt.text)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("FindClock() = %q %v, want %q %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
