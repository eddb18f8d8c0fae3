// Package timefmt validates and normalizes the date, time and datetime strings
// produced by the extraction layer.
package timefmt

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// ErrInvalidFormat is returned when a value matches none of the accepted layouts.
var ErrInvalidFormat = errors.New("invalid format")

// timeLayouts are tried in order; the first successful parse wins.
var timeLayouts = []string{
	"15:04",
	"3:04 PM",
	"3:04PM",
	"15:04:05",
	"3:04:05 PM",
}

var tzSuffix = regexp.MustCompile(`(Z|[+-]\d{2}:\d{2})$`)

// ParseDate accepts only YYYY-MM-DD and returns the trimmed value.
func ParseDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if _, err := time.Parse(DateLayout, s); err != nil {
		return "", fmt.Errorf("%w: date %q", ErrInvalidFormat, s)
	}
	return s, nil
}

// NormalizeTime converts a 12h or 24h time into HH:MM.
func NormalizeTime(s string) (string, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, v)
		if err == nil {
			return t.Format(TimeLayout), nil
		}
	}
	return "", fmt.Errorf("%w: time %q", ErrInvalidFormat, s)
}

// NormalizeDateTime keeps s only when it is a full RFC3339 timestamp with an
// explicit zone designator. Anything else yields "".
func NormalizeDateTime(s string) string {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "T") || !tzSuffix.MatchString(s) {
		return ""
	}
	if _, err := time.Parse(time.RFC3339, s); err != nil {
		return ""
	}
	return s
}

// DatePart returns the calendar date of an RFC3339 value in its own offset.
func DatePart(datetime string) (string, bool) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(datetime))
	if err != nil {
		return "", false
	}
	return t.Format(DateLayout), true
}
