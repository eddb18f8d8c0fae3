package datemath

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Parser resolves relative day phrases against a reference instant in one timezone.
type Parser struct {
	location *time.Location
}

// NewParser creates a parser for the given IANA timezone, e.g. "Europe/Berlin".
func NewParser(timezone string) (*Parser, error) {
	if timezone == "" {
		timezone = "UTC"
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return &Parser{location: loc}, nil
}

// Location returns the parser's timezone.
func (p *Parser) Location() *time.Location {
	return p.location
}

var weekdays = map[string]time.Weekday{
	"monday":    time.Monday,
	"mon":       time.Monday,
	"tuesday":   time.Tuesday,
	"tue":       time.Tuesday,
	"tues":      time.Tuesday,
	"wednesday": time.Wednesday,
	"wed":       time.Wednesday,
	"thursday":  time.Thursday,
	"thu":       time.Thursday,
	"thurs":     time.Thursday,
	"friday":    time.Friday,
	"fri":       time.Friday,
	"saturday":  time.Saturday,
	"sat":       time.Saturday,
	"sunday":    time.Sunday,
	"sun":       time.Sunday,
}

var inDurationRe = regexp.MustCompile(`^in (\d+) (day|days|week|weeks|month|months)$`)

// Parse converts a relative phrase into the start of the day it names.
// Unknown phrases resolve to the reference day.
func (p *Parser) Parse(relative string, base time.Time) (time.Time, error) {
	relative = strings.Join(strings.Fields(strings.ToLower(relative)), " ")

	switch relative {
	case "today", "tonight", "this evening", "this morning", "this afternoon":
		return p.StartOfDay(base), nil
	case "tomorrow", "tmrw", "tmr":
		return p.StartOfDay(base.AddDate(0, 0, 1)), nil
	case "day after tomorrow", "the day after tomorrow":
		return p.StartOfDay(base.AddDate(0, 0, 2)), nil
	case "yesterday":
		return p.StartOfDay(base.AddDate(0, 0, -1)), nil
	case "next week":
		return p.StartOfDay(base.AddDate(0, 0, 7)), nil
	}

	switch {
	case strings.HasPrefix(relative, "in "):
		return p.parseInDuration(relative, base)
	case strings.HasPrefix(relative, "next "):
		return p.parseWeekday(strings.TrimPrefix(relative, "next "), base, true)
	case strings.HasPrefix(relative, "this "):
		return p.parseWeekday(strings.TrimPrefix(relative, "this "), base, false)
	}

	if _, ok := weekdays[relative]; ok {
		return p.parseWeekday(relative, base, false)
	}

	return p.StartOfDay(base), nil
}

func (p *Parser) parseInDuration(relative string, base time.Time) (time.Time, error) {
	m := inDurationRe.FindStringSubmatch(relative)
	if len(m) != 3 {
		return base, fmt.Errorf("invalid duration format: %q", relative)
	}

	amount, _ := strconv.Atoi(m[1])
	switch unit := m[2]; {
	case strings.HasPrefix(unit, "day"):
		return p.StartOfDay(base.AddDate(0, 0, amount)), nil
	case strings.HasPrefix(unit, "week"):
		return p.StartOfDay(base.AddDate(0, 0, amount*7)), nil
	default:
		return p.StartOfDay(base.AddDate(0, amount, 0)), nil
	}
}

// parseWeekday finds the next occurrence of name. With strict set, the
// reference day itself never matches.
func (p *Parser) parseWeekday(name string, base time.Time, strict bool) (time.Time, error) {
	target, ok := weekdays[name]
	if !ok {
		return base, fmt.Errorf("unknown weekday: %q", name)
	}

	base = base.In(p.location)
	days := int(target - base.Weekday())
	if days < 0 || (days == 0 && strict) {
		days += 7
	}
	return p.StartOfDay(base.AddDate(0, 0, days)), nil
}

// StartOfDay returns midnight of t's day in the parser's timezone.
func (p *Parser) StartOfDay(t time.Time) time.Time {
	t = t.In(p.location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, p.location)
}

// EndOfDay returns 23:59:59 of the day starting at startOfDay.
func (p *Parser) EndOfDay(startOfDay time.Time) time.Time {
	return startOfDay.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
}

// DayWindow returns [start, next start) for the YYYY-MM-DD date in the parser's zone.
func (p *Parser) DayWindow(date string) (time.Time, time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", date, p.location)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return d, d.AddDate(0, 0, 1), nil
}
