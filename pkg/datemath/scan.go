package datemath

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	isoDateRe  = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	slashRe    = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{2,4}))?\b`)
	monthDayRe = regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?\s+(\d{1,2})(?:st|nd|rd|th)?\b`)
	dayMonthRe = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\b`)
	relativeRe = regexp.MustCompile(`(?i)\b((?:the\s+)?day after tomorrow|today|tonight|tomorrow|tmrw|yesterday|next week|in \d+ (?:days?|weeks?|months?)|(?:next|this)\s+(?:mon|tue|tues|wed|thu|thurs|fri|sat|sun)[a-z]*|(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday))\b`)

	clockRe    = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(am|pm|a\.m\.|p\.m\.)(?:\W|$)`)
	clock24Re  = regexp.MustCompile(`\b([01]?\d|2[0-3]):([0-5]\d)\b`)
	namedClock = regexp.MustCompile(`(?i)\b(noon|midday|midnight)\b`)
)

var months = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"may": time.May, "jun": time.June, "jul": time.July, "aug": time.August,
	"sep": time.September, "sept": time.September, "oct": time.October,
	"nov": time.November, "dec": time.December,
}

// FindDate looks for the first absolute or relative date mention in text and
// resolves it against base. Month-day mentions without a year roll forward
// into next year when already past.
func (p *Parser) FindDate(text string, base time.Time) (time.Time, bool) {
	base = base.In(p.location)

	if m := isoDateRe.FindStringSubmatch(text); m != nil {
		if t, err := time.ParseInLocation("2006-01-02", m[0], p.location); err == nil {
			return t, true
		}
	}

	if m := monthDayRe.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[2])
		if t, ok := p.monthDay(months[strings.ToLower(m[1])], day, base); ok {
			return t, true
		}
	}

	if m := dayMonthRe.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		if t, ok := p.monthDay(months[strings.ToLower(m[2])], day, base); ok {
			return t, true
		}
	}

	if m := slashRe.FindStringSubmatch(text); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		if m[3] != "" {
			year, _ := strconv.Atoi(m[3])
			if year < 100 {
				year += 2000
			}
			if t, ok := p.validDate(year, time.Month(month), day); ok {
				return t, true
			}
		} else if t, ok := p.monthDay(time.Month(month), day, base); ok {
			return t, true
		}
	}

	if m := relativeRe.FindString(text); m != "" {
		if t, err := p.Parse(m, base); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func (p *Parser) monthDay(month time.Month, day int, base time.Time) (time.Time, bool) {
	t, ok := p.validDate(base.Year(), month, day)
	if !ok {
		return time.Time{}, false
	}
	if t.Before(p.StartOfDay(base)) {
		return p.validDate(base.Year()+1, month, day)
	}
	return t, true
}

func (p *Parser) validDate(year int, month time.Month, day int) (time.Time, bool) {
	if month < time.January || month > time.December || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, p.location)
	if t.Month() != month {
		return time.Time{}, false
	}
	return t, true
}

// FindClock returns the first time of day mentioned in text as HH:MM.
// Recognizes "2pm", "2:30 pm", "14:00", "noon" and "midnight".
func FindClock(text string) (string, bool) {
	if m := clockRe.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if hour >= 1 && hour <= 12 && minute < 60 {
			pm := strings.HasPrefix(strings.ToLower(m[3]), "p")
			switch {
			case pm && hour != 12:
				hour += 12
			case !pm && hour == 12:
				hour = 0
			}
			return fmt.Sprintf("%02d:%02d", hour, minute), true
		}
	}

	if m := clock24Re.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		return fmt.Sprintf("%02d:%02d", hour, minute), true
	}

	if m := namedClock.FindString(text); m != "" {
		if strings.EqualFold(m, "midnight") {
			return "00:00", true
		}
		return "12:00", true
	}

	return "", false
}
