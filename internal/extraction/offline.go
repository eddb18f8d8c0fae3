package extraction

import (
	"regexp"
	"strings"
	"time"

	"calendar-autobot/internal/model"
	"calendar-autobot/pkg/datemath"
)

const (
	maxOfflineNameLen  = 100
	maxFallbackDescLen = 200
	offlineDescription = "Extracted without AI from: "
)

var (
	headerLineRe = regexp.MustCompile(`(?i)^(from|to|subject|date|cc|bcc|sent|reply-to)\s*:`)
	keywordRe    = regexp.MustCompile(`(?i)\b(meeting|meet|flight|conference|appointment|call|lunch|dinner|breakfast|interview|party|birthday|deadline|webinar|workshop|seminar|class|exam|concert|dentist|doctor|trip|standup|stand-up|demo|presentation|reservation|check-in|event)\b`)
)

// OfflineExtractor is a heuristic line scanner used when the model is unavailable.
type OfflineExtractor struct{}

func NewOfflineExtractor() *OfflineExtractor {
	return &OfflineExtractor{}
}

// Extract never fails and always returns at least one event.
func (o *OfflineExtractor) Extract(text string, ref time.Time, loc *time.Location) []model.RawEvent {
	if loc == nil {
		loc = time.UTC
	}
	parser, err := datemath.NewParser(loc.String())
	if err != nil {
		parser, _ = datemath.NewParser("UTC")
	}
	refDate := ref.In(parser.Location()).Format(dateLayout)

	var events []model.RawEvent
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || headerLineRe.MatchString(line) {
			continue
		}

		date, hasDate := parser.FindDate(line, ref)
		clock, hasClock := datemath.FindClock(line)
		if !hasDate && !hasClock && !keywordRe.MatchString(line) {
			continue
		}

		ev := model.RawEvent{
			EventName:        model.String(truncate(line, maxOfflineNameLen)),
			EventDescription: model.String(offlineDescription + line),
			StartDate:        model.String(refDate),
		}
		if hasDate {
			ev.StartDate = model.String(date.Format(dateLayout))
		}
		if hasClock {
			ev.StartTime = model.String(clock)
		}
		events = append(events, ev)
	}

	if len(events) == 0 {
		events = append(events, model.RawEvent{
			EventName:        model.String(model.DefaultEventName),
			EventDescription: model.String(truncate(strings.TrimSpace(text), maxFallbackDescLen)),
			StartDate:        model.String(refDate),
		})
	}
	return events
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
