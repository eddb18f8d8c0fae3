package extraction

import (
	"encoding/json"
	"regexp"
	"strings"

	"calendar-autobot/internal/model"
)

var fromHeaderRe = regexp.MustCompile(`(?i)From:\s*([^\s<]+@[^\s>]+)`)

// DetectSender returns the address of the first From: header in text.
func DetectSender(text string) string {
	m := fromHeaderRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimRight(m[1], ".,;)")
}

// attribute appends the sender to every event name.
func attribute(events []model.RawEvent, fromEmail string) {
	if fromEmail == "" {
		return
	}
	suffix := " (from " + fromEmail + ")"
	for i := range events {
		name := model.DefaultEventName
		if events[i].EventName != nil && strings.TrimSpace(*events[i].EventName) != "" {
			name = strings.TrimSpace(*events[i].EventName)
		}
		if strings.HasSuffix(name, suffix) {
			continue
		}
		events[i].EventName = model.String(name + suffix)
	}
}

type eventsEnvelope struct {
	Events []model.RawEvent `json:"events"`
}

// parseEvents decodes the model output, tolerating code fences and prose
// around the JSON body. A bare array is accepted too.
func parseEvents(content string) ([]model.RawEvent, error) {
	body := sanitizeJSONResponse(content)
	if body == "" {
		return nil, ErrEmptyResponse
	}

	if strings.HasPrefix(body, "[") {
		var events []model.RawEvent
		if err := json.Unmarshal([]byte(body), &events); err != nil {
			return nil, ErrEmptyResponse
		}
		return events, nil
	}

	var env eventsEnvelope
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		return nil, ErrEmptyResponse
	}
	if env.Events == nil {
		env.Events = []model.RawEvent{}
	}
	return env.Events, nil
}

func sanitizeJSONResponse(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if s[0] == '{' || s[0] == '[' {
		return s
	}

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return ""
	}
	closer := byte('}')
	if s[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(s, closer)
	if end <= start {
		return ""
	}
	return s[start : end+1]
}
