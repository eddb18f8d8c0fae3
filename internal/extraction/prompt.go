package extraction

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

const systemPrompt = `You extract calendar events from free-form text and reply with ONE JSON object of the form {"events": [...]}.

Each event object may contain:
- "event_name": short title in the language of the source text
- "event_description": details worth keeping (agenda, booking codes, people)
- "start_date", "end_date": YYYY-MM-DD
- "start_time", "end_time": HH:MM, 24-hour
- "start_datetime", "end_datetime": RFC3339 with offset, e.g. 2024-03-02T14:00:00+01:00
- "location": place or meeting link
- "emoji": one emoji that fits the event

Rules:
1. Resolve relative dates ("tomorrow", "next Friday", "in 3 days") against the time context below. Never invent a year the text does not imply.
2. Use either the split date/time fields or the combined datetime fields. Prefer combined datetimes when the text states an explicit timezone or the event crosses timezones.
3. Flight itineraries: one event per flight leg. Departure and arrival times are local to their airports; map each airport to its IANA timezone, express start_datetime and end_datetime with the correct offsets, and check that the resulting duration is plausible for the route. Put flight number and booking reference in the description and the departure airport in location.
4. If the text is a forwarded email with a "From:" header, the sender is context only; do not create an event for the email itself.
5. Mention each real-world event once even if the text repeats it.
6. Keep names and descriptions in the original language of the text.
7. If there are no events, reply {"events": []}.
8. Output JSON only. No markdown, no commentary.`

// buildTimeContext describes "now" for the model in the user's timezone.
func buildTimeContext(ref time.Time, loc *time.Location) string {
	now := ref.In(loc)

	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	weekStart := now.AddDate(0, 0, -(weekday - 1))
	weekEnd := weekStart.AddDate(0, 0, 6)

	return fmt.Sprintf(`Time context:
- Timezone: %s
- Today: %s (%s)
- Tomorrow: %s
- This week: %s to %s
- Next week starts: %s`,
		loc.String(),
		now.Format(dateLayout), now.Weekday(),
		now.AddDate(0, 0, 1).Format(dateLayout),
		weekStart.Format(dateLayout), weekEnd.Format(dateLayout),
		weekEnd.AddDate(0, 0, 1).Format(dateLayout),
	)
}

func buildUserMessage(text string, ref time.Time, loc *time.Location, fromEmail string) string {
	var sb strings.Builder
	sb.WriteString(buildTimeContext(ref, loc))
	sb.WriteString("\n\n")
	if fromEmail != "" {
		fmt.Fprintf(&sb, "Sender (from the From: header): %s\n\n", fromEmail)
	}
	sb.WriteString("Text:\n")
	sb.WriteString(text)
	return sb.String()
}
