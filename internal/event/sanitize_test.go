package event_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"calendar-autobot/internal/calsync"
	"calendar-autobot/internal/event"
	"calendar-autobot/internal/event/repository"
	"calendar-autobot/internal/extraction"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "Lunch Friday", "Lunch Friday"},
		{"nul bytes", "Lun\x00ch", "Lunch"},
		{"keeps whitespace", "a\tb\nc\r\n", "a\tb\nc\r\n"},
		{"control chars", "a\x01\x08\x0b\x0c\x1f\x7fb", "ab"},
		{"invalid utf8", "caf\xe9", "caf"},
		{"unicode kept", "Réunion 会議", "Réunion 会議"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := event.Sanitize(tt.in); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeTruncates(t *testing.T) {
	in := strings.Repeat("é", event.MaxStoredTextLength+10)
	got := event.Sanitize(in)
	if !strings.HasSuffix(got, "... [truncated]") {
		t.Fatalf("expected truncation suffix, got tail %q", got[len(got)-20:])
	}
	body := strings.TrimSuffix(got, "... [truncated]")
	if n := len([]rune(body)); n != event.MaxStoredTextLength {
		t.Errorf("expected %d runes kept, got %d", event.MaxStoredTextLength, n)
	}

	exact := strings.Repeat("a", event.MaxStoredTextLength)
	if got := event.Sanitize(exact); got != exact {
		t.Error("text at the limit must not be truncated")
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{event.ErrEmptyInput, "Please enter some text"},
		{extraction.ErrRateLimitExhausted, "busy"},
		{extraction.ErrInvalidRequest, "rephrase"},
		{&calsync.ReauthenticationRequired{Reason: calsync.ReasonRefreshRejected}, "sign in again"},
		{fmt.Errorf("wrap: %w", calsync.ErrTransientUnavailable), "temporarily unavailable"},
		{fmt.Errorf("%w: boom", repository.ErrPersistenceFailure), "could not save"},
		{errors.New("openai: 500 internal secret"), "Something went wrong"},
	}
	for _, tt := range tests {
		got := event.UserMessage(tt.err)
		if tt.want == "" {
			if got != "" {
				t.Errorf("UserMessage(nil) = %q", got)
			}
			continue
		}
		if !strings.Contains(got, tt.want) {
			t.Errorf("UserMessage(%v) = %q, want it to contain %q", tt.err, got, tt.want)
		}
		if strings.Contains(got, "secret") {
			t.Errorf("UserMessage leaked provider text: %q", got)
		}
	}
}
