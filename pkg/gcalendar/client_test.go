package gcalendar_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"calendar-autobot/pkg/gcalendar"
)

type rewriteTransport struct {
	Transport http.RoundTripper
	Host      string
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = "http"
	req.URL.Host = t.Host
	return t.Transport.RoundTrip(req)
}

func newTestClient(t *testing.T, h http.HandlerFunc) *gcalendar.Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	tsClient := ts.Client()
	tsClient.Transport = &rewriteTransport{
		Transport: tsClient.Transport,
		Host:      strings.TrimPrefix(ts.URL, "http://"),
	}
	return gcalendar.NewClient(tsClient)
}

func writeGoogleError(w http.ResponseWriter, code int, reason string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	body := map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": reason,
			"errors":  []map[string]string{{"reason": reason, "message": reason}},
		},
	}
	json.NewEncoder(w).Encode(body)
}

func TestInsertEvent(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/calendar/v3/calendars/cal-1/events" || r.Method != http.MethodPost {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"id":"event-123","htmlLink":"https://calendar.google.com/event-uri","status":"confirmed"}`))
	})

	ev, err := client.InsertEvent(context.Background(), "tok-1", "cal-1", gcalendar.EventInput{
		Summary:  "📅 Review",
		Location: "Room 4",
		Start:    gcalendar.EventTime{DateTime: "2024-03-02T14:00:00", TimeZone: "Europe/Berlin"},
		End:      gcalendar.EventTime{DateTime: "2024-03-02T15:00:00", TimeZone: "Europe/Berlin"},
	})
	if err != nil {
		t.Fatalf("InsertEvent() error = %v", err)
	}
	if ev.ID != "event-123" || ev.HtmlLink != "https://calendar.google.com/event-uri" {
		t.Errorf("unexpected event %+v", ev)
	}
	if gotAuth != "Bearer tok-1" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotBody["summary"] != "📅 Review" || gotBody["location"] != "Room 4" {
		t.Errorf("unexpected body %v", gotBody)
	}
}

func TestListEvents_FollowsPages(t *testing.T) {
	var calls int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/calendar/v3/calendars/cal-1/events" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		calls++
		if r.URL.Query().Get("singleEvents") != "true" || r.URL.Query().Get("timeMin") == "" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		if r.URL.Query().Get("pageToken") == "" {
			w.Write([]byte(`{"items":[{"id":"a","summary":"First","start":{"date":"2024-05-01"}}],"nextPageToken":"p2"}`))
			return
		}
		w.Write([]byte(`{"items":[{"id":"b","summary":"Second","start":{"dateTime":"2024-05-01T10:00:00Z"}}]}`))
	})

	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	events, err := client.ListEvents(context.Background(), "tok", gcalendar.ListEventsRequest{
		CalendarID: "cal-1",
		TimeMin:    day,
		TimeMax:    day.Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if calls != 2 || len(events) != 2 {
		t.Fatalf("calls=%d events=%d", calls, len(events))
	}
	if events[0].Start.Date != "2024-05-01" || events[1].Start.DateTime != "2024-05-01T10:00:00Z" {
		t.Errorf("unexpected times %+v", events)
	}
}

func TestCalendars(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/calendar/v3/calendars":
			w.Write([]byte(`{"id":"new-cal","summary":"Calendar Autobot","timeZone":"Asia/Tokyo"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/calendar/v3/calendars/new-cal":
			w.Write([]byte(`{"id":"new-cal","summary":"Calendar Autobot"}`))
		default:
			writeGoogleError(w, http.StatusNotFound, "notFound")
		}
	})

	cal, err := client.CreateCalendar(context.Background(), "tok", gcalendar.CalendarInput{Summary: "Calendar Autobot", TimeZone: "Asia/Tokyo"})
	if err != nil || cal.ID != "new-cal" || cal.TimeZone != "Asia/Tokyo" {
		t.Fatalf("CreateCalendar() = %+v, %v", cal, err)
	}
	if _, err := client.GetCalendar(context.Background(), "tok", "new-cal"); err != nil {
		t.Errorf("GetCalendar() error = %v", err)
	}
	if _, err := client.GetCalendar(context.Background(), "tok", "gone"); !errors.Is(err, gcalendar.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		reason string
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, "authError", gcalendar.ErrUnauthorized},
		{"rate limit via 403", http.StatusForbidden, "rateLimitExceeded", gcalendar.ErrRateLimited},
		{"user rate limit via 403", http.StatusForbidden, "userRateLimitExceeded", gcalendar.ErrRateLimited},
		{"forbidden", http.StatusForbidden, "forbidden", gcalendar.ErrPermissionDenied},
		{"not found", http.StatusNotFound, "notFound", gcalendar.ErrNotFound},
		{"gone", http.StatusGone, "deleted", gcalendar.ErrNotFound},
		{"too many requests", http.StatusTooManyRequests, "rateLimitExceeded", gcalendar.ErrRateLimited},
		{"server error", http.StatusInternalServerError, "backendError", gcalendar.ErrRemote},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeGoogleError(w, tt.status, tt.reason)
			})
			err := client.DeleteEvent(context.Background(), "tok", "cal-1", "ev-1")
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			var apiErr *gcalendar.APIError
			if !errors.As(err, &apiErr) || apiErr.StatusCode != tt.status {
				t.Errorf("expected APIError with status %d, got %v", tt.status, err)
			}
		})
	}
}

func TestTimeoutMapsToUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := client.InsertEvent(ctx, "tok", "cal-1", gcalendar.EventInput{Summary: "x"})
	if !errors.Is(err, gcalendar.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}
