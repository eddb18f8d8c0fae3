package gcalendar

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Scope lets the app manage only the calendars it creates.
const Scope = "https://www.googleapis.com/auth/calendar.app.created"

const defaultPageSize = 250

// Client talks to the Calendar API on behalf of whichever user's access
// token is passed to each call.
type Client struct {
	base http.RoundTripper
}

// NewClient builds a Client over httpClient's transport. Nil uses the default transport.
func NewClient(httpClient *http.Client) *Client {
	base := http.DefaultTransport
	if httpClient != nil && httpClient.Transport != nil {
		base = httpClient.Transport
	}
	return &Client{base: base}
}

func (c *Client) service(ctx context.Context, accessToken string) (*calendar.Service, error) {
	hc := &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}),
			Base:   c.base,
		},
	}
	svc, err := calendar.NewService(ctx, option.WithHTTPClient(hc))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return svc, nil
}

// GetCalendar fetches calendar metadata. A deleted calendar yields ErrNotFound.
func (c *Client) GetCalendar(ctx context.Context, accessToken, calendarID string) (*Calendar, error) {
	svc, err := c.service(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	cal, err := svc.Calendars.Get(calendarID).Context(ctx).Do()
	if err != nil {
		return nil, mapError(err)
	}
	return toCalendar(cal), nil
}

// CreateCalendar creates a secondary calendar.
func (c *Client) CreateCalendar(ctx context.Context, accessToken string, in CalendarInput) (*Calendar, error) {
	svc, err := c.service(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	cal, err := svc.Calendars.Insert(&calendar.Calendar{
		Summary:     in.Summary,
		Description: in.Description,
		TimeZone:    in.TimeZone,
	}).Context(ctx).Do()
	if err != nil {
		return nil, mapError(err)
	}
	return toCalendar(cal), nil
}

// ListEvents returns every event in the window, following page tokens.
func (c *Client) ListEvents(ctx context.Context, accessToken string, req ListEventsRequest) ([]Event, error) {
	svc, err := c.service(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	call := svc.Events.List(req.CalendarID).SingleEvents(true).MaxResults(pageSize)
	if !req.TimeMin.IsZero() {
		call = call.TimeMin(req.TimeMin.Format(time.RFC3339))
	}
	if !req.TimeMax.IsZero() {
		call = call.TimeMax(req.TimeMax.Format(time.RFC3339))
	}

	var out []Event
	err = call.Pages(ctx, func(page *calendar.Events) error {
		for _, item := range page.Items {
			out = append(out, toEvent(item))
		}
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

// InsertEvent creates an event and returns it with the remote id.
func (c *Client) InsertEvent(ctx context.Context, accessToken, calendarID string, in EventInput) (*Event, error) {
	svc, err := c.service(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	created, err := svc.Events.Insert(calendarID, fromInput(in)).Context(ctx).Do()
	if err != nil {
		return nil, mapError(err)
	}
	ev := toEvent(created)
	return &ev, nil
}

// UpdateEvent replaces an event's content.
func (c *Client) UpdateEvent(ctx context.Context, accessToken, calendarID, eventID string, in EventInput) (*Event, error) {
	svc, err := c.service(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	updated, err := svc.Events.Update(calendarID, eventID, fromInput(in)).Context(ctx).Do()
	if err != nil {
		return nil, mapError(err)
	}
	ev := toEvent(updated)
	return &ev, nil
}

// DeleteEvent removes an event. Already-deleted events yield ErrNotFound.
func (c *Client) DeleteEvent(ctx context.Context, accessToken, calendarID, eventID string) error {
	svc, err := c.service(ctx, accessToken)
	if err != nil {
		return err
	}
	return mapError(svc.Events.Delete(calendarID, eventID).Context(ctx).Do())
}

func fromInput(in EventInput) *calendar.Event {
	return &calendar.Event{
		Summary:     in.Summary,
		Description: in.Description,
		Location:    in.Location,
		Start:       fromTime(in.Start),
		End:         fromTime(in.End),
	}
}

func fromTime(t EventTime) *calendar.EventDateTime {
	return &calendar.EventDateTime{Date: t.Date, DateTime: t.DateTime, TimeZone: t.TimeZone}
}

func toTime(t *calendar.EventDateTime) EventTime {
	if t == nil {
		return EventTime{}
	}
	return EventTime{Date: t.Date, DateTime: t.DateTime, TimeZone: t.TimeZone}
}

func toEvent(e *calendar.Event) Event {
	return Event{
		ID:          e.Id,
		Summary:     e.Summary,
		Description: e.Description,
		Location:    e.Location,
		HtmlLink:    e.HtmlLink,
		Status:      e.Status,
		Start:       toTime(e.Start),
		End:         toTime(e.End),
	}
}

func toCalendar(c *calendar.Calendar) *Calendar {
	return &Calendar{
		ID:          c.Id,
		Summary:     c.Summary,
		Description: c.Description,
		TimeZone:    c.TimeZone,
	}
}
