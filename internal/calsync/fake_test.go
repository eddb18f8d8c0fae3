package calsync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"calendar-autobot/internal/calsync/refcache"
	"calendar-autobot/internal/model"
	"calendar-autobot/pkg/gcalendar"
	"calendar-autobot/pkg/log"
)

// fakeCalendarAPI is an in-memory calendar service.
type fakeCalendarAPI struct {
	mu        sync.Mutex
	calendars map[string]*gcalendar.Calendar
	events    map[string][]gcalendar.Event
	nextID    int

	inserts   int
	creates   int
	gets      int
	deletes   int
	insertErr []error // consumed one per InsertEvent call
	getErr    error
	deleteErr error
	updateErr error

	// listUnbounded counts ListEvents calls whose context had no deadline.
	listUnbounded int
}

func newFakeCalendarAPI() *fakeCalendarAPI {
	return &fakeCalendarAPI{
		calendars: map[string]*gcalendar.Calendar{},
		events:    map[string][]gcalendar.Event{},
	}
}

func apiErr(status int, kind error) error {
	return &gcalendar.APIError{StatusCode: status, Kind: kind, Err: errors.New(kind.Error())}
}

func (f *fakeCalendarAPI) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeCalendarAPI) GetCalendar(ctx context.Context, accessToken, calendarID string) (*gcalendar.Calendar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	cal, ok := f.calendars[calendarID]
	if !ok {
		return nil, apiErr(404, gcalendar.ErrNotFound)
	}
	return cal, nil
}

func (f *fakeCalendarAPI) CreateCalendar(ctx context.Context, accessToken string, in gcalendar.CalendarInput) (*gcalendar.Calendar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	cal := &gcalendar.Calendar{ID: f.id("cal"), Summary: in.Summary, Description: in.Description, TimeZone: in.TimeZone}
	f.calendars[cal.ID] = cal
	return cal, nil
}

func (f *fakeCalendarAPI) ListEvents(ctx context.Context, accessToken string, req gcalendar.ListEventsRequest) ([]gcalendar.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := ctx.Deadline(); !ok {
		f.listUnbounded++
	}
	if _, ok := f.calendars[req.CalendarID]; !ok {
		return nil, apiErr(404, gcalendar.ErrNotFound)
	}
	var out []gcalendar.Event
	for _, ev := range f.events[req.CalendarID] {
		start, err := time.Parse(time.RFC3339, ev.Start.DateTime)
		if err != nil {
			start, _ = time.Parse("2006-01-02", ev.Start.Date)
		}
		if !req.TimeMin.IsZero() && start.Before(req.TimeMin) {
			continue
		}
		if !req.TimeMax.IsZero() && !start.Before(req.TimeMax) {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

func (f *fakeCalendarAPI) InsertEvent(ctx context.Context, accessToken, calendarID string, in gcalendar.EventInput) (*gcalendar.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts++
	if len(f.insertErr) > 0 {
		err := f.insertErr[0]
		f.insertErr = f.insertErr[1:]
		if err != nil {
			return nil, err
		}
	}
	if _, ok := f.calendars[calendarID]; !ok {
		return nil, apiErr(404, gcalendar.ErrNotFound)
	}
	ev := gcalendar.Event{ID: f.id("ev"), Summary: in.Summary, Description: in.Description, Location: in.Location, Start: in.Start, End: in.End}
	f.events[calendarID] = append(f.events[calendarID], ev)
	return &ev, nil
}

func (f *fakeCalendarAPI) UpdateEvent(ctx context.Context, accessToken, calendarID, eventID string, in gcalendar.EventInput) (*gcalendar.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	for i, ev := range f.events[calendarID] {
		if ev.ID == eventID {
			updated := gcalendar.Event{ID: eventID, Summary: in.Summary, Description: in.Description, Location: in.Location, Start: in.Start, End: in.End}
			f.events[calendarID][i] = updated
			return &updated, nil
		}
	}
	return nil, apiErr(404, gcalendar.ErrNotFound)
}

func (f *fakeCalendarAPI) DeleteEvent(ctx context.Context, accessToken, calendarID, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	events := f.events[calendarID]
	for i, ev := range events {
		if ev.ID == eventID {
			f.events[calendarID] = append(events[:i], events[i+1:]...)
			return nil
		}
	}
	return apiErr(410, gcalendar.ErrNotFound)
}

type staticTokens struct {
	token string
	err   error
	calls int
}

func (s *staticTokens) EnsureValidAccessToken(ctx context.Context, user *model.User) (string, error) {
	s.calls++
	return s.token, s.err
}

type memoryUserStore struct {
	mu          sync.Mutex
	calendarIDs map[string]string
	creds       map[string]model.SyncCredential
	err         error
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{calendarIDs: map[string]string{}, creds: map[string]model.SyncCredential{}}
}

func (m *memoryUserStore) UpdateCalendarID(ctx context.Context, userID, calendarID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.calendarIDs[userID] = calendarID
	return nil
}

func (m *memoryUserStore) SaveCredential(ctx context.Context, userID string, cred model.SyncCredential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.creds[userID] = cred
	return nil
}

type fixture struct {
	api      *fakeCalendarAPI
	tokens   *staticTokens
	users    *memoryUserStore
	cache    *refcache.LRU
	resolver *CalendarResolver
	engine   *Engine
}

func newFixture() *fixture {
	f := &fixture{
		api:    newFakeCalendarAPI(),
		tokens: &staticTokens{token: "tok"},
		users:  newMemoryUserStore(),
		cache:  refcache.NewLRU(10, time.Hour),
	}
	f.resolver = NewCalendarResolver(log.NewNop(), f.api, f.users, f.cache, ResolverConfig{})
	f.engine = NewEngine(log.NewNop(), f.tokens, f.resolver, f.api, EngineConfig{})
	return f
}

func testUser() *model.User {
	return &model.User{
		ID:         "user-1",
		Timezone:   "Europe/Berlin",
		Credential: model.SyncCredential{AccessToken: "tok", RefreshToken: "refresh"},
	}
}
