package usecase_test

import (
	"context"
	"errors"
	"strconv"
	"time"

	"calendar-autobot/internal/calsync"
	repo "calendar-autobot/internal/event/repository"
	"calendar-autobot/internal/extraction"
	"calendar-autobot/internal/model"
)

// mockRepo is an in-memory repository.Repository.
type mockRepo struct {
	users  map[string]model.User
	events map[string]model.Event
	order  []string

	saveErrs   []error // consumed per SaveExtraction call
	saveCalls  int
	lastSave   repo.SaveExtractionOptions
	updateCall int
	markErr    error
	marked     map[string]string
	nextID     int
}

func newMockRepo(users ...model.User) *mockRepo {
	r := &mockRepo{users: map[string]model.User{}, events: map[string]model.Event{}, marked: map[string]string{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *mockRepo) id(prefix string) string {
	r.nextID++
	return prefix + "-" + strconv.Itoa(r.nextID)
}

func (r *mockRepo) put(ev model.Event) model.Event {
	if ev.ID == "" {
		ev.ID = r.id("ev")
	}
	if _, ok := r.events[ev.ID]; !ok {
		r.order = append(r.order, ev.ID)
	}
	r.events[ev.ID] = ev
	return ev
}

func (r *mockRepo) GetUser(ctx context.Context, id string) (model.User, error) {
	return r.users[id], nil
}

func (r *mockRepo) CreateUser(ctx context.Context, opt repo.CreateUserOptions) (model.User, error) {
	u := model.User{ID: r.id("user"), Email: opt.Email, Timezone: opt.Timezone, IsTemporary: opt.IsTemporary}
	r.users[u.ID] = u
	return u, nil
}

func (r *mockRepo) UpdateCalendarID(ctx context.Context, userID, calendarID string) error {
	u := r.users[userID]
	u.CalendarID = calendarID
	r.users[userID] = u
	return nil
}

func (r *mockRepo) SaveCredential(ctx context.Context, userID string, cred model.SyncCredential) error {
	u := r.users[userID]
	u.Credential = cred
	r.users[userID] = u
	return nil
}

func (r *mockRepo) SaveExtraction(ctx context.Context, opt repo.SaveExtractionOptions) (model.TextInput, []model.Event, error) {
	r.saveCalls++
	r.lastSave = opt
	if len(r.saveErrs) > 0 {
		err := r.saveErrs[0]
		r.saveErrs = r.saveErrs[1:]
		if err != nil {
			return model.TextInput{}, nil, err
		}
	}
	input := model.TextInput{ID: r.id("ti"), UserID: opt.UserID, ExtractionStatus: opt.ExtractionStatus}
	saved := make([]model.Event, 0, len(opt.Events))
	for _, ev := range opt.Events {
		ev.UserID = opt.UserID
		ev.TextInputID = input.ID
		saved = append(saved, r.put(ev))
	}
	return input, saved, nil
}

func (r *mockRepo) GetEvent(ctx context.Context, opt repo.GetEventOptions) (model.Event, error) {
	ev, ok := r.events[opt.ID]
	if !ok || ev.UserID != opt.UserID {
		return model.Event{}, nil
	}
	return ev, nil
}

func (r *mockRepo) ListEvents(ctx context.Context, opt repo.ListEventsOptions) ([]model.Event, int, error) {
	var out []model.Event
	for _, id := range r.order {
		ev, ok := r.events[id]
		if !ok || ev.UserID != opt.UserID || (opt.UnsyncedOnly && ev.IsSynced) {
			continue
		}
		out = append(out, ev)
	}
	return out, len(out), nil
}

func (r *mockRepo) UpdateEvent(ctx context.Context, opt repo.UpdateEventOptions) (model.Event, error) {
	r.updateCall++
	existing, ok := r.events[opt.Event.ID]
	if !ok || existing.UserID != opt.UserID {
		return model.Event{}, nil
	}
	ev := opt.Event
	ev.UserID = existing.UserID
	ev.IsSynced = existing.IsSynced
	ev.GoogleEventID = existing.GoogleEventID
	r.events[ev.ID] = ev
	return ev, nil
}

func (r *mockRepo) MarkSynced(ctx context.Context, opt repo.MarkSyncedOptions) error {
	if r.markErr != nil {
		return r.markErr
	}
	ev := r.events[opt.EventID]
	ev.IsSynced = true
	ev.GoogleEventID = opt.GoogleEventID
	r.events[opt.EventID] = ev
	r.marked[opt.EventID] = opt.GoogleEventID
	return nil
}

func (r *mockRepo) DeleteEvent(ctx context.Context, opt repo.GetEventOptions) error {
	delete(r.events, opt.ID)
	return nil
}

// mockExtractor returns a fixed result and records its input.
type mockExtractor struct {
	result extraction.Result
	last   extraction.Input
	calls  int
}

func (m *mockExtractor) ExtractWithFallback(ctx context.Context, in extraction.Input) extraction.Result {
	m.calls++
	m.last = in
	return m.result
}

// mockEngine fakes the calendar side. batchErr stops the batch like an auth failure.
type mockEngine struct {
	created   []string
	createErr error
	batchErr  error
	failNames map[string]error
	updateOK  bool
	updates   int
	deleteOK  bool
	deletes   []string
	removed   int
	removeErr error
}

func (m *mockEngine) Create(ctx context.Context, user *model.User, ev model.Event) (string, error) {
	if m.createErr != nil {
		return "", m.createErr
	}
	m.created = append(m.created, ev.ID)
	return "g-" + ev.ID, nil
}

func (m *mockEngine) Update(ctx context.Context, user *model.User, remoteID string, ev model.Event) bool {
	m.updates++
	return m.updateOK
}

func (m *mockEngine) Delete(ctx context.Context, user *model.User, remoteID string) bool {
	m.deletes = append(m.deletes, remoteID)
	return m.deleteOK
}

func (m *mockEngine) RemoveDuplicates(ctx context.Context, user *model.User) (int, error) {
	return m.removed, m.removeErr
}

func (m *mockEngine) SyncBatch(ctx context.Context, user *model.User, events []model.Event) calsync.BatchResult {
	var res calsync.BatchResult
	for i := range events {
		ev := &events[i]
		if ev.IsSynced && ev.GoogleEventID != "" {
			res.Skipped++
			continue
		}
		if m.batchErr != nil {
			res.Failed++
			res.Outcomes = append(res.Outcomes, calsync.EventOutcome{EventID: ev.ID, Err: m.batchErr})
			res.Err = m.batchErr
			return res
		}
		if err := m.failNames[ev.EventName]; err != nil {
			res.Failed++
			res.Outcomes = append(res.Outcomes, calsync.EventOutcome{EventID: ev.ID, Err: err})
			continue
		}
		remoteID, _ := m.Create(ctx, user, *ev)
		res.Outcomes = append(res.Outcomes, calsync.EventOutcome{EventID: ev.ID, RemoteID: remoteID})
		ev.IsSynced = true
		ev.GoogleEventID = remoteID
		res.Synced++
	}
	return res
}

type sleepRecorder struct {
	waits []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return nil
}

var errDB = errors.New("database is locked")
