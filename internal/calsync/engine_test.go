package calsync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calendar-autobot/internal/model"
	"calendar-autobot/pkg/gcalendar"
)

func lunch() model.Event {
	return model.Event{
		ID:        "e1",
		EventName: "Lunch with Ana",
		StartDate: "2024-03-02",
		StartTime: "12:30",
		EndDate:   "2024-03-02",
		Emoji:     "🍽️",
	}
}

func TestCreate_SameTitleSameDayIsIdempotent(t *testing.T) {
	f := newFixture()
	user := testUser()
	ctx := context.Background()

	first, err := f.engine.Create(ctx, user, lunch())
	require.NoError(t, err)

	again := lunch()
	again.EventName = "LUNCH with ana"
	second, err := f.engine.Create(ctx, user, again)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.api.inserts)
	assert.Equal(t, 1, f.api.creates, "calendar should be created once")
}

func TestCreate_SameTitleOtherDayIsInserted(t *testing.T) {
	f := newFixture()
	user := testUser()
	ctx := context.Background()

	_, err := f.engine.Create(ctx, user, lunch())
	require.NoError(t, err)

	next := lunch()
	next.StartDate, next.EndDate = "2024-03-03", "2024-03-03"
	_, err = f.engine.Create(ctx, user, next)
	require.NoError(t, err)
	assert.Equal(t, 2, f.api.inserts)
}

func TestCreate_RecreatesDeletedCalendar(t *testing.T) {
	f := newFixture()
	user := testUser()
	ctx := context.Background()

	_, err := f.engine.Create(ctx, user, lunch())
	require.NoError(t, err)
	oldCal := user.CalendarID

	// Calendar deleted remotely while its id is still cached.
	delete(f.api.calendars, oldCal)

	other := lunch()
	other.EventName = "Dentist"
	id, err := f.engine.Create(ctx, user, other)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.NotEqual(t, oldCal, user.CalendarID)
	assert.Equal(t, user.CalendarID, f.users.calendarIDs[user.ID])
}

func TestCreate_MapsRemoteErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"rate limited", apiErr(429, gcalendar.ErrRateLimited), ErrRateLimited},
		{"permission", apiErr(403, gcalendar.ErrPermissionDenied), ErrPermissionDenied},
		{"token rejected", apiErr(401, gcalendar.ErrUnauthorized), ErrReauthenticationRequired},
		{"server", apiErr(500, gcalendar.ErrRemote), ErrRemote},
		{"timeout", &gcalendar.APIError{Kind: gcalendar.ErrUnavailable, Err: context.DeadlineExceeded}, ErrTransientUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.api.insertErr = []error{tt.err}
			_, err := f.engine.Create(context.Background(), testUser(), lunch())
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSyncBatch(t *testing.T) {
	t.Run("marks synced and skips already synced", func(t *testing.T) {
		f := newFixture()
		events := []model.Event{lunch(), {ID: "e2", EventName: "Done", StartDate: "2024-03-02", IsSynced: true, GoogleEventID: "g-1"}}

		res := f.engine.SyncBatch(context.Background(), testUser(), events)
		require.NoError(t, res.Err)
		assert.Equal(t, 1, res.Synced)
		assert.Equal(t, 1, res.Skipped)
		assert.True(t, events[0].IsSynced)
		assert.NotEmpty(t, events[0].GoogleEventID)
	})

	t.Run("rate limit affects only its event", func(t *testing.T) {
		f := newFixture()
		f.api.insertErr = []error{apiErr(429, gcalendar.ErrRateLimited)}
		second := lunch()
		second.ID, second.EventName = "e2", "Gym"
		events := []model.Event{lunch(), second}

		res := f.engine.SyncBatch(context.Background(), testUser(), events)
		assert.NoError(t, res.Err)
		assert.Equal(t, 1, res.Failed)
		assert.Equal(t, 1, res.Synced)
		assert.False(t, events[0].IsSynced)
		assert.True(t, events[1].IsSynced)
	})

	t.Run("auth failure stops the batch", func(t *testing.T) {
		f := newFixture()
		f.tokens.err = &ReauthenticationRequired{Reason: ReasonRefreshRejected}
		second := lunch()
		second.ID = "e2"

		res := f.engine.SyncBatch(context.Background(), testUser(), []model.Event{lunch(), second})
		assert.ErrorIs(t, res.Err, ErrReauthenticationRequired)
		assert.Len(t, res.Outcomes, 1)
		assert.Equal(t, 1, f.tokens.calls)
	})

	t.Run("permission failure stops the batch", func(t *testing.T) {
		f := newFixture()
		f.api.insertErr = []error{apiErr(403, gcalendar.ErrPermissionDenied)}
		second := lunch()
		second.ID, second.EventName = "e2", "Gym"

		res := f.engine.SyncBatch(context.Background(), testUser(), []model.Event{lunch(), second})
		assert.ErrorIs(t, res.Err, ErrPermissionDenied)
		assert.Equal(t, 1, f.api.inserts)
	})
}

func TestUpdateAndDelete(t *testing.T) {
	f := newFixture()
	user := testUser()
	ctx := context.Background()

	id, err := f.engine.Create(ctx, user, lunch())
	require.NoError(t, err)

	edited := lunch()
	edited.Location = "Café Central"
	assert.True(t, f.engine.Update(ctx, user, id, edited))
	assert.Equal(t, "Café Central", f.api.events[user.CalendarID][0].Location)

	assert.False(t, f.engine.Update(ctx, user, "missing", edited))

	assert.True(t, f.engine.Delete(ctx, user, id))
	assert.True(t, f.engine.Delete(ctx, user, id), "already deleted counts as deleted")

	f.api.deleteErr = apiErr(500, gcalendar.ErrRemote)
	assert.False(t, f.engine.Delete(ctx, user, "other"))
}

func TestRemoveDuplicates(t *testing.T) {
	f := newFixture()
	user := testUser()
	ctx := context.Background()

	_, err := f.engine.Create(ctx, user, lunch())
	require.NoError(t, err)

	calID := user.CalendarID
	dup := f.api.events[calID][0]
	for i := 0; i < 2; i++ {
		copyEv := dup
		copyEv.ID = "dup-" + string(rune('a'+i))
		copyEv.Summary = "  " + dup.Summary
		f.api.events[calID] = append(f.api.events[calID], copyEv)
	}
	f.api.events[calID] = append(f.api.events[calID], gcalendar.Event{
		ID: "other-day", Summary: dup.Summary, Start: gcalendar.EventTime{Date: "2024-03-09"},
	})

	removed, err := f.engine.RemoveDuplicates(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Len(t, f.api.events[calID], 2)
	assert.Equal(t, dup.ID, f.api.events[calID][0].ID, "first occurrence is kept")
}

func TestRemoveDuplicates_CalendarDeletedRemotely(t *testing.T) {
	f := newFixture()
	user := testUser()
	ctx := context.Background()

	_, err := f.engine.Create(ctx, user, lunch())
	require.NoError(t, err)
	oldCal := user.CalendarID
	delete(f.api.calendars, oldCal)

	removed, err := f.engine.RemoveDuplicates(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
	assert.NotEqual(t, oldCal, user.CalendarID)
	assert.Equal(t, user.CalendarID, f.users.calendarIDs[user.ID])
}

func TestRemoveDuplicates_BoundsRemoteCalls(t *testing.T) {
	f := newFixture()
	user := testUser()
	ctx := context.Background()

	_, err := f.engine.Create(ctx, user, lunch())
	require.NoError(t, err)
	f.api.listUnbounded = 0

	_, err = f.engine.RemoveDuplicates(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 0, f.api.listUnbounded)
}

func TestRemoveDuplicates_NotAuthenticated(t *testing.T) {
	f := newFixture()
	f.tokens.err = ErrNotAuthenticated
	_, err := f.engine.RemoveDuplicates(context.Background(), testUser())
	assert.True(t, errors.Is(err, ErrNotAuthenticated))
}
