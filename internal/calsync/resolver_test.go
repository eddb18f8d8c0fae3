package calsync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calendar-autobot/pkg/gcalendar"
)

func TestResolve_CreatesAndPersists(t *testing.T) {
	f := newFixture()
	user := testUser()
	ctx := context.Background()

	id, err := f.resolver.Resolve(ctx, user, "tok")
	require.NoError(t, err)

	cal := f.api.calendars[id]
	require.NotNil(t, cal)
	assert.Equal(t, DefaultCalendarSummary, cal.Summary)
	assert.Equal(t, "Europe/Berlin", cal.TimeZone)
	assert.Equal(t, id, user.CalendarID)
	assert.Equal(t, id, f.users.calendarIDs[user.ID])

	cached, ok := f.cache.Get(ctx, user.ID)
	assert.True(t, ok)
	assert.Equal(t, id, cached)

	again, err := f.resolver.Resolve(ctx, user, "tok")
	require.NoError(t, err)
	assert.Equal(t, id, again)
	assert.Equal(t, 1, f.api.creates)
	assert.Equal(t, 1, f.api.gets, "cached id is checked before use")
}

func TestResolve_CachedCalendarDeletedRemotely(t *testing.T) {
	f := newFixture()
	user := testUser()
	ctx := context.Background()

	old, err := f.resolver.Resolve(ctx, user, "tok")
	require.NoError(t, err)
	delete(f.api.calendars, old)

	id, err := f.resolver.Resolve(ctx, user, "tok")
	require.NoError(t, err)
	assert.NotEqual(t, old, id)
	assert.Equal(t, 1, f.api.gets)
	assert.Equal(t, 2, f.api.creates)
	assert.Equal(t, id, user.CalendarID)
	assert.Equal(t, id, f.users.calendarIDs[user.ID])

	cached, ok := f.cache.Get(ctx, user.ID)
	assert.True(t, ok)
	assert.Equal(t, id, cached)
}

func TestResolve_CachedCheckFailureIsMapped(t *testing.T) {
	f := newFixture()
	user := testUser()
	ctx := context.Background()
	f.cache.Set(ctx, user.ID, "cal-cached")
	f.api.calendars["cal-cached"] = &gcalendar.Calendar{ID: "cal-cached"}
	f.api.getErr = apiErr(403, gcalendar.ErrPermissionDenied)

	_, err := f.resolver.Resolve(ctx, user, "tok")
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Equal(t, 0, f.api.creates)
}

func TestResolve_VerifiesPersistedID(t *testing.T) {
	f := newFixture()
	user := testUser()
	f.api.calendars["cal-existing"] = &gcalendar.Calendar{ID: "cal-existing"}
	user.CalendarID = "cal-existing"

	id, err := f.resolver.Resolve(context.Background(), user, "tok")
	require.NoError(t, err)
	assert.Equal(t, "cal-existing", id)
	assert.Equal(t, 1, f.api.gets)
	assert.Equal(t, 0, f.api.creates)
}

func TestResolve_ReplacesMissingCalendar(t *testing.T) {
	f := newFixture()
	user := testUser()
	user.CalendarID = "cal-deleted"

	id, err := f.resolver.Resolve(context.Background(), user, "tok")
	require.NoError(t, err)
	assert.NotEqual(t, "cal-deleted", id)
	assert.Equal(t, 1, f.api.creates)
	assert.Equal(t, id, f.users.calendarIDs[user.ID])
}

func TestResolve_PersistFailure(t *testing.T) {
	f := newFixture()
	f.users.err = errors.New("db down")

	_, err := f.resolver.Resolve(context.Background(), testUser(), "tok")
	assert.Error(t, err)
	_, ok := f.cache.Get(context.Background(), "user-1")
	assert.False(t, ok)
}
