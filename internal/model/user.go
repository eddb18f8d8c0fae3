package model

import "time"

// DefaultTimezone applies when a user has none configured.
const DefaultTimezone = "UTC"

// User owns events, one sync credential and at most one dedicated calendar.
type User struct {
	ID          string         `json:"id" db:"id"`
	Email       string         `json:"email" db:"email"`
	Username    string         `json:"username" db:"username"`
	Timezone    string         `json:"timezone" db:"timezone"`
	IsTemporary bool           `json:"is_temporary" db:"is_temporary"`
	CalendarID  string         `json:"-" db:"google_calendar_id"`
	Credential  SyncCredential `json:"-"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
}

// Location returns the user's timezone, defaulting to UTC.
func (u User) Location() *time.Location {
	if u.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// TimezoneName returns a usable IANA name for the user's timezone.
func (u User) TimezoneName() string {
	return u.Location().String()
}

// SyncCredential is the OAuth grant used to reach the user's calendar.
type SyncCredential struct {
	AccessToken  string     `db:"access_token"`
	RefreshToken string     `db:"refresh_token"`
	Scope        string     `db:"token_scope"`
	Expiry       *time.Time `db:"token_expiry"`
}

// HasAccessToken reports whether the user ever granted calendar access.
func (c SyncCredential) HasAccessToken() bool {
	return c.AccessToken != ""
}
