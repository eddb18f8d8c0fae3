package postgre

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"calendar-autobot/internal/event/repository"
	"calendar-autobot/internal/model"
)

const userColumns = `id, email, username, timezone, is_temporary, google_calendar_id,
	access_token, refresh_token, token_scope, token_expiry, created_at`

// userRow flattens model.User and its credential into the users table.
type userRow struct {
	ID           string       `db:"id"`
	Email        string       `db:"email"`
	Username     string       `db:"username"`
	Timezone     string       `db:"timezone"`
	IsTemporary  bool         `db:"is_temporary"`
	CalendarID   string       `db:"google_calendar_id"`
	AccessToken  string       `db:"access_token"`
	RefreshToken string       `db:"refresh_token"`
	TokenScope   string       `db:"token_scope"`
	TokenExpiry  sql.NullTime `db:"token_expiry"`
	CreatedAt    time.Time    `db:"created_at"`
}

func (u userRow) toModel() model.User {
	user := model.User{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		Timezone:    u.Timezone,
		IsTemporary: u.IsTemporary,
		CalendarID:  u.CalendarID,
		Credential: model.SyncCredential{
			AccessToken:  u.AccessToken,
			RefreshToken: u.RefreshToken,
			Scope:        u.TokenScope,
		},
		CreatedAt: u.CreatedAt,
	}
	if u.TokenExpiry.Valid {
		expiry := u.TokenExpiry.Time
		user.Credential.Expiry = &expiry
	}
	return user
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

// GetUser returns a zero-value User when id is unknown.
func (r *implRepository) GetUser(ctx context.Context, id string) (model.User, error) {
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)

	var row userRow
	err := r.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, nil
	}
	if err != nil {
		r.l.Errorf(ctx, "%s: %v", r.dsn("GetUser"), err)
		return model.User{}, repository.ErrFailedToGet
	}
	return row.toModel(), nil
}

// CreateUser inserts a new User and returns it.
func (r *implRepository) CreateUser(ctx context.Context, opt repository.CreateUserOptions) (model.User, error) {
	const query = `
		INSERT INTO users (` + userColumns + `)
		VALUES (:id, :email, :username, :timezone, :is_temporary, :google_calendar_id,
			:access_token, :refresh_token, :token_scope, :token_expiry, :created_at)`

	tz := opt.Timezone
	if tz == "" {
		tz = model.DefaultTimezone
	}
	row := userRow{
		ID:           uuid.NewString(),
		Email:        opt.Email,
		Username:     opt.Username,
		Timezone:     tz,
		IsTemporary:  opt.IsTemporary,
		AccessToken:  opt.Credential.AccessToken,
		RefreshToken: opt.Credential.RefreshToken,
		TokenScope:   opt.Credential.Scope,
		TokenExpiry:  nullTime(opt.Credential.Expiry),
		CreatedAt:    r.now(),
	}
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		r.l.Errorf(ctx, "%s: %v", r.dsn("CreateUser"), err)
		return model.User{}, repository.ErrFailedToInsert
	}
	return row.toModel(), nil
}

// UpdateCalendarID persists the user's dedicated calendar id.
func (r *implRepository) UpdateCalendarID(ctx context.Context, userID, calendarID string) error {
	query := r.db.Rebind(`UPDATE users SET google_calendar_id = ? WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, calendarID, userID); err != nil {
		r.l.Errorf(ctx, "%s: %v", r.dsn("UpdateCalendarID"), err)
		return repository.ErrFailedToUpdate
	}
	return nil
}

// SaveCredential replaces the stored OAuth grant.
func (r *implRepository) SaveCredential(ctx context.Context, userID string, cred model.SyncCredential) error {
	query := r.db.Rebind(`
		UPDATE users
		SET access_token = ?, refresh_token = ?, token_scope = ?, token_expiry = ?
		WHERE id = ?`)
	_, err := r.db.ExecContext(ctx, query,
		cred.AccessToken, cred.RefreshToken, cred.Scope, nullTime(cred.Expiry), userID,
	)
	if err != nil {
		r.l.Errorf(ctx, "%s: %v", r.dsn("SaveCredential"), err)
		return repository.ErrFailedToUpdate
	}
	return nil
}
