package postgre

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"calendar-autobot/internal/event/repository"
	"calendar-autobot/internal/model"
)

const eventColumns = `id, user_id, text_input_id, event_name, event_description,
	start_date, start_time, start_datetime, end_date, end_time, end_datetime,
	location, emoji, is_synced, google_event_id, extracted_at, created_at, updated_at`

const insertEventQuery = `
	INSERT INTO events (` + eventColumns + `)
	VALUES (:id, :user_id, :text_input_id, :event_name, :event_description,
		:start_date, :start_time, :start_datetime, :end_date, :end_time, :end_datetime,
		:location, :emoji, :is_synced, :google_event_id, :extracted_at, :created_at, :updated_at)`

const insertTextInputQuery = `
	INSERT INTO text_inputs (id, user_id, original_text, source_type, from_email,
		extracted_events_json, processing_status, extraction_status, extraction_error, created_at)
	VALUES (:id, :user_id, :original_text, :source_type, :from_email,
		:extracted_events_json, :processing_status, :extraction_status, :extraction_error, :created_at)`

// SaveExtraction writes the text input and all of its events in one transaction.
// Nothing is written when any insert fails.
func (r *implRepository) SaveExtraction(ctx context.Context, opt repository.SaveExtractionOptions) (model.TextInput, []model.Event, error) {
	now := r.now()
	extractedAt := opt.ExtractedAt.UTC()
	if opt.ExtractedAt.IsZero() {
		extractedAt = now
	}

	input := model.TextInput{
		ID:                  uuid.NewString(),
		UserID:              opt.UserID,
		OriginalText:        opt.OriginalText,
		SourceType:          opt.SourceType,
		FromEmail:           opt.FromEmail,
		ExtractedEventsJSON: opt.ExtractedEventsJSON,
		ProcessingStatus:    opt.ProcessingStatus,
		ExtractionStatus:    opt.ExtractionStatus,
		ExtractionError:     opt.ExtractionError,
		CreatedAt:           now,
	}
	if input.SourceType == "" {
		input.SourceType = model.SourceManual
	}
	if input.ExtractedEventsJSON == "" {
		input.ExtractedEventsJSON = "[]"
	}
	if input.ProcessingStatus == "" {
		input.ProcessingStatus = model.ProcessingCompleted
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		r.l.Errorf(ctx, "%s begin: %v", r.dsn("SaveExtraction"), err)
		return model.TextInput{}, nil, repository.ErrFailedToInsert
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx, insertTextInputQuery, input); err != nil {
		r.l.Errorf(ctx, "%s text_input: %v", r.dsn("SaveExtraction"), err)
		return model.TextInput{}, nil, repository.ErrFailedToInsert
	}

	events := make([]model.Event, len(opt.Events))
	for i, ev := range opt.Events {
		ev.ID = uuid.NewString()
		ev.UserID = opt.UserID
		ev.TextInputID = input.ID
		ev.IsSynced = false
		ev.GoogleEventID = ""
		ev.ExtractedAt = extractedAt
		ev.CreatedAt = now
		ev.UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, insertEventQuery, ev); err != nil {
			r.l.Errorf(ctx, "%s event %d: %v", r.dsn("SaveExtraction"), i, err)
			return model.TextInput{}, nil, repository.ErrFailedToInsert
		}
		events[i] = ev
	}

	if err := tx.Commit(); err != nil {
		r.l.Errorf(ctx, "%s commit: %v", r.dsn("SaveExtraction"), err)
		return model.TextInput{}, nil, repository.ErrFailedToInsert
	}
	return input, events, nil
}

// GetEvent returns a zero-value Event when nothing matches.
func (r *implRepository) GetEvent(ctx context.Context, opt repository.GetEventOptions) (model.Event, error) {
	where, args := r.buildGetOneQuery(opt)
	query := r.db.Rebind(`SELECT ` + eventColumns + ` FROM events WHERE ` + where + ` LIMIT 1`)

	var ev model.Event
	err := r.db.GetContext(ctx, &ev, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Event{}, nil
	}
	if err != nil {
		r.l.Errorf(ctx, "%s: %v", r.dsn("GetEvent"), err)
		return model.Event{}, repository.ErrFailedToGet
	}
	return ev, nil
}

// ListEvents returns a page of Events ordered by start and the total count.
func (r *implRepository) ListEvents(ctx context.Context, opt repository.ListEventsOptions) ([]model.Event, int, error) {
	where, args := r.buildListFilter(opt)

	var total int
	countQuery := r.db.Rebind(`SELECT COUNT(*) FROM events WHERE ` + where)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		r.l.Errorf(ctx, "%s count: %v", r.dsn("ListEvents"), err)
		return nil, 0, repository.ErrFailedToList
	}

	page, pageArgs := r.buildPagination(opt)
	query := r.db.Rebind(`SELECT ` + eventColumns + ` FROM events WHERE ` + where +
		` ORDER BY start_date ASC, start_time ASC, created_at ASC` + page)

	events := []model.Event{}
	if err := r.db.SelectContext(ctx, &events, query, append(args, pageArgs...)...); err != nil {
		r.l.Errorf(ctx, "%s: %v", r.dsn("ListEvents"), err)
		return nil, 0, repository.ErrFailedToList
	}
	return events, total, nil
}

// UpdateEvent replaces the content fields and returns the stored row.
// A zero-value Event means the event does not exist for that user.
func (r *implRepository) UpdateEvent(ctx context.Context, opt repository.UpdateEventOptions) (model.Event, error) {
	ev := opt.Event
	query := r.db.Rebind(`
		UPDATE events
		SET event_name = ?, event_description = ?, start_date = ?, start_time = ?, start_datetime = ?,
			end_date = ?, end_time = ?, end_datetime = ?, location = ?, emoji = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`)

	res, err := r.db.ExecContext(ctx, query,
		ev.EventName, ev.EventDescription, ev.StartDate, ev.StartTime, ev.StartDateTime,
		ev.EndDate, ev.EndTime, ev.EndDateTime, ev.Location, ev.Emoji, r.now(),
		ev.ID, opt.UserID,
	)
	if err != nil {
		r.l.Errorf(ctx, "%s: %v", r.dsn("UpdateEvent"), err)
		return model.Event{}, repository.ErrFailedToUpdate
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.Event{}, nil
	}
	return r.GetEvent(ctx, repository.GetEventOptions{ID: ev.ID, UserID: opt.UserID})
}

// MarkSynced flips the event to synced. The transition is one-way.
func (r *implRepository) MarkSynced(ctx context.Context, opt repository.MarkSyncedOptions) error {
	query := r.db.Rebind(`UPDATE events SET is_synced = ?, google_event_id = ?, updated_at = ? WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, true, opt.GoogleEventID, r.now(), opt.EventID); err != nil {
		r.l.Errorf(ctx, "%s: %v", r.dsn("MarkSynced"), err)
		return repository.ErrFailedToUpdate
	}
	return nil
}

// DeleteEvent removes an Event owned by opt.UserID.
func (r *implRepository) DeleteEvent(ctx context.Context, opt repository.GetEventOptions) error {
	where, args := r.buildGetOneQuery(opt)
	query := r.db.Rebind(`DELETE FROM events WHERE ` + where)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.l.Errorf(ctx, "%s: %v", r.dsn("DeleteEvent"), err)
		return repository.ErrFailedToDelete
	}
	return nil
}
