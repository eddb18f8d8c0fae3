package http

import (
	"time"

	"calendar-autobot/internal/event"
	"calendar-autobot/internal/model"
	"calendar-autobot/pkg/response"
)

// --- Request DTOs ---

type extractReq struct {
	UserID   string `json:"-"`
	Text     string `json:"text"      binding:"required"`
	Source   string `json:"source"    binding:"omitempty,oneof=manual api email webhook"`
	AutoSync *bool  `json:"auto_sync"`
}

func (r extractReq) toInput() event.ProcessTextInput {
	autoSync := true
	if r.AutoSync != nil {
		autoSync = *r.AutoSync
	}
	return event.ProcessTextInput{
		UserID:   r.UserID,
		Text:     r.Text,
		Source:   model.SourceType(r.Source),
		AutoSync: autoSync,
	}
}

// ---

type previewReq struct {
	Text     string `json:"text"     binding:"required"`
	Timezone string `json:"timezone"`
}

func (r previewReq) toInput() event.PreviewInput {
	return event.PreviewInput{Text: r.Text, Timezone: r.Timezone}
}

// ---

type listReq struct {
	UserID       string `form:"-"`
	UnsyncedOnly bool   `form:"unsynced"`
	From         string `form:"from"`
	To           string `form:"to"`
	Limit        int    `form:"limit"`
	Offset       int    `form:"offset"`
}

func (r listReq) validate() error {
	for _, d := range []string{r.From, r.To} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(time.DateOnly, d); err != nil {
			return errInvalidDate
		}
	}
	return nil
}

func (r listReq) toInput() event.ListEventsInput {
	return event.ListEventsInput{
		UserID:       r.UserID,
		UnsyncedOnly: r.UnsyncedOnly,
		From:         r.From,
		To:           r.To,
		Limit:        r.Limit,
		Offset:       r.Offset,
	}
}

// ---

// updateReq is a partial update: omitted fields keep their stored value.
type updateReq struct {
	UserID           string  `json:"-"`
	EventID          string  `json:"-"`
	EventName        *string `json:"event_name"`
	EventDescription *string `json:"event_description"`
	StartDate        *string `json:"start_date"`
	StartTime        *string `json:"start_time"`
	StartDateTime    *string `json:"start_datetime"`
	EndDate          *string `json:"end_date"`
	EndTime          *string `json:"end_time"`
	EndDateTime      *string `json:"end_datetime"`
	Location         *string `json:"location"`
	Emoji            *string `json:"emoji"`
}

func (r updateReq) toInput() event.UpdateEventInput {
	return event.UpdateEventInput{
		UserID:  r.UserID,
		EventID: r.EventID,
		Changes: model.RawEvent{
			EventName:        r.EventName,
			EventDescription: r.EventDescription,
			StartDate:        r.StartDate,
			StartTime:        r.StartTime,
			StartDateTime:    r.StartDateTime,
			EndDate:          r.EndDate,
			EndTime:          r.EndTime,
			EndDateTime:      r.EndDateTime,
			Location:         r.Location,
			Emoji:            r.Emoji,
		},
	}
}

// --- Response DTOs ---

type eventResp struct {
	ID               string             `json:"id,omitempty"`
	TextInputID      string             `json:"text_input_id,omitempty"`
	EventName        string             `json:"event_name"`
	EventDescription string             `json:"event_description,omitempty"`
	StartDate        string             `json:"start_date"`
	StartTime        string             `json:"start_time,omitempty"`
	StartDateTime    string             `json:"start_datetime,omitempty"`
	EndDate          string             `json:"end_date"`
	EndTime          string             `json:"end_time,omitempty"`
	EndDateTime      string             `json:"end_datetime,omitempty"`
	Location         string             `json:"location,omitempty"`
	Emoji            string             `json:"emoji,omitempty"`
	IsSynced         bool               `json:"is_synced"`
	GoogleEventID    string             `json:"google_event_id,omitempty"`
	CreatedAt        *response.DateTime `json:"created_at,omitempty"`
}

func newEventResp(ev model.Event) eventResp {
	resp := eventResp{
		ID:               ev.ID,
		TextInputID:      ev.TextInputID,
		EventName:        ev.EventName,
		EventDescription: ev.EventDescription,
		StartDate:        ev.StartDate,
		StartTime:        ev.StartTime,
		StartDateTime:    ev.StartDateTime,
		EndDate:          ev.EndDate,
		EndTime:          ev.EndTime,
		EndDateTime:      ev.EndDateTime,
		Location:         ev.Location,
		Emoji:            ev.Emoji,
		IsSynced:         ev.IsSynced,
		GoogleEventID:    ev.GoogleEventID,
	}
	if !ev.CreatedAt.IsZero() {
		created := response.DateTime(ev.CreatedAt)
		resp.CreatedAt = &created
	}
	return resp
}

func newEventResps(events []model.Event) []eventResp {
	out := make([]eventResp, len(events))
	for i, ev := range events {
		out[i] = newEventResp(ev)
	}
	return out
}

type extractResp struct {
	TextInputID       string      `json:"text_input_id"`
	EventsExtracted   int         `json:"events_extracted"`
	EventsSynced      int         `json:"events_synced"`
	EventsSkipped     int         `json:"events_skipped"`
	FromEmail         string      `json:"from_email,omitempty"`
	OfflineExtraction bool        `json:"offline_extraction"`
	ExtractionStatus  string      `json:"extraction_status"`
	Message           string      `json:"message,omitempty"`
	SyncWarning       string      `json:"sync_warning,omitempty"`
	Events            []eventResp `json:"events"`
}

func (h *handler) newExtractResp(out event.ProcessTextOutput) extractResp {
	return extractResp{
		TextInputID:       out.TextInputID,
		EventsExtracted:   out.EventsExtracted,
		EventsSynced:      out.EventsSynced,
		EventsSkipped:     out.EventsSkipped,
		FromEmail:         out.FromEmail,
		OfflineExtraction: out.OfflineExtraction,
		ExtractionStatus:  out.ExtractionStatus,
		Message:           out.Message,
		SyncWarning:       out.SyncWarning,
		Events:            newEventResps(out.Events),
	}
}

type previewResp struct {
	FromEmail         string      `json:"from_email,omitempty"`
	OfflineExtraction bool        `json:"offline_extraction"`
	ExtractionStatus  string      `json:"extraction_status"`
	Message           string      `json:"message,omitempty"`
	EventsSkipped     int         `json:"events_skipped"`
	Events            []eventResp `json:"events"`
}

func (h *handler) newPreviewResp(out event.PreviewOutput) previewResp {
	return previewResp{
		FromEmail:         out.FromEmail,
		OfflineExtraction: out.OfflineExtraction,
		ExtractionStatus:  out.ExtractionStatus,
		Message:           out.Message,
		EventsSkipped:     out.Skipped,
		Events:            newEventResps(out.Events),
	}
}

type listResp struct {
	Events []eventResp `json:"events"`
	Total  int         `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

func (h *handler) newListResp(out event.ListEventsOutput) listResp {
	return listResp{
		Events: newEventResps(out.Events),
		Total:  out.Total,
		Limit:  out.Limit,
		Offset: out.Offset,
	}
}

type updateResp struct {
	Event         eventResp `json:"event"`
	RemoteUpdated bool      `json:"remote_updated"`
	SyncWarning   string    `json:"sync_warning,omitempty"`
}

func (h *handler) newUpdateResp(out event.UpdateEventOutput) updateResp {
	return updateResp{
		Event:         newEventResp(out.Event),
		RemoteUpdated: out.RemoteUpdated,
		SyncWarning:   out.SyncWarning,
	}
}

type deleteResp struct {
	RemoteDeleted bool   `json:"remote_deleted"`
	SyncWarning   string `json:"sync_warning,omitempty"`
}

func (h *handler) newDeleteResp(out event.DeleteEventOutput) deleteResp {
	return deleteResp{RemoteDeleted: out.RemoteDeleted, SyncWarning: out.SyncWarning}
}

type syncResp struct {
	Event         eventResp `json:"event"`
	AlreadySynced bool      `json:"already_synced"`
}

func (h *handler) newSyncResp(out event.SyncEventOutput) syncResp {
	return syncResp{Event: newEventResp(out.Event), AlreadySynced: out.AlreadySynced}
}

type syncPendingResp struct {
	Pending     int    `json:"pending"`
	Synced      int    `json:"synced"`
	Failed      int    `json:"failed"`
	SyncWarning string `json:"sync_warning,omitempty"`
}

func (h *handler) newSyncPendingResp(out event.SyncPendingOutput) syncPendingResp {
	return syncPendingResp{
		Pending:     out.Pending,
		Synced:      out.Synced,
		Failed:      out.Failed,
		SyncWarning: out.SyncWarning,
	}
}

type removeDuplicatesResp struct {
	Removed int `json:"removed"`
}

type enqueuedResp struct {
	TaskID string `json:"task_id"`
}
