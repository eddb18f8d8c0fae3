package http

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"calendar-autobot/internal/event"
	"calendar-autobot/internal/event/ical"
	"calendar-autobot/pkg/response"
)

const (
	calendarName   = "Calendar Autobot"
	icsContentType = "text/calendar; charset=utf-8"
	icsExportLimit = 500
)

// Extract godoc
// @Summary     Extract events from text
// @Description Extracts calendar events from free-form text, stores them and, unless auto_sync is false, adds them to the user's Google Calendar.
// @Tags        Events
// @Accept      json
// @Produce     json
// @Param       user_id path string     true "User ID"
// @Param       body    body extractReq true "Text to extract from"
// @Success     200 {object} extractResp
// @Failure     400 {object} response.Resp "Bad Request"
// @Failure     404 {object} response.Resp "User not found"
// @Failure     429 {object} response.Resp "Too Many Requests"
// @Failure     500 {object} response.Resp "Internal Server Error"
// @Router      /api/v1/users/{user_id}/events/extract [POST]
func (h *handler) Extract(c *gin.Context) {
	ctx := c.Request.Context()

	req, err := h.processExtractReq(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	output, err := h.uc.ProcessText(ctx, req.toInput())
	if err != nil {
		h.l.Errorf(ctx, "uc.ProcessText: user_id=%s input_len=%d: %v", req.UserID, len(req.Text), err)
		response.Error(c, h.mapError(ctx, err))
		return
	}

	response.OK(c, h.newExtractResp(output))
}

// Preview godoc
// @Summary     Preview extraction
// @Description Runs extraction and validation only. Nothing is stored or synced.
// @Tags        Events
// @Accept      json
// @Produce     json
// @Param       body body previewReq true "Text to extract from"
// @Success     200 {object} previewResp
// @Failure     400 {object} response.Resp "Bad Request"
// @Failure     500 {object} response.Resp "Internal Server Error"
// @Router      /api/v1/events/preview [POST]
func (h *handler) Preview(c *gin.Context) {
	ctx := c.Request.Context()

	req, err := h.processPreviewReq(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	output, err := h.uc.Preview(ctx, req.toInput())
	if err != nil {
		h.l.Errorf(ctx, "uc.Preview: input_len=%d: %v", len(req.Text), err)
		response.Error(c, h.mapError(ctx, err))
		return
	}

	response.OK(c, h.newPreviewResp(output))
}

// List godoc
// @Summary     List events
// @Description Returns the user's stored events ordered by start.
// @Tags        Events
// @Produce     json
// @Param       user_id  path  string true  "User ID"
// @Param       unsynced query bool   false "Only events not yet on the calendar"
// @Param       from     query string false "Earliest start date (YYYY-MM-DD)"
// @Param       to       query string false "Latest start date (YYYY-MM-DD)"
// @Param       limit    query int    false "Page size (default: 100)"
// @Param       offset   query int    false "Page offset (default: 0)"
// @Success     200 {object} listResp
// @Failure     400 {object} response.Resp "Bad Request"
// @Failure     404 {object} response.Resp "User not found"
// @Router      /api/v1/users/{user_id}/events [GET]
func (h *handler) List(c *gin.Context) {
	ctx := c.Request.Context()

	req, err := h.processListReq(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	output, err := h.uc.ListEvents(ctx, req.toInput())
	if err != nil {
		h.l.Errorf(ctx, "uc.ListEvents: %v", err)
		response.Error(c, h.mapError(ctx, err))
		return
	}

	response.OK(c, h.newListResp(output))
}

// ExportICS godoc
// @Summary     Export events as iCalendar
// @Description Renders the user's stored events as an iCalendar feed.
// @Tags        Events
// @Produce     text/calendar
// @Param       user_id path string true "User ID"
// @Success     200 {string} string "iCalendar feed"
// @Failure     404 {object} response.Resp "User not found"
// @Router      /api/v1/users/{user_id}/events.ics [GET]
func (h *handler) ExportICS(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := userID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	output, err := h.uc.ListEvents(ctx, event.ListEventsInput{UserID: id, Limit: icsExportLimit})
	if err != nil {
		h.l.Errorf(ctx, "uc.ListEvents: %v", err)
		response.Error(c, h.mapError(ctx, err))
		return
	}

	var buf bytes.Buffer
	if err := ical.Encode(&buf, calendarName, output.Timezone, output.Events, h.now()); err != nil {
		h.l.Errorf(ctx, "ical.Encode: user_id=%s: %v", id, err)
		response.Error(c, h.mapError(ctx, err))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="events.ics"`)
	c.Data(http.StatusOK, icsContentType, buf.Bytes())
}

// Update godoc
// @Summary     Update an event
// @Description Applies a partial edit. Synced events are updated on Google Calendar as well.
// @Tags        Events
// @Accept      json
// @Produce     json
// @Param       user_id path string    true "User ID"
// @Param       id      path string    true "Event ID"
// @Param       body    body updateReq true "Fields to change"
// @Success     200 {object} updateResp
// @Failure     400 {object} response.Resp "Bad Request"
// @Failure     404 {object} response.Resp "Not Found"
// @Router      /api/v1/users/{user_id}/events/{id} [PUT]
func (h *handler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	req, err := h.processUpdateReq(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	output, err := h.uc.UpdateEvent(ctx, req.toInput())
	if err != nil {
		h.l.Errorf(ctx, "uc.UpdateEvent: %v", err)
		response.Error(c, h.mapError(ctx, err))
		return
	}

	response.OK(c, h.newUpdateResp(output))
}

// Delete godoc
// @Summary     Delete an event
// @Description Removes the event, and its Google Calendar copy when synced.
// @Tags        Events
// @Produce     json
// @Param       user_id path string true "User ID"
// @Param       id      path string true "Event ID"
// @Success     200 {object} deleteResp
// @Failure     404 {object} response.Resp "Not Found"
// @Router      /api/v1/users/{user_id}/events/{id} [DELETE]
func (h *handler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	uid, eid, err := eventParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	output, err := h.uc.DeleteEvent(ctx, event.DeleteEventInput{UserID: uid, EventID: eid})
	if err != nil {
		h.l.Errorf(ctx, "uc.DeleteEvent: %v", err)
		response.Error(c, h.mapError(ctx, err))
		return
	}

	response.OK(c, h.newDeleteResp(output))
}

// Sync godoc
// @Summary     Sync one event
// @Description Adds a stored event to the user's Google Calendar.
// @Tags        Sync
// @Produce     json
// @Param       user_id path string true "User ID"
// @Param       id      path string true "Event ID"
// @Success     200 {object} syncResp
// @Failure     401 {object} response.Resp "Calendar access missing or expired"
// @Failure     404 {object} response.Resp "Not Found"
// @Router      /api/v1/users/{user_id}/events/{id}/sync [POST]
func (h *handler) Sync(c *gin.Context) {
	ctx := c.Request.Context()

	uid, eid, err := eventParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	output, err := h.uc.SyncEvent(ctx, event.SyncEventInput{UserID: uid, EventID: eid})
	if err != nil {
		h.l.Errorf(ctx, "uc.SyncEvent: %v", err)
		response.Error(c, h.mapError(ctx, err))
		return
	}

	response.OK(c, h.newSyncResp(output))
}

// SyncPending godoc
// @Summary     Sync pending events
// @Description Adds every unsynced event to the user's Google Calendar. With async=true the work is queued.
// @Tags        Sync
// @Produce     json
// @Param       user_id path  string true  "User ID"
// @Param       async   query bool   false "Queue instead of running inline"
// @Success     200 {object} syncPendingResp
// @Success     202 {object} enqueuedResp
// @Failure     401 {object} response.Resp "Calendar access missing or expired"
// @Failure     404 {object} response.Resp "User not found"
// @Router      /api/v1/users/{user_id}/sync-pending [POST]
func (h *handler) SyncPending(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := userID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if async(c) && h.jobs != nil {
		taskID, err := h.jobs.EnqueueSyncPending(ctx, id)
		if err != nil {
			h.l.Errorf(ctx, "jobs.EnqueueSyncPending: user_id=%s: %v", id, err)
			response.Error(c, h.mapError(ctx, err))
			return
		}
		response.Accepted(c, enqueuedResp{TaskID: taskID})
		return
	}

	output, err := h.uc.SyncPending(ctx, id)
	if err != nil {
		h.l.Errorf(ctx, "uc.SyncPending: %v", err)
		response.Error(c, h.mapError(ctx, err))
		return
	}

	response.OK(c, h.newSyncPendingResp(output))
}

// RemoveDuplicates godoc
// @Summary     Remove duplicate calendar events
// @Description Deletes calendar events that repeat the title and date of an earlier one. With async=true the work is queued.
// @Tags        Sync
// @Produce     json
// @Param       user_id path  string true  "User ID"
// @Param       async   query bool   false "Queue instead of running inline"
// @Success     200 {object} removeDuplicatesResp
// @Success     202 {object} enqueuedResp
// @Failure     401 {object} response.Resp "Calendar access missing or expired"
// @Router      /api/v1/users/{user_id}/remove-duplicates [POST]
func (h *handler) RemoveDuplicates(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := userID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if async(c) && h.jobs != nil {
		taskID, err := h.jobs.EnqueueRemoveDuplicates(ctx, id)
		if err != nil {
			h.l.Errorf(ctx, "jobs.EnqueueRemoveDuplicates: user_id=%s: %v", id, err)
			response.Error(c, h.mapError(ctx, err))
			return
		}
		response.Accepted(c, enqueuedResp{TaskID: taskID})
		return
	}

	output, err := h.uc.RemoveDuplicates(ctx, id)
	if err != nil {
		h.l.Errorf(ctx, "uc.RemoveDuplicates: %v", err)
		response.Error(c, h.mapError(ctx, err))
		return
	}

	response.OK(c, removeDuplicatesResp{Removed: output.Removed})
}
