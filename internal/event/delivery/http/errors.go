package http

import (
	"context"
	"errors"
	"net/http"

	"calendar-autobot/internal/calsync"
	"calendar-autobot/internal/event"
	"calendar-autobot/internal/event/repository"
	"calendar-autobot/internal/event/validator"
	"calendar-autobot/internal/extraction"
	"calendar-autobot/pkg/response"
)

var (
	errMissingUserID  = response.NewHTTPError(http.StatusBadRequest, "user_id is required")
	errMissingEventID = response.NewHTTPError(http.StatusBadRequest, "event id is required")
	errInvalidDate    = response.NewHTTPError(http.StatusBadRequest, "from and to must be YYYY-MM-DD dates")
	errInvalidBody    = response.NewHTTPError(http.StatusBadRequest, "invalid request body")
)

// mapError translates domain and use case errors into HTTP errors. The
// message always comes from event.UserMessage so provider and database text
// never reaches the client. Errors without a mapping are reported and
// become a generic 500.
func (h *handler) mapError(ctx context.Context, err error) error {
	msg := event.UserMessage(err)
	var verr *validator.ValidationError

	switch {
	case errors.Is(err, event.ErrEmptyInput),
		errors.Is(err, event.ErrInvalidSource),
		errors.As(err, &verr),
		errors.Is(err, extraction.ErrInvalidRequest):
		return response.NewHTTPError(http.StatusBadRequest, msg)
	case errors.Is(err, event.ErrUserNotFound),
		errors.Is(err, event.ErrEventNotFound),
		errors.Is(err, calsync.ErrNotFound):
		return response.NewHTTPError(http.StatusNotFound, msg)
	case errors.Is(err, calsync.ErrNotAuthenticated),
		errors.Is(err, calsync.ErrReauthenticationRequired):
		return response.NewHTTPError(http.StatusUnauthorized, msg)
	case errors.Is(err, calsync.ErrPermissionDenied):
		return response.NewHTTPError(http.StatusForbidden, msg)
	case errors.Is(err, calsync.ErrRateLimited),
		errors.Is(err, extraction.ErrRateLimitExhausted):
		return response.NewHTTPError(http.StatusTooManyRequests, msg)
	case errors.Is(err, calsync.ErrTransientUnavailable),
		errors.Is(err, calsync.ErrRemote):
		return response.NewHTTPError(http.StatusServiceUnavailable, msg)
	case errors.Is(err, repository.ErrPersistenceFailure):
		return response.NewHTTPError(http.StatusInternalServerError, msg)
	default:
		h.reporter.Report(ctx, err, map[string]string{"stage": "http"})
		return err
	}
}
