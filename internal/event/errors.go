package event

import (
	"context"
	"errors"

	"calendar-autobot/internal/calsync"
	"calendar-autobot/internal/event/repository"
	"calendar-autobot/internal/event/validator"
	"calendar-autobot/internal/extraction"
)

var (
	ErrEmptyInput    = errors.New("text input is required")
	ErrUserNotFound  = errors.New("user not found")
	ErrEventNotFound = errors.New("event not found")
	ErrInvalidSource = errors.New("unknown source type")
)

// UserMessage turns any pipeline error into text safe to show an end user.
// Provider and database details never leak through it.
func UserMessage(err error) string {
	var verr *validator.ValidationError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyInput):
		return "Please enter some text to extract events from."
	case errors.Is(err, ErrUserNotFound):
		return "We could not find your account."
	case errors.Is(err, ErrEventNotFound):
		return "That event no longer exists."
	case errors.Is(err, ErrInvalidSource):
		return "Unsupported input source."
	case errors.As(err, &verr), errors.Is(err, extraction.ErrInvalidRequest):
		return "We could not understand that text. Please rephrase it and try again."
	case errors.Is(err, extraction.ErrRateLimitExhausted), errors.Is(err, calsync.ErrRateLimited):
		return "The service is busy right now. Please try again in a few minutes."
	case errors.Is(err, calsync.ErrNotAuthenticated):
		return "Connect your Google Calendar to sync events."
	case errors.Is(err, calsync.ErrReauthenticationRequired):
		return "Your Google Calendar access has expired. Please sign in again."
	case errors.Is(err, calsync.ErrPermissionDenied):
		return "Calendar Autobot is not allowed to write to your calendar. Please sign in again and grant access."
	case errors.Is(err, extraction.ErrAuthenticationFailed),
		errors.Is(err, extraction.ErrTimedOut),
		errors.Is(err, extraction.ErrEmptyResponse),
		errors.Is(err, calsync.ErrTransientUnavailable),
		errors.Is(err, calsync.ErrRemote),
		errors.Is(err, context.DeadlineExceeded):
		return "The service is temporarily unavailable. Please try again later."
	case errors.Is(err, calsync.ErrNotFound):
		return "That event no longer exists in your calendar."
	case errors.Is(err, repository.ErrPersistenceFailure):
		return "We could not save your events. Please try again."
	default:
		return "Something went wrong. Please try again."
	}
}
