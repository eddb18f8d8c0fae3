package calsync

import (
	"errors"
	"fmt"

	"calendar-autobot/pkg/gcalendar"
)

var (
	ErrNotAuthenticated         = errors.New("calsync: calendar access not granted")
	ErrReauthenticationRequired = errors.New("calsync: reauthentication required")
	ErrTransientUnavailable     = errors.New("calsync: calendar service temporarily unavailable")
	ErrPermissionDenied         = errors.New("calsync: permission denied")
	ErrRateLimited              = errors.New("calsync: rate limited")
	ErrNotFound                 = errors.New("calsync: not found")
	ErrRemote                   = errors.New("calsync: remote error")
)

// ReauthReason says why the stored grant can no longer be used.
type ReauthReason string

const (
	ReasonNoRefreshToken  ReauthReason = "no_refresh_token"
	ReasonRefreshRejected ReauthReason = "refresh_rejected"
	ReasonTokenRejected   ReauthReason = "token_rejected"
)

// ReauthenticationRequired matches ErrReauthenticationRequired with errors.Is.
type ReauthenticationRequired struct {
	Reason ReauthReason
	Err    error
}

func (e *ReauthenticationRequired) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("calsync: reauthentication required (%s)", e.Reason)
	}
	return fmt.Sprintf("calsync: reauthentication required (%s): %v", e.Reason, e.Err)
}

func (e *ReauthenticationRequired) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrReauthenticationRequired}
	}
	return []error{ErrReauthenticationRequired, e.Err}
}

// IsBatchFatal reports whether err should stop the remaining events of a batch.
func IsBatchFatal(err error) bool {
	return errors.Is(err, ErrNotAuthenticated) ||
		errors.Is(err, ErrReauthenticationRequired) ||
		errors.Is(err, ErrPermissionDenied)
}

// mapRemote translates calendar client errors into this package's taxonomy.
func mapRemote(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gcalendar.ErrUnauthorized):
		return &ReauthenticationRequired{Reason: ReasonTokenRejected, Err: err}
	case errors.Is(err, gcalendar.ErrPermissionDenied):
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	case errors.Is(err, gcalendar.ErrRateLimited):
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	case errors.Is(err, gcalendar.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, gcalendar.ErrUnavailable):
		return fmt.Errorf("%w: %w", ErrTransientUnavailable, err)
	default:
		return fmt.Errorf("%w: %w", ErrRemote, err)
	}
}
