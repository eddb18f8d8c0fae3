package gcalendar

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"google.golang.org/api/googleapi"
)

var (
	ErrUnauthorized     = errors.New("gcalendar: access token rejected")
	ErrPermissionDenied = errors.New("gcalendar: permission denied")
	ErrRateLimited      = errors.New("gcalendar: rate limited")
	ErrNotFound         = errors.New("gcalendar: not found")
	ErrRemote           = errors.New("gcalendar: remote error")
	ErrUnavailable      = errors.New("gcalendar: network unavailable")
)

// APIError carries the HTTP status and error reason alongside its classification.
type APIError struct {
	StatusCode int
	Reason     string
	Kind       error
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("gcalendar: status %d (%s): %v", e.StatusCode, e.Reason, e.Err)
	}
	return fmt.Sprintf("gcalendar: %v", e.Err)
}

func (e *APIError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func kindFor(status int, reason string) error {
	switch {
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusForbidden && (reason == "rateLimitExceeded" || reason == "userRateLimitExceeded"):
		return ErrRateLimited
	case status == http.StatusForbidden:
		return ErrPermissionDenied
	case status == http.StatusNotFound, status == http.StatusGone:
		return ErrNotFound
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return ErrRemote
	}
}

func mapError(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		reason := ""
		if len(gerr.Errors) > 0 {
			reason = gerr.Errors[0].Reason
		}
		return &APIError{StatusCode: gerr.Code, Reason: reason, Kind: kindFor(gerr.Code, reason), Err: err}
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || errors.As(err, &netErr) {
		return &APIError{Kind: ErrUnavailable, Err: err}
	}
	return &APIError{Kind: ErrRemote, Err: err}
}
