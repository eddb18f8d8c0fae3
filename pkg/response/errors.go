package response

import (
	"errors"
	"net/http"
)

// HTTPError is an error that knows its status code and a message safe for clients.
type HTTPError struct {
	Status  int
	Code    int
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError builds an HTTPError whose error code mirrors the status.
func NewHTTPError(status int, message string) *HTTPError {
	return &HTTPError{Status: status, Code: status, Message: message}
}

var (
	ErrBadRequest = NewHTTPError(http.StatusBadRequest, "Bad request")
	ErrNotFound   = NewHTTPError(http.StatusNotFound, "Not found")
)

func asHTTPError(err error) (*HTTPError, bool) {
	var herr *HTTPError
	if errors.As(err, &herr) {
		return herr, true
	}
	return nil, false
}
