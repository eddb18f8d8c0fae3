package llmprovider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

var (
	// ErrAllProvidersFailed indicates all providers failed to generate content
	ErrAllProvidersFailed = errors.New("all providers failed")

	// ErrNoProvidersConfigured indicates no providers are enabled
	ErrNoProvidersConfigured = errors.New("no providers configured")

	// ErrInvalidRequest indicates the provider rejected the request as malformed
	ErrInvalidRequest = errors.New("invalid request")

	// ErrUnauthorized indicates the provider rejected the credentials
	ErrUnauthorized = errors.New("provider unauthorized")

	// ErrProviderTimeout indicates a provider request timed out
	ErrProviderTimeout = errors.New("provider timeout")

	// ErrProviderRateLimited indicates rate limit exceeded
	ErrProviderRateLimited = errors.New("provider rate limited")

	// ErrProviderUnavailable indicates a 5xx or transport failure
	ErrProviderUnavailable = errors.New("provider unavailable")
)

// ProviderError wraps provider-specific errors with their classification.
type ProviderError struct {
	Provider   string
	StatusCode int
	Kind       error
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("provider %s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

// Unwrap exposes both the classification sentinel and the cause.
func (e *ProviderError) Unwrap() []error {
	if e.Kind == nil {
		return []error{e.Err}
	}
	return []error{e.Kind, e.Err}
}

// KindForStatus maps an HTTP status code to a classification sentinel.
func KindForStatus(status int) error {
	switch {
	case status == http.StatusTooManyRequests:
		return ErrProviderRateLimited
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrUnauthorized
	case status == http.StatusBadRequest || status == http.StatusNotFound || status == http.StatusUnprocessableEntity:
		return ErrInvalidRequest
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return ErrProviderTimeout
	default:
		return ErrProviderUnavailable
	}
}

// classifyTransport assigns a kind to errors that carry no status code.
func classifyTransport(provider string, err error) error {
	kind := ErrProviderUnavailable
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		kind = ErrProviderTimeout
	}
	return &ProviderError{Provider: provider, Kind: kind, Err: err}
}

// IsTransient reports whether a retry against the same provider may help.
// Rate limits are excluded; callers apply their own rate-limit policy.
func IsTransient(err error) bool {
	return errors.Is(err, ErrProviderUnavailable)
}
