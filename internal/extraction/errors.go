package extraction

import "errors"

var (
	ErrEmptyInput           = errors.New("extraction: empty input")
	ErrEmptyResponse        = errors.New("extraction: empty or unparseable response")
	ErrInvalidRequest       = errors.New("extraction: request rejected as invalid")
	ErrRateLimitExhausted   = errors.New("extraction: rate limit retries exhausted")
	ErrAuthenticationFailed = errors.New("extraction: provider authentication failed")
	ErrTimedOut             = errors.New("extraction: timed out")
)
