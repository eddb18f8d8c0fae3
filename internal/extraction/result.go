package extraction

import (
	"time"

	"calendar-autobot/internal/model"
)

// Outcome tags how an extraction attempt ended.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeRateLimited
	OutcomeAuthFailed
	OutcomeInvalidRequest
	OutcomeEmptyResponse
	OutcomeTimedOut
	OutcomeOfflineFallback
)

// Status is the persisted name of the outcome.
func (o Outcome) Status() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeAuthFailed:
		return "auth_failed"
	case OutcomeInvalidRequest:
		return "invalid_request"
	case OutcomeEmptyResponse:
		return "empty_response"
	case OutcomeTimedOut:
		return "timeout"
	default:
		return "offline"
	}
}

// UserMessage is the simplified explanation shown to end users. Empty on success.
func (o Outcome) UserMessage() string {
	switch o {
	case OutcomeSuccess:
		return ""
	case OutcomeRateLimited:
		return "The AI service is busy right now. Basic extraction was used; try again in a few minutes for better results."
	case OutcomeAuthFailed:
		return "The AI service is temporarily unavailable. Basic extraction was used."
	case OutcomeInvalidRequest:
		return "We could not process that text. Please rephrase it and try again."
	case OutcomeEmptyResponse:
		return "The AI service returned no usable events. Basic extraction was used."
	case OutcomeTimedOut:
		return "The AI service took too long to respond. Basic extraction was used."
	default:
		return "The AI service is unavailable. Basic extraction was used."
	}
}

func outcomeFor(err error) Outcome {
	switch err {
	case nil:
		return OutcomeSuccess
	case ErrRateLimitExhausted:
		return OutcomeRateLimited
	case ErrAuthenticationFailed:
		return OutcomeAuthFailed
	case ErrInvalidRequest:
		return OutcomeInvalidRequest
	case ErrEmptyResponse:
		return OutcomeEmptyResponse
	case ErrTimedOut:
		return OutcomeTimedOut
	default:
		return OutcomeOfflineFallback
	}
}

// Input is one extraction request.
type Input struct {
	Text string
	// ReferenceDate anchors relative dates. Zero means now.
	ReferenceDate time.Time
	// Timezone is an IANA name. Empty means UTC.
	Timezone string
}

// Result is the tagged outcome of an extraction.
type Result struct {
	Outcome             Outcome
	Events              []model.RawEvent
	FromEmail           string
	UsedOfflineFallback bool
	Status              string
	ErrorMessage        string
}
