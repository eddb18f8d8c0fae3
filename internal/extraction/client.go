package extraction

import (
	"context"
	"errors"
	"strings"
	"time"

	"calendar-autobot/pkg/llmprovider"
	"calendar-autobot/pkg/log"
	"calendar-autobot/pkg/retry"
)

const (
	DefaultCallTimeout = 30 * time.Second
	temperature        = 0.1
	maxOutputTokens    = 4096
)

// DefaultRateLimitBackoff is the wait schedule between attempts after a 429.
var DefaultRateLimitBackoff = []time.Duration{5 * time.Second, 10 * time.Second, 20 * time.Second}

// Generator is the LLM surface the client needs. *llmprovider.Manager satisfies it.
type Generator interface {
	GenerateContent(ctx context.Context, req *llmprovider.Request) (*llmprovider.Response, error)
}

// Config tunes the call policy. Zero values take the defaults.
type Config struct {
	CallTimeout      time.Duration
	RateLimitBackoff []time.Duration
	Sleep            retry.Sleeper
	Now              func() time.Time
}

// Client turns free-form text into raw events.
type Client struct {
	l       log.Logger
	gen     Generator
	offline *OfflineExtractor
	cfg     Config
}

// New builds a Client. gen may be nil, in which case every call goes offline.
func New(l log.Logger, gen Generator, cfg Config) *Client {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultCallTimeout
	}
	if cfg.RateLimitBackoff == nil {
		cfg.RateLimitBackoff = DefaultRateLimitBackoff
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Client{
		l:       l,
		gen:     gen,
		offline: NewOfflineExtractor(),
		cfg:     cfg,
	}
}

// Extract calls the model once per attempt under the rate-limit policy.
// Timeouts and transient provider failures degrade to the offline extractor and
// return a nil error. Rate-limit exhaustion, auth failures, invalid requests and
// empty responses come back as typed errors with a Result carrying the outcome.
func (c *Client) Extract(ctx context.Context, in Input) (Result, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return Result{}, ErrEmptyInput
	}

	ref, loc := c.reference(in)
	fromEmail := DetectSender(text)

	if c.gen == nil {
		return c.runOffline(ctx, text, ref, loc, fromEmail, OutcomeOfflineFallback), nil
	}

	req := &llmprovider.Request{
		SystemInstruction: systemPrompt,
		Messages: []llmprovider.Message{
			{Role: "user", Content: buildUserMessage(text, ref, loc, fromEmail)},
		},
		Temperature: temperature,
		MaxTokens:   maxOutputTokens,
		Format:      llmprovider.FormatJSON,
	}

	policy := retry.Policy{
		MaxAttempts: len(c.cfg.RateLimitBackoff) + 1,
		Backoff:     c.cfg.RateLimitBackoff,
		Retryable: func(err error) bool {
			return errors.Is(err, llmprovider.ErrProviderRateLimited)
		},
		OnRetry: func(attempt int, wait time.Duration, err error) {
			c.l.Warnf(ctx, "extraction.Client.Extract: rate limited, attempt=%d wait=%s", attempt, wait)
		},
		Sleep: c.cfg.Sleep,
	}

	var content string
	err := policy.Do(ctx, func(ctx context.Context) error {
		var callErr error
		content, callErr = c.callWithTimer(ctx, req)
		return callErr
	})

	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		typed := classify(err)
		outcome := outcomeFor(typed)
		switch outcome {
		case OutcomeTimedOut, OutcomeOfflineFallback:
			c.l.Warnf(ctx, "extraction.Client.Extract: provider failed, using offline extractor: %v", err)
			return c.runOffline(ctx, text, ref, loc, fromEmail, outcome), nil
		}
		c.l.Errorf(ctx, "extraction.Client.Extract: %v", err)
		return Result{
			Outcome:      outcome,
			FromEmail:    fromEmail,
			Status:       outcome.Status(),
			ErrorMessage: outcome.UserMessage(),
		}, typed
	}

	events, err := parseEvents(content)
	if err != nil {
		c.l.Errorf(ctx, "extraction.Client.Extract.parseEvents: response_len=%d", len(content))
		return Result{
			Outcome:      OutcomeEmptyResponse,
			FromEmail:    fromEmail,
			Status:       OutcomeEmptyResponse.Status(),
			ErrorMessage: OutcomeEmptyResponse.UserMessage(),
		}, err
	}

	attribute(events, fromEmail)
	return Result{
		Outcome:   OutcomeSuccess,
		Events:    events,
		FromEmail: fromEmail,
		Status:    OutcomeSuccess.Status(),
	}, nil
}

// ExtractWithFallback never fails: any non-success outcome is replaced by the
// offline extractor's events, keeping the outcome's status and user message.
func (c *Client) ExtractWithFallback(ctx context.Context, in Input) Result {
	res, err := c.Extract(ctx, in)
	if err == nil {
		return res
	}

	outcome := res.Outcome
	if errors.Is(err, ErrEmptyInput) || ctx.Err() != nil {
		outcome = OutcomeOfflineFallback
	}
	ref, loc := c.reference(in)
	return c.runOffline(ctx, strings.TrimSpace(in.Text), ref, loc, DetectSender(in.Text), outcome)
}

// callWithTimer races one provider call against the client-side timer. On
// expiry the call's context is cancelled and its eventual result discarded.
func (c *Client) callWithTimer(ctx context.Context, req *llmprovider.Request) (string, error) {
	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type reply struct {
		content string
		err     error
	}
	done := make(chan reply, 1)
	go func() {
		resp, err := c.gen.GenerateContent(callCtx, req)
		if err != nil {
			done <- reply{err: err}
			return
		}
		if resp == nil {
			done <- reply{}
			return
		}
		done <- reply{content: resp.Content}
	}()

	timer := time.NewTimer(c.cfg.CallTimeout)
	defer timer.Stop()

	select {
	case r := <-done:
		return r.content, r.err
	case <-timer.C:
		return "", ErrTimedOut
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *Client) runOffline(ctx context.Context, text string, ref time.Time, loc *time.Location, fromEmail string, outcome Outcome) Result {
	events := c.offline.Extract(text, ref, loc)
	attribute(events, fromEmail)
	c.l.Infof(ctx, "extraction.Client: offline extractor produced %d events, input_len=%d", len(events), len(text))
	return Result{
		Outcome:             outcome,
		Events:              events,
		FromEmail:           fromEmail,
		UsedOfflineFallback: true,
		Status:              outcome.Status(),
		ErrorMessage:        outcome.UserMessage(),
	}
}

func (c *Client) reference(in Input) (time.Time, *time.Location) {
	loc := time.UTC
	if in.Timezone != "" {
		if l, err := time.LoadLocation(in.Timezone); err == nil {
			loc = l
		}
	}
	ref := in.ReferenceDate
	if ref.IsZero() {
		ref = c.cfg.Now()
	}
	return ref.In(loc), loc
}

// classify maps a provider error chain to one of the package sentinels.
func classify(err error) error {
	switch {
	case errors.Is(err, ErrTimedOut), errors.Is(err, llmprovider.ErrProviderTimeout):
		return ErrTimedOut
	case errors.Is(err, llmprovider.ErrProviderRateLimited):
		return ErrRateLimitExhausted
	case errors.Is(err, llmprovider.ErrUnauthorized):
		return ErrAuthenticationFailed
	case errors.Is(err, llmprovider.ErrInvalidRequest):
		return ErrInvalidRequest
	default:
		return err
	}
}
