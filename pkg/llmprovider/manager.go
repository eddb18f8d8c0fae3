package llmprovider

import (
	"context"
	"fmt"
	"time"

	"calendar-autobot/pkg/log"
	"calendar-autobot/pkg/retry"
)

// Manager orchestrates provider selection, fallback, and retry logic
type Manager struct {
	providers []Provider
	config    *Config
	logger    log.Logger
}

// Config defines configuration for the Provider Manager
type Config struct {
	FallbackEnabled bool
	// RetryAttempts bounds calls per provider for transient (5xx/transport) failures.
	RetryAttempts   int
	RetryDelay      time.Duration
	MaxTotalTimeout time.Duration
	// Sleep overrides the wait between retries.
	Sleep retry.Sleeper
}

// NewManager creates a new Provider Manager with the given providers, config, and logger
func NewManager(providers []Provider, config *Config, logger log.Logger) *Manager {
	if config == nil {
		config = &Config{}
	}
	return &Manager{
		providers: providers,
		config:    config,
		logger:    logger,
	}
}

// GenerateContent tries providers in priority order. The returned error wraps
// ErrAllProvidersFailed and the last provider error, so callers can match the
// classification sentinels with errors.Is.
func (m *Manager) GenerateContent(ctx context.Context, req *Request) (*Response, error) {
	if len(m.providers) == 0 {
		return nil, ErrNoProvidersConfigured
	}

	if m.config.MaxTotalTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.config.MaxTotalTimeout)
		defer cancel()
	}

	var lastErr error
	for _, provider := range m.providers {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrAllProvidersFailed, &ProviderError{Provider: provider.Name(), Kind: ErrProviderTimeout, Err: err})
		}

		resp, err := m.generateWithRetry(ctx, provider, req)
		if err == nil {
			m.logSuccess(ctx, provider, resp)
			return resp, nil
		}

		m.logFailure(ctx, provider, err)
		lastErr = err

		if !m.config.FallbackEnabled {
			break
		}
	}

	return nil, fmt.Errorf("%w: %w", ErrAllProvidersFailed, lastErr)
}

func (m *Manager) generateWithRetry(ctx context.Context, provider Provider, req *Request) (*Response, error) {
	policy := retry.Policy{
		MaxAttempts: m.config.RetryAttempts,
		Backoff:     linearBackoff(m.config.RetryDelay, m.config.RetryAttempts),
		Retryable:   IsTransient,
		Sleep:       m.config.Sleep,
	}

	var resp *Response
	err := policy.Do(ctx, func(ctx context.Context) error {
		var callErr error
		resp, callErr = provider.GenerateContent(ctx, req)
		return callErr
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// linearBackoff waits delay, 2*delay, ... between attempts.
func linearBackoff(delay time.Duration, attempts int) []time.Duration {
	if delay <= 0 || attempts <= 1 {
		return nil
	}
	out := make([]time.Duration, attempts-1)
	for i := range out {
		out[i] = time.Duration(i+1) * delay
	}
	return out
}

func (m *Manager) logSuccess(ctx context.Context, provider Provider, resp *Response) {
	if resp.Usage == nil {
		resp.Usage = &Usage{}
	}
	m.logger.Infof(ctx, "LLM generation successful: provider=%s model=%s input_tokens=%d output_tokens=%d",
		provider.Name(), provider.Model(), resp.Usage.InputTokens, resp.Usage.OutputTokens)
}

func (m *Manager) logFailure(ctx context.Context, provider Provider, err error) {
	m.logger.Warnf(ctx, "LLM generation failed: provider=%s model=%s error=%v",
		provider.Name(), provider.Model(), err)
}
