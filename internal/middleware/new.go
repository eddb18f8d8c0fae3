package middleware

import (
	"calendar-autobot/pkg/errtrack"
	"calendar-autobot/pkg/log"
)

// DefaultRateLimitPerMin applies when Config.RateLimitPerMin is not set.
const DefaultRateLimitPerMin = 30

type Config struct {
	// RateLimitPerMin caps extraction requests per user. Negative disables the limit.
	RateLimitPerMin int
	Reporter        errtrack.Reporter
}

type Middleware struct {
	l        log.Logger
	limiter  *rateLimiter
	reporter errtrack.Reporter
}

func New(l log.Logger, cfg Config) Middleware {
	if cfg.RateLimitPerMin == 0 {
		cfg.RateLimitPerMin = DefaultRateLimitPerMin
	}
	if cfg.Reporter == nil {
		cfg.Reporter = errtrack.Nop{}
	}

	var limiter *rateLimiter
	if cfg.RateLimitPerMin > 0 {
		limiter = newRateLimiter(cfg.RateLimitPerMin)
	}

	return Middleware{
		l:        l,
		limiter:  limiter,
		reporter: cfg.Reporter,
	}
}
