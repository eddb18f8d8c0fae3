package refcache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	defaultLRUSize = 1000
	defaultLRUTTL  = 24 * time.Hour
)

// LRU is a process-local cache with per-entry expiry.
type LRU struct {
	entries *expirable.LRU[string, string]
}

// NewLRU builds an LRU. Non-positive size or ttl take the defaults.
func NewLRU(size int, ttl time.Duration) *LRU {
	if size <= 0 {
		size = defaultLRUSize
	}
	if ttl <= 0 {
		ttl = defaultLRUTTL
	}
	return &LRU{entries: expirable.NewLRU[string, string](size, nil, ttl)}
}

func (c *LRU) Get(_ context.Context, userID string) (string, bool) {
	return c.entries.Get(userID)
}

func (c *LRU) Set(_ context.Context, userID, calendarID string) {
	c.entries.Add(userID, calendarID)
}

func (c *LRU) Invalidate(_ context.Context, userID string) {
	c.entries.Remove(userID)
}
