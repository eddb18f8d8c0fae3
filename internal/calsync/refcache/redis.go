package refcache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"calendar-autobot/pkg/log"
)

const keyPrefix = "calendar_autobot:calendar_id:"

// Redis shares calendar ids between the API and the worker.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	l      log.Logger
}

func NewRedis(client *redis.Client, ttl time.Duration, l log.Logger) *Redis {
	if ttl <= 0 {
		ttl = defaultLRUTTL
	}
	return &Redis{client: client, ttl: ttl, l: l}
}

func (c *Redis) Get(ctx context.Context, userID string) (string, bool) {
	val, err := c.client.Get(ctx, keyPrefix+userID).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.l.Warnf(ctx, "refcache.Redis.Get: user_id=%s: %v", userID, err)
		}
		return "", false
	}
	return val, val != ""
}

func (c *Redis) Set(ctx context.Context, userID, calendarID string) {
	if err := c.client.Set(ctx, keyPrefix+userID, calendarID, c.ttl).Err(); err != nil {
		c.l.Warnf(ctx, "refcache.Redis.Set: user_id=%s: %v", userID, err)
	}
}

func (c *Redis) Invalidate(ctx context.Context, userID string) {
	if err := c.client.Del(ctx, keyPrefix+userID).Err(); err != nil {
		c.l.Warnf(ctx, "refcache.Redis.Invalidate: user_id=%s: %v", userID, err)
	}
}
