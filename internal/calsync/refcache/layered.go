package refcache

import "context"

// Layered reads through a fast local cache into a shared one.
type Layered struct {
	local  Cache
	shared Cache
}

func NewLayered(local, shared Cache) *Layered {
	return &Layered{local: local, shared: shared}
}

func (c *Layered) Get(ctx context.Context, userID string) (string, bool) {
	if id, ok := c.local.Get(ctx, userID); ok {
		return id, true
	}
	id, ok := c.shared.Get(ctx, userID)
	if ok {
		c.local.Set(ctx, userID, id)
	}
	return id, ok
}

func (c *Layered) Set(ctx context.Context, userID, calendarID string) {
	c.shared.Set(ctx, userID, calendarID)
	c.local.Set(ctx, userID, calendarID)
}

func (c *Layered) Invalidate(ctx context.Context, userID string) {
	c.shared.Invalidate(ctx, userID)
	c.local.Invalidate(ctx, userID)
}
