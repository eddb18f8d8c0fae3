// Package refcache caches per-user calendar ids.
package refcache

import "context"

// Cache maps a user id to the id of the user's dedicated calendar.
// Implementations are safe for concurrent use and never fail the caller:
// a backend error reads as a miss.
type Cache interface {
	Get(ctx context.Context, userID string) (string, bool)
	Set(ctx context.Context, userID, calendarID string)
	Invalidate(ctx context.Context, userID string)
}
