package jobs

import (
	"context"
	"errors"

	"github.com/hibiken/asynq"

	"calendar-autobot/pkg/log"
)

// Client enqueues calendar tasks.
type Client struct {
	l     log.Logger
	inner *asynq.Client
	queue string
}

func NewClient(l log.Logger, redis asynq.RedisConnOpt, queue string) *Client {
	if queue == "" {
		queue = DefaultQueue
	}
	return &Client{l: l, inner: asynq.NewClient(redis), queue: queue}
}

func (c *Client) EnqueueSyncPending(ctx context.Context, userID string) (string, error) {
	return c.enqueue(ctx, TypeSyncPending, userID)
}

func (c *Client) EnqueueRemoveDuplicates(ctx context.Context, userID string) (string, error) {
	return c.enqueue(ctx, TypeRemoveDuplicates, userID)
}

// enqueue returns the task id. When the same task is already queued for the
// user it returns an empty id and no error.
func (c *Client) enqueue(ctx context.Context, typename, userID string) (string, error) {
	task, err := newTask(typename, userID)
	if err != nil {
		return "", err
	}

	info, err := c.inner.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.Unique(uniqueFor),
		asynq.MaxRetry(defaultMaxRetry),
		asynq.Timeout(defaultTaskTimeout),
	)
	if errors.Is(err, asynq.ErrDuplicateTask) {
		c.l.Infof(ctx, "jobs.Client: %s already queued for user_id=%s", typename, userID)
		return "", nil
	}
	if err != nil {
		return "", err
	}

	c.l.Infof(ctx, "jobs.Client: enqueued %s id=%s user_id=%s", typename, info.ID, userID)
	return info.ID, nil
}

func (c *Client) Close() error {
	return c.inner.Close()
}
