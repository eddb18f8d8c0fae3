// Package jobs runs calendar maintenance in the background on asynq.
package jobs

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TypeSyncPending      = "calendar:sync_pending"
	TypeRemoveDuplicates = "calendar:remove_duplicates"

	DefaultQueue       = "calendar"
	DefaultConcurrency = 1
	defaultMaxRetry    = 3
	defaultTaskTimeout = 5 * time.Minute
	// uniqueFor collapses repeated requests for the same user and task type.
	uniqueFor = 10 * time.Minute
)

var ErrInvalidPayload = errors.New("jobs: invalid task payload")

// Payload is the body of every calendar task.
type Payload struct {
	UserID string `json:"user_id"`
}

func newTask(typename, userID string) (*asynq.Task, error) {
	body, err := json.Marshal(Payload{UserID: userID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(typename, body), nil
}

func parsePayload(t *asynq.Task) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return p, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if p.UserID == "" {
		return p, fmt.Errorf("%w: user_id is empty", ErrInvalidPayload)
	}
	return p, nil
}
