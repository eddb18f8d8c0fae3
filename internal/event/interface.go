package event

import "context"

//go:generate mockery --name UseCase
type UseCase interface {
	// Intake
	ProcessText(ctx context.Context, input ProcessTextInput) (ProcessTextOutput, error)
	Preview(ctx context.Context, input PreviewInput) (PreviewOutput, error)

	// Event management
	ListEvents(ctx context.Context, input ListEventsInput) (ListEventsOutput, error)
	UpdateEvent(ctx context.Context, input UpdateEventInput) (UpdateEventOutput, error)
	DeleteEvent(ctx context.Context, input DeleteEventInput) (DeleteEventOutput, error)

	// Calendar sync
	SyncEvent(ctx context.Context, input SyncEventInput) (SyncEventOutput, error)
	SyncPending(ctx context.Context, userID string) (SyncPendingOutput, error)
	RemoveDuplicates(ctx context.Context, userID string) (RemoveDuplicatesOutput, error)
}
