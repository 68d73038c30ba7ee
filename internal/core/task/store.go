package task

import "context"

// Store is the remote collection of record for tasks. Each call is a single
// round trip; implementations return errors rather than masking them.
type Store interface {
	// List returns every task in the store's insertion order.
	List(ctx context.Context) ([]Task, error)

	// Create submits a new task and returns it with its assigned ID.
	Create(ctx context.Context, draft Draft) (Task, error)

	// Update replaces the task with the given ID and returns the stored result.
	Update(ctx context.Context, id string, draft Draft) (Task, error)

	// Remove deletes the task with the given ID.
	Remove(ctx context.Context, id string) error

	// Aggregate returns the store's own per-status counts.
	Aggregate(ctx context.Context) (Statistics, error)
}
