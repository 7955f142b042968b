package driving

import "context"

// IndexService manages the lifecycle of the verse index.
type IndexService interface {
	// Ensure creates the index if it does not exist. Never deletes data.
	Ensure(ctx context.Context) error

	// Rebuild deletes and recreates the index, discarding all documents.
	Rebuild(ctx context.Context) error
}
