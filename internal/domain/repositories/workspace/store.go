package workspace

import (
	"context"

	models "writersuite/internal/domain/models/workspace"
)

// Store is the read side of the host store.
// Paths are slash-separated and relative to the workspace root ("" = root).
type Store interface {
	// Lookup returns the node at path, or domain.ErrNotFound
	Lookup(ctx context.Context, path string) (*models.Node, error)

	// ListChildren lists the immediate children of a container in the
	// store's listing order. Fails with domain.ErrNotFound if the container is missing.
	ListChildren(ctx context.Context, path string) ([]models.Node, error)

	// ReadText returns a document's content.
	// Fails with domain.ErrNotFound or domain.ErrReadFailure.
	ReadText(ctx context.Context, path string) (string, error)
}

// Writer is the mutation side of the host store, used by the command layer only
type Writer interface {
	// CreateContainer creates a container; the parent must exist.
	// Returns a *domain.ConflictError if a sibling with the same name exists.
	CreateContainer(ctx context.Context, path string) (*models.Node, error)

	// CreateDocument creates a document with the given content; the parent must exist
	CreateDocument(ctx context.Context, path, content string) (*models.Node, error)

	// Delete removes a node and, for containers, everything beneath it
	Delete(ctx context.Context, path string) error
}

// EventSource delivers mutation notifications from the host store
type EventSource interface {
	// Events returns the notification channel. It is closed when the source stops.
	// A resync event means changes were lost and every view must re-read.
	Events() <-chan models.Event
}

// HostStore is a backend offering all three capabilities
type HostStore interface {
	Store
	Writer
	EventSource
	Close() error
}
