// Package store provides the document store abstraction for event records.
// Implementations include SQLite, MongoDB, and an in-memory store for testing.
package store

import (
	"context"
	"errors"

	"github.com/eventdeck/eventdeck/internal/event"
)

// Common errors for store operations.
var (
	// ErrDuplicateSlug is returned by Create when the slug uniqueness
	// constraint is violated. The store itself is the arbiter of uniqueness;
	// callers must not pre-check.
	ErrDuplicateSlug = errors.New("duplicate slug")

	// ErrNotFound is returned by GetBySlug when no record matches.
	ErrNotFound = errors.New("event not found")
)

// EventStore abstracts the document database holding event records.
// Records are immutable once created: there are no update or delete
// operations.
type EventStore interface {
	// Create persists a new event record. The write is all-or-nothing: on
	// any failure no partial record remains. Returns ErrDuplicateSlug when
	// another record already holds the same slug.
	Create(ctx context.Context, e *event.Event) error

	// ListAll returns every record ordered by CreatedAt descending (most
	// recent first). An empty store yields an empty slice, not an error.
	ListAll(ctx context.Context) ([]*event.Event, error)

	// GetBySlug returns the record with the given slug, or ErrNotFound.
	GetBySlug(ctx context.Context, slug string) (*event.Event, error)

	// FindSimilar returns every record other than the one identified by
	// slug whose tags intersect that record's tags in at least one element,
	// ordered by CreatedAt descending. An unresolvable slug yields an empty
	// slice: similarity is a fail-soft surface.
	FindSimilar(ctx context.Context, slug string) ([]*event.Event, error)

	// Close releases the underlying connection.
	Close() error
}
