package store

import (
	"context"
	"sort"
	"sync"

	"github.com/eventdeck/eventdeck/internal/event"
)

// MemoryStore implements EventStore with an in-process map. It honors the
// same contract as the durable stores (slug uniqueness, recency ordering,
// fail-soft similarity) and is used by tests and the "memory" store type.
type MemoryStore struct {
	mu     sync.RWMutex
	bySlug map[string]*event.Event
}

// NewMemoryStore creates an empty in-memory event store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{bySlug: make(map[string]*event.Event)}
}

// Create persists a new event record.
func (m *MemoryStore) Create(ctx context.Context, e *event.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.bySlug[e.Slug]; exists {
		return ErrDuplicateSlug
	}

	m.bySlug[e.Slug] = cloneEvent(e)
	return nil
}

// cloneEvent copies a record including its list fields, so neither the caller
// nor later readers can mutate the stored state through a shared backing
// array.
func cloneEvent(e *event.Event) *event.Event {
	cp := *e
	cp.Tags = append([]string(nil), e.Tags...)
	cp.Agenda = append([]string(nil), e.Agenda...)
	return &cp
}

// ListAll returns all records, most recent first.
func (m *MemoryStore) ListAll(ctx context.Context) ([]*event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*event.Event, 0, len(m.bySlug))
	for _, e := range m.bySlug {
		out = append(out, cloneEvent(e))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		// ULIDs are time-ordered, so the ID breaks ties deterministically.
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// GetBySlug returns the record with the given slug.
func (m *MemoryStore) GetBySlug(ctx context.Context, slug string) (*event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.bySlug[slug]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneEvent(e), nil
}

// FindSimilar returns other records sharing at least one tag.
func (m *MemoryStore) FindSimilar(ctx context.Context, slug string) ([]*event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	source, ok := m.bySlug[slug]
	m.mu.RUnlock()
	if !ok {
		return []*event.Event{}, nil
	}

	wanted := make(map[string]struct{}, len(source.Tags))
	for _, tag := range source.Tags {
		wanted[tag] = struct{}{}
	}

	all, err := m.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	similar := make([]*event.Event, 0)
	for _, e := range all {
		if e.Slug == slug {
			continue
		}
		for _, tag := range e.Tags {
			if _, hit := wanted[tag]; hit {
				similar = append(similar, e)
				break
			}
		}
	}
	return similar, nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}
