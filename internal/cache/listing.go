// Package cache provides a time-window cache for rendered listing responses.
// Invalidation is time-based only, never write-triggered: a newly created
// event may not appear until the window expires. That staleness is accepted.
package cache

import (
	"sync"
	"time"

	"github.com/golang/snappy"
)

// ListingCache holds snappy-compressed response bodies for a bounded time
// window.
type ListingCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]*entry

	// now is swappable for tests.
	now func() time.Time
}

type entry struct {
	compressed  []byte
	contentType string
	storedAt    time.Time
}

// NewListingCache creates a cache whose entries expire after ttl.
func NewListingCache(ttl time.Duration) *ListingCache {
	return &ListingCache{
		ttl:     ttl,
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Get returns the cached body and content type for key, if present and
// within the freshness window.
func (c *ListingCache) Get(key string) (body []byte, contentType string, ok bool) {
	c.mu.RLock()
	e, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists || c.now().Sub(e.storedAt) >= c.ttl {
		return nil, "", false
	}

	body, err := snappy.Decode(nil, e.compressed)
	if err != nil {
		// A corrupt entry behaves as a miss; the next Put replaces it.
		return nil, "", false
	}
	return body, e.contentType, true
}

// Put stores a response body for key, replacing any previous entry and
// restarting the freshness window.
func (c *ListingCache) Put(key string, body []byte, contentType string) {
	e := &entry{
		compressed:  snappy.Encode(nil, body),
		contentType: contentType,
		storedAt:    c.now(),
	}

	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
}
