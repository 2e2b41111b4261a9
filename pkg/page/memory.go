package page

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the in-process page cache. Pages reference live
// components and callbacks, so memory is the only store that can hold
// them; bounding the cache bounds how far back a user can backtrack.
type MemoryStore struct {
	mu     sync.RWMutex
	pages  map[string]*Page
	closed bool
	done   chan struct{}

	ttl      time.Duration
	maxPages int
}

// MemoryStoreOption configures MemoryStore behavior.
type MemoryStoreOption func(*memoryStoreConfig)

type memoryStoreConfig struct {
	ttl             time.Duration
	maxPages        int
	cleanupInterval time.Duration
}

// WithTTL sets how long a page stays fetchable after it was recorded.
// Default: 30 minutes.
func WithTTL(d time.Duration) MemoryStoreOption {
	return func(c *memoryStoreConfig) {
		c.ttl = d
	}
}

// WithMaxPages bounds the number of retained pages. When the bound is
// exceeded the oldest page is evicted. Default: 64. Zero disables the
// bound.
func WithMaxPages(n int) MemoryStoreOption {
	return func(c *memoryStoreConfig) {
		c.maxPages = n
	}
}

// WithCleanupInterval sets how often expired pages are cleaned up.
// Default: 1 minute.
func WithCleanupInterval(d time.Duration) MemoryStoreOption {
	return func(c *memoryStoreConfig) {
		c.cleanupInterval = d
	}
}

// NewMemoryStore creates a new in-memory page store.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	cfg := &memoryStoreConfig{
		ttl:             30 * time.Minute,
		maxPages:        64,
		cleanupInterval: 1 * time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	store := &MemoryStore{
		pages:    make(map[string]*Page),
		done:     make(chan struct{}),
		ttl:      cfg.ttl,
		maxPages: cfg.maxPages,
	}

	go store.cleanupLoop(cfg.cleanupInterval)
	return store
}

// Fetch retrieves a page if it exists and hasn't expired.
func (m *MemoryStore) Fetch(ctx context.Context, id string) (*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed{}
	}

	p, ok := m.pages[id]
	if !ok {
		return nil, nil
	}
	if m.expired(p, time.Now()) {
		return nil, nil
	}
	return p, nil
}

// Put records a page, evicting the oldest page if the bound is hit.
func (m *MemoryStore) Put(ctx context.Context, p *Page) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed{}
	}

	m.pages[p.ID] = p

	if m.maxPages > 0 && len(m.pages) > m.maxPages {
		m.evictOldest()
	}
	return nil
}

// Delete removes a page from the store.
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed{}
	}

	delete(m.pages, id)
	return nil
}

// Close shuts down the store and releases resources.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}

	m.closed = true
	close(m.done)
	m.pages = nil
	return nil
}

// Count returns the number of pages in the store.
// This is for monitoring/testing purposes.
func (m *MemoryStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.pages)
}

func (m *MemoryStore) expired(p *Page, now time.Time) bool {
	return m.ttl > 0 && now.After(p.CreatedAt.Add(m.ttl))
}

// evictOldest drops the page with the earliest CreatedAt.
// Caller holds the write lock.
func (m *MemoryStore) evictOldest() {
	var oldestID string
	var oldest time.Time

	for id, p := range m.pages {
		if oldestID == "" || p.CreatedAt.Before(oldest) {
			oldestID = id
			oldest = p.CreatedAt
		}
	}
	if oldestID != "" {
		delete(m.pages, oldestID)
	}
}

// cleanupLoop periodically removes expired pages.
func (m *MemoryStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanup()
		case <-m.done:
			return
		}
	}
}

// cleanup removes expired pages.
func (m *MemoryStore) cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}

	now := time.Now()
	var expired []string

	for id, p := range m.pages {
		if m.expired(p, now) {
			expired = append(expired, id)
		}
	}

	for _, id := range expired {
		delete(m.pages, id)
	}
}
