package persist

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory continuity store. It's the default and
// suitable for single-server deployments; restarts lose it, which
// degrades to every session starting fresh. Use RedisStore, SQLStore
// or BoltStore when continuity across restarts matters.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*storedState
	closed  bool
	done    chan struct{}
}

type storedState struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStoreOption configures MemoryStore behavior.
type MemoryStoreOption func(*memoryStoreConfig)

type memoryStoreConfig struct {
	cleanupInterval time.Duration
}

// WithCleanupInterval sets how often expired records are cleaned up.
// Default: 1 minute.
func WithCleanupInterval(d time.Duration) MemoryStoreOption {
	return func(c *memoryStoreConfig) {
		c.cleanupInterval = d
	}
}

// NewMemoryStore creates a new in-memory continuity store.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	cfg := &memoryStoreConfig{
		cleanupInterval: 1 * time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	store := &MemoryStore{
		records: make(map[string]*storedState),
		done:    make(chan struct{}),
	}

	go store.cleanupLoop(cfg.cleanupInterval)
	return store
}

// Save stores a record with an expiration time.
func (m *MemoryStore) Save(ctx context.Context, sessionID string, data []byte, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed{}
	}

	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)

	m.records[sessionID] = &storedState{
		data:      dataCopy,
		expiresAt: expiresAt,
	}
	return nil
}

// Load retrieves a record if it exists and hasn't expired.
func (m *MemoryStore) Load(ctx context.Context, sessionID string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed{}
	}

	s, ok := m.records[sessionID]
	if !ok {
		return nil, nil
	}
	if time.Now().After(s.expiresAt) {
		return nil, nil
	}

	dataCopy := make([]byte, len(s.data))
	copy(dataCopy, s.data)
	return dataCopy, nil
}

// Delete removes a record from the store.
func (m *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed{}
	}

	delete(m.records, sessionID)
	return nil
}

// Touch updates the expiration time for a record.
func (m *MemoryStore) Touch(ctx context.Context, sessionID string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed{}
	}

	if s, ok := m.records[sessionID]; ok {
		s.expiresAt = expiresAt
	}
	return nil
}

// SaveAll saves multiple records atomically.
func (m *MemoryStore) SaveAll(ctx context.Context, records map[string]StateData) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed{}
	}

	for id, sd := range records {
		dataCopy := make([]byte, len(sd.Data))
		copy(dataCopy, sd.Data)

		m.records[id] = &storedState{
			data:      dataCopy,
			expiresAt: sd.ExpiresAt,
		}
	}
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
	m.records = nil
	return nil
}

// Count returns the number of records in the store.
// This is for monitoring/testing purposes.
func (m *MemoryStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// cleanupLoop periodically removes expired records.
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

func (m *MemoryStore) cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}

	now := time.Now()
	var expired []string

	for id, s := range m.records {
		if now.After(s.expiresAt) {
			expired = append(expired, id)
		}
	}

	for _, id := range expired {
		delete(m.records, id)
	}
}
