package persist

import (
	"context"
	"time"
)

// Store defines the interface for continuity persistence backends.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save persists a serialized continuity record. Called
	// periodically and on graceful shutdown. If sessionID already
	// exists, it is overwritten.
	Save(ctx context.Context, sessionID string, data []byte, expiresAt time.Time) error

	// Load retrieves a record by session ID.
	// Returns (nil, nil) if the record doesn't exist or has expired.
	Load(ctx context.Context, sessionID string) ([]byte, error)

	// Delete removes a record. Missing records are not an error.
	Delete(ctx context.Context, sessionID string) error

	// Touch updates the expiration time without loading the record.
	// Missing records are not an error.
	Touch(ctx context.Context, sessionID string, expiresAt time.Time) error

	// SaveAll persists multiple records atomically if the backend
	// allows it. Used during graceful shutdown.
	SaveAll(ctx context.Context, records map[string]StateData) error

	// Close releases any resources held by the store.
	Close() error
}

// StateData is a serialized continuity record with its expiry.
type StateData struct {
	Data      []byte
	ExpiresAt time.Time
}

// NotFoundError is returned by implementations that need an explicit
// error type. Note that Load returns (nil, nil) for missing records.
type NotFoundError struct {
	SessionID string
}

func (e NotFoundError) Error() string {
	return "session state not found: " + e.SessionID
}

// ErrStoreClosed is returned when operations are attempted on a
// closed store.
type ErrStoreClosed struct{}

func (e ErrStoreClosed) Error() string {
	return "persist store is closed"
}
