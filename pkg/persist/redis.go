package persist

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis-backed continuity store, suitable for
// multi-server deployments with shared state.
type RedisStore struct {
	client *redis.Client
	prefix string
	closed bool
}

// RedisStoreOption configures RedisStore behavior.
type RedisStoreOption func(*redisStoreConfig)

type redisStoreConfig struct {
	prefix string
}

// WithRedisPrefix sets the key prefix for continuity records.
// Default: "weft:session:".
func WithRedisPrefix(prefix string) RedisStoreOption {
	return func(c *redisStoreConfig) {
		c.prefix = prefix
	}
}

// NewRedisStore creates a new Redis-backed continuity store.
func NewRedisStore(client *redis.Client, opts ...RedisStoreOption) *RedisStore {
	cfg := &redisStoreConfig{
		prefix: "weft:session:",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &RedisStore{
		client: client,
		prefix: cfg.prefix,
	}
}

func (r *RedisStore) key(sessionID string) string {
	return r.prefix + sessionID
}

// Save stores a record with an expiration time.
func (r *RedisStore) Save(ctx context.Context, sessionID string, data []byte, expiresAt time.Time) error {
	if r.closed {
		return ErrStoreClosed{}
	}

	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// Already expired, delete instead
		return r.Delete(ctx, sessionID)
	}

	return r.client.Set(ctx, r.key(sessionID), data, ttl).Err()
}

// Load retrieves a record if it exists.
func (r *RedisStore) Load(ctx context.Context, sessionID string) ([]byte, error) {
	if r.closed {
		return nil, ErrStoreClosed{}
	}

	data, err := r.client.Get(ctx, r.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// Delete removes a record from Redis.
func (r *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if r.closed {
		return ErrStoreClosed{}
	}

	return r.client.Del(ctx, r.key(sessionID)).Err()
}

// Touch updates the expiration time for a record.
func (r *RedisStore) Touch(ctx context.Context, sessionID string, expiresAt time.Time) error {
	if r.closed {
		return ErrStoreClosed{}
	}

	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return r.Delete(ctx, sessionID)
	}

	return r.client.Expire(ctx, r.key(sessionID), ttl).Err()
}

// SaveAll saves multiple records using a Redis pipeline.
func (r *RedisStore) SaveAll(ctx context.Context, records map[string]StateData) error {
	if r.closed {
		return ErrStoreClosed{}
	}

	if len(records) == 0 {
		return nil
	}

	pipe := r.client.Pipeline()
	for id, sd := range records {
		ttl := time.Until(sd.ExpiresAt)
		if ttl > 0 {
			pipe.Set(ctx, r.key(id), sd.Data, ttl)
		}
	}

	_, err := pipe.Exec(ctx)
	return err
}

// Close marks the store as closed. The underlying Redis client is
// left open as it may be shared with other components.
func (r *RedisStore) Close() error {
	r.closed = true
	return nil
}

// Prefix returns the current key prefix.
// This is for testing/debugging purposes.
func (r *RedisStore) Prefix() string {
	return r.prefix
}
