package persist

import (
	"context"
	"encoding/json"
	"time"

	bolt "go.etcd.io/bbolt"
)

// BoltStore is a Bolt-backed continuity store. It keeps records in a
// single local file, which suits single-server deployments that need
// continuity across restarts without running an external database.
type BoltStore struct {
	db     *bolt.DB
	bucket []byte
	closed bool
}

// boltRecord is the stored envelope. Bolt has no native expiry, so
// each record carries its own and expired records are dropped lazily.
type boltRecord struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
}

// BoltStoreOption configures BoltStore behavior.
type BoltStoreOption func(*boltStoreConfig)

type boltStoreConfig struct {
	bucket string
}

// WithBoltBucket sets the bucket name for continuity records.
// Default: "weft_sessions".
func WithBoltBucket(name string) BoltStoreOption {
	return func(c *boltStoreConfig) {
		c.bucket = name
	}
}

// NewBoltStore opens a Bolt database at path and prepares the
// continuity bucket.
func NewBoltStore(path string, opts ...BoltStoreOption) (*BoltStore, error) {
	cfg := &boltStoreConfig{
		bucket: "weft_sessions",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	bucket := []byte(cfg.bucket)
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db, bucket: bucket}, nil
}

// Save stores a record with an expiration time.
func (b *BoltStore) Save(ctx context.Context, sessionID string, data []byte, expiresAt time.Time) error {
	if b.closed {
		return ErrStoreClosed{}
	}

	encoded, err := json.Marshal(boltRecord{Data: data, ExpiresAt: expiresAt})
	if err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(b.bucket).Put([]byte(sessionID), encoded)
	})
}

// Load retrieves a record if it exists and hasn't expired. Expired
// records are removed on the way out.
func (b *BoltStore) Load(ctx context.Context, sessionID string) ([]byte, error) {
	if b.closed {
		return nil, ErrStoreClosed{}
	}

	var data []byte
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(b.bucket)
		raw := bucket.Get([]byte(sessionID))
		if raw == nil {
			return nil
		}

		var rec boltRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return err
		}
		if time.Now().After(rec.ExpiresAt) {
			return bucket.Delete([]byte(sessionID))
		}

		data = rec.Data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Delete removes a record from the store.
func (b *BoltStore) Delete(ctx context.Context, sessionID string) error {
	if b.closed {
		return ErrStoreClosed{}
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(b.bucket).Delete([]byte(sessionID))
	})
}

// Touch updates the expiration time for a record.
func (b *BoltStore) Touch(ctx context.Context, sessionID string, expiresAt time.Time) error {
	if b.closed {
		return ErrStoreClosed{}
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(b.bucket)
		raw := bucket.Get([]byte(sessionID))
		if raw == nil {
			return nil
		}

		var rec boltRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return err
		}
		rec.ExpiresAt = expiresAt

		encoded, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(sessionID), encoded)
	})
}

// SaveAll saves multiple records in one transaction.
func (b *BoltStore) SaveAll(ctx context.Context, records map[string]StateData) error {
	if b.closed {
		return ErrStoreClosed{}
	}

	if len(records) == 0 {
		return nil
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(b.bucket)
		for id, sd := range records {
			encoded, err := json.Marshal(boltRecord{Data: sd.Data, ExpiresAt: sd.ExpiresAt})
			if err != nil {
				return err
			}
			if err := bucket.Put([]byte(id), encoded); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close closes the underlying Bolt database.
func (b *BoltStore) Close() error {
	if b.closed {
		return nil
	}

	b.closed = true
	return b.db.Close()
}
