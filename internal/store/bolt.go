package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

const bucketName = "credentials"

// boltEntry is the serialized form of a stored value.
//
// ExpiresAt is the absolute expiry timestamp; zero means no expiry.
type boltEntry struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

func (e boltEntry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

// BoltStore is a bbolt-backed [Store] with an in-memory mirror for reads.
//
// TTLs are enforced lazily: an expired entry is removed when it is next read.
type BoltStore struct {
	db       *bolt.DB
	memCache sync.Map
	now      func() time.Time
}

// NewBoltStore opens (or creates) the credential database at dbPath.
func NewBoltStore(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create credential bucket: %w", err)
	}

	s := &BoltStore{db: db, now: time.Now}
	if err := s.loadToMemory(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to preload credential store: %w", err)
	}

	return s, nil
}

// loadToMemory mirrors all persisted entries into the in-memory cache.
func (s *BoltStore) loadToMemory() error {
	return s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return nil
		}

		return b.ForEach(func(k, v []byte) error {
			var entry boltEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return nil // skip unreadable entries
			}
			s.memCache.Store(string(k), entry)
			return nil
		})
	})
}

// Put stores value under key, recording an absolute expiry when ttl > 0.
func (s *BoltStore) Put(key, value string, ttl time.Duration) error {
	entry := boltEntry{Value: value}
	if ttl > 0 {
		entry.ExpiresAt = s.now().Add(ttl)
	}

	s.memCache.Store(key, entry)

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}

		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}

		return b.Put([]byte(key), data)
	})
}

// Get returns the value for key, deleting and reporting absence for expired entries.
func (s *BoltStore) Get(key string) (string, bool, error) {
	v, ok := s.memCache.Load(key)
	if !ok {
		return "", false, nil
	}

	entry := v.(boltEntry)
	if entry.expired(s.now()) {
		if err := s.Delete(key); err != nil {
			return "", false, err
		}
		return "", false, nil
	}

	return entry.Value, true, nil
}

// Delete removes key from memory and disk.
func (s *BoltStore) Delete(key string) error {
	s.memCache.Delete(key)

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}
		return b.Delete([]byte(key))
	})
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
