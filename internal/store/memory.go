package store

import (
	"sync"
	"time"
)

// MemoryStore is an in-process [Store] used in tests and as a fallback when
// no durable store is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]boltEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]boltEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Put(key, value string, ttl time.Duration) error {
	entry := boltEntry{Value: value}
	if ttl > 0 {
		entry.ExpiresAt = s.now().Add(ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry
	return nil
}

func (s *MemoryStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return "", false, nil
	}
	if entry.expired(s.now()) {
		delete(s.entries, key)
		return "", false, nil
	}

	return entry.Value, true, nil
}

func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
