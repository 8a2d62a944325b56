package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	data    Data
	expires time.Time
}

// MemoryStore keeps sessions in a mutex-guarded map with per-entry
// expiry. State is lost on restart, which matches the browser-session
// lifetime this application needs in development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
	}
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Data, error) {
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if time.Now().After(entry.expires) {
		// Expired entries are removed lazily on access.
		s.mu.Lock()
		delete(s.entries, id)
		s.mu.Unlock()
		return nil, ErrNotFound
	}

	data := entry.data
	return &data, nil
}

func (s *MemoryStore) Save(_ context.Context, id string, data *Data) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = memoryEntry{
		data:    *data,
		expires: time.Now().Add(s.ttl),
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}
