package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]map[string]memoryEntry),
		now:     time.Now,
	}
}

// WithClock replaces the time source; used by tests to step past TTLs.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) Get(_ context.Context, namespace, key string) ([]byte, bool, error) {
	s.mu.RLock()
	e, ok := s.entries[namespace][key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}

	if !s.now().Before(e.expiresAt) {
		s.mu.Lock()
		if cur, ok := s.entries[namespace][key]; ok && cur.expiresAt.Equal(e.expiresAt) {
			delete(s.entries[namespace], key)
		}
		s.mu.Unlock()
		return nil, false, nil
	}

	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, true, nil
}

func (s *MemoryStore) Set(_ context.Context, namespace, key string, value []byte, ttl time.Duration) error {
	v := make([]byte, len(value))
	copy(v, value)

	s.mu.Lock()
	defer s.mu.Unlock()
	ns, ok := s.entries[namespace]
	if !ok {
		ns = make(map[string]memoryEntry)
		s.entries[namespace] = ns
	}
	ns[key] = memoryEntry{value: v, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, namespace, key string) error {
	s.mu.Lock()
	delete(s.entries[namespace], key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Flush(_ context.Context, namespace string) error {
	s.mu.Lock()
	delete(s.entries, namespace)
	s.mu.Unlock()
	return nil
}

// Len counts stored entries in a namespace, including expired ones not yet
// swept.
func (s *MemoryStore) Len(namespace string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries[namespace])
}
