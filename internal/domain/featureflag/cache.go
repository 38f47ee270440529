package featureflag

import (
	"fmt"
	"sync"
	"time"
)

// Store is the flag cache abstraction: any concurrency-safe map or service
// that supports TTL'd set and immediate invalidation.
type Store interface {
	Get(key string) (enabled bool, ok bool)
	Set(key string, enabled bool, ttl time.Duration)
	Invalidate(key string)
}

func cacheKey(tenantID, feature string) string {
	return fmt.Sprintf("flag:%s:%s", tenantID, feature)
}

type cacheEntry struct {
	enabled   bool
	expiresAt time.Time
}

// MemoryStore is a mutex-guarded in-process Store with lazy expiration.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(key string) (bool, bool) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return false, false
	}
	if s.now().After(entry.expiresAt) {
		s.mu.Lock()
		// Re-check under the write lock: another goroutine may have refreshed.
		if cur, ok := s.entries[key]; ok && s.now().After(cur.expiresAt) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return false, false
	}
	return entry.enabled, true
}

func (s *MemoryStore) Set(key string, enabled bool, ttl time.Duration) {
	s.mu.Lock()
	s.entries[key] = cacheEntry{enabled: enabled, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
}

func (s *MemoryStore) Invalidate(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// Len reports live (unexpired) entries; used by tests and debug endpoints.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	now := s.now()
	for _, e := range s.entries {
		if now.Before(e.expiresAt) {
			n++
		}
	}
	return n
}
