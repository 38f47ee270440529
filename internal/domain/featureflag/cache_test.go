package featureflag

import (
	"sync"
	"testing"
	"time"
)

func TestMemoryStore_SetGet(t *testing.T) {
	s := NewMemoryStore()
	s.Set("flag:acme:bed_management", true, time.Minute)

	enabled, ok := s.Get("flag:acme:bed_management")
	if !ok || !enabled {
		t.Errorf("expected hit with enabled=true, got ok=%v enabled=%v", ok, enabled)
	}
}

func TestMemoryStore_Miss(t *testing.T) {
	s := NewMemoryStore()
	if _, ok := s.Get("flag:acme:missing"); ok {
		t.Error("expected miss")
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	s := NewMemoryStore()
	current := time.Now()
	s.now = func() time.Time { return current }

	s.Set("k", true, 5*time.Minute)
	if _, ok := s.Get("k"); !ok {
		t.Fatal("expected hit before expiry")
	}

	current = current.Add(5*time.Minute + time.Second)
	if _, ok := s.Get("k"); ok {
		t.Error("expected miss after TTL")
	}
	if s.Len() != 0 {
		t.Errorf("expected lazy expiration to drop the entry, len=%d", s.Len())
	}
}

func TestMemoryStore_Invalidate(t *testing.T) {
	s := NewMemoryStore()
	s.Set("k", true, time.Minute)
	s.Invalidate("k")

	if _, ok := s.Get("k"); ok {
		t.Error("expected miss after invalidation")
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	s := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				s.Set("k", j%2 == 0, time.Minute)
				s.Get("k")
				s.Invalidate("k")
			}
		}()
	}
	wg.Wait()
}

func TestCacheKey(t *testing.T) {
	a := cacheKey("acme", "bed_management")
	b := cacheKey("bmc", "bed_management")
	c := cacheKey("acme", "transfer_priority")
	if a == b || a == c {
		t.Error("cache keys must be distinct per tenant and feature")
	}
}
