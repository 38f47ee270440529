package featureflag

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisStore(client, zerolog.Nop()), mr
}

func TestRedisStore_SetGet(t *testing.T) {
	s, _ := newRedisStore(t)

	s.Set("flag:acme:bed_management", true, time.Minute)
	enabled, ok := s.Get("flag:acme:bed_management")
	if !ok || !enabled {
		t.Errorf("expected hit with enabled=true, got ok=%v enabled=%v", ok, enabled)
	}

	s.Set("flag:acme:bed_management", false, time.Minute)
	enabled, ok = s.Get("flag:acme:bed_management")
	if !ok || enabled {
		t.Errorf("expected hit with enabled=false, got ok=%v enabled=%v", ok, enabled)
	}
}

func TestRedisStore_Miss(t *testing.T) {
	s, _ := newRedisStore(t)
	if _, ok := s.Get("flag:acme:missing"); ok {
		t.Error("expected miss")
	}
}

func TestRedisStore_TTL(t *testing.T) {
	s, mr := newRedisStore(t)

	s.Set("k", true, 5*time.Minute)
	if _, ok := s.Get("k"); !ok {
		t.Fatal("expected hit before expiry")
	}

	mr.FastForward(5*time.Minute + time.Second)
	if _, ok := s.Get("k"); ok {
		t.Error("expected miss after TTL")
	}
}

func TestRedisStore_Invalidate(t *testing.T) {
	s, _ := newRedisStore(t)

	s.Set("k", true, time.Minute)
	s.Invalidate("k")
	if _, ok := s.Get("k"); ok {
		t.Error("expected miss after invalidation")
	}
}

func TestRedisStore_DownDegradesToMiss(t *testing.T) {
	s, mr := newRedisStore(t)

	s.Set("k", true, time.Minute)
	mr.Close()

	if _, ok := s.Get("k"); ok {
		t.Error("a redis outage must read as a cache miss, not a hit")
	}
}
