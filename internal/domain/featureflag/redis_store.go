package featureflag

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

// RedisStore backs the flag cache with Redis so invalidations propagate
// across replicas. Redis errors degrade to cache misses: the caller falls
// through to the flag table, where the failure policy applies.
type RedisStore struct {
	client  *redis.Client
	log     zerolog.Logger
	timeout time.Duration
}

func NewRedisStore(client *redis.Client, logger zerolog.Logger) *RedisStore {
	return &RedisStore{
		client:  client,
		log:     logger,
		timeout: 500 * time.Millisecond,
	}
}

// NewRedisStoreFromURL connects from a redis:// URL.
func NewRedisStoreFromURL(url string, logger zerolog.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return NewRedisStore(redis.NewClient(opts), logger), nil
}

func (s *RedisStore) Get(key string) (bool, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, false
	}
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("flag cache read failed, treating as miss")
		return false, false
	}
	return val == "1", true
}

func (s *RedisStore) Set(key string, enabled bool, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	val := "0"
	if enabled {
		val = "1"
	}
	if err := s.client.Set(ctx, key, val, ttl).Err(); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("flag cache write failed")
	}
}

func (s *RedisStore) Invalidate(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.client.Del(ctx, key).Err(); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("flag cache invalidation failed")
	}
}
