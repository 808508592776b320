package errorlog

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisKeySnapshot is the default key holding the error log document.
const RedisKeySnapshot = "countries:error_log"

// RedisStore persists the snapshot document under a single Redis key.
// Only the error log lives in Redis; cached responses stay in process.
type RedisStore struct {
	redis *redis.Client
	key   string
}

// NewRedisStore creates a Redis-backed snapshot store. An empty key selects
// RedisKeySnapshot.
func NewRedisStore(redisClient *redis.Client, key string) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if key == "" {
		key = RedisKeySnapshot
	}
	return &RedisStore{redis: redisClient, key: key}
}

// Load fetches and decodes the snapshot document.
func (s *RedisStore) Load(ctx context.Context) (*State, error) {
	data, err := s.redis.Get(ctx, s.key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return Decode(data)
}

// Save overwrites the snapshot document. The key has no expiry.
func (s *RedisStore) Save(ctx context.Context, state *State) error {
	data, err := Encode(state)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Ping verifies the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}
