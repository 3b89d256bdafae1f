package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the narrow command surface the gateway needs from Redis. Keeping
// it small lets tests drive the gateway with an in-memory fake while the
// production adapter stays a thin mapping onto go-redis.
type Store interface {
	// Get reads a string value. The boolean reports presence; an absent key
	// is not an error.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set writes a string value with an optional TTL (0 means no expiry).
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Del removes a key. Deleting an absent key is a no-op.
	Del(ctx context.Context, key string) error

	// HGetAll reads a whole hash. An absent key yields an empty map.
	HGetAll(ctx context.Context, key string) (map[string]string, error)

	// HReplace atomically replaces a hash: delete, repopulate with fields,
	// apply TTL, all inside one transaction. Concurrent readers see either
	// the previous hash or the full new one.
	HReplace(ctx context.Context, key string, fields map[string]string, ttl time.Duration) error
}

// redisStore adapts *redis.Client to Store.
type redisStore struct {
	client *redis.Client
}

// NewStore wraps a Redis client in the Store interface.
func NewStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func (s *redisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *redisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *redisStore) Del(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

func (s *redisStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	return s.client.HGetAll(ctx, key).Result()
}

func (s *redisStore) HReplace(ctx context.Context, key string, fields map[string]string, ttl time.Duration) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(fields) > 0 {
			pipe.HSet(ctx, key, fields)
		}
		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		return nil
	})
	return err
}
