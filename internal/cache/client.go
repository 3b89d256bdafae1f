// Package cache provides typed read/write access to the Redis cache for
// synchronized entities.
//
// Layout (see Keys):
//   - collection keys `{prefix}::{season}` hold a hash keyed by each record's
//     natural key
//   - scoped keys `{prefix}::{season}::{scope}` hold per-scope sub-collections
//     the same way
//   - singular pointer keys hold one serialized record (e.g. current event)
//
// Collection writes are atomic: the delete + repopulate runs as a single
// Redis transaction, so a concurrent reader sees either the old snapshot or
// the new one, never a partially filled hash. A cached blob that fails to
// deserialize comes back as a deserialization-kind envelope; one that parses
// but fails the record's validity predicate is treated as not present. Both
// make the orchestrator fall back to the store.
package cache

import (
	"context"
	"time"

	"github.com/statloop/fplsync/internal/config"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// NewClient creates the shared Redis client. Connection failure is logged but
// does not block startup: every cached read has a store fallback, and a cold
// cache self-heals on the next sync.
func NewClient(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Address,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error().Err(err).Msg("Failed to connect to Redis, continuing without cache")
	} else {
		logger.Info().Msg("connected to redis")
	}

	return client
}
