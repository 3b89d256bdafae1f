package cache

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"time"

	"github.com/statloop/fplsync/internal/domain"
	"github.com/statloop/fplsync/internal/errs"
)

// Gateway is the typed cache gateway for one entity kind. Collections are
// stored as hashes keyed by each record's natural key; an empty scope
// addresses the season-wide collection, a non-empty scope a sub-collection
// (e.g. one event's live stats).
type Gateway[T domain.Record] struct {
	store Store
	keys  Keys
	ttl   time.Duration
}

// NewGateway builds a gateway for one entity kind. ttl of zero disables
// expiry; the entry then lives until the next resync replaces it.
func NewGateway[T domain.Record](store Store, keys Keys, ttl time.Duration) *Gateway[T] {
	return &Gateway[T]{store: store, keys: keys, ttl: ttl}
}

// Keys exposes the gateway's key layout, mainly for logging and tests.
func (g *Gateway[T]) Keys() Keys {
	return g.keys
}

// Read returns the cached collection for a scope.
//
// The boolean reports presence. Absent key -> not present. A field that fails
// to deserialize -> deserialization envelope (the caller falls back to the
// store). A field that parses but fails the record's validity predicate means
// the snapshot cannot be trusted, so the whole collection reads as not
// present rather than returning a partially valid set.
func (g *Gateway[T]) Read(ctx context.Context, scope string) ([]T, bool, error) {
	key := g.keys.For(scope)

	fields, err := g.store.HGetAll(ctx, key)
	if err != nil {
		return nil, false, wrapCacheErr("failed to read cache collection", key, err)
	}
	if len(fields) == 0 {
		return nil, false, nil
	}

	records := make([]T, 0, len(fields))
	for field, raw := range fields {
		var record T
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			return nil, false, errs.Wrap(errs.LayerCache, errs.KindDeserialization,
				"failed to deserialize cached entry", err).
				WithDetail("key", key).
				WithDetail("field", field)
		}
		if !record.Valid() {
			return nil, false, nil
		}
		records = append(records, record)
	}
	return records, true, nil
}

// Write atomically replaces a scope's collection with the given records.
// Records are keyed by their natural key, so duplicates collapse to the last
// occurrence, matching the store gateway's batch policy.
func (g *Gateway[T]) Write(ctx context.Context, scope string, records []T) error {
	key := g.keys.For(scope)

	fields := make(map[string]string, len(records))
	for _, record := range records {
		raw, err := json.Marshal(record)
		if err != nil {
			return errs.Wrap(errs.LayerCache, errs.KindSerialization,
				"failed to serialize record for cache", err).
				WithDetail("key", key).
				WithDetail("record", record.Key())
		}
		fields[record.Key()] = string(raw)
	}

	if err := g.store.HReplace(ctx, key, fields, g.ttl); err != nil {
		return wrapCacheErr("failed to write cache collection", key, err)
	}
	return nil
}

// ReadOne returns the single record stored under a pointer key (e.g. the
// current event). Corrupt or structurally invalid values read as not present
// after surfacing the appropriate envelope, mirroring Read.
func (g *Gateway[T]) ReadOne(ctx context.Context, tag string) (T, bool, error) {
	var zero T
	key := g.keys.Pointer(tag)

	raw, present, err := g.store.Get(ctx, key)
	if err != nil {
		return zero, false, wrapCacheErr("failed to read cache entry", key, err)
	}
	if !present {
		return zero, false, nil
	}

	var record T
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return zero, false, errs.Wrap(errs.LayerCache, errs.KindDeserialization,
			"failed to deserialize cached entry", err).
			WithDetail("key", key)
	}
	if !record.Valid() {
		return zero, false, nil
	}
	return record, true, nil
}

// WriteOne stores a single record under a pointer key.
func (g *Gateway[T]) WriteOne(ctx context.Context, tag string, record T) error {
	key := g.keys.Pointer(tag)

	raw, err := json.Marshal(record)
	if err != nil {
		return errs.Wrap(errs.LayerCache, errs.KindSerialization,
			"failed to serialize record for cache", err).
			WithDetail("key", key)
	}
	if err := g.store.Set(ctx, key, string(raw), g.ttl); err != nil {
		return wrapCacheErr("failed to write cache entry", key, err)
	}
	return nil
}

// Invalidate drops a scope's collection key.
func (g *Gateway[T]) Invalidate(ctx context.Context, scope string) error {
	key := g.keys.For(scope)
	if err := g.store.Del(ctx, key); err != nil {
		return wrapCacheErr("failed to invalidate cache key", key, err)
	}
	return nil
}

// wrapCacheErr classifies a raw cache transport error into a cache-layer
// envelope: unreachable cache -> connection kind, anything else -> operation.
func wrapCacheErr(message, key string, err error) error {
	kind := errs.KindOperation
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		kind = errs.KindConnection
	}
	return errs.Wrap(errs.LayerCache, kind, message, err).WithDetail("key", key)
}
