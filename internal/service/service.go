// Package service contains the synchronization core: the generic cache-aside
// orchestrator (Syncer) and the Coordinator that drives upstream fetch ->
// transform -> sync pipelines per entity kind.
//
// The orchestrator owns the consistency discipline between the two gateways:
// reads are cache-first with store fallback and best-effort refill; sync
// writes go to the store first and mirror into the cache only after the store
// commit, so the cache never holds data that did not pass through the store.
package service

import (
	"context"

	"github.com/statloop/fplsync/internal/domain"
)

// StoreGateway is the slice of the repository surface the orchestrator needs.
// Declared here so tests can drive the Syncer with fakes.
type StoreGateway[T domain.Record] interface {
	FindAll(ctx context.Context) ([]T, error)
	FindAllWhere(ctx context.Context, clause string, args ...any) ([]T, error)
	FindByKey(ctx context.Context, keyValues ...any) (T, error)
	ResyncAll(ctx context.Context, records []T) error
	ResyncWhere(ctx context.Context, clause string, args []any, records []T) error
}

// CacheGateway is the slice of the cache surface the orchestrator needs.
type CacheGateway[T domain.Record] interface {
	Read(ctx context.Context, scope string) ([]T, bool, error)
	Write(ctx context.Context, scope string, records []T) error
	ReadOne(ctx context.Context, tag string) (T, bool, error)
	WriteOne(ctx context.Context, tag string, record T) error
	Invalidate(ctx context.Context, scope string) error
}

// ScopeQuery maps a scope string onto the store filter that selects the same
// rows the scoped cache key holds (e.g. "5" -> "event_id = $1", [5]).
// Entities without sub-scopes leave it nil; for those only the empty scope
// (the full collection) is valid.
type ScopeQuery func(scope string) (clause string, args []any, err error)
