package service

import (
	"context"
	"fmt"

	"github.com/statloop/fplsync/internal/domain"
	"github.com/statloop/fplsync/internal/errs"

	"github.com/rs/zerolog"
)

// Syncer is the cache-aside orchestrator for one entity kind. Per scope it
// moves between three states: cold (no cache entry), warm (valid cache
// entry), and refreshing (a store read / cache write in flight).
type Syncer[T domain.Record] struct {
	name       string
	store      StoreGateway[T]
	cache      CacheGateway[T]
	scopeQuery ScopeQuery
	logger     *zerolog.Logger
}

// Outcome reports what a Sync call did. CacheDegraded is set when the store
// write succeeded but the cache mirror failed; the store mutation stands and
// the next cold read self-heals the cache.
type Outcome struct {
	Entity        string
	Scope         string
	Count         int
	CacheDegraded bool
}

// NewSyncer builds the orchestrator for one entity kind. scopeQuery may be
// nil for entities that only have the season-wide collection.
func NewSyncer[T domain.Record](name string, store StoreGateway[T], cache CacheGateway[T], scopeQuery ScopeQuery, logger *zerolog.Logger) *Syncer[T] {
	return &Syncer[T]{
		name:       name,
		store:      store,
		cache:      cache,
		scopeQuery: scopeQuery,
		logger:     logger,
	}
}

// Read is the read-through path.
//
// Warm: a structurally valid cache entry is returned as-is. Cold: the store
// is read and the result written back to the cache best-effort (a cache-write
// failure is logged, not returned — the store value is still served). Any
// cache read failure, including a corrupt entry, degrades to a store read;
// cache errors never fail a read.
func (s *Syncer[T]) Read(ctx context.Context, scope string) ([]T, error) {
	cached, warm, err := s.cache.Read(ctx, scope)
	if err != nil {
		// Deserialization failures and unreachable cache are both treated
		// as a miss on the read path (§ propagation policy); keep the
		// translated envelope in the log for diagnostics.
		s.logger.Warn().
			Err(errs.CacheToDomain(err)).
			Str("entity", s.name).
			Str("scope", scope).
			Msg("cache read failed, falling back to store")
	}
	if warm {
		return cached, nil
	}

	records, err := s.readStore(ctx, scope)
	if err != nil {
		return nil, errs.DomainToService(errs.StoreToDomain(err))
	}

	if len(records) > 0 {
		if err := s.cache.Write(ctx, scope, records); err != nil {
			s.logger.Warn().
				Err(errs.CacheToDomain(err)).
				Str("entity", s.name).
				Str("scope", scope).
				Msg("cache refill failed after store read")
		}
	}

	return records, nil
}

// Sync is the write-through path for one scope's freshly transformed records.
//
// The store write always comes first: a full delete+upsert of the scope in
// one transaction, so stale rows for the scope are gone after commit. Only on
// store success is the same data mirrored into the cache. A store failure
// leaves the cache untouched and aborts the sync; a cache failure after store
// success is a degraded (non-fatal) outcome.
func (s *Syncer[T]) Sync(ctx context.Context, scope string, records []T) (*Outcome, error) {
	outcome := &Outcome{Entity: s.name, Scope: scope, Count: len(records)}

	if err := s.writeStore(ctx, scope, records); err != nil {
		return nil, errs.DomainToService(errs.StoreToDomain(err))
	}

	if err := s.cache.Write(ctx, scope, records); err != nil {
		outcome.CacheDegraded = true
		s.logger.Warn().
			Err(errs.CacheToDomain(err)).
			Str("entity", s.name).
			Str("scope", scope).
			Msg("cache write failed after store commit, cache degraded")
	}

	s.logger.Info().
		Str("entity", s.name).
		Str("scope", scope).
		Int("count", outcome.Count).
		Bool("cache_degraded", outcome.CacheDegraded).
		Msg("scope synchronized")

	return outcome, nil
}

// ReadOne is the read-through path for a single record looked up by natural
// key. The tag doubles as the record's cache key; keyValues feed the store
// lookup (one value per key column, in order). Cache failures degrade to the
// store like Read; a missing row surfaces the store's not-found envelope.
func (s *Syncer[T]) ReadOne(ctx context.Context, tag string, keyValues ...any) (T, error) {
	var zero T

	record, present, err := s.cache.ReadOne(ctx, tag)
	if err != nil {
		s.logger.Warn().
			Err(errs.CacheToDomain(err)).
			Str("entity", s.name).
			Str("tag", tag).
			Msg("cache read failed, falling back to store")
	}
	if present {
		return record, nil
	}

	record, err = s.store.FindByKey(ctx, keyValues...)
	if err != nil {
		return zero, errs.DomainToService(errs.StoreToDomain(err))
	}

	if err := s.cache.WriteOne(ctx, tag, record); err != nil {
		s.logger.Warn().
			Err(errs.CacheToDomain(err)).
			Str("entity", s.name).
			Str("tag", tag).
			Msg("cache refill failed after store read")
	}
	return record, nil
}

// ReadPointer serves a singular pointer entry (e.g. the current event),
// cache-first with no store fallback of its own: pointer keys are derived
// data rewritten on every sync, so a miss just reports not-found.
func (s *Syncer[T]) ReadPointer(ctx context.Context, tag string) (T, error) {
	var zero T

	record, present, err := s.cache.ReadOne(ctx, tag)
	if err != nil {
		s.logger.Warn().
			Err(errs.CacheToDomain(err)).
			Str("entity", s.name).
			Str("tag", tag).
			Msg("pointer read failed")
	}
	if !present {
		return zero, errs.DomainToService(
			errs.New(errs.LayerDomain, errs.KindNotFound, fmt.Sprintf("no %s pointer for %q", s.name, tag)))
	}
	return record, nil
}

// WritePointer mirrors a singular record into its pointer key. Callers only
// invoke it with records that just went through Sync, preserving the
// store-first rule. Failures are best-effort like any cache-after-store write.
func (s *Syncer[T]) WritePointer(ctx context.Context, tag string, record T) bool {
	if err := s.cache.WriteOne(ctx, tag, record); err != nil {
		s.logger.Warn().
			Err(errs.CacheToDomain(err)).
			Str("entity", s.name).
			Str("tag", tag).
			Msg("pointer write failed, cache degraded")
		return false
	}
	return true
}

func (s *Syncer[T]) readStore(ctx context.Context, scope string) ([]T, error) {
	if scope == "" {
		return s.store.FindAll(ctx)
	}
	clause, args, err := s.resolveScope(scope)
	if err != nil {
		return nil, err
	}
	return s.store.FindAllWhere(ctx, clause, args...)
}

func (s *Syncer[T]) writeStore(ctx context.Context, scope string, records []T) error {
	if scope == "" {
		return s.store.ResyncAll(ctx, records)
	}
	clause, args, err := s.resolveScope(scope)
	if err != nil {
		return err
	}
	return s.store.ResyncWhere(ctx, clause, args, records)
}

func (s *Syncer[T]) resolveScope(scope string) (string, []any, error) {
	if s.scopeQuery == nil {
		return "", nil, errs.New(errs.LayerDomain, errs.KindValidation,
			fmt.Sprintf("%s does not support scoped access", s.name)).
			WithDetail("scope", scope)
	}
	clause, args, err := s.scopeQuery(scope)
	if err != nil {
		return "", nil, errs.Wrap(errs.LayerDomain, errs.KindValidation,
			fmt.Sprintf("invalid %s scope %q", s.name, scope), err)
	}
	return clause, args, nil
}
