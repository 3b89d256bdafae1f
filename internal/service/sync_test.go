package service

import (
	"context"
	"errors"
	"testing"

	"github.com/statloop/fplsync/internal/domain"
	"github.com/statloop/fplsync/internal/errs"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStoreGateway records what passed through it, keyed by scope ("" for the
// season-wide set).
type fakeStoreGateway struct {
	rows map[string][]domain.Team

	findErr   error
	resyncErr error

	resyncCalls int
}

func newFakeStoreGateway() *fakeStoreGateway {
	return &fakeStoreGateway{rows: make(map[string][]domain.Team)}
}

func (f *fakeStoreGateway) FindAll(ctx context.Context) ([]domain.Team, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.rows[""], nil
}

func (f *fakeStoreGateway) FindAllWhere(ctx context.Context, clause string, args ...any) ([]domain.Team, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.rows[clause], nil
}

func (f *fakeStoreGateway) FindByKey(ctx context.Context, keyValues ...any) (domain.Team, error) {
	if f.findErr != nil {
		return domain.Team{}, f.findErr
	}
	id := keyValues[0].(int)
	for _, team := range f.rows[""] {
		if team.ID == id {
			return team, nil
		}
	}
	return domain.Team{}, errs.New(errs.LayerStore, errs.KindNotFound, "teams not found")
}

func (f *fakeStoreGateway) ResyncAll(ctx context.Context, records []domain.Team) error {
	if f.resyncErr != nil {
		return f.resyncErr
	}
	f.resyncCalls++
	f.rows[""] = records
	return nil
}

func (f *fakeStoreGateway) ResyncWhere(ctx context.Context, clause string, args []any, records []domain.Team) error {
	if f.resyncErr != nil {
		return f.resyncErr
	}
	f.resyncCalls++
	f.rows[clause] = records
	return nil
}

// fakeCacheGateway is an in-memory CacheGateway with switchable failures.
type fakeCacheGateway struct {
	collections map[string][]domain.Team
	pointers    map[string]domain.Team

	readErr  error
	writeErr error

	writeCalls int
}

func newFakeCacheGateway() *fakeCacheGateway {
	return &fakeCacheGateway{
		collections: make(map[string][]domain.Team),
		pointers:    make(map[string]domain.Team),
	}
}

func (f *fakeCacheGateway) Read(ctx context.Context, scope string) ([]domain.Team, bool, error) {
	if f.readErr != nil {
		return nil, false, f.readErr
	}
	records, ok := f.collections[scope]
	return records, ok, nil
}

func (f *fakeCacheGateway) Write(ctx context.Context, scope string, records []domain.Team) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writeCalls++
	f.collections[scope] = records
	return nil
}

func (f *fakeCacheGateway) ReadOne(ctx context.Context, tag string) (domain.Team, bool, error) {
	if f.readErr != nil {
		return domain.Team{}, false, f.readErr
	}
	record, ok := f.pointers[tag]
	return record, ok, nil
}

func (f *fakeCacheGateway) WriteOne(ctx context.Context, tag string, record domain.Team) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.pointers[tag] = record
	return nil
}

func (f *fakeCacheGateway) Invalidate(ctx context.Context, scope string) error {
	delete(f.collections, scope)
	return nil
}

func eventScoped(scope string) (string, []any, error) {
	return "event_id = $1", []any{scope}, nil
}

func newTestSyncer(store *fakeStoreGateway, cache *fakeCacheGateway) *Syncer[domain.Team] {
	logger := zerolog.Nop()
	return NewSyncer[domain.Team]("teams", store, cache, eventScoped, &logger)
}

func teams(ids ...int) []domain.Team {
	out := make([]domain.Team, len(ids))
	for i, id := range ids {
		out[i] = domain.Team{ID: id, Name: "team"}
	}
	return out
}

func TestSyncWritesStoreThenCache(t *testing.T) {
	store := newFakeStoreGateway()
	cache := newFakeCacheGateway()
	syncer := newTestSyncer(store, cache)

	outcome, err := syncer.Sync(context.Background(), "", teams(1, 2))
	require.NoError(t, err)

	assert.Equal(t, 2, outcome.Count)
	assert.False(t, outcome.CacheDegraded)
	assert.Equal(t, teams(1, 2), store.rows[""])
	assert.Equal(t, teams(1, 2), cache.collections[""])
}

func TestSyncStoreFailureLeavesCacheUntouched(t *testing.T) {
	store := newFakeStoreGateway()
	store.resyncErr = errs.New(errs.LayerStore, errs.KindConnection, "db down")
	cache := newFakeCacheGateway()
	syncer := newTestSyncer(store, cache)

	_, err := syncer.Sync(context.Background(), "", teams(1))
	require.Error(t, err)

	// Data that did not pass through the store never reaches the cache.
	assert.Zero(t, cache.writeCalls)
	assert.True(t, errs.HasKind(err, errs.KindConnection))
}

func TestSyncCacheFailureIsDegradedNotFatal(t *testing.T) {
	store := newFakeStoreGateway()
	cache := newFakeCacheGateway()
	cache.writeErr = errors.New("redis gone")
	syncer := newTestSyncer(store, cache)

	outcome, err := syncer.Sync(context.Background(), "", teams(1, 2, 3))
	require.NoError(t, err)

	assert.True(t, outcome.CacheDegraded)
	assert.Equal(t, 3, outcome.Count)
	// The store mutation stands.
	assert.Equal(t, teams(1, 2, 3), store.rows[""])
}

func TestSyncScopedReplacesOnlyThatScope(t *testing.T) {
	store := newFakeStoreGateway()
	cache := newFakeCacheGateway()
	syncer := newTestSyncer(store, cache)
	ctx := context.Background()

	_, err := syncer.Sync(ctx, "", teams(1, 2))
	require.NoError(t, err)
	_, err = syncer.Sync(ctx, "7", teams(3))
	require.NoError(t, err)

	assert.Equal(t, teams(1, 2), store.rows[""])
	assert.Equal(t, teams(3), store.rows["event_id = $1"])
	assert.Equal(t, teams(1, 2), cache.collections[""])
	assert.Equal(t, teams(3), cache.collections["7"])
}

func TestReadWarmCacheSkipsStore(t *testing.T) {
	store := newFakeStoreGateway()
	store.findErr = errors.New("store must not be hit")
	cache := newFakeCacheGateway()
	cache.collections[""] = teams(1, 2)
	syncer := newTestSyncer(store, cache)

	got, err := syncer.Read(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, teams(1, 2), got)
}

func TestReadColdCacheFallsBackToStoreAndRefills(t *testing.T) {
	store := newFakeStoreGateway()
	store.rows[""] = teams(4, 5)
	cache := newFakeCacheGateway()
	syncer := newTestSyncer(store, cache)

	got, err := syncer.Read(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, teams(4, 5), got)
	// Best-effort refill happened.
	assert.Equal(t, teams(4, 5), cache.collections[""])
}

func TestReadCacheErrorDegradesToStore(t *testing.T) {
	store := newFakeStoreGateway()
	store.rows[""] = teams(9)
	cache := newFakeCacheGateway()
	cache.readErr = errs.New(errs.LayerCache, errs.KindDeserialization, "corrupt entry")
	syncer := newTestSyncer(store, cache)

	got, err := syncer.Read(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, teams(9), got)
}

func TestReadStoreFailureSurfacesServiceEnvelope(t *testing.T) {
	store := newFakeStoreGateway()
	store.findErr = errs.New(errs.LayerStore, errs.KindQuery, "bad query")
	cache := newFakeCacheGateway()
	syncer := newTestSyncer(store, cache)

	_, err := syncer.Read(context.Background(), "")
	require.Error(t, err)

	var envelope *errs.Error
	require.True(t, errors.As(err, &envelope))
	assert.Equal(t, errs.LayerService, envelope.Layer)
	// Store query kind maps to operation on the way up, and the original kind
	// stays findable in the chain.
	assert.True(t, errs.HasKind(err, errs.KindQuery))
}

func TestReadEmptyStoreDoesNotRefillCache(t *testing.T) {
	store := newFakeStoreGateway()
	cache := newFakeCacheGateway()
	syncer := newTestSyncer(store, cache)

	got, err := syncer.Read(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, cache.writeCalls)
}

func TestReadRefillFailureStillServesStoreData(t *testing.T) {
	store := newFakeStoreGateway()
	store.rows[""] = teams(1)
	cache := newFakeCacheGateway()
	cache.writeErr = errors.New("redis gone")
	syncer := newTestSyncer(store, cache)

	got, err := syncer.Read(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, teams(1), got)
}

func TestReadOneWarmCacheSkipsStore(t *testing.T) {
	store := newFakeStoreGateway()
	store.findErr = errors.New("store must not be hit")
	cache := newFakeCacheGateway()
	cache.pointers["7"] = domain.Team{ID: 7, Name: "cached"}
	syncer := newTestSyncer(store, cache)

	got, err := syncer.ReadOne(context.Background(), "7", 7)
	require.NoError(t, err)
	assert.Equal(t, "cached", got.Name)
}

func TestReadOneColdCacheFallsBackToStoreAndRefills(t *testing.T) {
	store := newFakeStoreGateway()
	store.rows[""] = teams(7)
	cache := newFakeCacheGateway()
	syncer := newTestSyncer(store, cache)

	got, err := syncer.ReadOne(context.Background(), "7", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, got.ID)
	// Best-effort refill under the same tag.
	assert.Equal(t, 7, cache.pointers["7"].ID)
}

func TestReadOneMissingRowSurfacesNotFound(t *testing.T) {
	store := newFakeStoreGateway()
	cache := newFakeCacheGateway()
	syncer := newTestSyncer(store, cache)

	_, err := syncer.ReadOne(context.Background(), "99", 99)
	require.Error(t, err)
	assert.True(t, errs.HasKind(err, errs.KindNotFound))

	var envelope *errs.Error
	require.True(t, errors.As(err, &envelope))
	assert.Equal(t, errs.LayerService, envelope.Layer)
}

func TestReadOneCacheErrorDegradesToStore(t *testing.T) {
	store := newFakeStoreGateway()
	store.rows[""] = teams(7)
	cache := newFakeCacheGateway()
	cache.readErr = errs.New(errs.LayerCache, errs.KindDeserialization, "corrupt entry")
	syncer := newTestSyncer(store, cache)

	got, err := syncer.ReadOne(context.Background(), "7", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, got.ID)
}

func TestPointerRoundTrip(t *testing.T) {
	store := newFakeStoreGateway()
	cache := newFakeCacheGateway()
	syncer := newTestSyncer(store, cache)
	ctx := context.Background()

	_, err := syncer.ReadPointer(ctx, "current")
	require.Error(t, err)
	assert.True(t, errs.HasKind(err, errs.KindNotFound))

	assert.True(t, syncer.WritePointer(ctx, "current", domain.Team{ID: 7}))

	got, err := syncer.ReadPointer(ctx, "current")
	require.NoError(t, err)
	assert.Equal(t, 7, got.ID)
}

func TestWritePointerFailureReportsDegraded(t *testing.T) {
	store := newFakeStoreGateway()
	cache := newFakeCacheGateway()
	cache.writeErr = errors.New("redis gone")
	syncer := newTestSyncer(store, cache)

	assert.False(t, syncer.WritePointer(context.Background(), "current", domain.Team{ID: 7}))
}

func TestScopedAccessWithoutScopeQueryIsValidationError(t *testing.T) {
	store := newFakeStoreGateway()
	cache := newFakeCacheGateway()
	logger := zerolog.Nop()
	syncer := NewSyncer[domain.Team]("teams", store, cache, nil, &logger)

	_, err := syncer.Read(context.Background(), "7")
	require.Error(t, err)
	assert.True(t, errs.HasKind(err, errs.KindValidation))
}
