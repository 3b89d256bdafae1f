package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/statloop/fplsync/internal/domain"
	"github.com/statloop/fplsync/internal/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store for gateway tests. It mirrors the real
// adapter's semantics: absent keys are empty, HReplace swaps the whole hash.
type fakeStore struct {
	values map[string]string
	hashes map[string]map[string]string

	replaceCalls int
	failWith     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		values: make(map[string]string),
		hashes: make(map[string]map[string]string),
	}
}

func (f *fakeStore) Get(ctx context.Context, key string) (string, bool, error) {
	if f.failWith != nil {
		return "", false, f.failWith
	}
	val, ok := f.values[key]
	return val, ok, nil
}

func (f *fakeStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.values[key] = value
	return nil
}

func (f *fakeStore) Del(ctx context.Context, key string) error {
	if f.failWith != nil {
		return f.failWith
	}
	delete(f.values, key)
	delete(f.hashes, key)
	return nil
}

func (f *fakeStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := make(map[string]string, len(f.hashes[key]))
	for k, v := range f.hashes[key] {
		out[k] = v
	}
	return out, nil
}

func (f *fakeStore) HReplace(ctx context.Context, key string, fields map[string]string, ttl time.Duration) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.replaceCalls++
	fresh := make(map[string]string, len(fields))
	for k, v := range fields {
		fresh[k] = v
	}
	f.hashes[key] = fresh
	return nil
}

func testGateway(store Store) *Gateway[domain.Team] {
	return NewGateway[domain.Team](store, Keys{Prefix: "teams", Season: "2025-26"}, time.Minute)
}

func TestGatewayWriteThenRead(t *testing.T) {
	store := newFakeStore()
	gw := testGateway(store)
	ctx := context.Background()

	teams := []domain.Team{
		{ID: 1, Name: "Arsenal", ShortName: "ARS"},
		{ID: 2, Name: "Villa", ShortName: "AVL"},
	}

	require.NoError(t, gw.Write(ctx, "", teams))

	got, present, err := gw.Read(ctx, "")
	require.NoError(t, err)
	require.True(t, present)
	assert.ElementsMatch(t, teams, got)
}

func TestGatewayReadAbsentKeyIsMiss(t *testing.T) {
	gw := testGateway(newFakeStore())

	got, present, err := gw.Read(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, present)
	assert.Nil(t, got)
}

func TestGatewayReadCorruptEntry(t *testing.T) {
	store := newFakeStore()
	gw := testGateway(store)
	key := gw.Keys().Collection()

	store.hashes[key] = map[string]string{"1": "{not json"}

	_, present, err := gw.Read(context.Background(), "")
	assert.False(t, present)
	require.Error(t, err)
	assert.True(t, errs.HasKind(err, errs.KindDeserialization))
}

func TestGatewayReadInvalidRecordIsMiss(t *testing.T) {
	store := newFakeStore()
	gw := testGateway(store)
	key := gw.Keys().Collection()

	// Parses fine but fails the validity predicate (ID 0): the whole snapshot
	// is untrusted and reads as a miss, not as a partial collection.
	store.hashes[key] = map[string]string{
		"1": `{"id":1,"name":"Arsenal"}`,
		"0": `{"id":0,"name":"ghost"}`,
	}

	_, present, err := gw.Read(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, present)
}

func TestGatewayWriteReplacesWholeCollection(t *testing.T) {
	store := newFakeStore()
	gw := testGateway(store)
	ctx := context.Background()

	require.NoError(t, gw.Write(ctx, "", []domain.Team{{ID: 1, Name: "Arsenal"}, {ID: 2, Name: "Villa"}}))
	require.NoError(t, gw.Write(ctx, "", []domain.Team{{ID: 3, Name: "Brentford"}}))

	got, present, err := gw.Read(ctx, "")
	require.NoError(t, err)
	require.True(t, present)
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].ID)
	assert.Equal(t, 2, store.replaceCalls)
}

func TestGatewayWriteDuplicateKeysLastWins(t *testing.T) {
	store := newFakeStore()
	gw := testGateway(store)
	ctx := context.Background()

	require.NoError(t, gw.Write(ctx, "", []domain.Team{
		{ID: 1, Name: "stale"},
		{ID: 1, Name: "fresh"},
	}))

	got, present, err := gw.Read(ctx, "")
	require.NoError(t, err)
	require.True(t, present)
	require.Len(t, got, 1)
	assert.Equal(t, "fresh", got[0].Name)
}

func TestGatewayScopedCollectionsAreIndependent(t *testing.T) {
	store := newFakeStore()
	gw := testGateway(store)
	ctx := context.Background()

	require.NoError(t, gw.Write(ctx, "7", []domain.Team{{ID: 1, Name: "scoped"}}))

	_, present, err := gw.Read(ctx, "")
	require.NoError(t, err)
	assert.False(t, present, "season-wide collection must stay untouched")

	got, present, err := gw.Read(ctx, "7")
	require.NoError(t, err)
	require.True(t, present)
	assert.Equal(t, "scoped", got[0].Name)
}

func TestGatewayPointerRoundTrip(t *testing.T) {
	store := newFakeStore()
	gw := testGateway(store)
	ctx := context.Background()

	_, present, err := gw.ReadOne(ctx, "current")
	require.NoError(t, err)
	require.False(t, present)

	require.NoError(t, gw.WriteOne(ctx, "current", domain.Team{ID: 9, Name: "pointer"}))

	got, present, err := gw.ReadOne(ctx, "current")
	require.NoError(t, err)
	require.True(t, present)
	assert.Equal(t, 9, got.ID)
}

func TestGatewayPointerCorruptValue(t *testing.T) {
	store := newFakeStore()
	gw := testGateway(store)

	store.values[gw.Keys().Pointer("current")] = "{broken"

	_, present, err := gw.ReadOne(context.Background(), "current")
	assert.False(t, present)
	assert.True(t, errs.HasKind(err, errs.KindDeserialization))
}

func TestGatewayTransportErrorsAreOperationKind(t *testing.T) {
	store := newFakeStore()
	store.failWith = errors.New("broken pipe")
	gw := testGateway(store)

	_, _, err := gw.Read(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errs.HasKind(err, errs.KindOperation))

	err = gw.Write(context.Background(), "", []domain.Team{{ID: 1}})
	require.Error(t, err)
	assert.True(t, errs.HasKind(err, errs.KindOperation))
}

func TestGatewayDeadlineIsConnectionKind(t *testing.T) {
	store := newFakeStore()
	store.failWith = context.DeadlineExceeded
	gw := testGateway(store)

	_, _, err := gw.Read(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errs.HasKind(err, errs.KindConnection))
}

func TestGatewayInvalidate(t *testing.T) {
	store := newFakeStore()
	gw := testGateway(store)
	ctx := context.Background()

	require.NoError(t, gw.Write(ctx, "", []domain.Team{{ID: 1}}))
	require.NoError(t, gw.Invalidate(ctx, ""))

	_, present, err := gw.Read(ctx, "")
	require.NoError(t, err)
	assert.False(t, present)
}
