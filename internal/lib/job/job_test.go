package job

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/statloop/fplsync/internal/config"
	"github.com/statloop/fplsync/internal/domain"
	"github.com/statloop/fplsync/internal/lib/fpl"
	"github.com/statloop/fplsync/internal/service"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskIDFormat(t *testing.T) {
	tests := []struct {
		name      string
		kind      string
		scope     int
		secondary int
		want      string
	}{
		{"unscoped", TypeSyncBootstrap, 0, 0, "sync:bootstrap:coordinator"},
		{"scoped", TypeSyncLive, 7, 0, "sync:live:7:coordinator"},
		{"scoped with secondary", TypeSyncTournament, 7, 42, "sync:tournament:7:t42:coordinator"},
		{"secondary only", TypeSyncTournament, 0, 42, "sync:tournament:t42:coordinator"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TaskID(tt.kind, tt.scope, tt.secondary, "coordinator"))
		})
	}
}

func TestTaskIDDistinctness(t *testing.T) {
	ids := []string{
		TaskID(TypeSyncLive, 0, 0, "coordinator"),
		TaskID(TypeSyncLive, 7, 0, "coordinator"),
		TaskID(TypeSyncLive, 8, 0, "coordinator"),
		TaskID(TypeSyncFixtures, 7, 0, "coordinator"),
		TaskID(TypeSyncTournament, 7, 42, "coordinator"),
		TaskID(TypeSyncTournament, 7, 43, "coordinator"),
	}

	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestDescriptorIDIgnoresTriggerMetadata(t *testing.T) {
	manual := Descriptor{Kind: TypeSyncLive, Scope: 7, Source: SourceManual, TriggeredAt: time.Now()}
	cron := Descriptor{Kind: TypeSyncLive, Scope: 7, Source: SourceCron, TriggeredAt: time.Now().Add(time.Hour)}

	// Same work, different trigger: must deduplicate onto the same id.
	assert.Equal(t, manual.ID(), cron.ID())
}

func TestRetryDelayExponentialCurve(t *testing.T) {
	base := time.Second
	max := 60 * time.Second

	assert.Equal(t, 1*time.Second, RetryDelay(0, base, max))
	assert.Equal(t, 2*time.Second, RetryDelay(1, base, max))
	assert.Equal(t, 4*time.Second, RetryDelay(2, base, max))
	assert.Equal(t, 32*time.Second, RetryDelay(5, base, max))

	// Strictly increasing until the cap.
	for n := 1; n < 6; n++ {
		assert.Greater(t, RetryDelay(n, base, max), RetryDelay(n-1, base, max))
	}
}

func TestRetryDelayCapped(t *testing.T) {
	base := time.Second
	max := 60 * time.Second

	assert.Equal(t, max, RetryDelay(6, base, max))
	assert.Equal(t, max, RetryDelay(20, base, max))
	// Shift overflow must not produce a negative or zero delay.
	assert.Equal(t, max, RetryDelay(63, base, max))
}

func TestMapTaskState(t *testing.T) {
	assert.Equal(t, StateActive, mapTaskState(asynq.TaskStateActive))
	assert.Equal(t, StateCompleted, mapTaskState(asynq.TaskStateCompleted))
	assert.Equal(t, StateFailed, mapTaskState(asynq.TaskStateArchived))
	assert.Equal(t, StatePending, mapTaskState(asynq.TaskStatePending))
	assert.Equal(t, StatePending, mapTaskState(asynq.TaskStateRetry))
	assert.Equal(t, StatePending, mapTaskState(asynq.TaskStateScheduled))
}

func TestTallyTotal(t *testing.T) {
	tally := Tally{Synced: 3, Skipped: 1, Errors: 2}
	assert.Equal(t, 6, tally.Total())
}

// --- enqueue dedup -----------------------------------------------------------

// fakeEnqueuer accepts the first enqueue per task id and reports every later
// one as an id conflict, the way asynq does while the task is pending, active,
// or inside its retention window.
type fakeEnqueuer struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newFakeEnqueuer() *fakeEnqueuer {
	return &fakeEnqueuer{seen: make(map[string]bool)}
}

func (f *fakeEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	var id string
	for _, opt := range opts {
		if opt.Type() == asynq.TaskIDOpt {
			id = opt.Value().(string)
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen[id] {
		return nil, asynq.ErrTaskIDConflict
	}
	f.seen[id] = true
	return &asynq.TaskInfo{ID: id, Queue: queueName, State: asynq.TaskStatePending}, nil
}

func (f *fakeEnqueuer) Close() error { return nil }

type fakeInspector struct {
	state asynq.TaskState
}

func (f *fakeInspector) GetTaskInfo(queue, id string) (*asynq.TaskInfo, error) {
	return &asynq.TaskInfo{ID: id, Queue: queue, State: f.state}, nil
}

func (f *fakeInspector) Close() error { return nil }

func newEnqueueJobService(client enqueueClient, inspector taskInspector) *JobService {
	logger := zerolog.Nop()
	return &JobService{
		client:    client,
		inspector: inspector,
		cfg:       config.DefaultSyncConfig(),
		logger:    &logger,
	}
}

func TestEnqueueCollapsesDuplicateOntoExistingHandle(t *testing.T) {
	j := newEnqueueJobService(newFakeEnqueuer(), &fakeInspector{state: asynq.TaskStateActive})

	first, err := j.Enqueue(context.Background(), Descriptor{Kind: TypeSyncLive, Scope: 7, Source: SourceManual})
	require.NoError(t, err)
	assert.False(t, first.Existing)

	// Same work from another trigger while the first is active: no second
	// execution, the existing job's handle comes back with its live state.
	second, err := j.Enqueue(context.Background(), Descriptor{Kind: TypeSyncLive, Scope: 7, Source: SourceCron})
	require.NoError(t, err)
	assert.True(t, second.Existing)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, StateActive, second.State)
}

func TestEnqueueConcurrentDuplicatesYieldOneExecution(t *testing.T) {
	client := newFakeEnqueuer()
	j := newEnqueueJobService(client, &fakeInspector{state: asynq.TaskStatePending})
	d := Descriptor{Kind: TypeSyncFixtures, Scope: 3, Source: SourceManual}

	const n = 8
	handles := make([]*Handle, n)
	failures := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		i := i
		go func() {
			defer wg.Done()
			handles[i], failures[i] = j.Enqueue(context.Background(), d)
		}()
	}
	wg.Wait()

	fresh := 0
	for i := 0; i < n; i++ {
		require.NoError(t, failures[i])
		require.NotNil(t, handles[i])
		assert.Equal(t, d.ID(), handles[i].ID)
		if !handles[i].Existing {
			fresh++
		}
	}
	assert.Equal(t, 1, fresh, "exactly one enqueue wins; the rest reuse its handle")
	assert.Len(t, client.seen, 1)
}

func TestEnqueueDistinctScopesDoNotCollapse(t *testing.T) {
	client := newFakeEnqueuer()
	j := newEnqueueJobService(client, &fakeInspector{state: asynq.TaskStatePending})

	a, err := j.Enqueue(context.Background(), Descriptor{Kind: TypeSyncLive, Scope: 7, Source: SourceManual})
	require.NoError(t, err)
	b, err := j.Enqueue(context.Background(), Descriptor{Kind: TypeSyncLive, Scope: 8, Source: SourceManual})
	require.NoError(t, err)

	assert.False(t, a.Existing)
	assert.False(t, b.Existing)
	assert.NotEqual(t, a.ID, b.ID)
}

// --- fan-out -----------------------------------------------------------------

// memStore is a concurrency-safe in-memory StoreGateway for fan-out tests.
type memStore[T domain.Record] struct {
	mu   sync.Mutex
	rows map[string][]T
}

func newMemStore[T domain.Record]() *memStore[T] {
	return &memStore[T]{rows: make(map[string][]T)}
}

func (m *memStore[T]) FindAll(ctx context.Context) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[""], nil
}

func (m *memStore[T]) FindAllWhere(ctx context.Context, clause string, args ...any) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[clause], nil
}

func (m *memStore[T]) FindByKey(ctx context.Context, keyValues ...any) (T, error) {
	var zero T
	return zero, errors.New("not used")
}

func (m *memStore[T]) ResyncAll(ctx context.Context, records []T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[""] = records
	return nil
}

func (m *memStore[T]) ResyncWhere(ctx context.Context, clause string, args []any, records []T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[clause] = records
	return nil
}

// memCache is a concurrency-safe in-memory CacheGateway.
type memCache[T domain.Record] struct {
	mu          sync.Mutex
	collections map[string][]T
	pointers    map[string]T
}

func newMemCache[T domain.Record]() *memCache[T] {
	return &memCache[T]{
		collections: make(map[string][]T),
		pointers:    make(map[string]T),
	}
}

func (m *memCache[T]) Read(ctx context.Context, scope string) ([]T, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	records, ok := m.collections[scope]
	return records, ok, nil
}

func (m *memCache[T]) Write(ctx context.Context, scope string, records []T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[scope] = records
	return nil
}

func (m *memCache[T]) ReadOne(ctx context.Context, tag string) (T, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.pointers[tag]
	return record, ok, nil
}

func (m *memCache[T]) WriteOne(ctx context.Context, tag string, record T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pointers[tag] = record
	return nil
}

func (m *memCache[T]) Invalidate(ctx context.Context, scope string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.collections, scope)
	return nil
}

// fanOutUpstream fails picks for chosen entries and tracks peak concurrency.
type fanOutUpstream struct {
	failEntries map[int]bool

	mu      sync.Mutex
	current int
	peak    int
}

func (u *fanOutUpstream) enter() {
	u.mu.Lock()
	u.current++
	if u.current > u.peak {
		u.peak = u.current
	}
	u.mu.Unlock()
}

func (u *fanOutUpstream) leave() {
	u.mu.Lock()
	u.current--
	u.mu.Unlock()
}

func (u *fanOutUpstream) Bootstrap(ctx context.Context) (*fpl.Bootstrap, error) {
	return nil, errors.New("not used")
}

func (u *fanOutUpstream) Fixtures(ctx context.Context, eventID int) ([]fpl.FixturePayload, error) {
	return nil, errors.New("not used")
}

func (u *fanOutUpstream) Live(ctx context.Context, eventID int) (*fpl.Live, error) {
	return nil, errors.New("not used")
}

func (u *fanOutUpstream) Picks(ctx context.Context, entryID, eventID int) (*fpl.EntryPicks, error) {
	u.enter()
	defer u.leave()
	time.Sleep(2 * time.Millisecond)

	if u.failEntries[entryID] {
		return nil, errors.New("upstream 500")
	}
	return &fpl.EntryPicks{
		Picks: []fpl.PickPayload{{Element: 100 + entryID, Position: 1, Multiplier: 1}},
	}, nil
}

func (u *fanOutUpstream) History(ctx context.Context, entryID int) (*fpl.EntryHistory, error) {
	return &fpl.EntryHistory{
		Current: []fpl.EntryEventHistory{{Event: 1, Points: 50, TotalPoints: 50}},
	}, nil
}

func newFanOutJobService(upstream *fanOutUpstream, limit int) *JobService {
	logger := zerolog.Nop()

	coordinator := service.NewCoordinator(upstream, &logger)

	entryScope := func(scope string) (string, []any, error) {
		return "entry_id = $1", []any{scope}, nil
	}
	coordinator.Picks = service.NewSyncer[domain.Pick]("picks",
		newMemStore[domain.Pick](), newMemCache[domain.Pick](), entryScope, &logger)
	coordinator.Results = service.NewSyncer[domain.Result]("results",
		newMemStore[domain.Result](), newMemCache[domain.Result](), entryScope, &logger)

	cfg := config.DefaultSyncConfig()
	cfg.FanOutLimit = limit

	return &JobService{
		coordinator: coordinator,
		cfg:         cfg,
		logger:      &logger,
	}
}

func entries(ids ...int) []domain.Entry {
	out := make([]domain.Entry, len(ids))
	for i, id := range ids {
		out[i] = domain.Entry{ID: id, TournamentID: 1}
	}
	return out
}

func TestFanOutEntriesTallyBuckets(t *testing.T) {
	upstream := &fanOutUpstream{failEntries: map[int]bool{3: true}}
	j := newFanOutJobService(upstream, 4)

	all := append(entries(1, 2, 3), domain.Entry{ID: 0}) // ID 0 is invalid

	tally, failures := j.fanOutEntries(context.Background(), all, 5)

	assert.Equal(t, 2, tally.Synced)
	assert.Equal(t, 1, tally.Skipped)
	assert.Equal(t, 1, tally.Errors)
	assert.Equal(t, len(all), tally.Total())

	require.Len(t, failures, 1)
	assert.Contains(t, failures, 3)
}

func TestFanOutEntriesHonorsConcurrencyBound(t *testing.T) {
	upstream := &fanOutUpstream{}
	j := newFanOutJobService(upstream, 2)

	tally, failures := j.fanOutEntries(context.Background(), entries(1, 2, 3, 4, 5, 6, 7, 8), 5)

	assert.Equal(t, 8, tally.Synced)
	assert.Empty(t, failures)
	assert.LessOrEqual(t, upstream.peak, 2, "fan-out must not exceed the configured limit")
	assert.Greater(t, upstream.peak, 0)
}

func TestFanOutEntriesOneFailureDoesNotCancelSiblings(t *testing.T) {
	upstream := &fanOutUpstream{failEntries: map[int]bool{1: true}}
	j := newFanOutJobService(upstream, 1)

	// Limit 1 forces sequential execution; the first entry fails and every
	// later one must still run.
	tally, _ := j.fanOutEntries(context.Background(), entries(1, 2, 3), 5)

	assert.Equal(t, 1, tally.Errors)
	assert.Equal(t, 2, tally.Synced)
}
