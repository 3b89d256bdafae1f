// Package job provides background sync scheduling using Asynq.
//
// Asynq is a Redis-backed job queue: producers enqueue tasks through
// asynq.Client, a worker server consumes them with bounded concurrency, and
// Redis holds pending/retry/archived state. This package layers the sync
// semantics on top: deterministic task ids for deduplication, an exponential
// retry policy from config, and per-scope outcome tallies for fan-outs.
package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/statloop/fplsync/internal/config"
	"github.com/statloop/fplsync/internal/service"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

const queueName = "sync"

// enqueueClient is the slice of asynq.Client the service enqueues through.
// Narrowed to an interface so tests can drive the id-conflict path without
// Redis.
type enqueueClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// taskInspector is the slice of asynq.Inspector used for status reads.
type taskInspector interface {
	GetTaskInfo(queue, id string) (*asynq.TaskInfo, error)
	Close() error
}

// JobService holds the Asynq client (enqueue), server (worker execution),
// and inspector (status reads).
type JobService struct {
	client      enqueueClient
	server      *asynq.Server
	inspector   taskInspector
	coordinator *service.Coordinator
	cfg         *config.SyncConfig
	logger      *zerolog.Logger
}

// NewJobService creates a JobService wired to Redis from cfg.
//
// The worker pool size and the retry policy both come from the sync config:
// a failed task is retried up to MaxRetry times with capped exponential
// backoff, then parked in the archive where its id keeps deduplicating
// re-enqueues until the retention window lapses.
func NewJobService(cfg *config.Config, coordinator *service.Coordinator, logger *zerolog.Logger) *JobService {
	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Address}
	syncCfg := cfg.Sync

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: syncCfg.WorkerConcurrency,
		Queues: map[string]int{
			queueName: 1,
		},
		RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
			return RetryDelay(n, syncCfg.RetryBaseDelay(), syncCfg.RetryMaxDelay())
		},
		Logger: &asynqLogger{logger: logger},
	})

	return &JobService{
		client:      asynq.NewClient(redisOpt),
		server:      server,
		inspector:   asynq.NewInspector(redisOpt),
		coordinator: coordinator,
		cfg:         syncCfg,
		logger:      logger,
	}
}

// RetryDelay computes the wait before retry n (0-based):
// min(base * 2^n, max). The curve is exponential by contract; tests pin it.
func RetryDelay(n int, base, max time.Duration) time.Duration {
	delay := base << uint(n)
	if delay > max || delay <= 0 {
		return max
	}
	return delay
}

// Enqueue submits a sync job described by d.
//
// The task id is derived deterministically from (kind, scope, secondary), so
// enqueueing an identical descriptor while a prior job with that id is still
// pending, active, or within the retention window returns the existing job's
// handle instead of creating a second execution. Dedup is by id, never by
// payload content.
func (j *JobService) Enqueue(ctx context.Context, d Descriptor) (*Handle, error) {
	if d.TriggeredAt.IsZero() {
		d.TriggeredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}

	id := d.ID()
	info, err := j.client.EnqueueContext(ctx, asynq.NewTask(d.Kind, payload),
		asynq.TaskID(id),
		asynq.Queue(queueName),
		asynq.MaxRetry(j.cfg.MaxRetry),
		asynq.Retention(j.cfg.FailedJobRetention()),
	)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			state, stateErr := j.Status(id)
			if stateErr != nil {
				state = StatePending
			}
			j.logger.Debug().
				Str("job_id", id).
				Str("source", d.Source).
				Msg("duplicate sync request collapsed onto existing job")
			return &Handle{ID: id, State: state, Existing: true}, nil
		}
		return nil, err
	}

	j.logger.Info().
		Str("job_id", info.ID).
		Str("kind", d.Kind).
		Int("scope", d.Scope).
		Int("secondary", d.Secondary).
		Str("source", d.Source).
		Msg("sync job enqueued")

	return &Handle{ID: info.ID, State: StatePending}, nil
}

// ErrJobNotFound reports an unknown job id, or one whose retention window has
// already lapsed.
var ErrJobNotFound = asynq.ErrTaskNotFound

// Status reports a job's lifecycle state by id.
func (j *JobService) Status(jobID string) (string, error) {
	info, err := j.inspector.GetTaskInfo(queueName, jobID)
	if err != nil {
		return "", err
	}
	return mapTaskState(info.State), nil
}

// mapTaskState collapses asynq's task states onto the four job states the
// API exposes. Retry and scheduled both read as pending: the job will run
// again without caller intervention. Archived means the retry budget is
// exhausted.
func mapTaskState(state asynq.TaskState) string {
	switch state {
	case asynq.TaskStateActive:
		return StateActive
	case asynq.TaskStateCompleted:
		return StateCompleted
	case asynq.TaskStateArchived:
		return StateFailed
	default:
		return StatePending
	}
}

// Start registers task handlers and runs the worker server in the
// background. The returned error channel reports a server that failed to
// come up.
func (j *JobService) Start() <-chan error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeSyncBootstrap, j.handleBootstrap)
	mux.HandleFunc(TypeSyncFixtures, j.handleFixtures)
	mux.HandleFunc(TypeSyncLive, j.handleLive)
	mux.HandleFunc(TypeSyncValues, j.handleValues)
	mux.HandleFunc(TypeSyncEntry, j.handleEntry)
	mux.HandleFunc(TypeSyncTournament, j.handleTournament)

	j.logger.Info().
		Int("concurrency", j.cfg.WorkerConcurrency).
		Int("max_retry", j.cfg.MaxRetry).
		Msg("starting background job server")

	errCh := make(chan error, 1)
	go func() {
		if err := j.server.Run(mux); err != nil {
			errCh <- err
		}
	}()
	return errCh
}

// Stop gracefully stops the job server and closes client resources.
func (j *JobService) Stop() {
	j.logger.Info().Msg("stopping background job server")
	j.server.Shutdown()
	_ = j.client.Close()
	_ = j.inspector.Close()
}

// asynqLogger adapts zerolog to asynq's logger interface.
type asynqLogger struct {
	logger *zerolog.Logger
}

func (l *asynqLogger) Debug(args ...interface{}) { l.logger.Debug().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Info(args ...interface{})  { l.logger.Info().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Warn(args ...interface{})  { l.logger.Warn().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Error(args ...interface{}) { l.logger.Error().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Fatal(args ...interface{}) { l.logger.Fatal().Msg(fmt.Sprint(args...)) }
