package job

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Cron drives the periodic coordinator sync. Scheduled firings go through the
// same Enqueue path as manual triggers, so an overdue cron tick colliding
// with an in-flight manual sync collapses onto the existing job.
type Cron struct {
	cron   *cron.Cron
	jobs   *JobService
	logger *zerolog.Logger
}

// NewCron registers the periodic sync schedule. An empty spec disables the
// cron entirely; callers still get a Cron whose Start/Stop are no-ops.
func NewCron(spec string, jobs *JobService, logger *zerolog.Logger) (*Cron, error) {
	c := &Cron{
		cron:   cron.New(),
		jobs:   jobs,
		logger: logger,
	}
	if spec == "" {
		return c, nil
	}

	_, err := c.cron.AddFunc(spec, c.tick)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// tick enqueues the periodic sync set: bootstrap statics plus the current
// event's live stats and fixtures. Scope 0 lets the handlers resolve the
// current event at execution time.
func (c *Cron) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now().UTC()
	for _, kind := range []string{TypeSyncBootstrap, TypeSyncLive, TypeSyncFixtures} {
		d := Descriptor{Kind: kind, Source: SourceCron, TriggeredAt: now}
		if _, err := c.jobs.Enqueue(ctx, d); err != nil {
			c.logger.Error().Err(err).Str("kind", kind).Msg("cron enqueue failed")
		}
	}
}

// Start begins the schedule.
func (c *Cron) Start() {
	c.cron.Start()
}

// Stop halts the schedule and waits for a running tick to finish.
func (c *Cron) Stop() {
	ctx := c.cron.Stop()
	<-ctx.Done()
}
