package job

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/statloop/fplsync/internal/domain"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"
)

// Task handlers. Returning an error makes Asynq schedule a retry under the
// configured backoff policy; exhausting the budget archives the task as
// failed. Handlers therefore only return an error when the whole unit of
// work failed — a partially failed fan-out reports per-scope outcomes and
// completes, since the succeeded scopes must not be redone wholesale.

func (j *JobService) handleBootstrap(ctx context.Context, t *asynq.Task) error {
	d, err := decodeDescriptor(t)
	if err != nil {
		return err
	}

	outcomes, err := j.coordinator.SyncBootstrap(ctx)
	if err != nil {
		j.logger.Error().Err(err).Str("source", d.Source).Msg("bootstrap sync failed")
		return err
	}

	for _, outcome := range outcomes {
		j.logger.Info().
			Str("entity", outcome.Entity).
			Int("count", outcome.Count).
			Bool("cache_degraded", outcome.CacheDegraded).
			Str("source", d.Source).
			Msg("bootstrap entity synchronized")
	}
	return nil
}

func (j *JobService) handleFixtures(ctx context.Context, t *asynq.Task) error {
	d, err := decodeDescriptor(t)
	if err != nil {
		return err
	}
	eventID, err := j.resolveEvent(ctx, d.Scope)
	if err != nil {
		return err
	}

	_, err = j.coordinator.SyncFixtures(ctx, eventID)
	if err != nil {
		j.logger.Error().Err(err).Int("event_id", eventID).Msg("fixtures sync failed")
	}
	return err
}

func (j *JobService) handleLive(ctx context.Context, t *asynq.Task) error {
	d, err := decodeDescriptor(t)
	if err != nil {
		return err
	}
	eventID, err := j.resolveEvent(ctx, d.Scope)
	if err != nil {
		return err
	}

	_, err = j.coordinator.SyncLive(ctx, eventID)
	if err != nil {
		j.logger.Error().Err(err).Int("event_id", eventID).Msg("live stats sync failed")
	}
	return err
}

func (j *JobService) handleValues(ctx context.Context, t *asynq.Task) error {
	d, err := decodeDescriptor(t)
	if err != nil {
		return err
	}
	eventID, err := j.resolveEvent(ctx, d.Scope)
	if err != nil {
		return err
	}

	_, err = j.coordinator.SyncValues(ctx, eventID)
	if err != nil {
		j.logger.Error().Err(err).Int("event_id", eventID).Msg("player values sync failed")
	}
	return err
}

// handleEntry syncs one entry: its picks for the scoped event plus its season
// results. Scope is the entry id, secondary the event id.
func (j *JobService) handleEntry(ctx context.Context, t *asynq.Task) error {
	d, err := decodeDescriptor(t)
	if err != nil {
		return err
	}
	eventID, err := j.resolveEvent(ctx, d.Secondary)
	if err != nil {
		return err
	}

	if _, err := j.coordinator.SyncEntryPicks(ctx, d.Scope, eventID); err != nil {
		j.logger.Error().Err(err).Int("entry_id", d.Scope).Int("event_id", eventID).Msg("entry picks sync failed")
		return err
	}
	if _, err := j.coordinator.SyncEntryResults(ctx, d.Scope); err != nil {
		j.logger.Error().Err(err).Int("entry_id", d.Scope).Msg("entry results sync failed")
		return err
	}
	return nil
}

// handleTournament fans out across every entry in a tournament: picks for
// the scoped event and season results per entry, with bounded concurrency.
// Scope is the event id, secondary the tournament id.
func (j *JobService) handleTournament(ctx context.Context, t *asynq.Task) error {
	d, err := decodeDescriptor(t)
	if err != nil {
		return err
	}
	eventID, err := j.resolveEvent(ctx, d.Scope)
	if err != nil {
		return err
	}

	entries, err := j.coordinator.EntriesForTournament(ctx, d.Secondary)
	if err != nil {
		return err
	}

	tally, failures := j.fanOutEntries(ctx, entries, eventID)

	j.logger.Info().
		Int("event_id", eventID).
		Int("tournament_id", d.Secondary).
		Int("synced", tally.Synced).
		Int("skipped", tally.Skipped).
		Int("errors", tally.Errors).
		Str("source", d.Source).
		Msg("tournament fan-out completed")

	for entryID, entryErr := range failures {
		j.logger.Error().
			Err(entryErr).
			Int("entry_id", entryID).
			Int("event_id", eventID).
			Int("tournament_id", d.Secondary).
			Msg("entry sync failed during fan-out")
	}

	if raw, err := json.Marshal(tally); err == nil {
		_, _ = t.ResultWriter().Write(raw)
	}

	// Only a total wipeout retries the job; partial failure completes with
	// the per-scope report, leaving targeted re-syncs to per-entry jobs.
	if tally.Errors > 0 && tally.Errors == tally.Total() {
		return fmt.Errorf("tournament %d sync failed for all %d entries", d.Secondary, tally.Errors)
	}
	return nil
}

// fanOutEntries runs the per-entry sync across entries with the configured
// concurrency bound, never unbounded. Every entry lands in exactly one tally
// bucket; failures are collected per entry id for reporting.
func (j *JobService) fanOutEntries(ctx context.Context, entries []domain.Entry, eventID int) (Tally, map[int]error) {
	var (
		mu       sync.Mutex
		tally    Tally
		failures = make(map[int]error)
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(j.cfg.FanOutLimit)

	for _, entry := range entries {
		if !entry.Valid() {
			mu.Lock()
			tally.Skipped++
			mu.Unlock()
			continue
		}

		entry := entry
		g.Go(func() error {
			err := j.syncOneEntry(ctx, entry.ID, eventID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				tally.Errors++
				failures[entry.ID] = err
			} else {
				tally.Synced++
			}
			// Always nil: one entry's failure must not cancel the siblings.
			return nil
		})
	}

	_ = g.Wait()
	return tally, failures
}

func (j *JobService) syncOneEntry(ctx context.Context, entryID, eventID int) error {
	if _, err := j.coordinator.SyncEntryPicks(ctx, entryID, eventID); err != nil {
		return err
	}
	_, err := j.coordinator.SyncEntryResults(ctx, entryID)
	return err
}

// resolveEvent maps scope 0 onto the current event so cron descriptors don't
// need to know the gameweek.
func (j *JobService) resolveEvent(ctx context.Context, scope int) (int, error) {
	if scope > 0 {
		return scope, nil
	}
	return j.coordinator.CurrentEventID(ctx)
}

func decodeDescriptor(t *asynq.Task) (Descriptor, error) {
	var d Descriptor
	if err := json.Unmarshal(t.Payload(), &d); err != nil {
		return d, fmt.Errorf("failed to unmarshal sync descriptor: %w", err)
	}
	return d, nil
}
