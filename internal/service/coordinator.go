package service

import (
	"context"
	"time"

	"github.com/statloop/fplsync/internal/domain"
	"github.com/statloop/fplsync/internal/errs"
	"github.com/statloop/fplsync/internal/lib/fpl"

	"github.com/rs/zerolog"
)

// CurrentEventTag is the pointer tag under which the current event is cached.
const CurrentEventTag = "current"

// Upstream is the slice of the external API client the coordinator uses.
type Upstream interface {
	Bootstrap(ctx context.Context) (*fpl.Bootstrap, error)
	Fixtures(ctx context.Context, eventID int) ([]fpl.FixturePayload, error)
	Live(ctx context.Context, eventID int) (*fpl.Live, error)
	Picks(ctx context.Context, entryID, eventID int) (*fpl.EntryPicks, error)
	History(ctx context.Context, entryID int) (*fpl.EntryHistory, error)
}

// Coordinator composes the upstream client, the transforms, and the
// per-entity orchestrators into complete synchronization operations. Job
// handlers call these; nothing here reaches past the gateways.
type Coordinator struct {
	upstream Upstream
	logger   *zerolog.Logger

	Events       *Syncer[domain.Event]
	Teams        *Syncer[domain.Team]
	Players      *Syncer[domain.Player]
	Fixtures     *Syncer[domain.Fixture]
	PlayerStats  *Syncer[domain.PlayerStat]
	PlayerValues *Syncer[domain.PlayerValue]
	Entries      *Syncer[domain.Entry]
	Picks        *Syncer[domain.Pick]
	Results      *Syncer[domain.Result]
}

// NewCoordinator wires the coordinator. Syncers are assigned by the Services
// container after construction.
func NewCoordinator(upstream Upstream, logger *zerolog.Logger) *Coordinator {
	return &Coordinator{upstream: upstream, logger: logger}
}

// SyncBootstrap pulls the combined static payload and synchronizes events,
// teams, and players in one pass. On success the current-event pointer is
// refreshed from the just-synced events.
func (c *Coordinator) SyncBootstrap(ctx context.Context) ([]*Outcome, error) {
	payload, err := c.upstream.Bootstrap(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()

	events, err := domain.TransformEvents(payload.Events, now)
	if err != nil {
		return nil, errs.DomainToService(err)
	}
	teams, err := domain.TransformTeams(payload.Teams, now)
	if err != nil {
		return nil, errs.DomainToService(err)
	}
	players, err := domain.TransformPlayers(payload, now)
	if err != nil {
		return nil, errs.DomainToService(err)
	}

	outcomes := make([]*Outcome, 0, 3)

	eventOutcome, err := c.Events.Sync(ctx, "", events)
	if err != nil {
		return nil, err
	}
	outcomes = append(outcomes, eventOutcome)

	for _, event := range events {
		if event.IsCurrent {
			if !c.Events.WritePointer(ctx, CurrentEventTag, event) {
				eventOutcome.CacheDegraded = true
			}
			break
		}
	}

	teamOutcome, err := c.Teams.Sync(ctx, "", teams)
	if err != nil {
		return nil, err
	}
	outcomes = append(outcomes, teamOutcome)

	playerOutcome, err := c.Players.Sync(ctx, "", players)
	if err != nil {
		return nil, err
	}
	outcomes = append(outcomes, playerOutcome)

	return outcomes, nil
}

// SyncFixtures pulls and synchronizes one event's fixtures.
func (c *Coordinator) SyncFixtures(ctx context.Context, eventID int) (*Outcome, error) {
	payload, err := c.upstream.Fixtures(ctx, eventID)
	if err != nil {
		return nil, err
	}
	fixtures, err := domain.TransformFixtures(payload, time.Now().UTC())
	if err != nil {
		return nil, errs.DomainToService(err)
	}
	return c.Fixtures.Sync(ctx, ScopeFromID(eventID), fixtures)
}

// SyncLive pulls and synchronizes one event's live player statistics.
func (c *Coordinator) SyncLive(ctx context.Context, eventID int) (*Outcome, error) {
	payload, err := c.upstream.Live(ctx, eventID)
	if err != nil {
		return nil, err
	}
	stats, err := domain.TransformPlayerStats(payload, eventID, time.Now().UTC())
	if err != nil {
		return nil, errs.DomainToService(err)
	}
	return c.PlayerStats.Sync(ctx, ScopeFromID(eventID), stats)
}

// SyncValues snapshots every player's market value against one event. The
// values ride on the bootstrap payload, so no extra upstream endpoint is hit.
func (c *Coordinator) SyncValues(ctx context.Context, eventID int) (*Outcome, error) {
	payload, err := c.upstream.Bootstrap(ctx)
	if err != nil {
		return nil, err
	}
	values, err := domain.TransformPlayerValues(payload, eventID, time.Now().UTC())
	if err != nil {
		return nil, errs.DomainToService(err)
	}
	return c.PlayerValues.Sync(ctx, ScopeFromID(eventID), values)
}

// SyncEntryPicks pulls and synchronizes one entry's squad for one event.
func (c *Coordinator) SyncEntryPicks(ctx context.Context, entryID, eventID int) (*Outcome, error) {
	payload, err := c.upstream.Picks(ctx, entryID, eventID)
	if err != nil {
		return nil, err
	}
	picks, err := domain.TransformPicks(payload, entryID, eventID, time.Now().UTC())
	if err != nil {
		return nil, errs.DomainToService(err)
	}
	return c.Picks.Sync(ctx, PickScope(entryID, eventID), picks)
}

// SyncEntryResults pulls and synchronizes one entry's season history.
func (c *Coordinator) SyncEntryResults(ctx context.Context, entryID int) (*Outcome, error) {
	payload, err := c.upstream.History(ctx, entryID)
	if err != nil {
		return nil, err
	}
	results, err := domain.TransformResults(payload, entryID, time.Now().UTC())
	if err != nil {
		return nil, errs.DomainToService(err)
	}
	return c.Results.Sync(ctx, ScopeFromID(entryID), results)
}

// CurrentEvent resolves the current gameweek: pointer cache first, then a
// scan of the synchronized events.
func (c *Coordinator) CurrentEvent(ctx context.Context) (domain.Event, error) {
	if event, err := c.Events.ReadPointer(ctx, CurrentEventTag); err == nil {
		return event, nil
	}

	events, err := c.Events.Read(ctx, "")
	if err != nil {
		return domain.Event{}, err
	}
	for _, event := range events {
		if event.IsCurrent {
			return event, nil
		}
	}
	return domain.Event{}, errs.DomainToService(
		errs.New(errs.LayerDomain, errs.KindNotFound, "no current event; run a bootstrap sync first"))
}

// CurrentEventID is CurrentEvent reduced to the id, for callers that only
// scope by gameweek number.
func (c *Coordinator) CurrentEventID(ctx context.Context) (int, error) {
	event, err := c.CurrentEvent(ctx)
	if err != nil {
		return 0, err
	}
	return event.ID, nil
}

// EntriesForTournament lists the entries registered under one tournament,
// through the entries orchestrator's read path.
func (c *Coordinator) EntriesForTournament(ctx context.Context, tournamentID int) ([]domain.Entry, error) {
	return c.Entries.Read(ctx, ScopeFromID(tournamentID))
}
