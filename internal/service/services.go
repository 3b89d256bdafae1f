package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/statloop/fplsync/internal/cache"
	"github.com/statloop/fplsync/internal/config"
	"github.com/statloop/fplsync/internal/domain"
	"github.com/statloop/fplsync/internal/repository"

	"github.com/rs/zerolog"
)

// Services is the container for the synchronization core: one orchestrator
// per entity kind plus the coordinator that drives them from the upstream.
type Services struct {
	Coordinator *Coordinator
}

// NewServices wires cache gateways, store gateways, and orchestrators for
// every entity kind. TTL families follow the config: static entities, live
// stats, and tournament data age out at different rates.
func NewServices(cfg *config.Config, repos *repository.Repositories, store cache.Store, upstream Upstream, logger *zerolog.Logger) *Services {
	season := cfg.Primary.Season
	staticTTL := cfg.Sync.StaticTTL()
	liveTTL := cfg.Sync.LiveTTL()
	entryTTL := cfg.Sync.EntryTTL()

	coordinator := NewCoordinator(upstream, logger)

	coordinator.Events = NewSyncer("events",
		repos.Events,
		cache.NewGateway[domain.Event](store, cache.Keys{Prefix: "events", Season: season}, staticTTL),
		nil, logger)

	coordinator.Teams = NewSyncer("teams",
		repos.Teams,
		cache.NewGateway[domain.Team](store, cache.Keys{Prefix: "teams", Season: season}, staticTTL),
		nil, logger)

	coordinator.Players = NewSyncer("players",
		repos.Players,
		cache.NewGateway[domain.Player](store, cache.Keys{Prefix: "players", Season: season}, staticTTL),
		nil, logger)

	coordinator.Fixtures = NewSyncer("fixtures",
		repos.Fixtures,
		cache.NewGateway[domain.Fixture](store, cache.Keys{Prefix: "fixtures", Season: season}, staticTTL),
		eventScopeQuery, logger)

	coordinator.PlayerStats = NewSyncer("player_stats",
		repos.PlayerStats,
		cache.NewGateway[domain.PlayerStat](store, cache.Keys{Prefix: "live", Season: season}, liveTTL),
		eventScopeQuery, logger)

	coordinator.PlayerValues = NewSyncer("player_values",
		repos.PlayerValues,
		cache.NewGateway[domain.PlayerValue](store, cache.Keys{Prefix: "values", Season: season}, staticTTL),
		eventScopeQuery, logger)

	coordinator.Entries = NewSyncer("entries",
		repos.Entries,
		cache.NewGateway[domain.Entry](store, cache.Keys{Prefix: "entries", Season: season}, entryTTL),
		tournamentScopeQuery, logger)

	coordinator.Picks = NewSyncer("picks",
		repos.Picks,
		cache.NewGateway[domain.Pick](store, cache.Keys{Prefix: "picks", Season: season}, entryTTL),
		pickScopeQuery, logger)

	coordinator.Results = NewSyncer("results",
		repos.Results,
		cache.NewGateway[domain.Result](store, cache.Keys{Prefix: "results", Season: season}, entryTTL),
		entryScopeQuery, logger)

	return &Services{Coordinator: coordinator}
}

// ScopeFromID renders a numeric scope the way cache keys and scope queries
// expect it.
func ScopeFromID(id int) string {
	return strconv.Itoa(id)
}

// PickScope renders the composite picks scope: `{entry}:{event}`.
func PickScope(entryID, eventID int) string {
	return fmt.Sprintf("%d:%d", entryID, eventID)
}

func eventScopeQuery(scope string) (string, []any, error) {
	id, err := strconv.Atoi(scope)
	if err != nil {
		return "", nil, err
	}
	return "event_id = $1", []any{id}, nil
}

func tournamentScopeQuery(scope string) (string, []any, error) {
	id, err := strconv.Atoi(scope)
	if err != nil {
		return "", nil, err
	}
	return "tournament_id = $1", []any{id}, nil
}

func entryScopeQuery(scope string) (string, []any, error) {
	id, err := strconv.Atoi(scope)
	if err != nil {
		return "", nil, err
	}
	return "entry_id = $1", []any{id}, nil
}

func pickScopeQuery(scope string) (string, []any, error) {
	parts := strings.SplitN(scope, ":", 2)
	if len(parts) != 2 {
		return "", nil, fmt.Errorf("picks scope must be entry:event, got %q", scope)
	}
	entryID, err := strconv.Atoi(parts[0])
	if err != nil {
		return "", nil, err
	}
	eventID, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", nil, err
	}
	return "entry_id = $1 AND event_id = $2", []any{entryID, eventID}, nil
}
