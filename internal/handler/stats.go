package handler

import (
	"github.com/statloop/fplsync/internal/domain"
	"github.com/statloop/fplsync/internal/server"
	"github.com/statloop/fplsync/internal/service"
	"github.com/statloop/fplsync/internal/validation"

	"github.com/labstack/echo/v4"
)

// StatsHandler serves the synchronized fantasy-football data. Reads always go
// through the cache-aside orchestrators: warm cache when possible, store
// fallback otherwise. Nothing here hits the upstream API.
type StatsHandler struct {
	Handler
}

// NewStatsHandler constructs a StatsHandler.
func NewStatsHandler(s *server.Server) *StatsHandler {
	return &StatsHandler{Handler: NewHandler(s)}
}

func (h *StatsHandler) coordinator() *service.Coordinator {
	return h.server.Services.Coordinator
}

// NoParams is the empty payload for endpoints without inputs.
type NoParams struct{}

func (r *NoParams) Validate() error { return nil }

// EventPathRequest scopes an endpoint by gameweek via the path.
type EventPathRequest struct {
	EventID int `param:"event_id" validate:"required,min=1"`
}

func (r *EventPathRequest) Validate() error { return validation.Struct(r) }

// TeamPathRequest addresses one club via the path.
type TeamPathRequest struct {
	TeamID int `param:"team_id" validate:"required,min=1"`
}

func (r *TeamPathRequest) Validate() error { return validation.Struct(r) }

// PlayerPathRequest addresses one player via the path.
type PlayerPathRequest struct {
	PlayerID int `param:"player_id" validate:"required,min=1"`
}

func (r *PlayerPathRequest) Validate() error { return validation.Struct(r) }

// ListEvents returns the season's gameweek events.
func (h *StatsHandler) ListEvents(c echo.Context, _ *NoParams) (listResponse[domain.Event], error) {
	events, err := h.coordinator().Events.Read(c.Request().Context(), "")
	if err != nil {
		return listResponse[domain.Event]{}, err
	}
	return newListResponse(events), nil
}

// GetCurrentEvent returns the gameweek currently in play.
func (h *StatsHandler) GetCurrentEvent(c echo.Context, _ *NoParams) (dataResponse[domain.Event], error) {
	event, err := h.coordinator().CurrentEvent(c.Request().Context())
	if err != nil {
		return dataResponse[domain.Event]{}, err
	}
	return dataResponse[domain.Event]{Data: event}, nil
}

// GetEvent returns one gameweek by id. A gameweek the season does not have
// comes back as not-found.
func (h *StatsHandler) GetEvent(c echo.Context, req *EventPathRequest) (dataResponse[domain.Event], error) {
	event, err := h.coordinator().Events.ReadOne(c.Request().Context(),
		service.ScopeFromID(req.EventID), req.EventID)
	if err != nil {
		return dataResponse[domain.Event]{}, err
	}
	return dataResponse[domain.Event]{Data: event}, nil
}

// ListTeams returns all clubs.
func (h *StatsHandler) ListTeams(c echo.Context, _ *NoParams) (listResponse[domain.Team], error) {
	teams, err := h.coordinator().Teams.Read(c.Request().Context(), "")
	if err != nil {
		return listResponse[domain.Team]{}, err
	}
	return newListResponse(teams), nil
}

// GetTeam returns one club by id.
func (h *StatsHandler) GetTeam(c echo.Context, req *TeamPathRequest) (dataResponse[domain.Team], error) {
	team, err := h.coordinator().Teams.ReadOne(c.Request().Context(),
		service.ScopeFromID(req.TeamID), req.TeamID)
	if err != nil {
		return dataResponse[domain.Team]{}, err
	}
	return dataResponse[domain.Team]{Data: team}, nil
}

// ListPlayers returns all players.
func (h *StatsHandler) ListPlayers(c echo.Context, _ *NoParams) (listResponse[domain.Player], error) {
	players, err := h.coordinator().Players.Read(c.Request().Context(), "")
	if err != nil {
		return listResponse[domain.Player]{}, err
	}
	return newListResponse(players), nil
}

// GetPlayer returns one player by id.
func (h *StatsHandler) GetPlayer(c echo.Context, req *PlayerPathRequest) (dataResponse[domain.Player], error) {
	player, err := h.coordinator().Players.ReadOne(c.Request().Context(),
		service.ScopeFromID(req.PlayerID), req.PlayerID)
	if err != nil {
		return dataResponse[domain.Player]{}, err
	}
	return dataResponse[domain.Player]{Data: player}, nil
}

type ListFixturesRequest struct {
	// EventID narrows fixtures to one gameweek; zero means the whole season.
	EventID int `query:"event" validate:"omitempty,min=1"`
}

func (r *ListFixturesRequest) Validate() error { return validation.Struct(r) }

// ListFixtures returns fixtures, optionally scoped by `?event=`.
func (h *StatsHandler) ListFixtures(c echo.Context, req *ListFixturesRequest) (listResponse[domain.Fixture], error) {
	scope := ""
	if req.EventID > 0 {
		scope = service.ScopeFromID(req.EventID)
	}

	fixtures, err := h.coordinator().Fixtures.Read(c.Request().Context(), scope)
	if err != nil {
		return listResponse[domain.Fixture]{}, err
	}
	return newListResponse(fixtures), nil
}

// ListLiveStats returns per-player in-play statistics for one gameweek.
func (h *StatsHandler) ListLiveStats(c echo.Context, req *EventPathRequest) (listResponse[domain.PlayerStat], error) {
	stats, err := h.coordinator().PlayerStats.Read(c.Request().Context(), service.ScopeFromID(req.EventID))
	if err != nil {
		return listResponse[domain.PlayerStat]{}, err
	}
	return newListResponse(stats), nil
}

// ListPlayerValues returns player market values snapshotted at one gameweek.
func (h *StatsHandler) ListPlayerValues(c echo.Context, req *EventPathRequest) (listResponse[domain.PlayerValue], error) {
	values, err := h.coordinator().PlayerValues.Read(c.Request().Context(), service.ScopeFromID(req.EventID))
	if err != nil {
		return listResponse[domain.PlayerValue]{}, err
	}
	return newListResponse(values), nil
}

type ListEntriesRequest struct {
	TournamentID int `param:"tournament_id" validate:"required,min=1"`
}

func (r *ListEntriesRequest) Validate() error { return validation.Struct(r) }

// ListEntries returns the entries registered under one tournament.
func (h *StatsHandler) ListEntries(c echo.Context, req *ListEntriesRequest) (listResponse[domain.Entry], error) {
	entries, err := h.coordinator().EntriesForTournament(c.Request().Context(), req.TournamentID)
	if err != nil {
		return listResponse[domain.Entry]{}, err
	}
	return newListResponse(entries), nil
}

type ListPicksRequest struct {
	EntryID int `param:"entry_id" validate:"required,min=1"`
	EventID int `query:"event" validate:"required,min=1"`
}

func (r *ListPicksRequest) Validate() error { return validation.Struct(r) }

// ListPicks returns one entry's squad for one gameweek (`?event=` required).
func (h *StatsHandler) ListPicks(c echo.Context, req *ListPicksRequest) (listResponse[domain.Pick], error) {
	picks, err := h.coordinator().Picks.Read(c.Request().Context(), service.PickScope(req.EntryID, req.EventID))
	if err != nil {
		return listResponse[domain.Pick]{}, err
	}
	return newListResponse(picks), nil
}

type ListResultsRequest struct {
	EntryID int `param:"entry_id" validate:"required,min=1"`
}

func (r *ListResultsRequest) Validate() error { return validation.Struct(r) }

// ListResults returns one entry's per-gameweek season results.
func (h *StatsHandler) ListResults(c echo.Context, req *ListResultsRequest) (listResponse[domain.Result], error) {
	results, err := h.coordinator().Results.Read(c.Request().Context(), service.ScopeFromID(req.EntryID))
	if err != nil {
		return listResponse[domain.Result]{}, err
	}
	return newListResponse(results), nil
}
