package repository

import (
	"github.com/statloop/fplsync/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories is the container for all per-entity store gateways. Each one
// is the generic Repository instantiated with that entity's table metadata.
type Repositories struct {
	Events       *Repository[domain.Event]
	Teams        *Repository[domain.Team]
	Players      *Repository[domain.Player]
	Fixtures     *Repository[domain.Fixture]
	PlayerStats  *Repository[domain.PlayerStat]
	PlayerValues *Repository[domain.PlayerValue]
	Entries      *Repository[domain.Entry]
	Picks        *Repository[domain.Pick]
	Results      *Repository[domain.Result]
}

// NewRepositories constructs every entity gateway on the shared pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Events: New(pool, Table[domain.Event]{
			Name: "events",
			Columns: []string{
				"id", "name", "deadline_time", "finished", "is_current",
				"is_next", "average_score", "highest_score", "updated_at",
			},
			KeyColumns: []string{"id"},
			Encode: func(e domain.Event) []any {
				return []any{
					e.ID, e.Name, e.DeadlineTime, e.Finished, e.IsCurrent,
					e.IsNext, e.AverageScore, e.HighestScore, e.UpdatedAt,
				}
			},
		}),

		Teams: New(pool, Table[domain.Team]{
			Name:       "teams",
			Columns:    []string{"id", "code", "name", "short_name", "strength", "updated_at"},
			KeyColumns: []string{"id"},
			Encode: func(t domain.Team) []any {
				return []any{t.ID, t.Code, t.Name, t.ShortName, t.Strength, t.UpdatedAt}
			},
		}),

		Players: New(pool, Table[domain.Player]{
			Name: "players",
			Columns: []string{
				"id", "code", "first_name", "second_name", "web_name",
				"team_id", "position", "now_cost", "status", "updated_at",
			},
			KeyColumns: []string{"id"},
			Encode: func(p domain.Player) []any {
				return []any{
					p.ID, p.Code, p.FirstName, p.SecondName, p.WebName,
					p.TeamID, p.Position, p.NowCost, p.Status, p.UpdatedAt,
				}
			},
		}),

		Fixtures: New(pool, Table[domain.Fixture]{
			Name: "fixtures",
			Columns: []string{
				"id", "event_id", "home_team_id", "away_team_id", "home_score",
				"away_score", "kickoff_time", "started", "finished", "updated_at",
			},
			KeyColumns: []string{"id"},
			Encode: func(f domain.Fixture) []any {
				return []any{
					f.ID, f.EventID, f.HomeTeamID, f.AwayTeamID, f.HomeScore,
					f.AwayScore, f.KickoffTime, f.Started, f.Finished, f.UpdatedAt,
				}
			},
		}),

		PlayerStats: New(pool, Table[domain.PlayerStat]{
			Name: "player_stats",
			Columns: []string{
				"event_id", "player_id", "minutes", "goals_scored", "assists",
				"clean_sheets", "saves", "yellow_cards", "red_cards", "bonus",
				"total_points", "updated_at",
			},
			KeyColumns: []string{"event_id", "player_id"},
			Encode: func(s domain.PlayerStat) []any {
				return []any{
					s.EventID, s.PlayerID, s.Minutes, s.GoalsScored, s.Assists,
					s.CleanSheets, s.Saves, s.YellowCards, s.RedCards, s.Bonus,
					s.TotalPoints, s.UpdatedAt,
				}
			},
		}),

		PlayerValues: New(pool, Table[domain.PlayerValue]{
			Name:       "player_values",
			Columns:    []string{"event_id", "player_id", "value", "updated_at"},
			KeyColumns: []string{"event_id", "player_id"},
			Encode: func(v domain.PlayerValue) []any {
				return []any{v.EventID, v.PlayerID, v.Value, v.UpdatedAt}
			},
		}),

		Entries: New(pool, Table[domain.Entry]{
			Name:       "entries",
			Columns:    []string{"id", "tournament_id", "name", "manager_name", "updated_at"},
			KeyColumns: []string{"id"},
			Encode: func(e domain.Entry) []any {
				return []any{e.ID, e.TournamentID, e.Name, e.ManagerName, e.UpdatedAt}
			},
		}),

		Picks: New(pool, Table[domain.Pick]{
			Name: "picks",
			Columns: []string{
				"entry_id", "event_id", "player_id", "pick_position",
				"multiplier", "is_captain", "is_vice_captain", "updated_at",
			},
			KeyColumns: []string{"entry_id", "event_id", "player_id"},
			Encode: func(p domain.Pick) []any {
				return []any{
					p.EntryID, p.EventID, p.PlayerID, p.PickPosition,
					p.Multiplier, p.IsCaptain, p.IsViceCaptain, p.UpdatedAt,
				}
			},
		}),

		Results: New(pool, Table[domain.Result]{
			Name: "results",
			Columns: []string{
				"entry_id", "event_id", "points", "total_points", "rank",
				"event_transfers", "updated_at",
			},
			KeyColumns: []string{"entry_id", "event_id"},
			Encode: func(r domain.Result) []any {
				return []any{
					r.EntryID, r.EventID, r.Points, r.TotalPoints, r.Rank,
					r.EventTransfers, r.UpdatedAt,
				}
			},
		}),
	}
}
