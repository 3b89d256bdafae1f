package domain

import (
	"strconv"
	"time"
)

// Event is one gameweek of the season. IsCurrent/IsNext are upstream flags;
// the current event also gets its own singular cache pointer.
type Event struct {
	ID           int        `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	DeadlineTime *time.Time `db:"deadline_time" json:"deadline_time"`
	Finished     bool       `db:"finished" json:"finished"`
	IsCurrent    bool       `db:"is_current" json:"is_current"`
	IsNext       bool       `db:"is_next" json:"is_next"`
	AverageScore *int       `db:"average_score" json:"average_score"`
	HighestScore *int       `db:"highest_score" json:"highest_score"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

func (e Event) Key() string { return strconv.Itoa(e.ID) }
func (e Event) Valid() bool { return e.ID > 0 }

// Team is a club in the league.
type Team struct {
	ID        int       `db:"id" json:"id"`
	Code      int       `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	ShortName string    `db:"short_name" json:"short_name"`
	Strength  *int      `db:"strength" json:"strength"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func (t Team) Key() string { return strconv.Itoa(t.ID) }
func (t Team) Valid() bool { return t.ID > 0 }

// Player is a selectable footballer. NowCost is the current market price in
// tenths of the display unit, as the upstream API reports it.
type Player struct {
	ID         int       `db:"id" json:"id"`
	Code       int       `db:"code" json:"code"`
	FirstName  string    `db:"first_name" json:"first_name"`
	SecondName string    `db:"second_name" json:"second_name"`
	WebName    string    `db:"web_name" json:"web_name"`
	TeamID     int       `db:"team_id" json:"team_id"`
	Position   int       `db:"position" json:"position"`
	NowCost    *int      `db:"now_cost" json:"now_cost"`
	Status     string    `db:"status" json:"status"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

func (p Player) Key() string { return strconv.Itoa(p.ID) }
func (p Player) Valid() bool { return p.ID > 0 }

// Fixture is a scheduled match within an event. Scores stay nil until the
// match has started.
type Fixture struct {
	ID          int        `db:"id" json:"id"`
	EventID     int        `db:"event_id" json:"event_id"`
	HomeTeamID  int        `db:"home_team_id" json:"home_team_id"`
	AwayTeamID  int        `db:"away_team_id" json:"away_team_id"`
	HomeScore   *int       `db:"home_score" json:"home_score"`
	AwayScore   *int       `db:"away_score" json:"away_score"`
	KickoffTime *time.Time `db:"kickoff_time" json:"kickoff_time"`
	Started     bool       `db:"started" json:"started"`
	Finished    bool       `db:"finished" json:"finished"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

func (f Fixture) Key() string { return strconv.Itoa(f.ID) }
func (f Fixture) Valid() bool { return f.ID > 0 }
