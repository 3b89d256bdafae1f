package domain

import (
	"fmt"
	"time"
)

// PlayerStat is one player's live statistics snapshot for one event.
// Natural key is the (event, player) pair.
type PlayerStat struct {
	EventID     int       `db:"event_id" json:"event_id"`
	PlayerID    int       `db:"player_id" json:"player_id"`
	Minutes     int       `db:"minutes" json:"minutes"`
	GoalsScored int       `db:"goals_scored" json:"goals_scored"`
	Assists     int       `db:"assists" json:"assists"`
	CleanSheets int       `db:"clean_sheets" json:"clean_sheets"`
	Saves       int       `db:"saves" json:"saves"`
	YellowCards int       `db:"yellow_cards" json:"yellow_cards"`
	RedCards    int       `db:"red_cards" json:"red_cards"`
	Bonus       int       `db:"bonus" json:"bonus"`
	TotalPoints int       `db:"total_points" json:"total_points"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

func (s PlayerStat) Key() string { return fmt.Sprintf("%d:%d", s.EventID, s.PlayerID) }
func (s PlayerStat) Valid() bool { return s.EventID > 0 && s.PlayerID > 0 }

// PlayerValue is one player's market value snapshot for one event, recorded
// so value changes can be tracked across gameweeks.
type PlayerValue struct {
	EventID   int       `db:"event_id" json:"event_id"`
	PlayerID  int       `db:"player_id" json:"player_id"`
	Value     int       `db:"value" json:"value"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func (v PlayerValue) Key() string { return fmt.Sprintf("%d:%d", v.EventID, v.PlayerID) }
func (v PlayerValue) Valid() bool { return v.EventID > 0 && v.PlayerID > 0 }
