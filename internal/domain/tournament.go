package domain

import (
	"fmt"
	"strconv"
	"time"
)

// Entry is a manager's team registered in a tournament. The upstream entry id
// is the natural key; the tournament id is a local grouping.
type Entry struct {
	ID           int       `db:"id" json:"id"`
	TournamentID int       `db:"tournament_id" json:"tournament_id"`
	Name         string    `db:"name" json:"name"`
	ManagerName  string    `db:"manager_name" json:"manager_name"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

func (e Entry) Key() string { return strconv.Itoa(e.ID) }
func (e Entry) Valid() bool { return e.ID > 0 }

// Pick is one player selected by an entry for one event.
// Natural key is the (entry, event, player) triple.
type Pick struct {
	EntryID       int       `db:"entry_id" json:"entry_id"`
	EventID       int       `db:"event_id" json:"event_id"`
	PlayerID      int       `db:"player_id" json:"player_id"`
	PickPosition  int       `db:"pick_position" json:"pick_position"`
	Multiplier    int       `db:"multiplier" json:"multiplier"`
	IsCaptain     bool      `db:"is_captain" json:"is_captain"`
	IsViceCaptain bool      `db:"is_vice_captain" json:"is_vice_captain"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

func (p Pick) Key() string { return fmt.Sprintf("%d:%d:%d", p.EntryID, p.EventID, p.PlayerID) }
func (p Pick) Valid() bool { return p.EntryID > 0 && p.EventID > 0 && p.PlayerID > 0 }

// Result is an entry's outcome for one event: points scored, running total,
// and overall rank. Natural key is the (entry, event) pair.
type Result struct {
	EntryID        int       `db:"entry_id" json:"entry_id"`
	EventID        int       `db:"event_id" json:"event_id"`
	Points         int       `db:"points" json:"points"`
	TotalPoints    int       `db:"total_points" json:"total_points"`
	Rank           *int      `db:"rank" json:"rank"`
	EventTransfers int       `db:"event_transfers" json:"event_transfers"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

func (r Result) Key() string { return fmt.Sprintf("%d:%d", r.EntryID, r.EventID) }
func (r Result) Valid() bool { return r.EntryID > 0 && r.EventID > 0 }
