package fpl

// Upstream payload shapes. Field names follow the wire format; most numeric
// fields are nullable upstream, so they are pointers here and normalized
// during transformation.

// Bootstrap is the combined static payload: the season's events, teams, and
// players in a single response.
type Bootstrap struct {
	Events   []EventPayload  `json:"events"`
	Teams    []TeamPayload   `json:"teams"`
	Elements []PlayerPayload `json:"elements"`
}

// EventPayload is one gameweek as the upstream API reports it.
type EventPayload struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	DeadlineTime string `json:"deadline_time"`
	Finished     bool   `json:"finished"`
	IsCurrent    bool   `json:"is_current"`
	IsNext       bool   `json:"is_next"`
	AverageScore *int   `json:"average_entry_score"`
	HighestScore *int   `json:"highest_score"`
}

// TeamPayload is one club.
type TeamPayload struct {
	ID        int    `json:"id"`
	Code      int    `json:"code"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
	Strength  *int   `json:"strength"`
}

type PlayerPayload struct {
	ID          int    `json:"id"`
	Code        int    `json:"code"`
	FirstName   string `json:"first_name"`
	SecondName  string `json:"second_name"`
	WebName     string `json:"web_name"`
	Team        int    `json:"team"`
	ElementType int    `json:"element_type"`
	NowCost     *int   `json:"now_cost"`
	Status      string `json:"status"`
}

// FixturePayload is one scheduled match.
type FixturePayload struct {
	ID          int    `json:"id"`
	Event       int    `json:"event"`
	TeamH       int    `json:"team_h"`
	TeamA       int    `json:"team_a"`
	TeamHScore  *int   `json:"team_h_score"`
	TeamAScore  *int   `json:"team_a_score"`
	KickoffTime string `json:"kickoff_time"`
	Started     bool   `json:"started"`
	Finished    bool   `json:"finished"`
}

// Live is the per-event live payload: one element per player with that
// player's in-play statistics.
type Live struct {
	Elements []LiveElement `json:"elements"`
}

// LiveElement is one player's live stats block.
type LiveElement struct {
	ID    int       `json:"id"`
	Stats LiveStats `json:"stats"`
}

// LiveStats mirrors the upstream stats object for a single player.
type LiveStats struct {
	Minutes     int `json:"minutes"`
	GoalsScored int `json:"goals_scored"`
	Assists     int `json:"assists"`
	CleanSheets int `json:"clean_sheets"`
	Saves       int `json:"saves"`
	YellowCards int `json:"yellow_cards"`
	RedCards    int `json:"red_cards"`
	Bonus       int `json:"bonus"`
	TotalPoints int `json:"total_points"`
}

// EntryPicks is the per-entry per-event picks payload.
type EntryPicks struct {
	EntryHistory EntryEventHistory `json:"entry_history"`
	Picks        []PickPayload     `json:"picks"`
}

// PickPayload is one selected player within an entry's squad.
type PickPayload struct {
	Element       int  `json:"element"`
	Position      int  `json:"position"`
	Multiplier    int  `json:"multiplier"`
	IsCaptain     bool `json:"is_captain"`
	IsViceCaptain bool `json:"is_vice_captain"`
}

// EntryEventHistory is the outcome block for one entry in one event.
type EntryEventHistory struct {
	Event          int  `json:"event"`
	Points         int  `json:"points"`
	TotalPoints    int  `json:"total_points"`
	OverallRank    *int `json:"overall_rank"`
	EventTransfers int  `json:"event_transfers"`
}

// EntryHistory is the season-to-date history payload for one entry.
type EntryHistory struct {
	Current []EntryEventHistory `json:"current"`
}
