package domain

import (
	"fmt"
	"time"

	"github.com/statloop/fplsync/internal/errs"
	"github.com/statloop/fplsync/internal/lib/fpl"
)

// Transforms convert upstream payloads into domain records. They are the only
// place upstream field names are interpreted; everything past this point works
// with domain types. A payload that would produce a structurally invalid
// record (missing natural key) fails with a transformation-kind envelope
// rather than letting bad data reach the store.

// TransformEvents converts the bootstrap event list.
func TransformEvents(payloads []fpl.EventPayload, now time.Time) ([]Event, error) {
	out := make([]Event, 0, len(payloads))
	for _, p := range payloads {
		if p.ID <= 0 {
			return nil, transformErr("event", fmt.Sprintf("event %q has no id", p.Name))
		}
		event := Event{
			ID:           p.ID,
			Name:         p.Name,
			Finished:     p.Finished,
			IsCurrent:    p.IsCurrent,
			IsNext:       p.IsNext,
			AverageScore: p.AverageScore,
			HighestScore: p.HighestScore,
			UpdatedAt:    now,
		}
		if p.DeadlineTime != "" {
			deadline, err := time.Parse(time.RFC3339, p.DeadlineTime)
			if err != nil {
				return nil, errs.Wrap(errs.LayerDomain, errs.KindTransformation,
					fmt.Sprintf("event %d has malformed deadline", p.ID), err)
			}
			event.DeadlineTime = &deadline
		}
		out = append(out, event)
	}
	return out, nil
}

// TransformTeams converts the bootstrap team list.
func TransformTeams(payloads []fpl.TeamPayload, now time.Time) ([]Team, error) {
	out := make([]Team, 0, len(payloads))
	for _, p := range payloads {
		if p.ID <= 0 {
			return nil, transformErr("team", fmt.Sprintf("team %q has no id", p.Name))
		}
		out = append(out, Team{
			ID:        p.ID,
			Code:      p.Code,
			Name:      p.Name,
			ShortName: p.ShortName,
			Strength:  p.Strength,
			UpdatedAt: now,
		})
	}
	return out, nil
}

// TransformPlayers converts the bootstrap element list.
func TransformPlayers(b *fpl.Bootstrap, now time.Time) ([]Player, error) {
	out := make([]Player, 0, len(b.Elements))
	for _, p := range b.Elements {
		if p.ID <= 0 {
			return nil, transformErr("player", fmt.Sprintf("player %q has no id", p.WebName))
		}
		out = append(out, Player{
			ID:         p.ID,
			Code:       p.Code,
			FirstName:  p.FirstName,
			SecondName: p.SecondName,
			WebName:    p.WebName,
			TeamID:     p.Team,
			Position:   p.ElementType,
			NowCost:    p.NowCost,
			Status:     p.Status,
			UpdatedAt:  now,
		})
	}
	return out, nil
}

// TransformPlayerValues derives value snapshots for one event from the same
// bootstrap element list, so a value sync never needs a second upstream call.
func TransformPlayerValues(b *fpl.Bootstrap, eventID int, now time.Time) ([]PlayerValue, error) {
	out := make([]PlayerValue, 0, len(b.Elements))
	for _, p := range b.Elements {
		if p.ID <= 0 {
			return nil, transformErr("player_value", fmt.Sprintf("player %q has no id", p.WebName))
		}
		if p.NowCost == nil {
			continue
		}
		out = append(out, PlayerValue{
			EventID:   eventID,
			PlayerID:  p.ID,
			Value:     *p.NowCost,
			UpdatedAt: now,
		})
	}
	return out, nil
}

// TransformFixtures converts one event's fixture list.
func TransformFixtures(payloads []fpl.FixturePayload, now time.Time) ([]Fixture, error) {
	out := make([]Fixture, 0, len(payloads))
	for _, p := range payloads {
		if p.ID <= 0 {
			return nil, transformErr("fixture", fmt.Sprintf("fixture in event %d has no id", p.Event))
		}
		fixture := Fixture{
			ID:         p.ID,
			EventID:    p.Event,
			HomeTeamID: p.TeamH,
			AwayTeamID: p.TeamA,
			HomeScore:  p.TeamHScore,
			AwayScore:  p.TeamAScore,
			Started:    p.Started,
			Finished:   p.Finished,
			UpdatedAt:  now,
		}
		if p.KickoffTime != "" {
			kickoff, err := time.Parse(time.RFC3339, p.KickoffTime)
			if err != nil {
				return nil, errs.Wrap(errs.LayerDomain, errs.KindTransformation,
					fmt.Sprintf("fixture %d has malformed kickoff time", p.ID), err)
			}
			fixture.KickoffTime = &kickoff
		}
		out = append(out, fixture)
	}
	return out, nil
}

// TransformPlayerStats converts one event's live payload.
func TransformPlayerStats(live *fpl.Live, eventID int, now time.Time) ([]PlayerStat, error) {
	out := make([]PlayerStat, 0, len(live.Elements))
	for _, el := range live.Elements {
		if el.ID <= 0 {
			return nil, transformErr("player_stat", fmt.Sprintf("live element in event %d has no id", eventID))
		}
		out = append(out, PlayerStat{
			EventID:     eventID,
			PlayerID:    el.ID,
			Minutes:     el.Stats.Minutes,
			GoalsScored: el.Stats.GoalsScored,
			Assists:     el.Stats.Assists,
			CleanSheets: el.Stats.CleanSheets,
			Saves:       el.Stats.Saves,
			YellowCards: el.Stats.YellowCards,
			RedCards:    el.Stats.RedCards,
			Bonus:       el.Stats.Bonus,
			TotalPoints: el.Stats.TotalPoints,
			UpdatedAt:   now,
		})
	}
	return out, nil
}

// TransformPicks converts one entry's picks payload for one event.
func TransformPicks(payload *fpl.EntryPicks, entryID, eventID int, now time.Time) ([]Pick, error) {
	out := make([]Pick, 0, len(payload.Picks))
	for _, p := range payload.Picks {
		if p.Element <= 0 {
			return nil, transformErr("pick", fmt.Sprintf("pick for entry %d has no player id", entryID))
		}
		out = append(out, Pick{
			EntryID:       entryID,
			EventID:       eventID,
			PlayerID:      p.Element,
			PickPosition:  p.Position,
			Multiplier:    p.Multiplier,
			IsCaptain:     p.IsCaptain,
			IsViceCaptain: p.IsViceCaptain,
			UpdatedAt:     now,
		})
	}
	return out, nil
}

// TransformResults converts one entry's event history into result rows.
func TransformResults(history *fpl.EntryHistory, entryID int, now time.Time) ([]Result, error) {
	out := make([]Result, 0, len(history.Current))
	for _, h := range history.Current {
		if h.Event <= 0 {
			return nil, transformErr("result", fmt.Sprintf("history row for entry %d has no event id", entryID))
		}
		out = append(out, Result{
			EntryID:        entryID,
			EventID:        h.Event,
			Points:         h.Points,
			TotalPoints:    h.TotalPoints,
			Rank:           h.OverallRank,
			EventTransfers: h.EventTransfers,
			UpdatedAt:      now,
		})
	}
	return out, nil
}

func transformErr(entity, message string) error {
	return errs.New(errs.LayerDomain, errs.KindTransformation, message).WithDetail("entity", entity)
}
