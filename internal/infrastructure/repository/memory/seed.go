package memory

import (
	"time"

	"github.com/riskibarqy/rinkstats/internal/domain/season"
)

// SeedBundle is a small three-team round robin used by the compute
// command's dev mode. A beats B, B beats C, C ties A.
func SeedBundle() season.Bundle {
	seasonID := "2026-winter"
	divisionID := "div-north"
	day := func(offset int) time.Time {
		return time.Date(2026, 1, 10+offset, 19, 0, 0, 0, time.UTC)
	}
	score := func(v int) *int { return &v }

	return season.Bundle{
		SeasonID: seasonID,
		Divisions: []season.Division{
			{ID: divisionID, SeasonID: seasonID, Name: "North"},
		},
		Teams: []season.Team{
			{ID: "team-a", SeasonID: seasonID, DivisionID: divisionID, Name: "Avalanche"},
			{ID: "team-b", SeasonID: seasonID, DivisionID: divisionID, Name: "Blizzard"},
			{ID: "team-c", SeasonID: seasonID, DivisionID: divisionID, Name: "Cyclones"},
		},
		Games: []season.Game{
			{
				ID: "game-1", SeasonID: seasonID, DivisionID: divisionID,
				HomeTeamID: "team-a", VisitorTeamID: "team-b",
				HomeScore: score(3), VisitorScore: score(1),
				PlayedAt: day(0), Status: season.StatusFinal,
			},
			{
				ID: "game-2", SeasonID: seasonID, DivisionID: divisionID,
				HomeTeamID: "team-b", VisitorTeamID: "team-c",
				HomeScore: score(2), VisitorScore: score(0),
				PlayedAt: day(3), Status: season.StatusFinal,
			},
			{
				ID: "game-3", SeasonID: seasonID, DivisionID: divisionID,
				HomeTeamID: "team-c", VisitorTeamID: "team-a",
				HomeScore: score(2), VisitorScore: score(2),
				PlayedAt: day(6), Status: season.StatusFinal,
			},
		},
		Goals: []season.GoalEvent{
			{ID: "goal-1", GameID: "game-1", TeamID: "team-a", Period: "1", GameTime: "04:12", ScorerID: "player-a1", ScorerJersey: 9, Assist1ID: "player-a2"},
			{ID: "goal-2", GameID: "game-1", TeamID: "team-a", Period: "2", GameTime: "11:40", ScorerID: "player-a2", ScorerJersey: 17, PowerPlay: true},
			{ID: "goal-3", GameID: "game-1", TeamID: "team-a", Period: "3", GameTime: "07:03", ScorerID: "player-a1", ScorerJersey: 9, GameWinning: true},
			{ID: "goal-4", GameID: "game-1", TeamID: "team-b", Period: "3", GameTime: "15:55", ScorerID: "player-b1", ScorerJersey: 21},
			{ID: "goal-5", GameID: "game-2", TeamID: "team-b", Period: "1", GameTime: "02:30", ScorerID: "player-b1", ScorerJersey: 21},
			{ID: "goal-6", GameID: "game-2", TeamID: "team-b", Period: "2", GameTime: "18:11", ScorerID: "player-b2", ScorerJersey: 4, Assist1ID: "player-b1", GameWinning: true},
			{ID: "goal-7", GameID: "game-3", TeamID: "team-c", Period: "1", GameTime: "09:27", ScorerID: "player-c1", ScorerJersey: 13},
			{ID: "goal-8", GameID: "game-3", TeamID: "team-a", Period: "2", GameTime: "05:44", ScorerID: "player-a1", ScorerJersey: 9},
			{ID: "goal-9", GameID: "game-3", TeamID: "team-c", Period: "3", GameTime: "12:08", ScorerID: "player-c2", ScorerJersey: 8, PowerPlay: true},
			{ID: "goal-10", GameID: "game-3", TeamID: "team-a", Period: "OT", GameTime: "01:19", ScorerID: "player-a2", ScorerJersey: 17},
		},
		Penalties: []season.PenaltyEvent{
			{ID: "pen-1", GameID: "game-1", TeamID: "team-b", PlayerID: "player-b2", Period: "2", GameTime: "10:58", Minutes: 2, Class: season.PenaltyMinor},
			{ID: "pen-2", GameID: "game-2", TeamID: "team-c", PlayerID: "player-c1", Period: "3", GameTime: "06:20", Minutes: 5, Class: season.PenaltyMajor},
			{ID: "pen-3", GameID: "game-3", TeamID: "team-a", PlayerID: "player-a2", Period: "3", GameTime: "11:45", Minutes: 2, Class: season.PenaltyMinor},
		},
		Roster: []season.RosterEntry{
			{GameID: "game-1", TeamID: "team-a", PlayerID: "player-a1", Jersey: 9, Goals: 2, Assists: 0, Points: 2, Participated: true},
			{GameID: "game-1", TeamID: "team-a", PlayerID: "player-a2", Jersey: 17, Goals: 1, Assists: 1, Points: 2, Participated: true},
			{GameID: "game-1", TeamID: "team-b", PlayerID: "player-b1", Jersey: 21, Goals: 1, Assists: 0, Points: 1, Participated: true},
			{GameID: "game-1", TeamID: "team-b", PlayerID: "player-b2", Jersey: 4, Participated: true},
			{GameID: "game-2", TeamID: "team-b", PlayerID: "player-b1", Jersey: 21, Goals: 1, Assists: 1, Points: 2, Participated: true},
			{GameID: "game-2", TeamID: "team-b", PlayerID: "player-b2", Jersey: 4, Goals: 1, Points: 1, Participated: true},
			{GameID: "game-2", TeamID: "team-c", PlayerID: "player-c1", Jersey: 13, Participated: true},
			{GameID: "game-2", TeamID: "team-c", PlayerID: "player-c2", Jersey: 8, Participated: true},
			{GameID: "game-3", TeamID: "team-c", PlayerID: "player-c1", Jersey: 13, Goals: 1, Points: 1, Participated: true},
			{GameID: "game-3", TeamID: "team-c", PlayerID: "player-c2", Jersey: 8, Goals: 1, Points: 1, Participated: true},
			{GameID: "game-3", TeamID: "team-a", PlayerID: "player-a1", Jersey: 9, Goals: 1, Points: 1, Participated: true},
			{GameID: "game-3", TeamID: "team-a", PlayerID: "player-a2", Jersey: 17, Goals: 1, Points: 1, Participated: true},
		},
	}
}
