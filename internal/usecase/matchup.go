package usecase

import (
	"sort"

	"github.com/riskibarqy/rinkstats/internal/domain/season"
	"github.com/riskibarqy/rinkstats/internal/domain/stats"
)

// headToHead folds the season's final games into one record per unordered
// team pair. Team1 is always the lexicographically smaller team id, so a
// pair is stored exactly once; pairs with no shared games produce no row.
func headToHead(
	seasonID string,
	finalGames []season.Game,
	goals []season.GoalEvent,
	penalties []season.PenaltyEvent,
) []stats.HeadToHead {
	type pairKey struct{ team1, team2 string }

	gamesByPair := make(map[pairKey][]season.Game)
	for _, game := range finalGames {
		team1, team2 := orderPair(game.HomeTeamID, game.VisitorTeamID)
		k := pairKey{team1: team1, team2: team2}
		gamesByPair[k] = append(gamesByPair[k], game)
	}

	majorPenaltiesByGameTeam := make(map[string]map[string]int)
	for _, penalty := range penalties {
		if penalty.Minutes < 2 {
			continue
		}
		byGame, ok := majorPenaltiesByGameTeam[penalty.GameID]
		if !ok {
			byGame = make(map[string]int)
			majorPenaltiesByGameTeam[penalty.GameID] = byGame
		}
		byGame[penalty.TeamID]++
	}
	ppGoalsByGameTeam := make(map[string]map[string]int)
	for _, goal := range goals {
		if !goal.PowerPlay {
			continue
		}
		byGame, ok := ppGoalsByGameTeam[goal.GameID]
		if !ok {
			byGame = make(map[string]int)
			ppGoalsByGameTeam[goal.GameID] = byGame
		}
		byGame[goal.TeamID]++
	}

	out := make([]stats.HeadToHead, 0, len(gamesByPair))
	for k, games := range gamesByPair {
		sortGamesChronologically(games)

		row := stats.HeadToHead{
			Team1ID:     k.team1,
			Team2ID:     k.team2,
			SeasonID:    seasonID,
			GamesPlayed: len(games),
		}

		team1PPGoals, team1PPChances := 0, 0
		team2PPGoals, team2PPChances := 0, 0
		results := make([]byte, 0, len(games))

		for _, game := range games {
			team1Goals, team2Goals := pairScores(game, k.team1)
			row.Team1GoalsFor += team1Goals
			row.Team2GoalsFor += team2Goals

			switch {
			case team1Goals > team2Goals:
				row.Team1Wins++
				results = append(results, 'W')
			case team1Goals < team2Goals:
				row.Team2Wins++
				results = append(results, 'L')
			default:
				row.Ties++
				results = append(results, 'T')
			}

			team1PPGoals += ppGoalsByGameTeam[game.ID][k.team1]
			team2PPGoals += ppGoalsByGameTeam[game.ID][k.team2]
			team1PPChances += majorPenaltiesByGameTeam[game.ID][k.team2]
			team2PPChances += majorPenaltiesByGameTeam[game.ID][k.team1]
		}

		if team1PPChances > 0 {
			pct := float64(team1PPGoals) / float64(team1PPChances)
			row.Team1PowerPlayPct = &pct
		}
		if team2PPChances > 0 {
			pct := float64(team2PPGoals) / float64(team2PPChances)
			row.Team2PowerPlayPct = &pct
		}

		row.LastFiveRecord = tallyRecord(lastN(results, 5))
		row.CurrentStreak = renderStreak(results)

		out = append(out, row)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Team1ID != out[j].Team1ID {
			return out[i].Team1ID < out[j].Team1ID
		}
		return out[i].Team2ID < out[j].Team2ID
	})
	return out
}

// orderPair puts the canonical team first. The order is a total order on
// team ids, never insertion order.
func orderPair(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}

func pairScores(game season.Game, team1ID string) (int, int) {
	if game.HomeTeamID == team1ID {
		return *game.HomeScore, *game.VisitorScore
	}
	return *game.VisitorScore, *game.HomeScore
}

func sortGamesChronologically(games []season.Game) {
	sort.SliceStable(games, func(i, j int) bool {
		if !games[i].PlayedAt.Equal(games[j].PlayedAt) {
			return games[i].PlayedAt.Before(games[j].PlayedAt)
		}
		return games[i].ID < games[j].ID
	})
}
