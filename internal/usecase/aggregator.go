package usecase

import (
	"sort"
	"strings"

	"github.com/riskibarqy/rinkstats/internal/domain/season"
	"github.com/riskibarqy/rinkstats/internal/domain/stats"
)

// scoringValues are the standings points awarded per result. Divisions
// may override the league defaults.
type scoringValues struct {
	Win int
	Tie int
}

func defaultScoringValues() scoringValues {
	return scoringValues{Win: 2, Tie: 1}
}

func scoringForDivision(divisions []season.Division, divisionID string, defaults scoringValues) scoringValues {
	for _, div := range divisions {
		if div.ID != divisionID {
			continue
		}
		values := defaults
		if div.WinPoints > 0 {
			values.Win = div.WinPoints
		}
		if div.TiePoints > 0 {
			values.Tie = div.TiePoints
		}
		return values
	}
	return defaults
}

// aggregateResult carries the Basic Aggregator output plus the vetted
// final games downstream analyzers fold over.
type aggregateResult struct {
	players    []stats.PlayerSeasonStat
	teams      []stats.TeamSeasonStat
	finalGames []season.Game
	goals      []season.GoalEvent
	penalties  []season.PenaltyEvent
}

// aggregateSeason folds the raw event rows into per-player and per-team
// season totals. Malformed rows are skipped with a warning; every team in
// the bundle yields a row even with zero games played.
func aggregateSeason(bundle season.Bundle, defaults scoringValues, warnings *warningList) aggregateResult {
	finalGames := vetFinalGames(bundle.Games, warnings)
	gameByID := make(map[string]season.Game, len(finalGames))
	for _, game := range finalGames {
		gameByID[game.ID] = game
	}

	goals := vetGoalEvents(bundle.Goals, gameByID, warnings)
	penalties := vetPenaltyEvents(bundle.Penalties, gameByID, warnings)

	teams := aggregateTeams(bundle, finalGames, goals, penalties, defaults, warnings)
	players := aggregatePlayers(bundle, gameByID, goals, penalties, warnings)

	return aggregateResult{
		players:    players,
		teams:      teams,
		finalGames: finalGames,
		goals:      goals,
		penalties:  penalties,
	}
}

// vetFinalGames keeps games that are final with both scores present.
// Non-final games are ignored outright; a final game missing a score is
// malformed and skipped with a warning.
func vetFinalGames(games []season.Game, warnings *warningList) []season.Game {
	out := make([]season.Game, 0, len(games))
	for _, game := range games {
		if !season.IsFinalStatus(game.Status) {
			continue
		}
		warnings.seen(1)
		if !game.HasScores() {
			warnings.skip(stats.WarningMalformedEvent, "game %s is final but has null scores", game.ID)
			continue
		}
		out = append(out, game)
	}
	return out
}

func vetGoalEvents(goals []season.GoalEvent, gameByID map[string]season.Game, warnings *warningList) []season.GoalEvent {
	out := make([]season.GoalEvent, 0, len(goals))
	for _, goal := range goals {
		game, ok := gameByID[goal.GameID]
		if !ok {
			continue
		}
		warnings.seen(1)
		if goal.TeamID != game.HomeTeamID && goal.TeamID != game.VisitorTeamID {
			warnings.skip(stats.WarningMalformedEvent, "goal %s credits team %s absent from game %s", goal.ID, goal.TeamID, goal.GameID)
			continue
		}
		out = append(out, goal)
	}
	return out
}

func vetPenaltyEvents(penalties []season.PenaltyEvent, gameByID map[string]season.Game, warnings *warningList) []season.PenaltyEvent {
	out := make([]season.PenaltyEvent, 0, len(penalties))
	for _, penalty := range penalties {
		if _, ok := gameByID[penalty.GameID]; !ok {
			continue
		}
		warnings.seen(1)
		if penalty.Minutes <= 0 {
			warnings.skip(stats.WarningMalformedEvent, "penalty %s has non-positive duration %d", penalty.ID, penalty.Minutes)
			continue
		}
		out = append(out, penalty)
	}
	return out
}

func aggregateTeams(
	bundle season.Bundle,
	finalGames []season.Game,
	goals []season.GoalEvent,
	penalties []season.PenaltyEvent,
	defaults scoringValues,
	warnings *warningList,
) []stats.TeamSeasonStat {
	byTeam := make(map[string]*stats.TeamSeasonStat, len(bundle.Teams))
	for _, team := range bundle.Teams {
		byTeam[team.ID] = &stats.TeamSeasonStat{
			TeamID:     team.ID,
			SeasonID:   bundle.SeasonID,
			DivisionID: team.DivisionID,
		}
	}
	ensure := func(teamID string) *stats.TeamSeasonStat {
		if row, ok := byTeam[teamID]; ok {
			return row
		}
		row := &stats.TeamSeasonStat{TeamID: teamID, SeasonID: bundle.SeasonID}
		byTeam[teamID] = row
		return row
	}

	for _, game := range finalGames {
		home := ensure(game.HomeTeamID)
		away := ensure(game.VisitorTeamID)
		homeScore := *game.HomeScore
		awayScore := *game.VisitorScore

		home.GamesPlayed++
		away.GamesPlayed++
		home.GoalsFor += homeScore
		home.GoalsAgainst += awayScore
		away.GoalsFor += awayScore
		away.GoalsAgainst += homeScore

		home.Home.GoalsFor += homeScore
		home.Home.GoalsAgainst += awayScore
		away.Away.GoalsFor += awayScore
		away.Away.GoalsAgainst += homeScore

		switch {
		case homeScore > awayScore:
			home.Wins++
			home.Home.Wins++
			away.Losses++
			away.Away.Losses++
		case homeScore < awayScore:
			away.Wins++
			away.Away.Wins++
			home.Losses++
			home.Home.Losses++
		default:
			home.Ties++
			home.Home.Ties++
			away.Ties++
			away.Away.Ties++
		}
	}

	gameByID := make(map[string]season.Game, len(finalGames))
	for _, game := range finalGames {
		gameByID[game.ID] = game
	}
	applyPeriodSplits(byTeam, gameByID, goals, warnings)
	applySpecialTeams(byTeam, finalGames, goals, penalties)

	out := make([]stats.TeamSeasonStat, 0, len(byTeam))
	for _, row := range byTeam {
		scoring := scoringForDivision(bundle.Divisions, row.DivisionID, defaults)
		row.Points = scoring.Win*row.Wins + scoring.Tie*row.Ties
		row.GoalDifferential = row.GoalsFor - row.GoalsAgainst
		if row.GamesPlayed > 0 {
			pct := float64(row.Points) / float64(row.GamesPlayed*scoring.Win)
			row.PointsPct = &pct
		} else {
			warnings.add(stats.WarningDegenerateInput, "team %s has no final games; percentages reported as null", row.TeamID)
		}
		out = append(out, *row)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].TeamID < out[j].TeamID })
	return out
}

func applyPeriodSplits(byTeam map[string]*stats.TeamSeasonStat, gameByID map[string]season.Game, goals []season.GoalEvent, warnings *warningList) {
	for _, goal := range goals {
		period, ok := normalizePeriod(goal.Period)
		if !ok {
			warnings.add(stats.WarningMalformedEvent, "goal %s has unparseable period label %q; dropped from period splits", goal.ID, goal.Period)
			continue
		}
		if scorer, ok := byTeam[goal.TeamID]; ok {
			bumpPeriod(&scorer.Periods, period, 1, 0)
		}
		game := gameByID[goal.GameID]
		if opponent, ok := byTeam[game.OpponentOf(goal.TeamID)]; ok {
			bumpPeriod(&opponent.Periods, period, 0, 1)
		}
	}
}

func bumpPeriod(splits *stats.PeriodSplits, period string, goalsFor, goalsAgainst int) {
	var line *stats.PeriodLine
	switch period {
	case "1":
		line = &splits.First
	case "2":
		line = &splits.Second
	case "3":
		line = &splits.Third
	case "OT":
		line = &splits.Overtime
	default:
		return
	}
	line.GoalsFor += goalsFor
	line.GoalsAgainst += goalsAgainst
}

// normalizePeriod maps raw period labels onto the four buckets 1, 2, 3
// and OT. Anything else fails to parse.
func normalizePeriod(label string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "1", "1ST", "P1":
		return "1", true
	case "2", "2ND", "P2":
		return "2", true
	case "3", "3RD", "P3":
		return "3", true
	case "OT", "4", "OVERTIME", "SO":
		return "OT", true
	default:
		return "", false
	}
}

// applySpecialTeams computes power-play and penalty-kill splits. An
// opportunity is an opponent penalty of at least two minutes within the
// same game; times shorthanded counts the team's own such penalties.
// Both percentages stay nil when their denominator is zero.
func applySpecialTeams(
	byTeam map[string]*stats.TeamSeasonStat,
	finalGames []season.Game,
	goals []season.GoalEvent,
	penalties []season.PenaltyEvent,
) {
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

	for _, game := range finalGames {
		sides := [2][2]string{
			{game.HomeTeamID, game.VisitorTeamID},
			{game.VisitorTeamID, game.HomeTeamID},
		}
		for _, side := range sides {
			teamID, opponentID := side[0], side[1]
			row, ok := byTeam[teamID]
			if !ok {
				continue
			}
			row.PowerPlayOpportunities += majorPenaltiesByGameTeam[game.ID][opponentID]
			row.TimesShortHanded += majorPenaltiesByGameTeam[game.ID][teamID]
			row.PowerPlayGoals += ppGoalsByGameTeam[game.ID][teamID]
			row.PowerPlayGoalsAllowed += ppGoalsByGameTeam[game.ID][opponentID]
		}
	}

	for _, row := range byTeam {
		if row.PowerPlayOpportunities > 0 {
			pct := float64(row.PowerPlayGoals) / float64(row.PowerPlayOpportunities)
			row.PowerPlayPct = &pct
		}
		if row.TimesShortHanded > 0 {
			pct := 1 - float64(row.PowerPlayGoalsAllowed)/float64(row.TimesShortHanded)
			row.PenaltyKillPct = &pct
		}
	}
}

func aggregatePlayers(
	bundle season.Bundle,
	gameByID map[string]season.Game,
	goals []season.GoalEvent,
	penalties []season.PenaltyEvent,
	warnings *warningList,
) []stats.PlayerSeasonStat {
	type key struct{ playerID, teamID string }
	byPlayer := make(map[key]*stats.PlayerSeasonStat)
	ensure := func(playerID, teamID string) *stats.PlayerSeasonStat {
		k := key{playerID: playerID, teamID: teamID}
		if row, ok := byPlayer[k]; ok {
			return row
		}
		row := &stats.PlayerSeasonStat{
			PlayerID: playerID,
			TeamID:   teamID,
			SeasonID: bundle.SeasonID,
		}
		byPlayer[k] = row
		return row
	}

	type gameKey struct{ playerID, gameID string }
	eventGoals := make(map[gameKey]int)
	eventAssists := make(map[gameKey]int)

	for _, goal := range goals {
		if goal.ScorerID != "" {
			row := ensure(goal.ScorerID, goal.TeamID)
			row.Goals++
			row.Points++
			eventGoals[gameKey{playerID: goal.ScorerID, gameID: goal.GameID}]++
			if goal.PowerPlay {
				row.PowerPlayGoals++
			}
			if goal.ShortHanded {
				row.ShortHandedGoals++
			}
			if goal.GameWinning {
				row.GameWinningGoals++
			}
			if goal.EmptyNet {
				row.EmptyNetGoals++
			}
		}
		for _, assistID := range []string{goal.Assist1ID, goal.Assist2ID} {
			if assistID == "" {
				continue
			}
			row := ensure(assistID, goal.TeamID)
			row.Assists++
			row.Points++
			eventAssists[gameKey{playerID: assistID, gameID: goal.GameID}]++
		}
	}

	for _, penalty := range penalties {
		if penalty.PlayerID == "" {
			continue
		}
		row := ensure(penalty.PlayerID, penalty.TeamID)
		row.PenaltyMinutes += penalty.Minutes
	}

	for _, entry := range bundle.Roster {
		if _, ok := gameByID[entry.GameID]; !ok {
			continue
		}
		if !entry.Participated {
			continue
		}
		row := ensure(entry.PlayerID, entry.TeamID)
		row.GamesPlayed++

		k := gameKey{playerID: entry.PlayerID, gameID: entry.GameID}
		if entry.Goals != eventGoals[k] || entry.Assists != eventAssists[k] {
			warnings.add(stats.WarningRosterMismatch,
				"roster line for player %s in game %s reports %dG/%dA, events yield %dG/%dA",
				entry.PlayerID, entry.GameID, entry.Goals, entry.Assists, eventGoals[k], eventAssists[k])
		}
	}

	out := make([]stats.PlayerSeasonStat, 0, len(byPlayer))
	for _, row := range byPlayer {
		if row.GamesPlayed > 0 {
			row.PointsPerGame = float64(row.Points) / float64(row.GamesPlayed)
		}
		out = append(out, *row)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].TeamID != out[j].TeamID {
			return out[i].TeamID < out[j].TeamID
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out
}
