package usecase

import (
	"fmt"
	"sort"
	"time"

	"github.com/riskibarqy/rinkstats/internal/domain/season"
	"github.com/riskibarqy/rinkstats/internal/domain/stats"
)

// adjustedSOS weights: two thirds the team's own schedule, one third the
// schedule of its opponents.
const (
	sosOwnWeight      = 2.0 / 3.0
	sosOpponentWeight = 1.0 / 3.0
)

// scheduleStrength computes SOS, SOV, in-division ranks, the tiered
// schedule split and the rest differential for every team. It requires
// the Basic Aggregator's team records: any team that appears in a final
// game without a record fails the run with ErrPrerequisiteMissing.
//
// Basic SOS for all teams is computed first; the adjusted two-degree SOS
// reads those finished values in a second pass, which keeps the opponent
// graph bounded even when it has cycles.
func scheduleStrength(
	seasonID string,
	teams []stats.TeamSeasonStat,
	divisions []season.Division,
	finalGames []season.Game,
	defaults scoringValues,
	warnings *warningList,
) ([]stats.ScheduleStrength, error) {
	teamByID := make(map[string]stats.TeamSeasonStat, len(teams))
	for _, team := range teams {
		teamByID[team.TeamID] = team
	}
	for _, game := range finalGames {
		for _, teamID := range []string{game.HomeTeamID, game.VisitorTeamID} {
			if _, ok := teamByID[teamID]; !ok {
				return nil, fmt.Errorf("%w: no team record for %s in season %s", ErrPrerequisiteMissing, teamID, seasonID)
			}
		}
	}

	gamesByTeam := make(map[string][]season.Game)
	for _, game := range finalGames {
		gamesByTeam[game.HomeTeamID] = append(gamesByTeam[game.HomeTeamID], game)
		gamesByTeam[game.VisitorTeamID] = append(gamesByTeam[game.VisitorTeamID], game)
	}
	for teamID := range gamesByTeam {
		sortGamesChronologically(gamesByTeam[teamID])
	}

	// Pass one: basic SOS, weighted per game played against each opponent.
	basicByTeam := make(map[string]*float64, len(teams))
	for _, team := range teams {
		games := gamesByTeam[team.TeamID]
		if len(games) == 0 {
			basicByTeam[team.TeamID] = nil
			continue
		}
		sum := 0.0
		for _, game := range games {
			sum += pointsPctOf(teamByID[game.OpponentOf(team.TeamID)])
		}
		mean := sum / float64(len(games))
		basicByTeam[team.TeamID] = &mean
	}

	// Pass two: adjusted SOS over the finished basic values.
	adjustedByTeam := make(map[string]*float64, len(teams))
	for _, team := range teams {
		basic := basicByTeam[team.TeamID]
		games := gamesByTeam[team.TeamID]
		if basic == nil || len(games) == 0 {
			adjustedByTeam[team.TeamID] = nil
			continue
		}
		oppSum := 0.0
		for _, game := range games {
			if oppBasic := basicByTeam[game.OpponentOf(team.TeamID)]; oppBasic != nil {
				oppSum += *oppBasic
			}
		}
		adjusted := *basic*sosOwnWeight + (oppSum/float64(len(games)))*sosOpponentWeight
		adjustedByTeam[team.TeamID] = &adjusted
	}

	groupByTeam, degenerateDivisions := tieredGroups(teams)
	degenerate := make(map[string]bool, len(degenerateDivisions))
	for _, divisionID := range degenerateDivisions {
		warnings.add(stats.WarningDegenerateInput, "division %s has fewer than 2 teams; tiered split and SOS are undefined", divisionID)
		degenerate[divisionID] = true
	}

	rows := make([]stats.ScheduleStrength, 0, len(teams))
	for _, team := range teams {
		games := gamesByTeam[team.TeamID]
		scoring := scoringForDivision(divisions, team.DivisionID, defaults)

		row := stats.ScheduleStrength{
			TeamID:      team.TeamID,
			SeasonID:    seasonID,
			DivisionID:  team.DivisionID,
			BasicSOS:    basicByTeam[team.TeamID],
			AdjustedSOS: adjustedByTeam[team.TeamID],
		}
		// Strength metrics are undefined for a division of fewer than
		// two teams, even when its team played cross-division games.
		if degenerate[team.DivisionID] {
			row.BasicSOS = nil
			row.AdjustedSOS = nil
		}

		winSum, winCount := 0.0, 0
		for _, game := range games {
			opponentID := game.OpponentOf(team.TeamID)
			result := resultFor(game, team.TeamID)

			if result == 'W' {
				winSum += pointsPctOf(teamByID[opponentID])
				winCount++
			}

			opponent, ok := teamByID[opponentID]
			if !ok || opponent.DivisionID != team.DivisionID {
				continue
			}
			earned := 0
			switch result {
			case 'W':
				earned = scoring.Win
			case 'T':
				earned = scoring.Tie
			}
			switch groupByTeam[opponentID] {
			case tierTop:
				row.GamesVsTopThird++
				row.PointsVsTopThird += earned
			case tierMiddle:
				row.GamesVsMiddleThird++
				row.PointsVsMiddleThird += earned
			case tierBottom:
				row.GamesVsBottomThird++
				row.PointsVsBottomThird += earned
			}
		}
		if winCount > 0 && !degenerate[team.DivisionID] {
			sov := winSum / float64(winCount)
			row.SOV = &sov
		}

		row.BackToBackCount, row.RestGameCount = restCounts(games)
		row.RestDifferential = row.RestGameCount - row.BackToBackCount

		rows = append(rows, row)
	}

	rankWithinDivisions(rows, func(r stats.ScheduleStrength) *float64 { return r.AdjustedSOS }, func(r *stats.ScheduleStrength, rank int) { r.SOSRank = rank })
	rankWithinDivisions(rows, func(r stats.ScheduleStrength) *float64 { return r.SOV }, func(r *stats.ScheduleStrength, rank int) { r.SOVRank = rank })

	sort.Slice(rows, func(i, j int) bool { return rows[i].TeamID < rows[j].TeamID })
	return rows, nil
}

func pointsPctOf(team stats.TeamSeasonStat) float64 {
	if team.PointsPct == nil {
		return 0
	}
	return *team.PointsPct
}

func resultFor(game season.Game, teamID string) byte {
	own, opp := *game.HomeScore, *game.VisitorScore
	if game.VisitorTeamID == teamID {
		own, opp = opp, own
	}
	switch {
	case own > opp:
		return 'W'
	case own < opp:
		return 'L'
	default:
		return 'T'
	}
}

const (
	tierTop = iota
	tierMiddle
	tierBottom
)

// tieredGroups sorts every division by points-percentage descending and
// splits it into three groups of as-equal-as-possible size, remainder
// assigned to the top groups first (8 teams -> 3/3/2). Divisions with
// fewer than two teams are reported as degenerate.
func tieredGroups(teams []stats.TeamSeasonStat) (map[string]int, []string) {
	byDivision := make(map[string][]stats.TeamSeasonStat)
	for _, team := range teams {
		byDivision[team.DivisionID] = append(byDivision[team.DivisionID], team)
	}

	groupByTeam := make(map[string]int, len(teams))
	degenerate := make([]string, 0)

	divisionIDs := make([]string, 0, len(byDivision))
	for divisionID := range byDivision {
		divisionIDs = append(divisionIDs, divisionID)
	}
	sort.Strings(divisionIDs)

	for _, divisionID := range divisionIDs {
		members := byDivision[divisionID]
		if len(members) < 2 {
			degenerate = append(degenerate, divisionID)
		}

		sort.SliceStable(members, func(i, j int) bool {
			left, right := pointsPctOf(members[i]), pointsPctOf(members[j])
			if left != right {
				return left > right
			}
			return members[i].TeamID < members[j].TeamID
		})

		base := len(members) / 3
		remainder := len(members) % 3
		topSize := base
		middleSize := base
		if remainder > 0 {
			topSize++
		}
		if remainder > 1 {
			middleSize++
		}

		for idx, member := range members {
			switch {
			case idx < topSize:
				groupByTeam[member.TeamID] = tierTop
			case idx < topSize+middleSize:
				groupByTeam[member.TeamID] = tierMiddle
			default:
				groupByTeam[member.TeamID] = tierBottom
			}
		}
	}

	return groupByTeam, degenerate
}

// restCounts classifies the gaps between consecutive game dates. A gap of
// zero days between games is a back-to-back, two or more days is rest,
// and exactly one day counts toward neither. The first game of the season
// has no preceding gap.
func restCounts(chronological []season.Game) (backToBack, rested int) {
	for i := 1; i < len(chronological); i++ {
		gap := daysBetween(chronological[i-1].PlayedAt, chronological[i].PlayedAt)
		switch {
		case gap <= 0:
			backToBack++
		case gap >= 2:
			rested++
		}
	}
	return backToBack, rested
}

// daysBetween is the count of full calendar days strictly between two
// game dates: consecutive days yield 0, same-day games yield -1.
func daysBetween(earlier, later time.Time) int {
	earlierDay := time.Date(earlier.Year(), earlier.Month(), earlier.Day(), 0, 0, 0, 0, time.UTC)
	laterDay := time.Date(later.Year(), later.Month(), later.Day(), 0, 0, 0, 0, time.UTC)
	return int(laterDay.Sub(earlierDay).Hours()/24) - 1
}

// rankWithinDivisions assigns dense ranks per division, higher values
// first, nil values after every non-nil value, ties sharing a rank with
// team id ascending as the deterministic sort tail.
func rankWithinDivisions(
	rows []stats.ScheduleStrength,
	value func(stats.ScheduleStrength) *float64,
	assign func(*stats.ScheduleStrength, int),
) {
	indicesByDivision := make(map[string][]int)
	for idx := range rows {
		indicesByDivision[rows[idx].DivisionID] = append(indicesByDivision[rows[idx].DivisionID], idx)
	}

	for _, indices := range indicesByDivision {
		sort.SliceStable(indices, func(a, b int) bool {
			left, right := value(rows[indices[a]]), value(rows[indices[b]])
			switch {
			case left != nil && right != nil && *left != *right:
				return *left > *right
			case (left == nil) != (right == nil):
				return left != nil
			default:
				return rows[indices[a]].TeamID < rows[indices[b]].TeamID
			}
		})

		rank := 0
		var lastValue *float64
		for position, idx := range indices {
			current := value(rows[idx])
			if position == 0 || !floatPtrEqual(current, lastValue) {
				rank++
				lastValue = current
			}
			assign(&rows[idx], rank)
		}
	}
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
