package usecase

import (
	"fmt"

	"github.com/riskibarqy/rinkstats/internal/domain/season"
)

// formLine is one team's trailing form: the "W-L-T" tally over the most
// recent window games and the active streak.
type formLine struct {
	Record string
	Streak string
}

// recentForm walks each team's final games in chronological order and
// renders the trailing record plus the current streak. Teams with no
// final games are absent from the result.
func recentForm(finalGames []season.Game, window int) map[string]formLine {
	if window <= 0 {
		window = 10
	}

	games := append([]season.Game(nil), finalGames...)
	sortGamesChronologically(games)

	resultsByTeam := make(map[string][]byte)
	for _, game := range games {
		homeScore := *game.HomeScore
		awayScore := *game.VisitorScore
		switch {
		case homeScore > awayScore:
			resultsByTeam[game.HomeTeamID] = append(resultsByTeam[game.HomeTeamID], 'W')
			resultsByTeam[game.VisitorTeamID] = append(resultsByTeam[game.VisitorTeamID], 'L')
		case homeScore < awayScore:
			resultsByTeam[game.HomeTeamID] = append(resultsByTeam[game.HomeTeamID], 'L')
			resultsByTeam[game.VisitorTeamID] = append(resultsByTeam[game.VisitorTeamID], 'W')
		default:
			resultsByTeam[game.HomeTeamID] = append(resultsByTeam[game.HomeTeamID], 'T')
			resultsByTeam[game.VisitorTeamID] = append(resultsByTeam[game.VisitorTeamID], 'T')
		}
	}

	out := make(map[string]formLine, len(resultsByTeam))
	for teamID, results := range resultsByTeam {
		out[teamID] = formLine{
			Record: tallyRecord(lastN(results, window)),
			Streak: renderStreak(results),
		}
	}
	return out
}

func lastN(results []byte, n int) []byte {
	if len(results) <= n {
		return results
	}
	return results[len(results)-n:]
}

// tallyRecord renders chronological results as "W-L-T" counts.
func tallyRecord(results []byte) string {
	wins, losses, ties := 0, 0, 0
	for _, result := range results {
		switch result {
		case 'W':
			wins++
		case 'L':
			losses++
		case 'T':
			ties++
		}
	}
	return fmt.Sprintf("%d-%d-%d", wins, losses, ties)
}

// renderStreak counts consecutive identical results backward from the
// most recent game. A lone game is a streak of one, never empty.
func renderStreak(results []byte) string {
	if len(results) == 0 {
		return ""
	}
	last := results[len(results)-1]
	count := 0
	for i := len(results) - 1; i >= 0; i-- {
		if results[i] != last {
			break
		}
		count++
	}
	return fmt.Sprintf("%c%d", last, count)
}
