package usecase

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/riskibarqy/rinkstats/internal/domain/season"
	"github.com/riskibarqy/rinkstats/internal/domain/stats"
	"github.com/riskibarqy/rinkstats/internal/infrastructure/repository/memory"
)

func strengthFor(t *testing.T, rows []stats.ScheduleStrength, teamID string) stats.ScheduleStrength {
	t.Helper()
	for _, row := range rows {
		if row.TeamID == teamID {
			return row
		}
	}
	t.Fatalf("no strength row for team %s", teamID)
	return stats.ScheduleStrength{}
}

func approxEqual(got *float64, want float64) bool {
	return got != nil && math.Abs(*got-want) < 1e-9
}

func seedStrengths(t *testing.T) []stats.ScheduleStrength {
	t.Helper()
	bundle := memory.SeedBundle()
	warnings := &warningList{}
	result := aggregateSeason(bundle, defaultScoringValues(), warnings)
	rows, err := scheduleStrength(bundle.SeasonID, result.teams, bundle.Divisions, result.finalGames, defaultScoringValues(), warnings)
	if err != nil {
		t.Fatalf("schedule strength: %v", err)
	}
	return rows
}

func TestScheduleStrength_BasicSOS(t *testing.T) {
	rows := seedStrengths(t)

	// A faced B (pts% 0.5) and C (pts% 0.25).
	rowA := strengthFor(t, rows, "team-a")
	if !approxEqual(rowA.BasicSOS, 0.375) {
		t.Fatalf("team-a basic sos: %v, want 0.375", rowA.BasicSOS)
	}
	rowB := strengthFor(t, rows, "team-b")
	if !approxEqual(rowB.BasicSOS, 0.5) {
		t.Fatalf("team-b basic sos: %v, want 0.5", rowB.BasicSOS)
	}
	rowC := strengthFor(t, rows, "team-c")
	if !approxEqual(rowC.BasicSOS, 0.625) {
		t.Fatalf("team-c basic sos: %v, want 0.625", rowC.BasicSOS)
	}
}

func TestScheduleStrength_AdjustedSOSTwoPass(t *testing.T) {
	rows := seedStrengths(t)

	// adjusted = basic*(2/3) + mean of opponents' basic*(1/3), where the
	// opponent mean is weighted per game played.
	rowA := strengthFor(t, rows, "team-a")
	if !approxEqual(rowA.AdjustedSOS, 0.375*(2.0/3.0)+((0.5+0.625)/2)*(1.0/3.0)) {
		t.Fatalf("team-a adjusted sos: %v", rowA.AdjustedSOS)
	}
	rowC := strengthFor(t, rows, "team-c")
	if !approxEqual(rowC.AdjustedSOS, 0.625*(2.0/3.0)+((0.5+0.375)/2)*(1.0/3.0)) {
		t.Fatalf("team-c adjusted sos: %v", rowC.AdjustedSOS)
	}
}

func TestScheduleStrength_SOVWinsOnly(t *testing.T) {
	rows := seedStrengths(t)

	// A beat only B; ties contribute nothing to SOV.
	rowA := strengthFor(t, rows, "team-a")
	if !approxEqual(rowA.SOV, 0.5) {
		t.Fatalf("team-a sov: %v, want 0.5", rowA.SOV)
	}
	rowB := strengthFor(t, rows, "team-b")
	if !approxEqual(rowB.SOV, 0.25) {
		t.Fatalf("team-b sov: %v, want 0.25", rowB.SOV)
	}
	rowC := strengthFor(t, rows, "team-c")
	if rowC.SOV != nil {
		t.Fatalf("team-c sov should be nil without wins, got %v", *rowC.SOV)
	}
}

func TestScheduleStrength_DenseRanksWithinDivision(t *testing.T) {
	rows := seedStrengths(t)

	// Adjusted SOS descending: C, B, A. SOV descending: A, B, then C's
	// nil ranks last.
	if rank := strengthFor(t, rows, "team-c").SOSRank; rank != 1 {
		t.Fatalf("team-c sos rank: %d", rank)
	}
	if rank := strengthFor(t, rows, "team-b").SOSRank; rank != 2 {
		t.Fatalf("team-b sos rank: %d", rank)
	}
	if rank := strengthFor(t, rows, "team-a").SOSRank; rank != 3 {
		t.Fatalf("team-a sos rank: %d", rank)
	}
	if rank := strengthFor(t, rows, "team-a").SOVRank; rank != 1 {
		t.Fatalf("team-a sov rank: %d", rank)
	}
	if rank := strengthFor(t, rows, "team-c").SOVRank; rank != 3 {
		t.Fatalf("team-c sov rank: %d", rank)
	}
}

func TestScheduleStrength_PrerequisiteMissing(t *testing.T) {
	games := []season.Game{
		{
			ID: "g1", HomeTeamID: "known", VisitorTeamID: "ghost",
			HomeScore: intPtr(1), VisitorScore: intPtr(0),
			PlayedAt: gameDay(0), Status: season.StatusFinal,
		},
	}
	teams := []stats.TeamSeasonStat{{TeamID: "known", SeasonID: "s", DivisionID: "d"}}

	warnings := &warningList{}
	_, err := scheduleStrength("s", teams, nil, games, defaultScoringValues(), warnings)
	if !errors.Is(err, ErrPrerequisiteMissing) {
		t.Fatalf("expected ErrPrerequisiteMissing, got %v", err)
	}
}

func TestTieredGroups_EightTeamSplit(t *testing.T) {
	teams := make([]stats.TeamSeasonStat, 0, 8)
	for i := 0; i < 8; i++ {
		pct := float64(8-i) / 10
		teams = append(teams, stats.TeamSeasonStat{
			TeamID:     fmt.Sprintf("t%d", i+1),
			DivisionID: "div-1",
			PointsPct:  &pct,
		})
	}

	groups, degenerate := tieredGroups(teams)
	if len(degenerate) != 0 {
		t.Fatalf("unexpected degenerate divisions: %v", degenerate)
	}

	wantTiers := map[string]int{
		"t1": tierTop, "t2": tierTop, "t3": tierTop,
		"t4": tierMiddle, "t5": tierMiddle, "t6": tierMiddle,
		"t7": tierBottom, "t8": tierBottom,
	}
	for teamID, want := range wantTiers {
		if groups[teamID] != want {
			t.Fatalf("team %s tier: got %d, want %d", teamID, groups[teamID], want)
		}
	}
}

func TestScheduleStrength_PointsVsBottomThird(t *testing.T) {
	seasonID := "2026-test"
	teams := make([]stats.TeamSeasonStat, 0, 8)
	for i := 0; i < 8; i++ {
		pct := float64(8-i) / 10
		teams = append(teams, stats.TeamSeasonStat{
			TeamID:     fmt.Sprintf("t%d", i+1),
			SeasonID:   seasonID,
			DivisionID: "div-1",
			PointsPct:  &pct,
		})
	}
	// t1 beats both bottom-tier teams.
	games := []season.Game{
		{
			ID: "g1", HomeTeamID: "t1", VisitorTeamID: "t7",
			HomeScore: intPtr(3), VisitorScore: intPtr(1),
			PlayedAt: gameDay(0), Status: season.StatusFinal,
		},
		{
			ID: "g2", HomeTeamID: "t8", VisitorTeamID: "t1",
			HomeScore: intPtr(0), VisitorScore: intPtr(2),
			PlayedAt: gameDay(3), Status: season.StatusFinal,
		},
	}

	warnings := &warningList{}
	rows, err := scheduleStrength(seasonID, teams, nil, games, defaultScoringValues(), warnings)
	if err != nil {
		t.Fatalf("schedule strength: %v", err)
	}

	row := strengthFor(t, rows, "t1")
	if row.GamesVsBottomThird != 2 || row.PointsVsBottomThird != 4 {
		t.Fatalf("t1 vs bottom third: %d games, %d points", row.GamesVsBottomThird, row.PointsVsBottomThird)
	}
	if row.GamesVsTopThird != 0 || row.GamesVsMiddleThird != 0 {
		t.Fatalf("t1 other tiers should be empty: %+v", row)
	}
}

func TestScheduleStrength_DegenerateDivisionWarning(t *testing.T) {
	teams := []stats.TeamSeasonStat{{TeamID: "solo", SeasonID: "s", DivisionID: "div-lonely"}}
	warnings := &warningList{}
	if _, err := scheduleStrength("s", teams, nil, nil, defaultScoringValues(), warnings); err != nil {
		t.Fatalf("schedule strength: %v", err)
	}

	found := false
	for _, warning := range warnings.items {
		if warning.Kind == stats.WarningDegenerateInput {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected degenerate division warning, got %+v", warnings.items)
	}
}

func TestScheduleStrength_DegenerateDivisionReportsNullStrength(t *testing.T) {
	half := 0.5
	teams := []stats.TeamSeasonStat{
		{TeamID: "solo", SeasonID: "s", DivisionID: "div-lonely", PointsPct: &half},
		{TeamID: "t1", SeasonID: "s", DivisionID: "div-main", PointsPct: &half},
		{TeamID: "t2", SeasonID: "s", DivisionID: "div-main", PointsPct: &half},
	}
	// The lone team won a cross-division game; its division schedule is
	// still undefined.
	games := []season.Game{{
		ID: "x1", SeasonID: "s", DivisionID: "div-main",
		HomeTeamID: "solo", VisitorTeamID: "t1",
		HomeScore: intPtr(3), VisitorScore: intPtr(1),
		PlayedAt: gameDay(0), Status: season.StatusFinal,
	}}

	rows, err := scheduleStrength("s", teams, nil, games, defaultScoringValues(), &warningList{})
	if err != nil {
		t.Fatalf("schedule strength: %v", err)
	}

	row := strengthFor(t, rows, "solo")
	if row.BasicSOS != nil || row.AdjustedSOS != nil || row.SOV != nil {
		t.Fatalf("solo division strength must be null, got sos=%v adjusted=%v sov=%v",
			row.BasicSOS, row.AdjustedSOS, row.SOV)
	}

	if other := strengthFor(t, rows, "t1"); !approxEqual(other.BasicSOS, 0.5) {
		t.Fatalf("t1 basic sos: %v, want 0.5", other.BasicSOS)
	}
}

func TestRestCounts(t *testing.T) {
	at := func(day, hour int) time.Time {
		return time.Date(2026, 2, day, hour, 0, 0, 0, time.UTC)
	}
	mk := func(id string, played time.Time) season.Game {
		return season.Game{ID: id, PlayedAt: played}
	}

	t.Run("consecutive days are back to back", func(t *testing.T) {
		b2b, rest := restCounts([]season.Game{mk("g1", at(1, 19)), mk("g2", at(2, 13))})
		if b2b != 1 || rest != 0 {
			t.Fatalf("b2b=%d rest=%d", b2b, rest)
		}
	})

	t.Run("same day is back to back", func(t *testing.T) {
		b2b, rest := restCounts([]season.Game{mk("g1", at(1, 10)), mk("g2", at(1, 20))})
		if b2b != 1 || rest != 0 {
			t.Fatalf("b2b=%d rest=%d", b2b, rest)
		}
	})

	t.Run("one rest day counts toward neither", func(t *testing.T) {
		b2b, rest := restCounts([]season.Game{mk("g1", at(1, 19)), mk("g2", at(3, 19))})
		if b2b != 0 || rest != 0 {
			t.Fatalf("b2b=%d rest=%d", b2b, rest)
		}
	})

	t.Run("two or more rest days is a rest game", func(t *testing.T) {
		b2b, rest := restCounts([]season.Game{mk("g1", at(1, 19)), mk("g2", at(4, 19))})
		if b2b != 0 || rest != 1 {
			t.Fatalf("b2b=%d rest=%d", b2b, rest)
		}
	})

	t.Run("first game has no gap", func(t *testing.T) {
		b2b, rest := restCounts([]season.Game{mk("g1", at(1, 19))})
		if b2b != 0 || rest != 0 {
			t.Fatalf("b2b=%d rest=%d", b2b, rest)
		}
	})
}

func TestDaysBetween(t *testing.T) {
	at := func(day int) time.Time { return time.Date(2026, 2, day, 19, 0, 0, 0, time.UTC) }
	if got := daysBetween(at(1), at(1)); got != -1 {
		t.Fatalf("same day: %d", got)
	}
	if got := daysBetween(at(1), at(2)); got != 0 {
		t.Fatalf("consecutive: %d", got)
	}
	if got := daysBetween(at(1), at(3)); got != 1 {
		t.Fatalf("one full day between: %d", got)
	}
	if got := daysBetween(at(1), at(5)); got != 3 {
		t.Fatalf("three full days between: %d", got)
	}
}

func TestRankWithinDivisions_SharedRanksAreDense(t *testing.T) {
	v := func(f float64) *float64 { return &f }
	rows := []stats.ScheduleStrength{
		{TeamID: "a", DivisionID: "d", AdjustedSOS: v(0.6)},
		{TeamID: "b", DivisionID: "d", AdjustedSOS: v(0.6)},
		{TeamID: "c", DivisionID: "d", AdjustedSOS: v(0.4)},
		{TeamID: "e", DivisionID: "d", AdjustedSOS: nil},
	}

	rankWithinDivisions(rows,
		func(r stats.ScheduleStrength) *float64 { return r.AdjustedSOS },
		func(r *stats.ScheduleStrength, rank int) { r.SOSRank = rank })

	want := map[string]int{"a": 1, "b": 1, "c": 2, "e": 3}
	for _, row := range rows {
		if row.SOSRank != want[row.TeamID] {
			t.Fatalf("team %s rank: got %d, want %d", row.TeamID, row.SOSRank, want[row.TeamID])
		}
	}
}
