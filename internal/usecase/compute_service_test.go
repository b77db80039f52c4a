package usecase

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/rinkstats/internal/domain/season"
	"github.com/riskibarqy/rinkstats/internal/domain/stats"
	"github.com/riskibarqy/rinkstats/internal/infrastructure/repository/memory"
	idgen "github.com/riskibarqy/rinkstats/internal/platform/id"
	"github.com/riskibarqy/rinkstats/internal/platform/logging"
)

func newTestService(bundle season.Bundle) (*ComputeService, *memory.StatsWriter) {
	store := memory.NewRawStore(bundle)
	writer := memory.NewStatsWriter()
	svc := NewComputeService(store, writer, idgen.NewRandomGenerator(), logging.NewNop(), ComputeConfig{})
	return svc, writer
}

func TestComputeAll_WritesSeedSnapshot(t *testing.T) {
	svc, writer := newTestService(memory.SeedBundle())

	result, err := svc.ComputeAll(context.Background(), ComputeInput{SeasonID: "2026-winter"})
	require.NoError(t, err)
	require.Equal(t, 3, result.TeamRows)
	require.Equal(t, 3, result.StrengthRows)
	require.Equal(t, 3, result.MatchupRows)
	require.Equal(t, 6, result.PlayerRows)

	snapshot, ok, err := writer.GetSnapshot(context.Background(), "2026-winter")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, snapshot.Teams, 3)

	var teamA stats.TeamSeasonStat
	for _, team := range snapshot.Teams {
		if team.TeamID == "team-a" {
			teamA = team
		}
	}
	require.Equal(t, 3, teamA.Points)
	require.Equal(t, "1-0-1", teamA.LastTen)
	require.Equal(t, "T1", teamA.CurrentStreak)

	runs, err := writer.ListRuns(context.Background(), "2026-winter")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, stats.RunStatusSucceeded, runs[0].Status)
	require.NotEmpty(t, runs[0].ID)
}

func TestComputeAll_Idempotent(t *testing.T) {
	svc, writer := newTestService(memory.SeedBundle())
	ctx := context.Background()

	first, err := svc.ComputeAll(ctx, ComputeInput{SeasonID: "2026-winter"})
	require.NoError(t, err)
	firstSnapshot, _, err := writer.GetSnapshot(ctx, "2026-winter")
	require.NoError(t, err)

	second, err := svc.ComputeAll(ctx, ComputeInput{SeasonID: "2026-winter"})
	require.NoError(t, err)
	secondSnapshot, _, err := writer.GetSnapshot(ctx, "2026-winter")
	require.NoError(t, err)

	require.Equal(t, first.TeamRows, second.TeamRows)
	require.True(t, reflect.DeepEqual(firstSnapshot, secondSnapshot),
		"identical inputs must produce identical snapshots")
}

func TestComputeAll_AppendedGameLeavesUnrelatedTeamsUntouched(t *testing.T) {
	bundle := memory.SeedBundle()
	// A second division whose two teams never meet the seed teams.
	bundle.Divisions = append(bundle.Divisions, season.Division{
		ID: "div-south", SeasonID: bundle.SeasonID, Name: "South",
	})
	bundle.Teams = append(bundle.Teams,
		season.Team{ID: "team-d", SeasonID: bundle.SeasonID, DivisionID: "div-south", Name: "Drakes"},
		season.Team{ID: "team-e", SeasonID: bundle.SeasonID, DivisionID: "div-south", Name: "Embers"},
	)
	bundle.Games = append(bundle.Games, season.Game{
		ID: "game-de", SeasonID: bundle.SeasonID, DivisionID: "div-south",
		HomeTeamID: "team-d", VisitorTeamID: "team-e",
		HomeScore: intPtr(4), VisitorScore: intPtr(2),
		PlayedAt: gameDay(1), Status: season.StatusFinal,
	})

	store := memory.NewRawStore(bundle)
	writer := memory.NewStatsWriter()
	svc := NewComputeService(store, writer, idgen.NewRandomGenerator(), logging.NewNop(), ComputeConfig{})
	ctx := context.Background()

	_, err := svc.ComputeAll(ctx, ComputeInput{SeasonID: bundle.SeasonID})
	require.NoError(t, err)
	before, _, err := writer.GetSnapshot(ctx, bundle.SeasonID)
	require.NoError(t, err)

	// One more A-B game lands in the raw store.
	bundle.Games = append(bundle.Games, season.Game{
		ID: "game-4", SeasonID: bundle.SeasonID, DivisionID: "div-north",
		HomeTeamID: "team-b", VisitorTeamID: "team-a",
		HomeScore: intPtr(2), VisitorScore: intPtr(1),
		PlayedAt: gameDay(9), Status: season.StatusFinal,
	})
	store.PutBundle(bundle)

	_, err = svc.ComputeAll(ctx, ComputeInput{SeasonID: bundle.SeasonID})
	require.NoError(t, err)
	after, _, err := writer.GetSnapshot(ctx, bundle.SeasonID)
	require.NoError(t, err)

	pick := func(snapshot stats.Snapshot, teamID string) stats.TeamSeasonStat {
		for _, team := range snapshot.Teams {
			if team.TeamID == teamID {
				return team
			}
		}
		t.Fatalf("no row for %s", teamID)
		return stats.TeamSeasonStat{}
	}
	pickStrength := func(snapshot stats.Snapshot, teamID string) stats.ScheduleStrength {
		for _, row := range snapshot.Strengths {
			if row.TeamID == teamID {
				return row
			}
		}
		t.Fatalf("no strength row for %s", teamID)
		return stats.ScheduleStrength{}
	}
	pickMatchup := func(snapshot stats.Snapshot, team1, team2 string) stats.HeadToHead {
		for _, row := range snapshot.Matchups {
			if row.Team1ID == team1 && row.Team2ID == team2 {
				return row
			}
		}
		t.Fatalf("no matchup row for %s vs %s", team1, team2)
		return stats.HeadToHead{}
	}

	// The appended game's teams move.
	require.Equal(t, pick(before, "team-a").GamesPlayed+1, pick(after, "team-a").GamesPlayed)
	require.Equal(t, pick(before, "team-b").Wins+1, pick(after, "team-b").Wins)
	require.Equal(t, 2, pickMatchup(after, "team-a", "team-b").GamesPlayed)

	// The isolated division is numerically identical.
	require.True(t, reflect.DeepEqual(pick(before, "team-d"), pick(after, "team-d")))
	require.True(t, reflect.DeepEqual(pick(before, "team-e"), pick(after, "team-e")))
	require.True(t, reflect.DeepEqual(pickStrength(before, "team-d"), pickStrength(after, "team-d")))
	require.True(t, reflect.DeepEqual(pickMatchup(before, "team-d", "team-e"), pickMatchup(after, "team-d", "team-e")))
}

func TestComputeAll_DryRunWritesNothing(t *testing.T) {
	svc, writer := newTestService(memory.SeedBundle())
	ctx := context.Background()

	result, err := svc.ComputeAll(ctx, ComputeInput{SeasonID: "2026-winter", DryRun: true})
	require.NoError(t, err)
	require.True(t, result.DryRun)
	require.Equal(t, 3, result.TeamRows)

	_, ok, err := writer.GetSnapshot(ctx, "2026-winter")
	require.NoError(t, err)
	require.False(t, ok)

	runs, err := writer.ListRuns(ctx, "2026-winter")
	require.NoError(t, err)
	require.Empty(t, runs)
}

func TestComputeAll_TransactionFailureLeavesPriorSnapshot(t *testing.T) {
	svc, writer := newTestService(memory.SeedBundle())
	ctx := context.Background()

	_, err := svc.ComputeAll(ctx, ComputeInput{SeasonID: "2026-winter"})
	require.NoError(t, err)
	prior, _, err := writer.GetSnapshot(ctx, "2026-winter")
	require.NoError(t, err)

	writer.FailNextReplace(errors.New("connection reset"))
	_, err = svc.ComputeAll(ctx, ComputeInput{SeasonID: "2026-winter"})
	require.ErrorIs(t, err, ErrTransactionFailure)

	current, ok, err := writer.GetSnapshot(ctx, "2026-winter")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, reflect.DeepEqual(prior, current), "failed run must not disturb the prior snapshot")

	runs, err := writer.ListRuns(ctx, "2026-winter")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, stats.RunStatusFailed, runs[1].Status)
}

func TestComputeAll_MalformedThresholdEscalates(t *testing.T) {
	seasonID := "2026-broken"
	bundle := season.Bundle{
		SeasonID: seasonID,
		Teams: []season.Team{
			{ID: "t1", SeasonID: seasonID, DivisionID: "d1"},
			{ID: "t2", SeasonID: seasonID, DivisionID: "d1"},
		},
		Games: []season.Game{
			{
				ID: "good", SeasonID: seasonID, DivisionID: "d1",
				HomeTeamID: "t1", VisitorTeamID: "t2",
				HomeScore: intPtr(2), VisitorScore: intPtr(1),
				PlayedAt: gameDay(0), Status: season.StatusFinal,
			},
			{
				ID: "broken", SeasonID: seasonID, DivisionID: "d1",
				HomeTeamID: "t1", VisitorTeamID: "t2",
				PlayedAt: gameDay(2), Status: season.StatusFinal,
			},
		},
	}

	store := memory.NewRawStore(bundle)
	writer := memory.NewStatsWriter()
	svc := NewComputeService(store, writer, idgen.NewRandomGenerator(), logging.NewNop(), ComputeConfig{MalformedThreshold: 0.25})

	_, err := svc.ComputeAll(context.Background(), ComputeInput{SeasonID: seasonID})
	require.ErrorIs(t, err, ErrMalformedInput)

	_, ok, err := writer.GetSnapshot(context.Background(), seasonID)
	require.NoError(t, err)
	require.False(t, ok, "escalated run must not write")
}

func TestComputeAll_MalformedBelowThresholdWarnsOnly(t *testing.T) {
	bundle := memory.SeedBundle()
	// One null-score final among the seed events stays under the default
	// quarter threshold.
	bundle.Games = append(bundle.Games, season.Game{
		ID: "game-null", SeasonID: bundle.SeasonID, DivisionID: "div-north",
		HomeTeamID: "team-a", VisitorTeamID: "team-b",
		PlayedAt: gameDay(12), Status: season.StatusFinal,
	})

	svc, _ := newTestService(bundle)
	result, err := svc.ComputeAll(context.Background(), ComputeInput{SeasonID: bundle.SeasonID})
	require.NoError(t, err)

	found := false
	for _, warning := range result.Warnings {
		if warning.Kind == stats.WarningMalformedEvent {
			found = true
		}
	}
	require.True(t, found, "expected a malformed event warning, got %+v", result.Warnings)
}

func TestComputeAll_InvalidInput(t *testing.T) {
	svc, _ := newTestService(memory.SeedBundle())
	_, err := svc.ComputeAll(context.Background(), ComputeInput{})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestComputeAll_DivisionFilter(t *testing.T) {
	bundle := memory.SeedBundle()
	bundle.Divisions = append(bundle.Divisions, season.Division{
		ID: "div-south", SeasonID: bundle.SeasonID, Name: "South",
	})
	bundle.Teams = append(bundle.Teams,
		season.Team{ID: "team-d", SeasonID: bundle.SeasonID, DivisionID: "div-south"},
		season.Team{ID: "team-e", SeasonID: bundle.SeasonID, DivisionID: "div-south"},
	)
	bundle.Games = append(bundle.Games, season.Game{
		ID: "game-de", SeasonID: bundle.SeasonID, DivisionID: "div-south",
		HomeTeamID: "team-d", VisitorTeamID: "team-e",
		HomeScore: intPtr(1), VisitorScore: intPtr(0),
		PlayedAt: gameDay(1), Status: season.StatusFinal,
	})

	svc, _ := newTestService(bundle)
	result, err := svc.ComputeAll(context.Background(), ComputeInput{
		SeasonID:   bundle.SeasonID,
		DivisionID: "div-south",
		DryRun:     true,
	})
	require.NoError(t, err)
	require.Equal(t, 2, result.TeamRows)
	require.Equal(t, 1, result.MatchupRows)
}

func TestComputeAll_CommittedDivisionFilterPreservesOtherDivisions(t *testing.T) {
	bundle := memory.SeedBundle()
	bundle.Divisions = append(bundle.Divisions, season.Division{
		ID: "div-south", SeasonID: bundle.SeasonID, Name: "South",
	})
	bundle.Teams = append(bundle.Teams,
		season.Team{ID: "team-d", SeasonID: bundle.SeasonID, DivisionID: "div-south"},
		season.Team{ID: "team-e", SeasonID: bundle.SeasonID, DivisionID: "div-south"},
	)
	bundle.Games = append(bundle.Games, season.Game{
		ID: "game-de", SeasonID: bundle.SeasonID, DivisionID: "div-south",
		HomeTeamID: "team-d", VisitorTeamID: "team-e",
		HomeScore: intPtr(1), VisitorScore: intPtr(0),
		PlayedAt: gameDay(1), Status: season.StatusFinal,
	})

	store := memory.NewRawStore(bundle)
	writer := memory.NewStatsWriter()
	svc := NewComputeService(store, writer, idgen.NewRandomGenerator(), logging.NewNop(), ComputeConfig{})
	ctx := context.Background()

	_, err := svc.ComputeAll(ctx, ComputeInput{SeasonID: bundle.SeasonID})
	require.NoError(t, err)
	before, _, err := writer.GetSnapshot(ctx, bundle.SeasonID)
	require.NoError(t, err)
	require.Len(t, before.Teams, 5)

	// A south rematch lands, then only the south division is recomputed
	// and committed.
	bundle.Games = append(bundle.Games, season.Game{
		ID: "game-de-2", SeasonID: bundle.SeasonID, DivisionID: "div-south",
		HomeTeamID: "team-e", VisitorTeamID: "team-d",
		HomeScore: intPtr(3), VisitorScore: intPtr(0),
		PlayedAt: gameDay(4), Status: season.StatusFinal,
	})
	store.PutBundle(bundle)

	result, err := svc.ComputeAll(ctx, ComputeInput{SeasonID: bundle.SeasonID, DivisionID: "div-south"})
	require.NoError(t, err)
	require.Equal(t, 2, result.TeamRows)

	after, ok, err := writer.GetSnapshot(ctx, bundle.SeasonID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, after.Teams, 5, "north rows must survive a committed south run")
	require.Len(t, after.Strengths, 5)

	pick := func(snapshot stats.Snapshot, teamID string) stats.TeamSeasonStat {
		for _, team := range snapshot.Teams {
			if team.TeamID == teamID {
				return team
			}
		}
		t.Fatalf("no row for %s", teamID)
		return stats.TeamSeasonStat{}
	}
	pickStrength := func(snapshot stats.Snapshot, teamID string) stats.ScheduleStrength {
		for _, row := range snapshot.Strengths {
			if row.TeamID == teamID {
				return row
			}
		}
		t.Fatalf("no strength row for %s", teamID)
		return stats.ScheduleStrength{}
	}
	pickMatchup := func(snapshot stats.Snapshot, team1, team2 string) stats.HeadToHead {
		for _, row := range snapshot.Matchups {
			if row.Team1ID == team1 && row.Team2ID == team2 {
				return row
			}
		}
		t.Fatalf("no matchup row for %s vs %s", team1, team2)
		return stats.HeadToHead{}
	}

	// The untouched division is numerically identical.
	for _, teamID := range []string{"team-a", "team-b", "team-c"} {
		require.True(t, reflect.DeepEqual(pick(before, teamID), pick(after, teamID)),
			"team %s changed across a south-only run", teamID)
		require.True(t, reflect.DeepEqual(pickStrength(before, teamID), pickStrength(after, teamID)),
			"strength %s changed across a south-only run", teamID)
	}
	require.True(t, reflect.DeepEqual(pickMatchup(before, "team-a", "team-b"), pickMatchup(after, "team-a", "team-b")))

	// The recomputed division reflects the rematch.
	require.Equal(t, 2, pick(after, "team-d").GamesPlayed)
	require.Equal(t, 1, pick(after, "team-e").Wins)
	require.Equal(t, 2, pickMatchup(after, "team-d", "team-e").GamesPlayed)
}

// slowRawStore blocks the first bulk read until released so a test can
// hold a computation in flight.
type slowRawStore struct {
	season.RawStore
	calls   int32
	started chan struct{}
	release chan struct{}
}

func (s *slowRawStore) ListDivisions(ctx context.Context, seasonID string) ([]season.Division, error) {
	if atomic.AddInt32(&s.calls, 1) == 1 {
		close(s.started)
		<-s.release
	}
	return s.RawStore.ListDivisions(ctx, seasonID)
}

func TestComputeAll_DivisionRunJoinsInFlightSeasonRun(t *testing.T) {
	store := &slowRawStore{
		RawStore: memory.NewRawStore(memory.SeedBundle()),
		started:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	writer := memory.NewStatsWriter()
	svc := NewComputeService(store, writer, idgen.NewRandomGenerator(), logging.NewNop(), ComputeConfig{})
	ctx := context.Background()

	errs := make(chan error, 2)
	go func() {
		_, err := svc.ComputeAll(ctx, ComputeInput{SeasonID: "2026-winter"})
		errs <- err
	}()
	<-store.started

	// A filtered run for the same season arrives while the full run is
	// still reading. It must share the in-flight run instead of starting
	// a second computation.
	go func() {
		_, err := svc.ComputeAll(ctx, ComputeInput{SeasonID: "2026-winter", DivisionID: "div-north"})
		errs <- err
	}()
	time.Sleep(50 * time.Millisecond)
	close(store.release)

	require.NoError(t, <-errs)
	require.NoError(t, <-errs)
	require.Equal(t, int32(1), atomic.LoadInt32(&store.calls),
		"same-season runs must not read the raw store twice while one is in flight")
}

func TestComputeMany_RunsEverySeason(t *testing.T) {
	winter := memory.SeedBundle()
	spring := memory.SeedBundle()
	spring.SeasonID = "2026-spring"
	for idx := range spring.Games {
		spring.Games[idx].SeasonID = spring.SeasonID
	}

	store := memory.NewRawStore(winter, spring)
	writer := memory.NewStatsWriter()
	svc := NewComputeService(store, writer, idgen.NewRandomGenerator(), logging.NewNop(), ComputeConfig{})

	results, err := svc.ComputeMany(context.Background(), []ComputeInput{
		{SeasonID: "2026-winter"},
		{SeasonID: "2026-spring"},
	}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	for _, seasonID := range []string{"2026-winter", "2026-spring"} {
		_, ok, err := writer.GetSnapshot(context.Background(), seasonID)
		require.NoError(t, err)
		require.True(t, ok, "missing snapshot for %s", seasonID)
	}
}

func TestComputeMany_FirstErrorWins(t *testing.T) {
	store := memory.NewRawStore(memory.SeedBundle())
	writer := memory.NewStatsWriter()
	svc := NewComputeService(store, writer, idgen.NewRandomGenerator(), logging.NewNop(), ComputeConfig{})

	_, err := svc.ComputeMany(context.Background(), []ComputeInput{
		{SeasonID: "2026-winter"},
		{}, // missing season id
	}, 2)
	require.ErrorIs(t, err, ErrInvalidInput)
}
