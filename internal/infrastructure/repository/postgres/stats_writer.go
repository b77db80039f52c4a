package postgres

import (
	"context"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/rinkstats/internal/domain/stats"
	qb "github.com/riskibarqy/rinkstats/internal/platform/querybuilder"
)

const (
	playerStatsTable      = "player_season_stats"
	teamStatsTable        = "team_season_stats"
	scheduleStrengthTable = "schedule_strength"
	headToHeadTable       = "head_to_head"
	computationRunsTable  = "computation_runs"
)

// StatsWriter owns the four derived tables. Replace swaps a season's rows
// inside one transaction so readers never observe a half-updated season.
type StatsWriter struct {
	db *sqlx.DB
}

func NewStatsWriter(db *sqlx.DB) *StatsWriter {
	return &StatsWriter{db: db}
}

func (w *StatsWriter) Replace(ctx context.Context, snapshot stats.Snapshot) error {
	tx, err := w.db.BeginTxx(ctx, nil)
	if err != nil {
		return crerr.Wrap(err, "begin tx replace season stats")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, clear := range buildClearQueries(snapshot) {
		query, args, err := clear.builder.ToSQL()
		if err != nil {
			return crerr.Wrapf(err, "build clear %s query", clear.table)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return crerr.Wrapf(err, "clear %s", clear.table)
		}
	}

	for _, item := range snapshot.Players {
		query, args, err := qb.InsertModel(playerStatsTable, newPlayerSeasonStatModel(item), "")
		if err != nil {
			return crerr.Wrap(err, "build insert player season stat query")
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return crerr.Wrapf(err, "insert player season stat player=%s team=%s", item.PlayerID, item.TeamID)
		}
	}

	for _, item := range snapshot.Teams {
		model, err := newTeamSeasonStatModel(item)
		if err != nil {
			return err
		}
		query, args, err := qb.InsertModel(teamStatsTable, model, "")
		if err != nil {
			return crerr.Wrap(err, "build insert team season stat query")
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return crerr.Wrapf(err, "insert team season stat team=%s", item.TeamID)
		}
	}

	for _, item := range snapshot.Strengths {
		query, args, err := qb.InsertModel(scheduleStrengthTable, newScheduleStrengthModel(item), "")
		if err != nil {
			return crerr.Wrap(err, "build insert schedule strength query")
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return crerr.Wrapf(err, "insert schedule strength team=%s", item.TeamID)
		}
	}

	for _, item := range snapshot.Matchups {
		query, args, err := qb.InsertModel(headToHeadTable, newHeadToHeadModel(item), "")
		if err != nil {
			return crerr.Wrap(err, "build insert head to head query")
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return crerr.Wrapf(err, "insert head to head pair=%s/%s", item.Team1ID, item.Team2ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return crerr.Wrap(err, "commit replace season stats")
	}
	return nil
}

type clearQuery struct {
	table   string
	builder *qb.DeleteBuilder
}

// buildClearQueries produces the delete phase of a replace. A full-season
// snapshot clears every row of the season; a division-scoped snapshot
// clears only rows owned by the division's teams, so the head-to-head
// delete requires both sides of a pair to belong to the division.
func buildClearQueries(snapshot stats.Snapshot) []clearQuery {
	bySeason := qb.Eq("season_public_id", snapshot.SeasonID)
	if snapshot.DivisionID == "" {
		out := make([]clearQuery, 0, 4)
		for _, table := range []string{playerStatsTable, teamStatsTable, scheduleStrengthTable, headToHeadTable} {
			out = append(out, clearQuery{table: table, builder: qb.DeleteFrom(table).Where(bySeason)})
		}
		return out
	}

	teamIDs := make([]any, 0, len(snapshot.Teams))
	for _, id := range snapshot.TeamIDs() {
		teamIDs = append(teamIDs, id)
	}

	return []clearQuery{
		{playerStatsTable, qb.DeleteFrom(playerStatsTable).
			Where(bySeason, qb.In("team_public_id", teamIDs))},
		{teamStatsTable, qb.DeleteFrom(teamStatsTable).
			Where(bySeason, qb.Eq("division_public_id", snapshot.DivisionID))},
		{scheduleStrengthTable, qb.DeleteFrom(scheduleStrengthTable).
			Where(bySeason, qb.Eq("division_public_id", snapshot.DivisionID))},
		{headToHeadTable, qb.DeleteFrom(headToHeadTable).
			Where(bySeason, qb.In("team1_public_id", teamIDs), qb.In("team2_public_id", teamIDs))},
	}
}

func (w *StatsWriter) RecordRun(ctx context.Context, run stats.RunRecord) error {
	warnings, err := sonic.Marshal(run.Warnings)
	if err != nil {
		return crerr.Wrap(err, "encode run warnings")
	}

	model := computationRunModel{
		PublicID:     run.ID,
		SeasonID:     run.SeasonID,
		Status:       run.Status,
		StartedAt:    run.StartedAt,
		FinishedAt:   run.FinishedAt,
		PlayerRows:   run.PlayerRows,
		TeamRows:     run.TeamRows,
		StrengthRows: run.StrengthRows,
		MatchupRows:  run.MatchupRows,
		Warnings:     string(warnings),
	}

	query, args, err := qb.InsertModel(computationRunsTable, model, "")
	if err != nil {
		return crerr.Wrap(err, "build insert computation run query")
	}
	if _, err := w.db.ExecContext(ctx, query, args...); err != nil {
		return crerr.Wrapf(err, "insert computation run season=%s", run.SeasonID)
	}
	return nil
}

func newTeamSeasonStatModel(item stats.TeamSeasonStat) (teamSeasonStatModel, error) {
	periods, err := sonic.Marshal(item.Periods)
	if err != nil {
		return teamSeasonStatModel{}, crerr.Wrap(err, "encode period splits")
	}
	home, err := sonic.Marshal(item.Home)
	if err != nil {
		return teamSeasonStatModel{}, crerr.Wrap(err, "encode home record")
	}
	away, err := sonic.Marshal(item.Away)
	if err != nil {
		return teamSeasonStatModel{}, crerr.Wrap(err, "encode away record")
	}

	return teamSeasonStatModel{
		TeamID:                 item.TeamID,
		SeasonID:               item.SeasonID,
		DivisionID:             item.DivisionID,
		GamesPlayed:            item.GamesPlayed,
		Wins:                   item.Wins,
		Losses:                 item.Losses,
		Ties:                   item.Ties,
		Points:                 item.Points,
		PointsPct:              floatPtrToNull(item.PointsPct),
		GoalsFor:               item.GoalsFor,
		GoalsAgainst:           item.GoalsAgainst,
		GoalDifferential:       item.GoalDifferential,
		PowerPlayGoals:         item.PowerPlayGoals,
		PowerPlayOpportunities: item.PowerPlayOpportunities,
		PowerPlayPct:           floatPtrToNull(item.PowerPlayPct),
		PowerPlayGoalsAllowed:  item.PowerPlayGoalsAllowed,
		TimesShortHanded:       item.TimesShortHanded,
		PenaltyKillPct:         floatPtrToNull(item.PenaltyKillPct),
		PeriodSplits:           string(periods),
		HomeRecord:             string(home),
		AwayRecord:             string(away),
		LastTen:                item.LastTen,
		CurrentStreak:          item.CurrentStreak,
	}, nil
}

func (m teamSeasonStatModel) toDomain() (stats.TeamSeasonStat, error) {
	out := stats.TeamSeasonStat{
		TeamID:                 m.TeamID,
		SeasonID:               m.SeasonID,
		DivisionID:             m.DivisionID,
		GamesPlayed:            m.GamesPlayed,
		Wins:                   m.Wins,
		Losses:                 m.Losses,
		Ties:                   m.Ties,
		Points:                 m.Points,
		PointsPct:              nullFloatToPtr(m.PointsPct),
		GoalsFor:               m.GoalsFor,
		GoalsAgainst:           m.GoalsAgainst,
		GoalDifferential:       m.GoalDifferential,
		PowerPlayGoals:         m.PowerPlayGoals,
		PowerPlayOpportunities: m.PowerPlayOpportunities,
		PowerPlayPct:           nullFloatToPtr(m.PowerPlayPct),
		PowerPlayGoalsAllowed:  m.PowerPlayGoalsAllowed,
		TimesShortHanded:       m.TimesShortHanded,
		PenaltyKillPct:         nullFloatToPtr(m.PenaltyKillPct),
		LastTen:                m.LastTen,
		CurrentStreak:          m.CurrentStreak,
	}
	if m.PeriodSplits != "" {
		if err := sonic.Unmarshal([]byte(m.PeriodSplits), &out.Periods); err != nil {
			return stats.TeamSeasonStat{}, crerr.Wrap(err, "decode period splits")
		}
	}
	if m.HomeRecord != "" {
		if err := sonic.Unmarshal([]byte(m.HomeRecord), &out.Home); err != nil {
			return stats.TeamSeasonStat{}, crerr.Wrap(err, "decode home record")
		}
	}
	if m.AwayRecord != "" {
		if err := sonic.Unmarshal([]byte(m.AwayRecord), &out.Away); err != nil {
			return stats.TeamSeasonStat{}, crerr.Wrap(err, "decode away record")
		}
	}
	return out, nil
}
