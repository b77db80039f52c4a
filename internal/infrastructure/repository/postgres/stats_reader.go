package postgres

import (
	"context"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/rinkstats/internal/domain/stats"
	qb "github.com/riskibarqy/rinkstats/internal/platform/querybuilder"
)

// StatsReader serves the derived tables to the API collaborator.
type StatsReader struct {
	db *sqlx.DB
}

func NewStatsReader(db *sqlx.DB) *StatsReader {
	return &StatsReader{db: db}
}

func (r *StatsReader) GetSnapshot(ctx context.Context, seasonID string) (stats.Snapshot, bool, error) {
	out := stats.Snapshot{SeasonID: seasonID}

	query, args, err := qb.Select("*").From(teamStatsTable).
		Where(qb.Eq("season_public_id", seasonID)).
		OrderBy("team_public_id").
		ToSQL()
	if err != nil {
		return stats.Snapshot{}, false, crerr.Wrap(err, "build list team season stats query")
	}
	var teamRows []teamSeasonStatModel
	if err := r.db.SelectContext(ctx, &teamRows, query, args...); err != nil {
		return stats.Snapshot{}, false, crerr.Wrap(err, "list team season stats")
	}
	if len(teamRows) == 0 {
		return stats.Snapshot{}, false, nil
	}
	for _, row := range teamRows {
		item, err := row.toDomain()
		if err != nil {
			return stats.Snapshot{}, false, err
		}
		out.Teams = append(out.Teams, item)
	}

	query, args, err = qb.Select("*").From(playerStatsTable).
		Where(qb.Eq("season_public_id", seasonID)).
		OrderBy("team_public_id", "player_public_id").
		ToSQL()
	if err != nil {
		return stats.Snapshot{}, false, crerr.Wrap(err, "build list player season stats query")
	}
	var playerRows []playerSeasonStatModel
	if err := r.db.SelectContext(ctx, &playerRows, query, args...); err != nil {
		return stats.Snapshot{}, false, crerr.Wrap(err, "list player season stats")
	}
	for _, row := range playerRows {
		out.Players = append(out.Players, row.toDomain())
	}

	query, args, err = qb.Select("*").From(scheduleStrengthTable).
		Where(qb.Eq("season_public_id", seasonID)).
		OrderBy("team_public_id").
		ToSQL()
	if err != nil {
		return stats.Snapshot{}, false, crerr.Wrap(err, "build list schedule strength query")
	}
	var strengthRows []scheduleStrengthModel
	if err := r.db.SelectContext(ctx, &strengthRows, query, args...); err != nil {
		return stats.Snapshot{}, false, crerr.Wrap(err, "list schedule strength")
	}
	for _, row := range strengthRows {
		out.Strengths = append(out.Strengths, row.toDomain())
	}

	query, args, err = qb.Select("*").From(headToHeadTable).
		Where(qb.Eq("season_public_id", seasonID)).
		OrderBy("team1_public_id", "team2_public_id").
		ToSQL()
	if err != nil {
		return stats.Snapshot{}, false, crerr.Wrap(err, "build list head to head query")
	}
	var matchupRows []headToHeadModel
	if err := r.db.SelectContext(ctx, &matchupRows, query, args...); err != nil {
		return stats.Snapshot{}, false, crerr.Wrap(err, "list head to head")
	}
	for _, row := range matchupRows {
		out.Matchups = append(out.Matchups, row.toDomain())
	}

	return out, true, nil
}

func (r *StatsReader) ListRuns(ctx context.Context, seasonID string) ([]stats.RunRecord, error) {
	query, args, err := qb.Select("*").From(computationRunsTable).
		Where(qb.Eq("season_public_id", seasonID)).
		OrderBy("started_at DESC", "public_id").
		ToSQL()
	if err != nil {
		return nil, crerr.Wrap(err, "build list computation runs query")
	}

	var rows []computationRunModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrap(err, "list computation runs")
	}

	out := make([]stats.RunRecord, 0, len(rows))
	for _, row := range rows {
		run := stats.RunRecord{
			ID:           row.PublicID,
			SeasonID:     row.SeasonID,
			Status:       row.Status,
			StartedAt:    row.StartedAt,
			FinishedAt:   row.FinishedAt,
			PlayerRows:   row.PlayerRows,
			TeamRows:     row.TeamRows,
			StrengthRows: row.StrengthRows,
			MatchupRows:  row.MatchupRows,
		}
		if row.Warnings != "" {
			if err := sonic.Unmarshal([]byte(row.Warnings), &run.Warnings); err != nil {
				return nil, crerr.Wrap(err, "decode run warnings")
			}
		}
		out = append(out, run)
	}
	return out, nil
}
