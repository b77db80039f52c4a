package postgres

import (
	"context"
	"sync"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/rinkstats/internal/domain/season"
	qb "github.com/riskibarqy/rinkstats/internal/platform/querybuilder"
)

// rawSchema names the raw-event tables and the columns that differ
// between the two ingestion schema generations. The games table kept
// its identity across generations apart from the team columns; the
// event tables were renamed wholesale and their reference columns lost
// the public-id suffix. Every query aliases the variant columns back to
// the modern names so both generations share one scan shape.
type rawSchema struct {
	gamesTable        string
	goalsTable        string
	penaltiesTable    string
	rosterTable       string
	homeTeamColumn    string
	visitorTeamColumn string
	gameRefColumn     string
	teamRefColumn     string
	playerRefColumn   string
	scorerColumn      string
	assist1Column     string
	assist2Column     string
}

var modernSchema = rawSchema{
	gamesTable:        "games",
	goalsTable:        "goal_events",
	penaltiesTable:    "penalty_events",
	rosterTable:       "roster_entries",
	homeTeamColumn:    "home_team_public_id",
	visitorTeamColumn: "visitor_team_public_id",
	gameRefColumn:     "game_public_id",
	teamRefColumn:     "team_public_id",
	playerRefColumn:   "player_public_id",
	scorerColumn:      "scorer_public_id",
	assist1Column:     "assist1_public_id",
	assist2Column:     "assist2_public_id",
}

var legacySchema = rawSchema{
	gamesTable:        "games",
	goalsTable:        "scoring_plays",
	penaltiesTable:    "penalties",
	rosterTable:       "game_rosters",
	homeTeamColumn:    "home_team_id",
	visitorTeamColumn: "away_team_id",
	gameRefColumn:     "game_id",
	teamRefColumn:     "team_id",
	playerRefColumn:   "player_id",
	scorerColumn:      "scorer_id",
	assist1Column:     "assist1_id",
	assist2Column:     "assist2_id",
}

// RawStore reads the ingestion collaborator's tables. The ingestion
// system ships two table shapes; the store probes the live schema once
// and picks the matching query set.
type RawStore struct {
	db *sqlx.DB

	detectOnce sync.Once
	detectErr  error
	schema     rawSchema
}

func NewRawStore(db *sqlx.DB) *RawStore {
	return &RawStore{db: db}
}

// detectSchema probes for the modern visitor-team column and falls back
// to the legacy shape when it is absent.
func (r *RawStore) detectSchema(ctx context.Context) (rawSchema, error) {
	r.detectOnce.Do(func() {
		query, args, err := qb.Select("COUNT(1)").
			From("information_schema.columns").
			Where(
				qb.Eq("table_name", modernSchema.gamesTable),
				qb.Eq("column_name", modernSchema.visitorTeamColumn),
			).
			ToSQL()
		if err != nil {
			r.detectErr = crerr.Wrap(err, "build schema probe query")
			return
		}

		var count int
		if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
			r.detectErr = crerr.Wrap(err, "probe raw schema")
			return
		}

		if count > 0 {
			r.schema = modernSchema
		} else {
			r.schema = legacySchema
		}
	})
	return r.schema, r.detectErr
}

func (r *RawStore) ListDivisions(ctx context.Context, seasonID string) ([]season.Division, error) {
	query, args, err := qb.Select(
		"public_id",
		"season_public_id",
		"name",
		"COALESCE(win_points, 0) AS win_points",
		"COALESCE(tie_points, 0) AS tie_points",
	).From("divisions").
		Where(qb.Eq("season_public_id", seasonID)).
		OrderBy("public_id").
		ToSQL()
	if err != nil {
		return nil, crerr.Wrap(err, "build list divisions query")
	}

	var rows []divisionRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrap(err, "list divisions")
	}

	out := make([]season.Division, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *RawStore) ListTeams(ctx context.Context, seasonID string) ([]season.Team, error) {
	query, args, err := qb.Select(
		"public_id",
		"season_public_id",
		"division_public_id",
		"name",
	).From("teams").
		Where(qb.Eq("season_public_id", seasonID)).
		OrderBy("public_id").
		ToSQL()
	if err != nil {
		return nil, crerr.Wrap(err, "build list teams query")
	}

	var rows []teamRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrap(err, "list teams")
	}

	out := make([]season.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *RawStore) ListGames(ctx context.Context, seasonID string) ([]season.Game, error) {
	schema, err := r.detectSchema(ctx)
	if err != nil {
		return nil, err
	}

	query, args, err := buildListGamesQuery(schema, seasonID)
	if err != nil {
		return nil, crerr.Wrap(err, "build list games query")
	}

	var rows []gameRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrap(err, "list games")
	}

	out := make([]season.Game, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *RawStore) ListGoalEvents(ctx context.Context, seasonID string) ([]season.GoalEvent, error) {
	schema, err := r.detectSchema(ctx)
	if err != nil {
		return nil, err
	}

	query, args, err := buildListGoalEventsQuery(schema, seasonID)
	if err != nil {
		return nil, crerr.Wrap(err, "build list goal events query")
	}

	var rows []goalEventRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrap(err, "list goal events")
	}

	out := make([]season.GoalEvent, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *RawStore) ListPenaltyEvents(ctx context.Context, seasonID string) ([]season.PenaltyEvent, error) {
	schema, err := r.detectSchema(ctx)
	if err != nil {
		return nil, err
	}

	query, args, err := buildListPenaltyEventsQuery(schema, seasonID)
	if err != nil {
		return nil, crerr.Wrap(err, "build list penalty events query")
	}

	var rows []penaltyEventRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrap(err, "list penalty events")
	}

	out := make([]season.PenaltyEvent, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *RawStore) ListRosterEntries(ctx context.Context, seasonID string) ([]season.RosterEntry, error) {
	schema, err := r.detectSchema(ctx)
	if err != nil {
		return nil, err
	}

	query, args, err := buildListRosterEntriesQuery(schema, seasonID)
	if err != nil {
		return nil, crerr.Wrap(err, "build list roster entries query")
	}

	var rows []rosterEntryRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrap(err, "list roster entries")
	}

	out := make([]season.RosterEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func buildListGamesQuery(schema rawSchema, seasonID string) (string, []any, error) {
	return qb.Select(
		"public_id",
		"season_public_id",
		"division_public_id",
		schema.homeTeamColumn+" AS home_team_id",
		schema.visitorTeamColumn+" AS visitor_team_id",
		"home_score",
		"visitor_score",
		"played_at",
		"status",
	).From(schema.gamesTable).
		Where(qb.Eq("season_public_id", seasonID)).
		OrderBy("played_at", "public_id").
		ToSQL()
}

func buildListGoalEventsQuery(schema rawSchema, seasonID string) (string, []any, error) {
	return qb.Select(
		"g.public_id",
		"g."+schema.gameRefColumn+" AS game_public_id",
		"g."+schema.teamRefColumn+" AS team_public_id",
		"g.period",
		"g.game_time",
		"COALESCE(g."+schema.scorerColumn+", '') AS scorer_public_id",
		"COALESCE(g.scorer_jersey, 0) AS scorer_jersey",
		"COALESCE(g."+schema.assist1Column+", '') AS assist1_public_id",
		"COALESCE(g."+schema.assist2Column+", '') AS assist2_public_id",
		"g.power_play",
		"g.short_handed",
		"g.game_winning",
		"g.empty_net",
	).From(schema.goalsTable + " g JOIN " + schema.gamesTable + " gm ON gm.public_id = g." + schema.gameRefColumn).
		Where(qb.Eq("gm.season_public_id", seasonID)).
		OrderBy("g."+schema.gameRefColumn, "g.public_id").
		ToSQL()
}

func buildListPenaltyEventsQuery(schema rawSchema, seasonID string) (string, []any, error) {
	return qb.Select(
		"p.public_id",
		"p."+schema.gameRefColumn+" AS game_public_id",
		"p."+schema.teamRefColumn+" AS team_public_id",
		"COALESCE(p."+schema.playerRefColumn+", '') AS player_public_id",
		"p.period",
		"p.game_time",
		"p.minutes",
		"p.class",
	).From(schema.penaltiesTable + " p JOIN " + schema.gamesTable + " gm ON gm.public_id = p." + schema.gameRefColumn).
		Where(qb.Eq("gm.season_public_id", seasonID)).
		OrderBy("p."+schema.gameRefColumn, "p.public_id").
		ToSQL()
}

func buildListRosterEntriesQuery(schema rawSchema, seasonID string) (string, []any, error) {
	return qb.Select(
		"r."+schema.gameRefColumn+" AS game_public_id",
		"r."+schema.teamRefColumn+" AS team_public_id",
		"r."+schema.playerRefColumn+" AS player_public_id",
		"COALESCE(r.jersey, 0) AS jersey",
		"r.goals",
		"r.assists",
		"r.points",
		"r.penalty_minutes",
		"r.participated",
	).From(schema.rosterTable + " r JOIN " + schema.gamesTable + " gm ON gm.public_id = r." + schema.gameRefColumn).
		Where(qb.Eq("gm.season_public_id", seasonID)).
		OrderBy("r."+schema.gameRefColumn, "r."+schema.playerRefColumn).
		ToSQL()
}
