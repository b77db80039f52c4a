package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/rinkstats/internal/domain/season"
)

type divisionRow struct {
	PublicID  string `db:"public_id"`
	SeasonID  string `db:"season_public_id"`
	Name      string `db:"name"`
	WinPoints int    `db:"win_points"`
	TiePoints int    `db:"tie_points"`
}

func (r divisionRow) toDomain() season.Division {
	return season.Division{
		ID:        r.PublicID,
		SeasonID:  r.SeasonID,
		Name:      r.Name,
		WinPoints: r.WinPoints,
		TiePoints: r.TiePoints,
	}
}

type teamRow struct {
	PublicID   string `db:"public_id"`
	SeasonID   string `db:"season_public_id"`
	DivisionID string `db:"division_public_id"`
	Name       string `db:"name"`
}

func (r teamRow) toDomain() season.Team {
	return season.Team{
		ID:         r.PublicID,
		SeasonID:   r.SeasonID,
		DivisionID: r.DivisionID,
		Name:       r.Name,
	}
}

type gameRow struct {
	PublicID      string        `db:"public_id"`
	SeasonID      string        `db:"season_public_id"`
	DivisionID    string        `db:"division_public_id"`
	HomeTeamID    string        `db:"home_team_id"`
	VisitorTeamID string        `db:"visitor_team_id"`
	HomeScore     sql.NullInt64 `db:"home_score"`
	VisitorScore  sql.NullInt64 `db:"visitor_score"`
	PlayedAt      time.Time     `db:"played_at"`
	Status        string        `db:"status"`
}

func (r gameRow) toDomain() season.Game {
	return season.Game{
		ID:            r.PublicID,
		SeasonID:      r.SeasonID,
		DivisionID:    r.DivisionID,
		HomeTeamID:    r.HomeTeamID,
		VisitorTeamID: r.VisitorTeamID,
		HomeScore:     nullInt64ToIntPtr(r.HomeScore),
		VisitorScore:  nullInt64ToIntPtr(r.VisitorScore),
		PlayedAt:      r.PlayedAt,
		Status:        r.Status,
	}
}

type goalEventRow struct {
	PublicID     string `db:"public_id"`
	GameID       string `db:"game_public_id"`
	TeamID       string `db:"team_public_id"`
	Period       string `db:"period"`
	GameTime     string `db:"game_time"`
	ScorerID     string `db:"scorer_public_id"`
	ScorerJersey int    `db:"scorer_jersey"`
	Assist1ID    string `db:"assist1_public_id"`
	Assist2ID    string `db:"assist2_public_id"`
	PowerPlay    bool   `db:"power_play"`
	ShortHanded  bool   `db:"short_handed"`
	GameWinning  bool   `db:"game_winning"`
	EmptyNet     bool   `db:"empty_net"`
}

func (r goalEventRow) toDomain() season.GoalEvent {
	return season.GoalEvent{
		ID:           r.PublicID,
		GameID:       r.GameID,
		TeamID:       r.TeamID,
		Period:       r.Period,
		GameTime:     r.GameTime,
		ScorerID:     r.ScorerID,
		ScorerJersey: r.ScorerJersey,
		Assist1ID:    r.Assist1ID,
		Assist2ID:    r.Assist2ID,
		PowerPlay:    r.PowerPlay,
		ShortHanded:  r.ShortHanded,
		GameWinning:  r.GameWinning,
		EmptyNet:     r.EmptyNet,
	}
}

type penaltyEventRow struct {
	PublicID string `db:"public_id"`
	GameID   string `db:"game_public_id"`
	TeamID   string `db:"team_public_id"`
	PlayerID string `db:"player_public_id"`
	Period   string `db:"period"`
	GameTime string `db:"game_time"`
	Minutes  int    `db:"minutes"`
	Class    string `db:"class"`
}

func (r penaltyEventRow) toDomain() season.PenaltyEvent {
	return season.PenaltyEvent{
		ID:       r.PublicID,
		GameID:   r.GameID,
		TeamID:   r.TeamID,
		PlayerID: r.PlayerID,
		Period:   r.Period,
		GameTime: r.GameTime,
		Minutes:  r.Minutes,
		Class:    r.Class,
	}
}

type rosterEntryRow struct {
	GameID         string `db:"game_public_id"`
	TeamID         string `db:"team_public_id"`
	PlayerID       string `db:"player_public_id"`
	Jersey         int    `db:"jersey"`
	Goals          int    `db:"goals"`
	Assists        int    `db:"assists"`
	Points         int    `db:"points"`
	PenaltyMinutes int    `db:"penalty_minutes"`
	Participated   bool   `db:"participated"`
}

func (r rosterEntryRow) toDomain() season.RosterEntry {
	return season.RosterEntry{
		GameID:         r.GameID,
		TeamID:         r.TeamID,
		PlayerID:       r.PlayerID,
		Jersey:         r.Jersey,
		Goals:          r.Goals,
		Assists:        r.Assists,
		Points:         r.Points,
		PenaltyMinutes: r.PenaltyMinutes,
		Participated:   r.Participated,
	}
}

func nullInt64ToIntPtr(value sql.NullInt64) *int {
	if !value.Valid {
		return nil
	}
	out := int(value.Int64)
	return &out
}

func intPtrToNullInt64(value *int) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*value), Valid: true}
}

func nullFloatToPtr(value sql.NullFloat64) *float64 {
	if !value.Valid {
		return nil
	}
	out := value.Float64
	return &out
}

func floatPtrToNull(value *float64) sql.NullFloat64 {
	if value == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *value, Valid: true}
}
