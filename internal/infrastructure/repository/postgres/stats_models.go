package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/rinkstats/internal/domain/stats"
)

type playerSeasonStatModel struct {
	PlayerID         string  `db:"player_public_id"`
	TeamID           string  `db:"team_public_id"`
	SeasonID         string  `db:"season_public_id"`
	GamesPlayed      int     `db:"games_played"`
	Goals            int     `db:"goals"`
	Assists          int     `db:"assists"`
	Points           int     `db:"points"`
	PenaltyMinutes   int     `db:"penalty_minutes"`
	PowerPlayGoals   int     `db:"power_play_goals"`
	ShortHandedGoals int     `db:"short_handed_goals"`
	GameWinningGoals int     `db:"game_winning_goals"`
	EmptyNetGoals    int     `db:"empty_net_goals"`
	PointsPerGame    float64 `db:"points_per_game"`
}

func newPlayerSeasonStatModel(item stats.PlayerSeasonStat) playerSeasonStatModel {
	return playerSeasonStatModel{
		PlayerID:         item.PlayerID,
		TeamID:           item.TeamID,
		SeasonID:         item.SeasonID,
		GamesPlayed:      item.GamesPlayed,
		Goals:            item.Goals,
		Assists:          item.Assists,
		Points:           item.Points,
		PenaltyMinutes:   item.PenaltyMinutes,
		PowerPlayGoals:   item.PowerPlayGoals,
		ShortHandedGoals: item.ShortHandedGoals,
		GameWinningGoals: item.GameWinningGoals,
		EmptyNetGoals:    item.EmptyNetGoals,
		PointsPerGame:    item.PointsPerGame,
	}
}

func (m playerSeasonStatModel) toDomain() stats.PlayerSeasonStat {
	return stats.PlayerSeasonStat{
		PlayerID:         m.PlayerID,
		TeamID:           m.TeamID,
		SeasonID:         m.SeasonID,
		GamesPlayed:      m.GamesPlayed,
		Goals:            m.Goals,
		Assists:          m.Assists,
		Points:           m.Points,
		PenaltyMinutes:   m.PenaltyMinutes,
		PowerPlayGoals:   m.PowerPlayGoals,
		ShortHandedGoals: m.ShortHandedGoals,
		GameWinningGoals: m.GameWinningGoals,
		EmptyNetGoals:    m.EmptyNetGoals,
		PointsPerGame:    m.PointsPerGame,
	}
}

// Period and home/away splits travel as sonic-encoded JSONB documents so
// the row shape stays stable while the bucket set evolves.
type teamSeasonStatModel struct {
	TeamID                 string          `db:"team_public_id"`
	SeasonID               string          `db:"season_public_id"`
	DivisionID             string          `db:"division_public_id"`
	GamesPlayed            int             `db:"games_played"`
	Wins                   int             `db:"wins"`
	Losses                 int             `db:"losses"`
	Ties                   int             `db:"ties"`
	Points                 int             `db:"points"`
	PointsPct              sql.NullFloat64 `db:"points_pct"`
	GoalsFor               int             `db:"goals_for"`
	GoalsAgainst           int             `db:"goals_against"`
	GoalDifferential       int             `db:"goal_differential"`
	PowerPlayGoals         int             `db:"power_play_goals"`
	PowerPlayOpportunities int             `db:"power_play_opportunities"`
	PowerPlayPct           sql.NullFloat64 `db:"power_play_pct"`
	PowerPlayGoalsAllowed  int             `db:"power_play_goals_allowed"`
	TimesShortHanded       int             `db:"times_short_handed"`
	PenaltyKillPct         sql.NullFloat64 `db:"penalty_kill_pct"`
	PeriodSplits           string          `db:"period_splits"`
	HomeRecord             string          `db:"home_record"`
	AwayRecord             string          `db:"away_record"`
	LastTen                string          `db:"last_ten"`
	CurrentStreak          string          `db:"current_streak"`
}

type scheduleStrengthModel struct {
	TeamID              string          `db:"team_public_id"`
	SeasonID            string          `db:"season_public_id"`
	DivisionID          string          `db:"division_public_id"`
	BasicSOS            sql.NullFloat64 `db:"basic_sos"`
	AdjustedSOS         sql.NullFloat64 `db:"adjusted_sos"`
	SOV                 sql.NullFloat64 `db:"sov"`
	SOSRank             int             `db:"sos_rank"`
	SOVRank             int             `db:"sov_rank"`
	GamesVsTopThird     int             `db:"games_vs_top_third"`
	PointsVsTopThird    int             `db:"points_vs_top_third"`
	GamesVsMiddleThird  int             `db:"games_vs_middle_third"`
	PointsVsMiddleThird int             `db:"points_vs_middle_third"`
	GamesVsBottomThird  int             `db:"games_vs_bottom_third"`
	PointsVsBottomThird int             `db:"points_vs_bottom_third"`
	BackToBackCount     int             `db:"back_to_back_count"`
	RestGameCount       int             `db:"rest_game_count"`
	RestDifferential    int             `db:"rest_differential"`
}

func newScheduleStrengthModel(item stats.ScheduleStrength) scheduleStrengthModel {
	return scheduleStrengthModel{
		TeamID:              item.TeamID,
		SeasonID:            item.SeasonID,
		DivisionID:          item.DivisionID,
		BasicSOS:            floatPtrToNull(item.BasicSOS),
		AdjustedSOS:         floatPtrToNull(item.AdjustedSOS),
		SOV:                 floatPtrToNull(item.SOV),
		SOSRank:             item.SOSRank,
		SOVRank:             item.SOVRank,
		GamesVsTopThird:     item.GamesVsTopThird,
		PointsVsTopThird:    item.PointsVsTopThird,
		GamesVsMiddleThird:  item.GamesVsMiddleThird,
		PointsVsMiddleThird: item.PointsVsMiddleThird,
		GamesVsBottomThird:  item.GamesVsBottomThird,
		PointsVsBottomThird: item.PointsVsBottomThird,
		BackToBackCount:     item.BackToBackCount,
		RestGameCount:       item.RestGameCount,
		RestDifferential:    item.RestDifferential,
	}
}

func (m scheduleStrengthModel) toDomain() stats.ScheduleStrength {
	return stats.ScheduleStrength{
		TeamID:              m.TeamID,
		SeasonID:            m.SeasonID,
		DivisionID:          m.DivisionID,
		BasicSOS:            nullFloatToPtr(m.BasicSOS),
		AdjustedSOS:         nullFloatToPtr(m.AdjustedSOS),
		SOV:                 nullFloatToPtr(m.SOV),
		SOSRank:             m.SOSRank,
		SOVRank:             m.SOVRank,
		GamesVsTopThird:     m.GamesVsTopThird,
		PointsVsTopThird:    m.PointsVsTopThird,
		GamesVsMiddleThird:  m.GamesVsMiddleThird,
		PointsVsMiddleThird: m.PointsVsMiddleThird,
		GamesVsBottomThird:  m.GamesVsBottomThird,
		PointsVsBottomThird: m.PointsVsBottomThird,
		BackToBackCount:     m.BackToBackCount,
		RestGameCount:       m.RestGameCount,
		RestDifferential:    m.RestDifferential,
	}
}

type headToHeadModel struct {
	Team1ID           string          `db:"team1_public_id"`
	Team2ID           string          `db:"team2_public_id"`
	SeasonID          string          `db:"season_public_id"`
	GamesPlayed       int             `db:"games_played"`
	Team1Wins         int             `db:"team1_wins"`
	Team2Wins         int             `db:"team2_wins"`
	Ties              int             `db:"ties"`
	Team1GoalsFor     int             `db:"team1_goals_for"`
	Team2GoalsFor     int             `db:"team2_goals_for"`
	Team1PowerPlayPct sql.NullFloat64 `db:"team1_power_play_pct"`
	Team2PowerPlayPct sql.NullFloat64 `db:"team2_power_play_pct"`
	LastFiveRecord    string          `db:"last_five_record"`
	CurrentStreak     string          `db:"current_streak"`
}

func newHeadToHeadModel(item stats.HeadToHead) headToHeadModel {
	return headToHeadModel{
		Team1ID:           item.Team1ID,
		Team2ID:           item.Team2ID,
		SeasonID:          item.SeasonID,
		GamesPlayed:       item.GamesPlayed,
		Team1Wins:         item.Team1Wins,
		Team2Wins:         item.Team2Wins,
		Ties:              item.Ties,
		Team1GoalsFor:     item.Team1GoalsFor,
		Team2GoalsFor:     item.Team2GoalsFor,
		Team1PowerPlayPct: floatPtrToNull(item.Team1PowerPlayPct),
		Team2PowerPlayPct: floatPtrToNull(item.Team2PowerPlayPct),
		LastFiveRecord:    item.LastFiveRecord,
		CurrentStreak:     item.CurrentStreak,
	}
}

func (m headToHeadModel) toDomain() stats.HeadToHead {
	return stats.HeadToHead{
		Team1ID:           m.Team1ID,
		Team2ID:           m.Team2ID,
		SeasonID:          m.SeasonID,
		GamesPlayed:       m.GamesPlayed,
		Team1Wins:         m.Team1Wins,
		Team2Wins:         m.Team2Wins,
		Ties:              m.Ties,
		Team1GoalsFor:     m.Team1GoalsFor,
		Team2GoalsFor:     m.Team2GoalsFor,
		Team1PowerPlayPct: nullFloatToPtr(m.Team1PowerPlayPct),
		Team2PowerPlayPct: nullFloatToPtr(m.Team2PowerPlayPct),
		LastFiveRecord:    m.LastFiveRecord,
		CurrentStreak:     m.CurrentStreak,
	}
}

type computationRunModel struct {
	PublicID     string    `db:"public_id"`
	SeasonID     string    `db:"season_public_id"`
	Status       string    `db:"status"`
	StartedAt    time.Time `db:"started_at"`
	FinishedAt   time.Time `db:"finished_at"`
	PlayerRows   int       `db:"player_rows"`
	TeamRows     int       `db:"team_rows"`
	StrengthRows int       `db:"strength_rows"`
	MatchupRows  int       `db:"matchup_rows"`
	Warnings     string    `db:"warnings"`
}
