package stats

import "time"

// PlayerSeasonStat is one player's season line for one team, keyed by
// (player id, team id, season id). It is fully recomputed on each run.
type PlayerSeasonStat struct {
	PlayerID         string
	TeamID           string
	SeasonID         string
	GamesPlayed      int
	Goals            int
	Assists          int
	Points           int
	PenaltyMinutes   int
	PowerPlayGoals   int
	ShortHandedGoals int
	GameWinningGoals int
	EmptyNetGoals    int
	PointsPerGame    float64
}

// PeriodLine buckets goals for/against inside one period.
type PeriodLine struct {
	GoalsFor     int `json:"goals_for"`
	GoalsAgainst int `json:"goals_against"`
}

// PeriodSplits buckets team scoring by normalized period label.
type PeriodSplits struct {
	First    PeriodLine `json:"1"`
	Second   PeriodLine `json:"2"`
	Third    PeriodLine `json:"3"`
	Overtime PeriodLine `json:"OT"`
}

// SideRecord is a win/loss/tie record restricted to home or away games.
type SideRecord struct {
	Wins         int `json:"wins"`
	Losses       int `json:"losses"`
	Ties         int `json:"ties"`
	GoalsFor     int `json:"goals_for"`
	GoalsAgainst int `json:"goals_against"`
}

// TeamSeasonStat is one team's season record, keyed by (team id, season id).
// Percentage fields are nil when their denominator is zero.
type TeamSeasonStat struct {
	TeamID                 string
	SeasonID               string
	DivisionID             string
	GamesPlayed            int
	Wins                   int
	Losses                 int
	Ties                   int
	Points                 int
	PointsPct              *float64
	GoalsFor               int
	GoalsAgainst           int
	GoalDifferential       int
	PowerPlayGoals         int
	PowerPlayOpportunities int
	PowerPlayPct           *float64
	PowerPlayGoalsAllowed  int
	TimesShortHanded       int
	PenaltyKillPct         *float64
	Periods                PeriodSplits
	Home                   SideRecord
	Away                   SideRecord
	LastTen                string
	CurrentStreak          string
}

// ScheduleStrength carries the derived scheduling metrics for one team,
// keyed by (team id, season id). SOS/SOV are nil for teams without the
// games to define them.
type ScheduleStrength struct {
	TeamID              string
	SeasonID            string
	DivisionID          string
	BasicSOS            *float64
	AdjustedSOS         *float64
	SOV                 *float64
	SOSRank             int
	SOVRank             int
	GamesVsTopThird     int
	PointsVsTopThird    int
	GamesVsMiddleThird  int
	PointsVsMiddleThird int
	GamesVsBottomThird  int
	PointsVsBottomThird int
	BackToBackCount     int
	RestGameCount       int
	RestDifferential    int
}

// HeadToHead is one unordered team pair's record, stored once with
// Team1ID ordered before Team2ID. The mirrored view is derived by the
// reader, never stored.
type HeadToHead struct {
	Team1ID           string
	Team2ID           string
	SeasonID          string
	GamesPlayed       int
	Team1Wins         int
	Team2Wins         int
	Ties              int
	Team1GoalsFor     int
	Team2GoalsFor     int
	Team1PowerPlayPct *float64
	Team2PowerPlayPct *float64
	LastFiveRecord    string
	CurrentStreak     string
}

const (
	WarningMalformedEvent  = "malformed_event"
	WarningDegenerateInput = "degenerate_input"
	WarningRosterMismatch  = "roster_mismatch"
)

// Warning is one non-fatal condition collected during a run.
type Warning struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Snapshot is a derived result set for one season, committed in a
// single transaction that replaces the prior run's rows. A non-empty
// DivisionID narrows the replace to that division: only rows owned by
// its teams are swapped, every other division's rows stay in place.
type Snapshot struct {
	SeasonID   string
	DivisionID string
	Players    []PlayerSeasonStat
	Teams      []TeamSeasonStat
	Strengths  []ScheduleStrength
	Matchups   []HeadToHead
}

// TeamIDs lists the teams whose rows the snapshot owns.
func (s Snapshot) TeamIDs() []string {
	ids := make([]string, 0, len(s.Teams))
	for _, team := range s.Teams {
		ids = append(ids, team.TeamID)
	}
	return ids
}

const (
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

// RunRecord is the bookkeeping row written after each computation run.
type RunRecord struct {
	ID           string
	SeasonID     string
	Status       string
	StartedAt    time.Time
	FinishedAt   time.Time
	PlayerRows   int
	TeamRows     int
	StrengthRows int
	MatchupRows  int
	Warnings     []Warning
}
