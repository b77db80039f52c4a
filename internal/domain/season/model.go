package season

import (
	"strings"
	"time"
)

const (
	StatusScheduled  = "scheduled"
	StatusInProgress = "in_progress"
	StatusFinal      = "final"
)

const (
	PenaltyMinor      = "minor"
	PenaltyMajor      = "major"
	PenaltyMisconduct = "misconduct"
	PenaltyMatch      = "match"
)

// Game is one scheduled or played game between two teams.
// Scores stay nil until the game has been played.
type Game struct {
	ID            string
	SeasonID      string
	DivisionID    string
	HomeTeamID    string
	VisitorTeamID string
	HomeScore     *int
	VisitorScore  *int
	PlayedAt      time.Time
	Status        string
}

func NormalizeStatus(value string) string {
	status := strings.ToLower(strings.TrimSpace(value))
	if status == "" {
		return StatusScheduled
	}
	return status
}

func IsFinalStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusFinal, "completed", "finished":
		return true
	default:
		return false
	}
}

// HasScores reports whether both final scores are present.
func (g Game) HasScores() bool {
	return g.HomeScore != nil && g.VisitorScore != nil
}

// OpponentOf returns the other side of the game, or "" when the
// team did not take part in it.
func (g Game) OpponentOf(teamID string) string {
	switch teamID {
	case g.HomeTeamID:
		return g.VisitorTeamID
	case g.VisitorTeamID:
		return g.HomeTeamID
	default:
		return ""
	}
}

// GoalEvent is one scored goal with its scorer and up to two assists.
// Assist ids are empty when the goal was unassisted.
type GoalEvent struct {
	ID           string
	GameID       string
	TeamID       string
	Period       string
	GameTime     string
	ScorerID     string
	ScorerJersey int
	Assist1ID    string
	Assist2ID    string
	PowerPlay    bool
	ShortHanded  bool
	GameWinning  bool
	EmptyNet     bool
}

type PenaltyEvent struct {
	ID       string
	GameID   string
	TeamID   string
	PlayerID string
	Period   string
	GameTime string
	Minutes  int
	Class    string
}

// RosterEntry is one player's participation line for one game.
type RosterEntry struct {
	GameID         string
	TeamID         string
	PlayerID       string
	Jersey         int
	Goals          int
	Assists        int
	Points         int
	PenaltyMinutes int
	Participated   bool
}

type Team struct {
	ID         string
	SeasonID   string
	DivisionID string
	Name       string
}

// Division groups teams for standings purposes. WinPoints and TiePoints
// are zero when the division uses the league default scoring values.
type Division struct {
	ID        string
	SeasonID  string
	Name      string
	WinPoints int
	TiePoints int
}
