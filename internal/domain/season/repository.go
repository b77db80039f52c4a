package season

import "context"

// RawStore is the narrow read-only view over the ingestion collaborator's
// event tables. Rows are assumed immutable for the duration of one
// computation pass.
type RawStore interface {
	ListDivisions(ctx context.Context, seasonID string) ([]Division, error)
	ListTeams(ctx context.Context, seasonID string) ([]Team, error)
	ListGames(ctx context.Context, seasonID string) ([]Game, error)
	ListGoalEvents(ctx context.Context, seasonID string) ([]GoalEvent, error)
	ListPenaltyEvents(ctx context.Context, seasonID string) ([]PenaltyEvent, error)
	ListRosterEntries(ctx context.Context, seasonID string) ([]RosterEntry, error)
}

// Bundle holds one season's raw rows after the initial bulk read.
// All computation downstream of the read works off this in-memory copy.
type Bundle struct {
	SeasonID  string
	Divisions []Division
	Teams     []Team
	Games     []Game
	Goals     []GoalEvent
	Penalties []PenaltyEvent
	Roster    []RosterEntry
}
