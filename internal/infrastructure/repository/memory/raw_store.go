package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/rinkstats/internal/domain/season"
)

// RawStore serves raw event rows from memory. It backs tests and the
// seeded dev mode of the compute command.
type RawStore struct {
	mu      sync.RWMutex
	bundles map[string]season.Bundle
}

func NewRawStore(bundles ...season.Bundle) *RawStore {
	bySeason := make(map[string]season.Bundle, len(bundles))
	for _, bundle := range bundles {
		bySeason[bundle.SeasonID] = bundle
	}
	return &RawStore{bundles: bySeason}
}

func (r *RawStore) ListDivisions(_ context.Context, seasonID string) ([]season.Division, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]season.Division(nil), r.bundles[seasonID].Divisions...), nil
}

func (r *RawStore) ListTeams(_ context.Context, seasonID string) ([]season.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]season.Team(nil), r.bundles[seasonID].Teams...), nil
}

func (r *RawStore) ListGames(_ context.Context, seasonID string) ([]season.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]season.Game(nil), r.bundles[seasonID].Games...), nil
}

func (r *RawStore) ListGoalEvents(_ context.Context, seasonID string) ([]season.GoalEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]season.GoalEvent(nil), r.bundles[seasonID].Goals...), nil
}

func (r *RawStore) ListPenaltyEvents(_ context.Context, seasonID string) ([]season.PenaltyEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]season.PenaltyEvent(nil), r.bundles[seasonID].Penalties...), nil
}

func (r *RawStore) ListRosterEntries(_ context.Context, seasonID string) ([]season.RosterEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]season.RosterEntry(nil), r.bundles[seasonID].Roster...), nil
}

// PutBundle swaps a season's raw rows, mirroring an ingestion refresh.
func (r *RawStore) PutBundle(bundle season.Bundle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bundles[bundle.SeasonID] = bundle
}
