package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/rinkstats/internal/domain/stats"
)

// StatsWriter keeps derived snapshots in memory. FailNextReplace lets
// tests exercise the transaction-failure path: the snapshot in place is
// left untouched, matching the rollback behavior of the postgres writer.
type StatsWriter struct {
	mu              sync.RWMutex
	snapshots       map[string]stats.Snapshot
	runs            map[string][]stats.RunRecord
	failNextReplace error
}

func NewStatsWriter() *StatsWriter {
	return &StatsWriter{
		snapshots: make(map[string]stats.Snapshot),
		runs:      make(map[string][]stats.RunRecord),
	}
}

func (w *StatsWriter) Replace(_ context.Context, snapshot stats.Snapshot) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failNextReplace != nil {
		err := w.failNextReplace
		w.failNextReplace = nil
		return err
	}
	if snapshot.DivisionID == "" {
		w.snapshots[snapshot.SeasonID] = snapshot
		return nil
	}
	w.snapshots[snapshot.SeasonID] = mergeDivision(w.snapshots[snapshot.SeasonID], snapshot)
	return nil
}

// mergeDivision swaps one division's rows inside the stored season
// snapshot, matching the scoped delete phase of the postgres writer.
// Head-to-head rows are owned by the division only when both sides of
// the pair belong to it.
func mergeDivision(prior, scoped stats.Snapshot) stats.Snapshot {
	owned := make(map[string]bool, len(scoped.Teams))
	for _, id := range scoped.TeamIDs() {
		owned[id] = true
	}

	out := stats.Snapshot{SeasonID: scoped.SeasonID}
	for _, item := range prior.Players {
		if !owned[item.TeamID] {
			out.Players = append(out.Players, item)
		}
	}
	for _, item := range prior.Teams {
		if item.DivisionID != scoped.DivisionID {
			out.Teams = append(out.Teams, item)
		}
	}
	for _, item := range prior.Strengths {
		if item.DivisionID != scoped.DivisionID {
			out.Strengths = append(out.Strengths, item)
		}
	}
	for _, item := range prior.Matchups {
		if !owned[item.Team1ID] || !owned[item.Team2ID] {
			out.Matchups = append(out.Matchups, item)
		}
	}

	out.Players = append(out.Players, scoped.Players...)
	out.Teams = append(out.Teams, scoped.Teams...)
	out.Strengths = append(out.Strengths, scoped.Strengths...)
	out.Matchups = append(out.Matchups, scoped.Matchups...)

	sort.Slice(out.Players, func(i, j int) bool {
		if out.Players[i].TeamID != out.Players[j].TeamID {
			return out.Players[i].TeamID < out.Players[j].TeamID
		}
		return out.Players[i].PlayerID < out.Players[j].PlayerID
	})
	sort.Slice(out.Teams, func(i, j int) bool { return out.Teams[i].TeamID < out.Teams[j].TeamID })
	sort.Slice(out.Strengths, func(i, j int) bool { return out.Strengths[i].TeamID < out.Strengths[j].TeamID })
	sort.Slice(out.Matchups, func(i, j int) bool {
		if out.Matchups[i].Team1ID != out.Matchups[j].Team1ID {
			return out.Matchups[i].Team1ID < out.Matchups[j].Team1ID
		}
		return out.Matchups[i].Team2ID < out.Matchups[j].Team2ID
	})
	return out
}

func (w *StatsWriter) RecordRun(_ context.Context, run stats.RunRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.runs[run.SeasonID] = append(w.runs[run.SeasonID], run)
	return nil
}

func (w *StatsWriter) GetSnapshot(_ context.Context, seasonID string) (stats.Snapshot, bool, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	snapshot, ok := w.snapshots[seasonID]
	return snapshot, ok, nil
}

func (w *StatsWriter) ListRuns(_ context.Context, seasonID string) ([]stats.RunRecord, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]stats.RunRecord(nil), w.runs[seasonID]...), nil
}

func (w *StatsWriter) FailNextReplace(err error) {
	w.mu.Lock()
	w.failNextReplace = err
	w.mu.Unlock()
}
