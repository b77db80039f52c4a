package stats

import "context"

// Writer persists derived season rows. Replace must swap the snapshot
// atomically: either every table reflects the new run or none does.
// When the snapshot carries a DivisionID the swap is scoped to that
// division's rows and the rest of the season is left untouched.
type Writer interface {
	Replace(ctx context.Context, snapshot Snapshot) error
	RecordRun(ctx context.Context, run RunRecord) error
}

// Reader exposes the derived tables to the serving collaborator.
type Reader interface {
	GetSnapshot(ctx context.Context, seasonID string) (Snapshot, bool, error)
	ListRuns(ctx context.Context, seasonID string) ([]RunRecord, error)
}
