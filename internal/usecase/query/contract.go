package query

import "github.com/okulbul/okulbul/internal/snapshot"

// SnapshotSource hands out the currently published snapshot. Every query runs
// entirely against the snapshot it was handed, regardless of concurrent
// promotions.
type SnapshotSource interface {
	Current() (*snapshot.Snapshot, error)
}
