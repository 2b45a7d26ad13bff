package health

import (
	"context"

	"github.com/okulbul/okulbul/internal/snapshot"
)

// DBPinger checks source store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// SnapshotSource reads the published snapshot for readiness checks.
type SnapshotSource interface {
	Current() (*snapshot.Snapshot, error)
}
