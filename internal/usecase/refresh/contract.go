package refresh

import (
	"context"

	"github.com/okulbul/okulbul/internal/repository/source"
	"github.com/okulbul/okulbul/internal/snapshot"
)

// SourceReader supplies one consistent read of the normalized source data.
type SourceReader interface {
	LoadAll(ctx context.Context) (*source.Dataset, error)
}

// Publisher promotes built snapshots.
type Publisher interface {
	Publish(sn *snapshot.Snapshot) uint64
}
