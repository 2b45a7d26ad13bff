package snapshot

import (
	"sync/atomic"

	"github.com/okulbul/okulbul/internal/domain"
)

// Store holds the currently published snapshot. Promotion is a single atomic
// pointer swap: queries that already hold a snapshot keep reading it
// unaffected. Single writer (the refresh job), any number of readers.
type Store struct {
	cur     atomic.Pointer[Snapshot]
	version atomic.Uint64
}

// NewStore creates an empty store. Queries against an empty store fail with
// domain.ErrSnapshotUnavailable.
func NewStore() *Store {
	return &Store{}
}

// Current returns the published snapshot.
func (s *Store) Current() (*Snapshot, error) {
	sn := s.cur.Load()
	if sn == nil {
		return nil, domain.ErrSnapshotUnavailable
	}
	return sn, nil
}

// Publish assigns the next version to sn and promotes it. Returns the
// assigned version.
func (s *Store) Publish(sn *Snapshot) uint64 {
	sn.version = s.version.Add(1)
	s.cur.Store(sn)
	return sn.version
}
