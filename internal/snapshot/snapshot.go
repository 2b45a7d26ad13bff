// Package snapshot holds the published projection: an immutable set of
// SearchRecords plus the lookup indexes queries need. A Snapshot never changes
// after construction; the Store swaps whole snapshots atomically so readers
// observe either the old projection or the new one, never a mix.
package snapshot

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sort"
	"time"

	"github.com/okulbul/okulbul/internal/domain/catalog"
)

// Snapshot is one complete, versioned projection of all active schools.
type Snapshot struct {
	version     uint64
	builtAt     time.Time
	fingerprint string

	// records are ordered by school id; positions below index into it.
	records []catalog.SearchRecord

	byID       map[int64]int
	byProperty map[int64][]int
	byPropName map[string][]int
}

// New builds a snapshot from fully constructed records. Records are sorted by
// school id; derived record fields must already be computed. The fingerprint
// covers record content only, so two builds over identical source data yield
// equal fingerprints regardless of build time.
func New(records []catalog.SearchRecord, builtAt time.Time) (*Snapshot, error) {
	sorted := make([]catalog.SearchRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].SchoolID < sorted[j].SchoolID })

	s := &Snapshot{
		builtAt:    builtAt,
		records:    sorted,
		byID:       make(map[int64]int, len(sorted)),
		byProperty: make(map[int64][]int),
		byPropName: make(map[string][]int),
	}

	h := fnv.New64a()
	for i := range sorted {
		r := &sorted[i]
		if _, dup := s.byID[r.SchoolID]; dup {
			return nil, fmt.Errorf("duplicate school id %d", r.SchoolID)
		}
		s.byID[r.SchoolID] = i
		for _, p := range r.Properties {
			s.byProperty[p.ID] = append(s.byProperty[p.ID], i)
			s.byPropName[catalog.Fold(p.DisplayName)] = append(s.byPropName[catalog.Fold(p.DisplayName)], i)
		}
		raw, err := json.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("fingerprint school %d: %w", r.SchoolID, err)
		}
		_, _ = h.Write(raw)
	}
	s.fingerprint = fmt.Sprintf("%016x", h.Sum64())

	return s, nil
}

// Version returns the publish sequence number (0 until published).
func (s *Snapshot) Version() uint64 { return s.version }

// BuiltAt returns when the projection cycle built this snapshot.
func (s *Snapshot) BuiltAt() time.Time { return s.builtAt }

// Fingerprint returns the content hash of all records.
func (s *Snapshot) Fingerprint() string { return s.fingerprint }

// Len returns the record count.
func (s *Snapshot) Len() int { return len(s.records) }

// At returns the record at position i. The returned pointer references
// immutable data and must not be written through.
func (s *Snapshot) At(i int) *catalog.SearchRecord { return &s.records[i] }

// ByID returns the record for a school id.
func (s *Snapshot) ByID(schoolID int64) (*catalog.SearchRecord, bool) {
	i, ok := s.byID[schoolID]
	if !ok {
		return nil, false
	}
	return &s.records[i], true
}

// PositionsWithAnyPropertyID returns the set of record positions carrying at
// least one of the given property ids.
func (s *Snapshot) PositionsWithAnyPropertyID(ids []int64) map[int]struct{} {
	out := make(map[int]struct{})
	for _, id := range ids {
		for _, pos := range s.byProperty[id] {
			out[pos] = struct{}{}
		}
	}
	return out
}

// PositionsWithAnyPropertyName returns the set of record positions carrying at
// least one property whose folded display name is in the given folded set.
func (s *Snapshot) PositionsWithAnyPropertyName(foldedNames []string) map[int]struct{} {
	out := make(map[int]struct{})
	for _, name := range foldedNames {
		for _, pos := range s.byPropName[name] {
			out[pos] = struct{}{}
		}
	}
	return out
}
