package query

import (
	"sort"

	"github.com/okulbul/okulbul/internal/domain/catalog"
	"github.com/okulbul/okulbul/internal/domain/search/sortkey"
)

// candidate is one filtered record awaiting ordering.
type candidate struct {
	rec        *catalog.SearchRecord
	distanceKm *float64
}

// order sorts candidates by the requested key and direction into a total,
// deterministic order: primary key (absent values last regardless of
// direction), then quality descending, then school id ascending. Repeating
// the same query against the same snapshot always yields the same order.
func order(cands []candidate, key sortkey.Key, dir sortkey.Direction) {
	sort.Slice(cands, func(i, j int) bool {
		if c := compare(cands[i].rec, cands[j].rec, key, dir); c != 0 {
			return c < 0
		}
		a, b := cands[i].rec, cands[j].rec
		if a.Scores.Quality != b.Scores.Quality {
			return a.Scores.Quality > b.Scores.Quality
		}
		return a.SchoolID < b.SchoolID
	})
}

// compare returns -1/0/+1 for the primary sort key only.
func compare(a, b *catalog.SearchRecord, key sortkey.Key, dir sortkey.Direction) int {
	if key == sortkey.Name {
		return compareString(a.Folded.SchoolName, b.Folded.SchoolName, dir)
	}

	av, aok := numericSortValue(a, key)
	bv, bok := numericSortValue(b, key)
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		// Absent sorts last regardless of direction.
		return 1
	case !bok:
		return -1
	}
	if av == bv {
		return 0
	}
	less := av < bv
	if dir == sortkey.Desc {
		less = !less
	}
	if less {
		return -1
	}
	return 1
}

func compareString(a, b string, dir sortkey.Direction) int {
	if a == b {
		return 0
	}
	less := a < b
	if dir == sortkey.Desc {
		less = !less
	}
	if less {
		return -1
	}
	return 1
}

// numericSortValue extracts the primary sort value; ok is false when the
// record has none (no rating yet, no published fee, zero created date).
func numericSortValue(r *catalog.SearchRecord, key sortkey.Key) (float64, bool) {
	switch key {
	case sortkey.Rating:
		if !r.HasRating() {
			return 0, false
		}
		return r.Engagement.RatingAvg, true
	case sortkey.Price:
		if r.Pricing.MonthlyFee == nil {
			return 0, false
		}
		return *r.Pricing.MonthlyFee, true
	case sortkey.CreatedDate:
		if r.CreatedAt.IsZero() {
			return 0, false
		}
		return float64(r.CreatedAt.UnixNano()), true
	default: // sortkey.Quality
		return r.Scores.Quality, true
	}
}
