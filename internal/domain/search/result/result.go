package result

import "github.com/okulbul/okulbul/internal/domain/catalog"

// Item is a single search hit: the record projection plus the computed
// distance for radius queries. DistanceKm is nil for non-geo requests.
type Item struct {
	Record     catalog.SearchRecord `json:"record"`
	DistanceKm *float64             `json:"distanceKm,omitempty"`
}

// Page is one ordered page of the filtered set. Total counts the whole
// filtered set, not the page.
type Page struct {
	Items           []Item `json:"items"`
	Total           int    `json:"total"`
	Page            int    `json:"page"`
	Size            int    `json:"size"`
	SnapshotVersion uint64 `json:"snapshotVersion"`
}
