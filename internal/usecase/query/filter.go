package query

import (
	"strings"

	"github.com/okulbul/okulbul/internal/domain/catalog"
	"github.com/okulbul/okulbul/internal/domain/geo"
	"github.com/okulbul/okulbul/internal/domain/search/request"
)

// matches evaluates the full predicate conjunction against one record.
// propPos is the precomputed position set for the property-membership
// predicate (nil when no property filter applies); pos is the record's
// snapshot position. Returns the computed distance for radius queries.
//
// Optional predicates are exclusionary: a record lacking the data a supplied
// predicate needs (no rating, no fee, no coordinates) does not match.
func matches(
	rec *catalog.SearchRecord, req *request.Request,
	propPos map[int]struct{}, pos int,
) (distanceKm *float64, ok bool) {
	if !matchesLocator(rec, req) {
		return nil, false
	}
	if !matchesAge(rec, req) {
		return nil, false
	}
	if !matchesFee(rec, req) {
		return nil, false
	}
	if req.Curriculum() != "" && rec.Folded.Curriculum != req.Curriculum() {
		return nil, false
	}
	if req.Language() != "" && rec.Folded.Language != req.Language() {
		return nil, false
	}
	if min := req.MinRating(); min != nil {
		if !rec.HasRating() || rec.Engagement.RatingAvg < *min {
			return nil, false
		}
	}
	if sub := req.Subscribed(); sub != nil && rec.Subscribed != *sub {
		return nil, false
	}
	if !matchesTerm(rec, req) {
		return nil, false
	}
	if propPos != nil {
		if _, hit := propPos[pos]; !hit {
			return nil, false
		}
	}
	return matchesRadius(rec, req)
}

// matchesLocator checks the hierarchical equality predicates in the request's
// own mode: ids against ids, folded names against folded names.
func matchesLocator(rec *catalog.SearchRecord, req *request.Request) bool {
	switch req.Mode() {
	case request.ByID:
		if rec.InstitutionTypeID != req.TypeID() || rec.Location.ProvinceID != req.ProvinceID() {
			return false
		}
		if req.DistrictID() > 0 && rec.Location.DistrictID != req.DistrictID() {
			return false
		}
		if req.NeighborhoodID() > 0 && rec.Location.NeighborhoodID != req.NeighborhoodID() {
			return false
		}
	case request.ByName:
		if rec.Folded.TypeName != req.TypeName() || rec.Folded.ProvinceName != req.ProvinceName() {
			return false
		}
		if req.DistrictName() != "" && rec.Folded.DistrictName != req.DistrictName() {
			return false
		}
		if req.NeighborhoodName() != "" && rec.Folded.NeighborhoodName != req.NeighborhoodName() {
			return false
		}
	}
	return true
}

// matchesAge checks that the record's published age range covers the request:
// record.minAge <= request.minAge and record.maxAge >= request.maxAge for
// whichever bounds are supplied. A record without an age range fails any age
// predicate.
func matchesAge(rec *catalog.SearchRecord, req *request.Request) bool {
	if min := req.MinAge(); min != nil {
		if rec.Capacity.MinAge == nil || *rec.Capacity.MinAge > *min {
			return false
		}
	}
	if max := req.MaxAge(); max != nil {
		if rec.Capacity.MaxAge == nil || *rec.Capacity.MaxAge < *max {
			return false
		}
	}
	return true
}

// matchesFee applies inclusive bounds on the monthly fee.
func matchesFee(rec *catalog.SearchRecord, req *request.Request) bool {
	min, max := req.MinFee(), req.MaxFee()
	if min == nil && max == nil {
		return true
	}
	fee := rec.Pricing.MonthlyFee
	if fee == nil {
		return false
	}
	if min != nil && *fee < *min {
		return false
	}
	if max != nil && *fee > *max {
		return false
	}
	return true
}

// matchesTerm matches the folded term as a substring of the school name or as
// a token set against the precomputed search blob: every term token must
// appear in the blob for the blob path to match.
func matchesTerm(rec *catalog.SearchRecord, req *request.Request) bool {
	term := req.Term()
	if term == "" {
		return true
	}
	if strings.Contains(rec.Folded.SchoolName, term) {
		return true
	}
	if rec.SearchBlob == "" {
		return false
	}
	blobTokens := strings.Fields(rec.SearchBlob)
	for _, want := range req.TermTokens() {
		if !containsToken(blobTokens, want) {
			return false
		}
	}
	return true
}

func containsToken(tokens []string, want string) bool {
	for _, t := range tokens {
		if t == want {
			return true
		}
	}
	return false
}

// matchesRadius evaluates the geo predicate. Records without coordinates are
// excluded from radius queries; non-geo requests pass with no distance.
func matchesRadius(rec *catalog.SearchRecord, req *request.Request) (*float64, bool) {
	center := req.Center()
	if center == nil {
		return nil, true
	}
	if rec.Coordinates == nil {
		return nil, false
	}
	d, within := geo.WithinRadius(*center, *rec.Coordinates, req.RadiusKm())
	if !within {
		return nil, false
	}
	return &d, true
}
