package request

import (
	"fmt"

	"github.com/okulbul/okulbul/internal/domain"
	"github.com/okulbul/okulbul/internal/domain/catalog"
	"github.com/okulbul/okulbul/internal/domain/geo"
	"github.com/okulbul/okulbul/internal/domain/search/sortkey"
)

// Request parameter limits.
const (
	MaxTermLength   = 256
	MaxPropertySet  = 32
	DefaultPageSize = 20
	MaxPageSize     = 100
	MaxPage         = 10000
	MaxRatingScale  = 5
)

// Mode discriminates the two query styles.
type Mode string

// Request modes.
const (
	// ByID addresses the locator pair by numeric id (web frontend).
	ByID Mode = "id"
	// ByName addresses the locator pair by display name (AI assistant),
	// matched case-insensitively with Turkish folding.
	ByName Mode = "name"
)

// Bounds carries the configured pagination limits.
type Bounds struct {
	DefaultSize int
	MaxSize     int
}

func (b Bounds) withDefaults() Bounds {
	if b.DefaultSize <= 0 {
		b.DefaultSize = DefaultPageSize
	}
	if b.MaxSize <= 0 {
		b.MaxSize = MaxPageSize
	}
	return b
}

// Params is the raw, untrusted parameter set of a search request. Exactly one
// locator style must be complete: ids (InstitutionTypeID+ProvinceID) or names
// (InstitutionTypeName+ProvinceName).
type Params struct {
	InstitutionTypeID   int64
	ProvinceID          int64
	InstitutionTypeName string
	ProvinceName        string

	DistrictID       int64
	DistrictName     string
	NeighborhoodID   int64
	NeighborhoodName string

	MinAge *int
	MaxAge *int

	MinFee *float64
	MaxFee *float64

	Curriculum string
	Language   string

	MinRating  *float64
	Subscribed *bool

	Term string

	PropertyIDs   []int64
	PropertyNames []string

	Lat      *float64
	Lon      *float64
	RadiusKm *float64

	Sort      string
	Direction string

	Page int
	Size int
}

// Request is a validated, mode-sealed search query. Name-style locators are
// stored pre-folded so the filter engine never folds request text again.
type Request struct {
	mode Mode

	typeID     int64
	provinceID int64

	typeName     string
	provinceName string

	districtID       int64
	districtName     string
	neighborhoodID   int64
	neighborhoodName string

	minAge *int
	maxAge *int

	minFee *float64
	maxFee *float64

	curriculum string
	language   string

	minRating  *float64
	subscribed *bool

	term       string
	termTokens []string

	propertyIDs   []int64
	propertyNames []string

	center   *geo.Point
	radiusKm float64

	sort      sortkey.Key
	direction sortkey.Direction

	page int
	size int
}

// New validates and normalizes search parameters into a sealed Request.
// Unknown sort keys fall back to the default; page and size are clamped to
// bounds; everything else invalid is rejected with domain.ErrInvalidRequest
// (or domain.ErrAmbiguousMode for mixed locator styles).
func New(p Params, b Bounds) (Request, error) {
	b = b.withDefaults()

	m, err := resolveMode(p)
	if err != nil {
		return Request{}, err
	}

	r := Request{
		mode:       m,
		curriculum: catalog.Fold(p.Curriculum),
		language:   catalog.Fold(p.Language),
		minAge:     p.MinAge,
		maxAge:     p.MaxAge,
		minFee:     p.MinFee,
		maxFee:     p.MaxFee,
		minRating:  p.MinRating,
		subscribed: p.Subscribed,
	}

	switch m {
	case ByID:
		r.typeID = p.InstitutionTypeID
		r.provinceID = p.ProvinceID
		r.districtID = p.DistrictID
		r.neighborhoodID = p.NeighborhoodID
		if len(p.PropertyNames) > 0 {
			return Request{}, fmt.Errorf("%w: property names are not allowed in id mode", domain.ErrInvalidRequest)
		}
		r.propertyIDs = dedupeIDs(p.PropertyIDs)
	case ByName:
		r.typeName = catalog.Fold(p.InstitutionTypeName)
		r.provinceName = catalog.Fold(p.ProvinceName)
		r.districtName = catalog.Fold(p.DistrictName)
		r.neighborhoodName = catalog.Fold(p.NeighborhoodName)
		if len(p.PropertyIDs) > 0 {
			return Request{}, fmt.Errorf("%w: property ids are not allowed in name mode", domain.ErrInvalidRequest)
		}
		r.propertyNames = foldNames(p.PropertyNames)
	}

	if len(r.propertyIDs) > MaxPropertySet || len(r.propertyNames) > MaxPropertySet {
		return Request{}, fmt.Errorf("%w: too many properties (max %d)", domain.ErrInvalidRequest, MaxPropertySet)
	}

	if err := validateRanges(p); err != nil {
		return Request{}, err
	}

	if p.Term != "" {
		if len(p.Term) > MaxTermLength {
			return Request{}, fmt.Errorf("%w: search term too long (max %d chars)", domain.ErrInvalidRequest, MaxTermLength)
		}
		r.term = catalog.Fold(p.Term)
		r.termTokens = catalog.FoldTokens(p.Term)
	}

	center, radius, err := resolveGeo(p)
	if err != nil {
		return Request{}, err
	}
	r.center = center
	r.radiusKm = radius

	r.sort = sortkey.Parse(p.Sort)
	r.direction = sortkey.ParseDirection(p.Direction, r.sort)

	// Cap the page so page*size stays far from integer overflow; anything
	// past the end of the result set paginates to an empty page anyway.
	r.page = p.Page
	if r.page < 0 {
		r.page = 0
	}
	if r.page > MaxPage {
		r.page = MaxPage
	}
	r.size = p.Size
	if r.size <= 0 {
		r.size = b.DefaultSize
	}
	if r.size > b.MaxSize {
		r.size = b.MaxSize
	}

	return r, nil
}

// resolveMode determines the request mode from the supplied locator pair.
func resolveMode(p Params) (Mode, error) {
	hasIDs := p.InstitutionTypeID > 0 || p.ProvinceID > 0 ||
		p.DistrictID > 0 || p.NeighborhoodID > 0
	hasNames := p.InstitutionTypeName != "" || p.ProvinceName != "" ||
		p.DistrictName != "" || p.NeighborhoodName != ""

	switch {
	case hasIDs && hasNames:
		return "", fmt.Errorf("%w: both id and name locators supplied", domain.ErrAmbiguousMode)
	case hasIDs:
		if p.InstitutionTypeID <= 0 || p.ProvinceID <= 0 {
			return "", fmt.Errorf("%w: institutionTypeId and provinceId are required", domain.ErrInvalidRequest)
		}
		return ByID, nil
	case hasNames:
		if p.InstitutionTypeName == "" || p.ProvinceName == "" {
			return "", fmt.Errorf("%w: institutionTypeName and provinceName are required", domain.ErrInvalidRequest)
		}
		return ByName, nil
	default:
		return "", fmt.Errorf("%w: a locator pair is required", domain.ErrInvalidRequest)
	}
}

func validateRanges(p Params) error {
	if p.MinAge != nil && *p.MinAge < 0 {
		return fmt.Errorf("%w: minAge must not be negative", domain.ErrInvalidRequest)
	}
	if p.MinAge != nil && p.MaxAge != nil && *p.MinAge > *p.MaxAge {
		return fmt.Errorf("%w: minAge exceeds maxAge", domain.ErrInvalidRequest)
	}
	if p.MinFee != nil && *p.MinFee < 0 {
		return fmt.Errorf("%w: minFee must not be negative", domain.ErrInvalidRequest)
	}
	if p.MinFee != nil && p.MaxFee != nil && *p.MinFee > *p.MaxFee {
		return fmt.Errorf("%w: minFee exceeds maxFee", domain.ErrInvalidRequest)
	}
	if p.MinRating != nil && (*p.MinRating < 0 || *p.MinRating > MaxRatingScale) {
		return fmt.Errorf("%w: minRating must be between 0 and %d", domain.ErrInvalidRequest, MaxRatingScale)
	}
	return nil
}

// resolveGeo validates the radius triple: all of lat, lon, and radius or none.
func resolveGeo(p Params) (*geo.Point, float64, error) {
	if p.Lat == nil && p.Lon == nil && p.RadiusKm == nil {
		return nil, 0, nil
	}
	if p.Lat == nil || p.Lon == nil || p.RadiusKm == nil {
		return nil, 0, fmt.Errorf("%w: radius search requires lat, lon, and radiusKm together", domain.ErrInvalidRequest)
	}
	if *p.RadiusKm <= 0 {
		return nil, 0, fmt.Errorf("%w: radiusKm must be positive", domain.ErrInvalidRequest)
	}
	pt := geo.Point{Lat: *p.Lat, Lon: *p.Lon}
	if !pt.Valid() {
		return nil, 0, fmt.Errorf("%w: coordinates out of range", domain.ErrInvalidRequest)
	}
	return &pt, *p.RadiusKm, nil
}

func dedupeIDs(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func foldNames(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		f := catalog.Fold(n)
		if f == "" {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// Mode returns the request mode.
func (r *Request) Mode() Mode { return r.mode }

// TypeID returns the institution type id (id mode).
func (r *Request) TypeID() int64 { return r.typeID }

// ProvinceID returns the province id (id mode).
func (r *Request) ProvinceID() int64 { return r.provinceID }

// TypeName returns the folded institution type name (name mode).
func (r *Request) TypeName() string { return r.typeName }

// ProvinceName returns the folded province name (name mode).
func (r *Request) ProvinceName() string { return r.provinceName }

// DistrictID returns the optional district id.
func (r *Request) DistrictID() int64 { return r.districtID }

// DistrictName returns the optional folded district name.
func (r *Request) DistrictName() string { return r.districtName }

// NeighborhoodID returns the optional neighborhood id.
func (r *Request) NeighborhoodID() int64 { return r.neighborhoodID }

// NeighborhoodName returns the optional folded neighborhood name.
func (r *Request) NeighborhoodName() string { return r.neighborhoodName }

// MinAge returns the requested minimum age, nil when unset.
func (r *Request) MinAge() *int { return r.minAge }

// MaxAge returns the requested maximum age, nil when unset.
func (r *Request) MaxAge() *int { return r.maxAge }

// MinFee returns the inclusive lower monthly fee bound, nil when unset.
func (r *Request) MinFee() *float64 { return r.minFee }

// MaxFee returns the inclusive upper monthly fee bound, nil when unset.
func (r *Request) MaxFee() *float64 { return r.maxFee }

// Curriculum returns the folded curriculum filter, empty when unset.
func (r *Request) Curriculum() string { return r.curriculum }

// Language returns the folded language-of-instruction filter, empty when unset.
func (r *Request) Language() string { return r.language }

// MinRating returns the minimum rating threshold, nil when unset.
func (r *Request) MinRating() *float64 { return r.minRating }

// Subscribed returns the subscription flag filter, nil when unset.
func (r *Request) Subscribed() *bool { return r.subscribed }

// Term returns the folded free-text term, empty when unset.
func (r *Request) Term() string { return r.term }

// TermTokens returns the folded tokens of the free-text term.
func (r *Request) TermTokens() []string { return r.termTokens }

// PropertyIDs returns the property id set (id mode).
func (r *Request) PropertyIDs() []int64 { return r.propertyIDs }

// PropertyNames returns the folded property display name set (name mode).
func (r *Request) PropertyNames() []string { return r.propertyNames }

// Center returns the radius search center, nil when no geo filter applies.
func (r *Request) Center() *geo.Point { return r.center }

// RadiusKm returns the radius in kilometers, 0 when no geo filter applies.
func (r *Request) RadiusKm() float64 { return r.radiusKm }

// Sort returns the primary sort key.
func (r *Request) Sort() sortkey.Key { return r.sort }

// Direction returns the sort direction.
func (r *Request) Direction() sortkey.Direction { return r.direction }

// Page returns the 0-based page number.
func (r *Request) Page() int { return r.page }

// Size returns the clamped page size.
func (r *Request) Size() int { return r.size }
