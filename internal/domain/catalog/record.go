package catalog

import (
	"strings"
	"time"

	"github.com/okulbul/okulbul/internal/domain/geo"
)

// Location is the denormalized place hierarchy of a campus. District and
// neighborhood are optional; a zero id with an empty name means absent.
type Location struct {
	CountryID        int64  `json:"countryId"`
	CountryName      string `json:"countryName"`
	CountrySlug      string `json:"countrySlug,omitempty"`
	ProvinceID       int64  `json:"provinceId"`
	ProvinceName     string `json:"provinceName"`
	ProvinceSlug     string `json:"provinceSlug,omitempty"`
	DistrictID       int64  `json:"districtId,omitempty"`
	DistrictName     string `json:"districtName,omitempty"`
	DistrictSlug     string `json:"districtSlug,omitempty"`
	NeighborhoodID   int64  `json:"neighborhoodId,omitempty"`
	NeighborhoodName string `json:"neighborhoodName,omitempty"`
	NeighborhoodSlug string `json:"neighborhoodSlug,omitempty"`
}

// Pricing is the fee snapshot taken at projection time. Nil means the school
// has no published fee of that kind.
type Pricing struct {
	MonthlyFee      *float64 `json:"monthlyFee,omitempty"`
	AnnualFee       *float64 `json:"annualFee,omitempty"`
	RegistrationFee *float64 `json:"registrationFee,omitempty"`
	Currency        string   `json:"currency,omitempty"`
}

// Capacity holds age range and enrollment figures. Nil ages mean the school
// publishes no age range.
type Capacity struct {
	MinAge     *int `json:"minAge,omitempty"`
	MaxAge     *int `json:"maxAge,omitempty"`
	Capacity   int  `json:"capacity,omitempty"`
	Enrollment int  `json:"enrollment,omitempty"`
	ClassSize  int  `json:"classSize,omitempty"`
}

// Engagement holds raw popularity counters. RatingAvg is meaningful only when
// RatingCount is positive.
type Engagement struct {
	ViewCount   int64   `json:"viewCount"`
	LikeCount   int64   `json:"likeCount"`
	RatingCount int64   `json:"ratingCount"`
	RatingAvg   float64 `json:"ratingAvg"`
}

// Scores are the computed ranking scores, each bounded to [0,1].
type Scores struct {
	Popularity float64 `json:"popularity"`
	Trust      float64 `json:"trust"`
	Quality    float64 `json:"quality"`
	Activity   float64 `json:"activity"`
}

// Folds carries precomputed Turkish-folded match fields. Built once per
// record at projection time so queries never re-fold record text.
type Folds struct {
	SchoolName       string `json:"-"`
	TypeName         string `json:"-"`
	ProvinceName     string `json:"-"`
	DistrictName     string `json:"-"`
	NeighborhoodName string `json:"-"`
	Curriculum       string `json:"-"`
	Language         string `json:"-"`
}

// SearchRecord is the denormalized, immutable projection of one active school.
// It is created in bulk by a projection cycle and replaced wholesale by the
// next one; there is no per-record mutation.
type SearchRecord struct {
	SchoolID   int64  `json:"schoolId"`
	SchoolName string `json:"schoolName"`
	SchoolSlug string `json:"schoolSlug,omitempty"`

	InstitutionTypeID   int64  `json:"institutionTypeId"`
	InstitutionTypeName string `json:"institutionTypeName"`
	TypeGroupID         int64  `json:"typeGroupId,omitempty"`
	TypeGroupName       string `json:"typeGroupName,omitempty"`

	CampusID   int64  `json:"campusId"`
	CampusName string `json:"campusName"`
	BrandID    int64  `json:"brandId,omitempty"`
	BrandName  string `json:"brandName,omitempty"`
	Subscribed bool   `json:"subscribed"`
	Verified   bool   `json:"verified"`

	Location    Location   `json:"location"`
	Coordinates *geo.Point `json:"coordinates,omitempty"`

	Curriculum string `json:"curriculum,omitempty"`
	Language   string `json:"language,omitempty"`

	Pricing    Pricing    `json:"pricing"`
	Capacity   Capacity   `json:"capacity"`
	Engagement Engagement `json:"engagement"`
	Scores     Scores     `json:"scores"`

	// Properties is ordered by property id. ByCategory is the grouped view of
	// the same entries.
	Properties []Property            `json:"properties,omitempty"`
	ByCategory map[string][]Property `json:"propertiesByCategory,omitempty"`

	// SearchBlob is the folded, whitespace-joined text of property display
	// names and text values, used for free-text token matching.
	SearchBlob string `json:"-"`

	Folded Folds `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ComputeDerived fills the folded match fields, the category grouping, and the
// search blob from the record's own data. Called once when the record is built.
func (r *SearchRecord) ComputeDerived() {
	r.Folded = Folds{
		SchoolName:       Fold(r.SchoolName),
		TypeName:         Fold(r.InstitutionTypeName),
		ProvinceName:     Fold(r.Location.ProvinceName),
		DistrictName:     Fold(r.Location.DistrictName),
		NeighborhoodName: Fold(r.Location.NeighborhoodName),
		Curriculum:       Fold(r.Curriculum),
		Language:         Fold(r.Language),
	}
	r.ByCategory = GroupByCategory(r.Properties)
	r.SearchBlob = buildSearchBlob(r.Properties)
}

// buildSearchBlob joins folded property display names and text-typed values.
func buildSearchBlob(props []Property) string {
	if len(props) == 0 {
		return ""
	}
	parts := make([]string, 0, len(props)*2)
	for _, p := range props {
		if f := Fold(p.DisplayName); f != "" {
			parts = append(parts, f)
		}
		if tv, ok := p.Value.(TextValue); ok {
			if f := Fold(string(tv)); f != "" {
				parts = append(parts, f)
			}
		}
	}
	return strings.Join(parts, " ")
}

// HasRating reports whether the record carries at least one rating.
func (r *SearchRecord) HasRating() bool { return r.Engagement.RatingCount > 0 }

// HasAnyPropertyID reports whether the record carries at least one of the
// given property ids.
func (r *SearchRecord) HasAnyPropertyID(ids []int64) bool {
	for _, p := range r.Properties {
		for _, id := range ids {
			if p.ID == id {
				return true
			}
		}
	}
	return false
}

// HasAnyPropertyName reports whether the record carries at least one property
// whose folded display name is in the given folded set.
func (r *SearchRecord) HasAnyPropertyName(foldedNames []string) bool {
	for _, p := range r.Properties {
		name := Fold(p.DisplayName)
		for _, want := range foldedNames {
			if name == want {
				return true
			}
		}
	}
	return false
}
