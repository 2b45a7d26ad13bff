package okulbul

import (
	"time"

	"github.com/okulbul/okulbul/internal/domain/catalog"
	"github.com/okulbul/okulbul/internal/domain/search/result"
	refreshuc "github.com/okulbul/okulbul/internal/usecase/refresh"
)

// School is one search hit, flattened for SDK consumers.
type School struct {
	ID   int64
	Name string
	Slug string

	InstitutionTypeID   int64
	InstitutionTypeName string

	CampusID   int64
	CampusName string
	BrandName  string
	Subscribed bool
	Verified   bool

	ProvinceID       int64
	ProvinceName     string
	DistrictID       int64
	DistrictName     string
	NeighborhoodID   int64
	NeighborhoodName string

	// Lat and Lon are nil when the campus publishes no coordinates.
	Lat *float64
	Lon *float64

	Curriculum string
	Language   string

	// Fees are nil when the school publishes no fee of that kind.
	MonthlyFee *float64
	AnnualFee  *float64
	Currency   string

	MinAge *int
	MaxAge *int

	RatingAvg   float64
	RatingCount int64
	Quality     float64

	Properties []PropertyInfo

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PropertyInfo is one feature of a school.
type PropertyInfo struct {
	ID       int64
	Name     string
	Category string
	Value    any
}

// Hit couples a school with its distance from the radius search center.
// DistanceKm is nil for non-geo searches.
type Hit struct {
	School     School
	DistanceKm *float64
}

// Page is one page of ordered search results. Total counts the whole
// filtered set, not the page.
type Page struct {
	Hits  []Hit
	Total int
	Page  int
	Size  int
}

// RefreshStats summarizes one completed projection rebuild.
type RefreshStats struct {
	Records     int
	Skipped     int
	Warnings    int
	Version     uint64
	Fingerprint string
	Duration    time.Duration
}

// ScoreWeights tunes the ranking score formulas. Zero fields keep the
// built-in defaults.
type ScoreWeights struct {
	ViewSaturation           float64
	LikeSaturation           float64
	RatingSaturation         float64
	ListingAgeSaturationDays float64
	ActivityHalfLifeDays     float64
	QualityPopularity        float64
	QualityCompleteness      float64
	QualityRating            float64
}

func toInternalWeights(w ScoreWeights) refreshuc.Weights {
	return refreshuc.Weights{
		ViewSaturation:           w.ViewSaturation,
		LikeSaturation:           w.LikeSaturation,
		RatingSaturation:         w.RatingSaturation,
		ListingAgeSaturationDays: w.ListingAgeSaturationDays,
		ActivityHalfLifeDays:     w.ActivityHalfLifeDays,
		QualityPopularity:        w.QualityPopularity,
		QualityCompleteness:      w.QualityCompleteness,
		QualityRating:            w.QualityRating,
	}
}

func fromRefreshStats(st refreshuc.Stats) RefreshStats {
	return RefreshStats{
		Records:     st.Records,
		Skipped:     st.Skipped,
		Warnings:    st.Warnings,
		Version:     st.Version,
		Fingerprint: st.Fingerprint,
		Duration:    st.Duration,
	}
}

func fromPage(p result.Page) Page {
	hits := make([]Hit, len(p.Items))
	for i, item := range p.Items {
		hits[i] = Hit{
			School:     fromRecord(&item.Record),
			DistanceKm: item.DistanceKm,
		}
	}
	return Page{
		Hits:  hits,
		Total: p.Total,
		Page:  p.Page,
		Size:  p.Size,
	}
}

func fromRecord(rec *catalog.SearchRecord) School {
	s := School{
		ID:                  rec.SchoolID,
		Name:                rec.SchoolName,
		Slug:                rec.SchoolSlug,
		InstitutionTypeID:   rec.InstitutionTypeID,
		InstitutionTypeName: rec.InstitutionTypeName,
		CampusID:            rec.CampusID,
		CampusName:          rec.CampusName,
		BrandName:           rec.BrandName,
		Subscribed:          rec.Subscribed,
		Verified:            rec.Verified,
		ProvinceID:          rec.Location.ProvinceID,
		ProvinceName:        rec.Location.ProvinceName,
		DistrictID:          rec.Location.DistrictID,
		DistrictName:        rec.Location.DistrictName,
		NeighborhoodID:      rec.Location.NeighborhoodID,
		NeighborhoodName:    rec.Location.NeighborhoodName,
		Curriculum:          rec.Curriculum,
		Language:            rec.Language,
		MonthlyFee:          rec.Pricing.MonthlyFee,
		AnnualFee:           rec.Pricing.AnnualFee,
		Currency:            rec.Pricing.Currency,
		MinAge:              rec.Capacity.MinAge,
		MaxAge:              rec.Capacity.MaxAge,
		RatingAvg:           rec.Engagement.RatingAvg,
		RatingCount:         rec.Engagement.RatingCount,
		Quality:             rec.Scores.Quality,
		CreatedAt:           rec.CreatedAt,
		UpdatedAt:           rec.UpdatedAt,
	}
	if rec.Coordinates != nil {
		lat, lon := rec.Coordinates.Lat, rec.Coordinates.Lon
		s.Lat, s.Lon = &lat, &lon
	}
	if len(rec.Properties) > 0 {
		s.Properties = make([]PropertyInfo, len(rec.Properties))
		for i, p := range rec.Properties {
			s.Properties[i] = PropertyInfo{
				ID:       p.ID,
				Name:     p.DisplayName,
				Category: p.Category,
				Value:    propertyValue(p.Value),
			}
		}
	}
	return s
}

func propertyValue(v catalog.Value) any {
	switch tv := v.(type) {
	case catalog.TextValue:
		return string(tv)
	case catalog.NumberValue:
		return float64(tv)
	case catalog.BoolValue:
		return bool(tv)
	case catalog.DateValue:
		return time.Time(tv)
	default:
		return nil
	}
}
