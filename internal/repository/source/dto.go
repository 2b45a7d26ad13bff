package source

import (
	"strconv"
	"time"

	"github.com/okulbul/okulbul/internal/domain/catalog"
)

// School is one normalized school row.
type School struct {
	ID          int64
	Name        string
	Slug        string
	CampusID    int64
	TypeID      int64
	Active      bool
	Curriculum  string
	Language    string
	MinAge      *int
	MaxAge      *int
	Capacity    int
	Enrollment  int
	ClassSize   int
	ViewCount   int64
	LikeCount   int64
	RatingCount int64
	RatingAvg   float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Campus is one normalized campus row. Coordinates belong here; schools
// inherit them.
type Campus struct {
	ID             int64
	Name           string
	BrandID        int64
	CountryID      int64
	ProvinceID     int64
	DistrictID     int64
	NeighborhoodID int64
	Lat            *float64
	Lon            *float64
	Subscribed     bool
	Verified       bool
}

// Brand is one normalized brand row.
type Brand struct {
	ID   int64
	Name string
}

// InstitutionType is one normalized institution type row.
type InstitutionType struct {
	ID        int64
	Name      string
	GroupID   int64
	GroupName string
}

// Place is one row of the location hierarchy (country, province, district,
// neighborhood). ParentID points one level up; countries have none.
type Place struct {
	ID       int64
	Name     string
	Slug     string
	ParentID int64
}

// Pricing is one normalized pricing row, keyed by school.
type Pricing struct {
	SchoolID        int64
	MonthlyFee      *float64
	AnnualFee       *float64
	RegistrationFee *float64
	Currency        string
}

// PropertyDef is one property definition row.
type PropertyDef struct {
	ID          int64
	DisplayName string
	Category    string
	DataType    catalog.DataType
}

// parseSchool maps a school hash into its row. Zero-value or absent numeric
// fields parse to their zero; truly optional fields stay nil when absent.
func parseSchool(id int64, m map[string]string) School {
	return School{
		ID:          id,
		Name:        m["name"],
		Slug:        m["slug"],
		CampusID:    parseInt64(m["campus_id"]),
		TypeID:      parseInt64(m["institution_type_id"]),
		Active:      parseBool(m["active"]),
		Curriculum:  m["curriculum"],
		Language:    m["language"],
		MinAge:      parseIntPtr(m, "min_age"),
		MaxAge:      parseIntPtr(m, "max_age"),
		Capacity:    int(parseInt64(m["capacity"])),
		Enrollment:  int(parseInt64(m["enrollment"])),
		ClassSize:   int(parseInt64(m["class_size"])),
		ViewCount:   parseInt64(m["view_count"]),
		LikeCount:   parseInt64(m["like_count"]),
		RatingCount: parseInt64(m["rating_count"]),
		RatingAvg:   parseFloat(m["rating_avg"]),
		CreatedAt:   parseUnix(m["created_at"]),
		UpdatedAt:   parseUnix(m["updated_at"]),
	}
}

func parseCampus(id int64, m map[string]string) Campus {
	return Campus{
		ID:             id,
		Name:           m["name"],
		BrandID:        parseInt64(m["brand_id"]),
		CountryID:      parseInt64(m["country_id"]),
		ProvinceID:     parseInt64(m["province_id"]),
		DistrictID:     parseInt64(m["district_id"]),
		NeighborhoodID: parseInt64(m["neighborhood_id"]),
		Lat:            parseFloatPtr(m, "lat"),
		Lon:            parseFloatPtr(m, "lon"),
		Subscribed:     parseBool(m["subscribed"]),
		Verified:       parseBool(m["verified"]),
	}
}

func parsePlace(id int64, m map[string]string, parentField string) Place {
	return Place{
		ID:       id,
		Name:     m["name"],
		Slug:     m["slug"],
		ParentID: parseInt64(m[parentField]),
	}
}

func parseInstitutionType(id int64, m map[string]string) InstitutionType {
	return InstitutionType{
		ID:        id,
		Name:      m["name"],
		GroupID:   parseInt64(m["group_id"]),
		GroupName: m["group_name"],
	}
}

func parsePricing(schoolID int64, m map[string]string) Pricing {
	return Pricing{
		SchoolID:        schoolID,
		MonthlyFee:      parseFloatPtr(m, "monthly_fee"),
		AnnualFee:       parseFloatPtr(m, "annual_fee"),
		RegistrationFee: parseFloatPtr(m, "registration_fee"),
		Currency:        m["currency"],
	}
}

func parsePropertyDef(id int64, m map[string]string) (PropertyDef, bool) {
	dt := catalog.DataType(m["data_type"])
	if !dt.IsValid() {
		return PropertyDef{}, false
	}
	return PropertyDef{
		ID:          id,
		DisplayName: m["display_name"],
		Category:    m["category"],
		DataType:    dt,
	}, true
}

func parseInt64(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func parseBool(s string) bool {
	return s == "1" || s == "true"
}

func parseIntPtr(m map[string]string, field string) *int {
	s, ok := m[field]
	if !ok || s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &v
}

func parseFloatPtr(m map[string]string, field string) *float64 {
	s, ok := m[field]
	if !ok || s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseUnix(s string) time.Time {
	sec, err := strconv.ParseInt(s, 10, 64)
	if err != nil || sec <= 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}
