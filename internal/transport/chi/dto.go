package chi

import (
	"github.com/okulbul/okulbul/internal/domain"
	"github.com/okulbul/okulbul/internal/domain/search/request"
	"github.com/okulbul/okulbul/internal/domain/search/result"
	"github.com/okulbul/okulbul/internal/usecase/refresh"
)

// ErrorCode identifies an API error category.
type ErrorCode string

// API error codes.
const (
	CodeBadRequest           ErrorCode = "bad_request"
	CodeValidationFailed     ErrorCode = "validation_failed"
	CodeAmbiguousMode        ErrorCode = "ambiguous_mode"
	CodeSnapshotUnavailable  ErrorCode = "snapshot_unavailable"
	CodeRefreshInProgress    ErrorCode = "refresh_in_progress"
	CodeRefreshFailed        ErrorCode = "refresh_failed"
	CodeAssistantUnavailable ErrorCode = "assistant_unavailable"
	CodeCriteriaIncomplete   ErrorCode = "criteria_incomplete"
	CodeInternalError        ErrorCode = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchRequest is the POST /v1/search body. Locators come as either ids or
// names, never both.
type SearchRequest struct {
	InstitutionTypeID   int64  `json:"institutionTypeId,omitempty"`
	ProvinceID          int64  `json:"provinceId,omitempty"`
	InstitutionTypeName string `json:"institutionTypeName,omitempty"`
	ProvinceName        string `json:"provinceName,omitempty"`

	DistrictID       int64  `json:"districtId,omitempty"`
	DistrictName     string `json:"districtName,omitempty"`
	NeighborhoodID   int64  `json:"neighborhoodId,omitempty"`
	NeighborhoodName string `json:"neighborhoodName,omitempty"`

	MinAge *int `json:"minAge,omitempty"`
	MaxAge *int `json:"maxAge,omitempty"`

	MinFee *float64 `json:"minFee,omitempty"`
	MaxFee *float64 `json:"maxFee,omitempty"`

	Curriculum string `json:"curriculum,omitempty"`
	Language   string `json:"language,omitempty"`

	MinRating  *float64 `json:"minRating,omitempty"`
	Subscribed *bool    `json:"subscribed,omitempty"`

	Term string `json:"term,omitempty"`

	PropertyIDs   []int64  `json:"propertyIds,omitempty"`
	PropertyNames []string `json:"propertyNames,omitempty"`

	Lat      *float64 `json:"lat,omitempty"`
	Lon      *float64 `json:"lon,omitempty"`
	RadiusKm *float64 `json:"radiusKm,omitempty"`

	Sort      string `json:"sort,omitempty"`
	Direction string `json:"direction,omitempty"`

	Page int `json:"page,omitempty"`
	Size int `json:"size,omitempty"`
}

func (r SearchRequest) toParams() request.Params {
	return request.Params{
		InstitutionTypeID:   r.InstitutionTypeID,
		ProvinceID:          r.ProvinceID,
		InstitutionTypeName: r.InstitutionTypeName,
		ProvinceName:        r.ProvinceName,
		DistrictID:          r.DistrictID,
		DistrictName:        r.DistrictName,
		NeighborhoodID:      r.NeighborhoodID,
		NeighborhoodName:    r.NeighborhoodName,
		MinAge:              r.MinAge,
		MaxAge:              r.MaxAge,
		MinFee:              r.MinFee,
		MaxFee:              r.MaxFee,
		Curriculum:          r.Curriculum,
		Language:            r.Language,
		MinRating:           r.MinRating,
		Subscribed:          r.Subscribed,
		Term:                r.Term,
		PropertyIDs:         r.PropertyIDs,
		PropertyNames:       r.PropertyNames,
		Lat:                 r.Lat,
		Lon:                 r.Lon,
		RadiusKm:            r.RadiusKm,
		Sort:                r.Sort,
		Direction:           r.Direction,
		Page:                r.Page,
		Size:                r.Size,
	}
}

// AssistantRequest is the POST /v1/assistant/search body.
type AssistantRequest struct {
	Utterance string `json:"utterance"`
}

// AssistantResponse carries the extracted criteria alongside the results so
// the conversational client can echo its interpretation back to the parent.
type AssistantResponse struct {
	Criteria domain.SearchCriteria `json:"criteria"`
	Results  result.Page           `json:"results"`
}

// CriteriaIncompleteResponse is returned when the utterance lacks the
// required locator pair; Criteria shows what was understood so far.
type CriteriaIncompleteResponse struct {
	Code     ErrorCode             `json:"code"`
	Message  string                `json:"message"`
	Criteria domain.SearchCriteria `json:"criteria"`
}

// RefreshResponse summarizes a completed projection rebuild.
type RefreshResponse struct {
	Records     int    `json:"records"`
	Skipped     int    `json:"skipped"`
	Warnings    int    `json:"warnings"`
	Version     uint64 `json:"version"`
	Fingerprint string `json:"fingerprint"`
	DurationMs  int64  `json:"durationMs"`
}

func refreshToResponse(st refresh.Stats) RefreshResponse {
	return RefreshResponse{
		Records:     st.Records,
		Skipped:     st.Skipped,
		Warnings:    st.Warnings,
		Version:     st.Version,
		Fingerprint: st.Fingerprint,
		DurationMs:  st.Duration.Milliseconds(),
	}
}

// HealthResponse is the GET /health body.
type HealthResponse struct {
	Status          string            `json:"status"`
	Checks          map[string]string `json:"checks"`
	SnapshotVersion uint64            `json:"snapshotVersion,omitempty"`
	SnapshotAgeSec  int64             `json:"snapshotAgeSec,omitempty"`
	SnapshotRecords int               `json:"snapshotRecords,omitempty"`
}
