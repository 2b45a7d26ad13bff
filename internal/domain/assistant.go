package domain

// SearchCriteria is the name-mode parameter set an assistant extractor
// produces from one conversational utterance. Field names mirror the
// name-mode request parameters; absent fields stay zero.
type SearchCriteria struct {
	InstitutionTypeName string   `json:"institutionTypeName"`
	ProvinceName        string   `json:"provinceName"`
	DistrictName        string   `json:"districtName,omitempty"`
	PropertyNames       []string `json:"propertyNames,omitempty"`
	MinFee              *float64 `json:"minFee,omitempty"`
	MaxFee              *float64 `json:"maxFee,omitempty"`
	MinAge              *int     `json:"minAge,omitempty"`
	MaxAge              *int     `json:"maxAge,omitempty"`
}
