package dto

// SearchRequest is the searcher's POST body. Timestamps are RFC 3339;
// either bound may be omitted for an open-ended window.
type SearchRequest struct {
	Query     string `json:"query"`
	MaxHits   int    `json:"max_hits" validate:"omitempty,gte=1,lte=1000"`
	SortBy    string `json:"sort_by" validate:"omitempty,oneof=id timestamp summary app_name timeout"`
	SortOrder string `json:"sort_order" validate:"omitempty,oneof=asc desc"`
	Start     string `json:"start_timestamp" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	End       string `json:"end_timestamp" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}
