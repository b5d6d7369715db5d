package dto

import "encoding/json"

// CreateWorkRequestBody defines the request body for CreateWork service. The
// ID is the external natural key and must be supplied by the client.
type CreateWorkRequestBody struct {
	ID           int64       `json:"id" validate:"required,gt=0"`
	Title        string      `json:"title" validate:"required,max=255"`
	OriginalYear *int32      `json:"original_year"`
	AvgRating    json.Number `json:"avg_rating"`
	RatingsCount int64       `json:"ratings_count" validate:"gte=0"`
}

// UpdateWorkRequestBody defines the request body for UpdateWork service. The fields are set
// to a pointer type to allow partial updates based on whether the value is set to nil.
type UpdateWorkRequestBody struct {
	Title        *string      `json:"title"`
	OriginalYear *int32       `json:"original_year"`
	AvgRating    *json.Number `json:"avg_rating"`
	RatingsCount *int64       `json:"ratings_count"`
}

// QsListWorks defines the query strings used for listing works. MinRating
// and Author are optional filters; Author matches case-insensitively as a
// substring of any author name.
type QsListWorks struct {
	MinRating *float64
	Author    string
}
