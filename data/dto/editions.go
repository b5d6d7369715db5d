package dto

import "encoding/json"

// CreateEditionRequestBody defines the request body for CreateEdition service.
type CreateEditionRequestBody struct {
	ID           int64       `json:"id" validate:"required,gt=0"`
	WorkID       int64       `json:"work" validate:"required,gt=0"`
	Isbn         *string     `json:"isbn"`
	Isbn13       *string     `json:"isbn13"`
	LanguageCode *string     `json:"language_code"`
	RatingsCount int64       `json:"ratings_count" validate:"gte=0"`
	AvgRating    json.Number `json:"avg_rating"`
}

// UpdateEditionRequestBody defines the request body for UpdateEdition service.
type UpdateEditionRequestBody struct {
	WorkID       *int64       `json:"work"`
	Isbn         *string      `json:"isbn"`
	Isbn13       *string      `json:"isbn13"`
	LanguageCode *string      `json:"language_code"`
	RatingsCount *int64       `json:"ratings_count"`
	AvgRating    *json.Number `json:"avg_rating"`
}
