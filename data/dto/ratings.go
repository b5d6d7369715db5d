package dto

import "encoding/json"

// CreateRatingRequestBody defines the request body for CreateRating service.
// Rating is kept raw so that non-integer input surfaces as a rating field
// error instead of a malformed body.
type CreateRatingRequestBody struct {
	UserID    int64           `json:"user_id" validate:"required,gt=0"`
	EditionID int64           `json:"edition" validate:"required,gt=0"`
	Rating    json.RawMessage `json:"rating"`
}

// UpdateRatingRequestBody defines the request body for UpdateRating service.
// Nil fields are left unchanged.
type UpdateRatingRequestBody struct {
	EditionID *int64          `json:"edition"`
	Rating    json.RawMessage `json:"rating"`
}
