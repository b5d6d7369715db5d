package service

import (
	"encoding/json"
	"errors"

	"github.com/emzola/bookrating/data"
	"github.com/emzola/bookrating/data/dto"
	"github.com/emzola/bookrating/internal/validator"
	"github.com/emzola/bookrating/repository"
)

type ratings interface {
	CreateRating(requestBody dto.CreateRatingRequestBody) (*data.Rating, error)
	GetRating(ratingID int64) (*data.Rating, error)
	ListRatings(userID, editionID int64) ([]*data.Rating, error)
	UpdateRating(ratingID int64, requestBody dto.UpdateRatingRequestBody) (*data.Rating, error)
	DeleteRating(ratingID int64) error
}

// CreateRating service records one user's rating of an edition.
func (s *service) CreateRating(requestBody dto.CreateRatingRequestBody) (*data.Rating, error) {
	v := validator.New()
	v.Struct(requestBody)
	rating := &data.Rating{
		UserID:    requestBody.UserID,
		EditionID: requestBody.EditionID,
		Rating:    readRatingValue(v, requestBody.Rating),
	}
	if data.ValidateRating(v, rating); !v.Valid() {
		return nil, failedValidation(v)
	}
	err := s.repo.CreateRating(rating)
	if err != nil {
		return nil, ratingWriteError(err)
	}
	s.invalidateAggregates()
	return rating, nil
}

// GetRating service retrieves a rating.
func (s *service) GetRating(ratingID int64) (*data.Rating, error) {
	rating, err := s.repo.GetRating(ratingID)
	if err != nil {
		return nil, notFound(err)
	}
	return rating, nil
}

// ListRatings service retrieves ratings, optionally for a single user or
// edition. Zero disables a filter.
func (s *service) ListRatings(userID, editionID int64) ([]*data.Rating, error) {
	return s.repo.GetAllRatings(userID, editionID)
}

// UpdateRating service changes the value or edition of a rating.
func (s *service) UpdateRating(ratingID int64, requestBody dto.UpdateRatingRequestBody) (*data.Rating, error) {
	rating, err := s.repo.GetRating(ratingID)
	if err != nil {
		return nil, notFound(err)
	}
	v := validator.New()
	// Update only fields with new data
	if requestBody.EditionID != nil {
		rating.EditionID = *requestBody.EditionID
	}
	if len(requestBody.Rating) > 0 {
		rating.Rating = readRatingValue(v, requestBody.Rating)
	}
	if data.ValidateRating(v, rating); !v.Valid() {
		return nil, failedValidation(v)
	}
	err = s.repo.UpdateRating(rating)
	if err != nil {
		return nil, ratingWriteError(err)
	}
	s.invalidateAggregates()
	return rating, nil
}

// DeleteRating service deletes a rating.
func (s *service) DeleteRating(ratingID int64) error {
	err := s.repo.DeleteRating(ratingID)
	if err != nil {
		return notFound(err)
	}
	s.invalidateAggregates()
	return nil
}

// readRatingValue parses a raw rating and records a field error when it is
// missing or not an integer. Range checks are left to data.ValidateRating.
func readRatingValue(v *validator.Validator, raw json.RawMessage) int16 {
	if len(raw) == 0 {
		v.AddError("rating", "must be provided")
		return 0
	}
	value, ok := data.ParseRatingValue(raw)
	if !ok {
		v.AddError("rating", "must be an integer between 0 and 5")
		return 0
	}
	return value
}

func ratingWriteError(err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateRecord):
		return fieldError(NonFieldErrors, "the fields user_id, edition must make a unique set")
	case errors.Is(err, repository.ErrInvalidReference):
		return fieldError("edition", "does not exist")
	default:
		return notFound(err)
	}
}
