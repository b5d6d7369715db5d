package service

import (
	"errors"

	"github.com/emzola/bookrating/data"
	"github.com/emzola/bookrating/data/dto"
	"github.com/emzola/bookrating/internal/validator"
	"github.com/emzola/bookrating/repository"
)

type editions interface {
	CreateEdition(requestBody dto.CreateEditionRequestBody) (*data.Edition, error)
	GetEdition(editionID int64) (*data.Edition, error)
	ListEditions() ([]*data.Edition, error)
	UpdateEdition(editionID int64, requestBody dto.UpdateEditionRequestBody) (*data.Edition, error)
	DeleteEdition(editionID int64) error
	ListEditionTags(editionID int64) ([]*data.EditionTag, error)
}

// CreateEdition service creates a new edition of an existing work.
func (s *service) CreateEdition(requestBody dto.CreateEditionRequestBody) (*data.Edition, error) {
	v := validator.New()
	v.Struct(requestBody)
	edition := &data.Edition{
		ID:           requestBody.ID,
		WorkID:       requestBody.WorkID,
		Isbn:         emptyToNil(requestBody.Isbn),
		Isbn13:       emptyToNil(requestBody.Isbn13),
		LanguageCode: emptyToNil(requestBody.LanguageCode),
		RatingsCount: requestBody.RatingsCount,
		AvgRating:    parseAvgRating(v, "avg_rating", requestBody.AvgRating),
	}
	if data.ValidateEdition(v, edition); !v.Valid() {
		return nil, failedValidation(v)
	}
	err := s.repo.CreateEdition(edition)
	if err != nil {
		return nil, editionWriteError(err)
	}
	return edition, nil
}

// GetEdition service retrieves an edition.
func (s *service) GetEdition(editionID int64) (*data.Edition, error) {
	edition, err := s.repo.GetEdition(editionID)
	if err != nil {
		return nil, notFound(err)
	}
	return edition, nil
}

// ListEditions service retrieves all editions.
func (s *service) ListEditions() ([]*data.Edition, error) {
	return s.repo.GetAllEditions()
}

// UpdateEdition service updates the details of a specific edition.
func (s *service) UpdateEdition(editionID int64, requestBody dto.UpdateEditionRequestBody) (*data.Edition, error) {
	edition, err := s.repo.GetEdition(editionID)
	if err != nil {
		return nil, notFound(err)
	}
	v := validator.New()
	// Update only fields with new data
	if requestBody.WorkID != nil {
		edition.WorkID = *requestBody.WorkID
	}
	if requestBody.Isbn != nil {
		edition.Isbn = emptyToNil(requestBody.Isbn)
	}
	if requestBody.Isbn13 != nil {
		edition.Isbn13 = emptyToNil(requestBody.Isbn13)
	}
	if requestBody.LanguageCode != nil {
		edition.LanguageCode = emptyToNil(requestBody.LanguageCode)
	}
	if requestBody.RatingsCount != nil {
		edition.RatingsCount = *requestBody.RatingsCount
	}
	if requestBody.AvgRating != nil {
		edition.AvgRating = parseAvgRating(v, "avg_rating", *requestBody.AvgRating)
	}
	if data.ValidateEdition(v, edition); !v.Valid() {
		return nil, failedValidation(v)
	}
	err = s.repo.UpdateEdition(edition)
	if err != nil {
		return nil, editionWriteError(err)
	}
	// Moving an edition moves its ratings to another work.
	s.invalidateAggregates()
	return edition, nil
}

// DeleteEdition service deletes an edition and its ratings.
func (s *service) DeleteEdition(editionID int64) error {
	err := s.repo.DeleteEdition(editionID)
	if err != nil {
		return notFound(err)
	}
	s.invalidateAggregates()
	return nil
}

// ListEditionTags service retrieves the tag counts of an edition.
func (s *service) ListEditionTags(editionID int64) ([]*data.EditionTag, error) {
	if _, err := s.repo.GetEdition(editionID); err != nil {
		return nil, notFound(err)
	}
	return s.repo.GetTagsForEdition(editionID)
}

func editionWriteError(err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateRecord):
		return fieldError("id", "an edition with this id already exists")
	case errors.Is(err, repository.ErrInvalidReference):
		return fieldError("work", "does not exist")
	default:
		return notFound(err)
	}
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
