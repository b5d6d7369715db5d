package service

import (
	"errors"

	"github.com/emzola/bookrating/data"
	"github.com/emzola/bookrating/data/dto"
	"github.com/emzola/bookrating/internal/validator"
	"github.com/emzola/bookrating/repository"
	"golang.org/x/sync/errgroup"
)

type works interface {
	CreateWork(requestBody dto.CreateWorkRequestBody) (*data.Work, error)
	GetWork(workID int64) (*data.Work, error)
	ListWorks(qs dto.QsListWorks) ([]*data.Work, error)
	ListTopRatedWorks(qs dto.QsListWorks) ([]*data.Work, error)
	UpdateWork(workID int64, requestBody dto.UpdateWorkRequestBody) (*data.Work, error)
	DeleteWork(workID int64) error
	ListWorkEditions(workID int64) ([]*data.Edition, error)
	ListWorkRatings(workID int64) ([]*data.Rating, error)
}

// DefaultTopRatedMin is the minimum average used by the top-rated listing
// when the caller does not supply one.
const DefaultTopRatedMin = 4.0

// CreateWork service creates a new work.
func (s *service) CreateWork(requestBody dto.CreateWorkRequestBody) (*data.Work, error) {
	v := validator.New()
	v.Struct(requestBody)
	work := &data.Work{
		ID:           requestBody.ID,
		Title:        requestBody.Title,
		OriginalYear: requestBody.OriginalYear,
		AvgRating:    parseAvgRating(v, "avg_rating", requestBody.AvgRating),
		RatingsCount: requestBody.RatingsCount,
	}
	if data.ValidateWork(v, work); !v.Valid() {
		return nil, failedValidation(v)
	}
	err := s.repo.CreateWork(work)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateRecord):
			return nil, fieldError("id", "a work with this id already exists")
		default:
			return nil, err
		}
	}
	return work, nil
}

// GetWork service retrieves a work together with its authors and editions.
func (s *service) GetWork(workID int64) (*data.Work, error) {
	work, err := s.repo.GetWork(workID)
	if err != nil {
		return nil, notFound(err)
	}
	var g errgroup.Group
	g.Go(func() error {
		authors, err := s.repo.GetAuthorsForWork(workID)
		work.Authors = authors
		return err
	})
	g.Go(func() error {
		editions, err := s.repo.GetEditionsForWork(workID)
		work.Editions = editions
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return work, nil
}

// ListWorks service retrieves all works, optionally filtered by a minimum
// average rating and an author name substring.
func (s *service) ListWorks(qs dto.QsListWorks) ([]*data.Work, error) {
	v := validator.New()
	if qs.MinRating != nil {
		data.ValidateAvgRating(v, "min_rating", *qs.MinRating)
	}
	if !v.Valid() {
		return nil, failedValidation(v)
	}
	return s.repo.GetAllWorks(qs.MinRating, qs.Author)
}

// ListTopRatedWorks service retrieves works whose average rating is at least
// the requested minimum, best rated first.
func (s *service) ListTopRatedWorks(qs dto.QsListWorks) ([]*data.Work, error) {
	minRating := DefaultTopRatedMin
	if qs.MinRating != nil {
		minRating = *qs.MinRating
	}
	v := validator.New()
	if data.ValidateAvgRating(v, "min_rating", minRating); !v.Valid() {
		return nil, failedValidation(v)
	}
	return s.repo.GetTopRatedWorks(minRating, qs.Author)
}

// UpdateWork service updates the details of a specific work.
func (s *service) UpdateWork(workID int64, requestBody dto.UpdateWorkRequestBody) (*data.Work, error) {
	work, err := s.repo.GetWork(workID)
	if err != nil {
		return nil, notFound(err)
	}
	v := validator.New()
	// Update only fields with new data
	if requestBody.Title != nil {
		work.Title = *requestBody.Title
	}
	if requestBody.OriginalYear != nil {
		work.OriginalYear = requestBody.OriginalYear
	}
	if requestBody.AvgRating != nil {
		work.AvgRating = parseAvgRating(v, "avg_rating", *requestBody.AvgRating)
	}
	if requestBody.RatingsCount != nil {
		work.RatingsCount = *requestBody.RatingsCount
	}
	if data.ValidateWork(v, work); !v.Valid() {
		return nil, failedValidation(v)
	}
	err = s.repo.UpdateWork(work)
	if err != nil {
		return nil, notFound(err)
	}
	s.invalidateAggregates()
	return work, nil
}

// DeleteWork service deletes a work along with its editions and ratings.
func (s *service) DeleteWork(workID int64) error {
	err := s.repo.DeleteWork(workID)
	if err != nil {
		return notFound(err)
	}
	s.invalidateAggregates()
	return nil
}

// ListWorkEditions service retrieves the editions of a work.
func (s *service) ListWorkEditions(workID int64) ([]*data.Edition, error) {
	if _, err := s.repo.GetWork(workID); err != nil {
		return nil, notFound(err)
	}
	return s.repo.GetEditionsForWork(workID)
}

// ListWorkRatings service retrieves every rating on any edition of a work.
func (s *service) ListWorkRatings(workID int64) ([]*data.Rating, error) {
	if _, err := s.repo.GetWork(workID); err != nil {
		return nil, notFound(err)
	}
	return s.repo.GetRatingsForWork(workID)
}
