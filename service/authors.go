package service

import (
	"errors"

	"github.com/emzola/bookrating/data"
	"github.com/emzola/bookrating/data/dto"
	"github.com/emzola/bookrating/internal/validator"
	"github.com/emzola/bookrating/repository"
)

type authors interface {
	CreateAuthor(requestBody dto.AuthorRequestBody) (*data.Author, error)
	GetAuthor(authorID int64) (*data.Author, error)
	ListAuthors() ([]*data.Author, error)
	UpdateAuthor(authorID int64, requestBody dto.AuthorRequestBody) (*data.Author, error)
	DeleteAuthor(authorID int64) error
	ListAuthorWorks(authorID int64) ([]*data.Work, error)
}

// CreateAuthor service creates a new author.
func (s *service) CreateAuthor(requestBody dto.AuthorRequestBody) (*data.Author, error) {
	v := validator.New()
	v.Struct(requestBody)
	author := &data.Author{Name: requestBody.Name}
	if data.ValidateAuthor(v, author); !v.Valid() {
		return nil, failedValidation(v)
	}
	err := s.repo.CreateAuthor(author)
	if err != nil {
		return nil, authorWriteError(err)
	}
	return author, nil
}

// GetAuthor service retrieves an author.
func (s *service) GetAuthor(authorID int64) (*data.Author, error) {
	author, err := s.repo.GetAuthor(authorID)
	if err != nil {
		return nil, notFound(err)
	}
	return author, nil
}

// ListAuthors service retrieves all authors.
func (s *service) ListAuthors() ([]*data.Author, error) {
	return s.repo.GetAllAuthors()
}

// UpdateAuthor service renames an author.
func (s *service) UpdateAuthor(authorID int64, requestBody dto.AuthorRequestBody) (*data.Author, error) {
	author, err := s.repo.GetAuthor(authorID)
	if err != nil {
		return nil, notFound(err)
	}
	v := validator.New()
	v.Struct(requestBody)
	author.Name = requestBody.Name
	if data.ValidateAuthor(v, author); !v.Valid() {
		return nil, failedValidation(v)
	}
	err = s.repo.UpdateAuthor(author)
	if err != nil {
		return nil, authorWriteError(err)
	}
	return author, nil
}

// DeleteAuthor service deletes an author and unlinks it from its works.
func (s *service) DeleteAuthor(authorID int64) error {
	return notFound(s.repo.DeleteAuthor(authorID))
}

// ListAuthorWorks service retrieves an author's works ordered by average
// rating, highest first.
func (s *service) ListAuthorWorks(authorID int64) ([]*data.Work, error) {
	if _, err := s.repo.GetAuthor(authorID); err != nil {
		return nil, notFound(err)
	}
	return s.repo.GetWorksForAuthor(authorID)
}

func authorWriteError(err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateRecord):
		return fieldError("name", "an author with this name already exists")
	default:
		return notFound(err)
	}
}
