package service

import (
	"errors"

	"github.com/emzola/bookrating/data"
	"github.com/emzola/bookrating/data/dto"
	"github.com/emzola/bookrating/internal/validator"
	"github.com/emzola/bookrating/repository"
)

type workAuthors interface {
	CreateWorkAuthor(requestBody dto.CreateWorkAuthorRequestBody) (*data.WorkAuthor, error)
	GetWorkAuthor(linkID int64) (*data.WorkAuthor, error)
	ListWorkAuthors() ([]*data.WorkAuthor, error)
	DeleteWorkAuthor(linkID int64) error
}

// CreateWorkAuthor service credits an author on a work. A pair can only be
// linked once.
func (s *service) CreateWorkAuthor(requestBody dto.CreateWorkAuthorRequestBody) (*data.WorkAuthor, error) {
	v := validator.New()
	if v.Struct(requestBody); !v.Valid() {
		return nil, failedValidation(v)
	}
	link := &data.WorkAuthor{WorkID: requestBody.WorkID, AuthorID: requestBody.AuthorID}
	err := s.repo.CreateWorkAuthor(link)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateRecord):
			return nil, fieldError(NonFieldErrors, "the fields work, author must make a unique set")
		case errors.Is(err, repository.ErrInvalidReference):
			return nil, s.missingLinkTarget(link)
		default:
			return nil, err
		}
	}
	return link, nil
}

// GetWorkAuthor service retrieves a work-author link.
func (s *service) GetWorkAuthor(linkID int64) (*data.WorkAuthor, error) {
	link, err := s.repo.GetWorkAuthor(linkID)
	if err != nil {
		return nil, notFound(err)
	}
	return link, nil
}

// ListWorkAuthors service retrieves all work-author links.
func (s *service) ListWorkAuthors() ([]*data.WorkAuthor, error) {
	return s.repo.GetAllWorkAuthors()
}

// DeleteWorkAuthor service removes a work-author link.
func (s *service) DeleteWorkAuthor(linkID int64) error {
	return notFound(s.repo.DeleteWorkAuthor(linkID))
}

// missingLinkTarget reports which side of a link does not exist.
func (s *service) missingLinkTarget(link *data.WorkAuthor) error {
	v := validator.New()
	if _, err := s.repo.GetWork(link.WorkID); errors.Is(err, repository.ErrRecordNotFound) {
		v.AddError("work", "does not exist")
	}
	if _, err := s.repo.GetAuthor(link.AuthorID); errors.Is(err, repository.ErrRecordNotFound) {
		v.AddError("author", "does not exist")
	}
	if v.Valid() {
		v.AddError(NonFieldErrors, "work or author does not exist")
	}
	return failedValidation(v)
}
