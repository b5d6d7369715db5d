package service

import (
	"github.com/emzola/bookrating/data"
)

type tags interface {
	GetTag(tagID int64) (*data.Tag, error)
	ListTags() ([]*data.Tag, error)
}

// GetTag service retrieves a tag.
func (s *service) GetTag(tagID int64) (*data.Tag, error) {
	tag, err := s.repo.GetTag(tagID)
	if err != nil {
		return nil, notFound(err)
	}
	return tag, nil
}

// ListTags service retrieves all tags.
func (s *service) ListTags() ([]*data.Tag, error) {
	return s.repo.GetAllTags()
}
