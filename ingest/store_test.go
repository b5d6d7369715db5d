package ingest

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/emzola/bookrating/data"
	"github.com/emzola/bookrating/internal/jsonlog"
	"github.com/emzola/bookrating/repository"
)

var (
	errTransient      = errors.New("connection reset by peer")
	errValueTooLong   = errors.New("pq: value too long for type character varying")
	errCheckViolation = errors.New("pq: new row violates check constraint")
)

// tooLong reports whether an optional value exceeds a varchar(n) column.
func tooLong(s *string, n int) bool {
	return s != nil && utf8.RuneCountInString(*s) > n
}

// fakeStore mirrors the constraints of the SQL schema in memory: natural key
// conflicts are skipped, dangling references are rejected and values wider
// than their varchar column fail.
type fakeStore struct {
	mu          sync.Mutex
	works       map[int64]data.Work
	editions    map[int64]data.Edition
	authors     map[string]int64
	links       map[[2]int64]bool
	ratings     map[[2]int64]int16
	tags        map[int64]string
	editionTags map[[2]int64]int64

	insertCalls int
	// failInserts makes the next n BulkInsertRatings calls fail with insertErr.
	failInserts int
	insertErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		works:       make(map[int64]data.Work),
		editions:    make(map[int64]data.Edition),
		authors:     make(map[string]int64),
		links:       make(map[[2]int64]bool),
		ratings:     make(map[[2]int64]int16),
		tags:        make(map[int64]string),
		editionTags: make(map[[2]int64]int64),
		insertErr:   errTransient,
	}
}

func (s *fakeStore) CreateWorkIfAbsent(ctx context.Context, work *data.Work) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.works[work.ID]; ok {
		return false, nil
	}
	if tooLong(&work.Title, 255) {
		return false, errValueTooLong
	}
	s.works[work.ID] = *work
	return true, nil
}

func (s *fakeStore) CreateEditionIfAbsent(ctx context.Context, edition *data.Edition) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.editions[edition.ID]; ok {
		return false, nil
	}
	if _, ok := s.works[edition.WorkID]; !ok {
		return false, repository.ErrInvalidReference
	}
	if tooLong(edition.Isbn, 13) || tooLong(edition.Isbn13, 13) || tooLong(edition.LanguageCode, 10) {
		return false, errValueTooLong
	}
	s.editions[edition.ID] = *edition
	return true, nil
}

func (s *fakeStore) GetOrCreateAuthor(ctx context.Context, name string) (*data.Author, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tooLong(&name, 255) {
		return nil, errValueTooLong
	}
	id, ok := s.authors[name]
	if !ok {
		id = int64(len(s.authors) + 1)
		s.authors[name] = id
	}
	return &data.Author{ID: id, Name: name}, nil
}

func (s *fakeStore) LinkWorkAuthor(ctx context.Context, workID, authorID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]int64{workID, authorID}
	if s.links[key] {
		return false, nil
	}
	s.links[key] = true
	return true, nil
}

func (s *fakeStore) BulkInsertRatings(ctx context.Context, ratings []data.Rating) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertCalls++
	if s.failInserts > 0 {
		s.failInserts--
		return 0, s.insertErr
	}
	for _, r := range ratings {
		if _, ok := s.editions[r.EditionID]; !ok {
			return 0, repository.ErrInvalidReference
		}
		if r.Rating < 0 {
			return 0, errCheckViolation
		}
	}
	var inserted int64
	for _, r := range ratings {
		key := [2]int64{r.UserID, r.EditionID}
		if _, ok := s.ratings[key]; ok {
			continue
		}
		s.ratings[key] = r.Rating
		inserted++
	}
	return inserted, nil
}

func (s *fakeStore) CreateTagIfAbsent(ctx context.Context, tag *data.Tag) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tooLong(&tag.Name, 100) {
		return false, errValueTooLong
	}
	if _, ok := s.tags[tag.ID]; ok {
		return false, nil
	}
	for _, name := range s.tags {
		if name == tag.Name {
			return false, nil
		}
	}
	s.tags[tag.ID] = tag.Name
	return true, nil
}

func (s *fakeStore) CreateEditionTagIfAbsent(ctx context.Context, et *data.EditionTag) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.editions[et.EditionID]; !ok {
		return false, repository.ErrInvalidReference
	}
	if _, ok := s.tags[et.TagID]; !ok {
		return false, repository.ErrInvalidReference
	}
	key := [2]int64{et.EditionID, et.TagID}
	if _, ok := s.editionTags[key]; ok {
		return false, nil
	}
	s.editionTags[key] = et.Count
	return true, nil
}

// addEditions seeds one work per edition so ratings can reference them.
func (s *fakeStore) addEditions(ids ...int64) {
	for _, id := range ids {
		s.works[id] = data.Work{ID: id, Title: "seed"}
		s.editions[id] = data.Edition{ID: id, WorkID: id}
	}
}

func newTestLoader(t *testing.T, store Store, opts Options) *Loader {
	t.Helper()
	return New(store, jsonlog.New(io.Discard, jsonlog.LevelOff), opts)
}
