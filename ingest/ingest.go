// Package ingest loads the denormalised books/ratings/tags CSV dataset into
// the normalised catalogue schema. Every load is idempotent: works, editions,
// tags and ratings that already exist are left alone, so an interrupted run
// can simply be repeated.
package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/emzola/bookrating/data"
	"github.com/emzola/bookrating/internal/jsonlog"
)

// DefaultBatchSize is the number of ratings sent to the store per insert.
const DefaultBatchSize = 5000

// ErrMissingColumn is returned when a source lacks a required header.
var ErrMissingColumn = errors.New("missing required column")

// Store is the set of idempotent writes the loader needs. It is implemented
// by the repository package.
type Store interface {
	CreateWorkIfAbsent(ctx context.Context, work *data.Work) (bool, error)
	CreateEditionIfAbsent(ctx context.Context, edition *data.Edition) (bool, error)
	GetOrCreateAuthor(ctx context.Context, name string) (*data.Author, error)
	LinkWorkAuthor(ctx context.Context, workID, authorID int64) (bool, error)
	BulkInsertRatings(ctx context.Context, ratings []data.Rating) (int64, error)
	CreateTagIfAbsent(ctx context.Context, tag *data.Tag) (bool, error)
	CreateEditionTagIfAbsent(ctx context.Context, et *data.EditionTag) (bool, error)
}

// Options tunes a Loader. The zero value is usable.
type Options struct {
	// BatchSize bounds how many ratings are held in memory before a flush.
	BatchSize int
	// LimitBooks stops the books phase after this many rows. Zero means all.
	LimitBooks int
	// KeySet tracks (user, edition) pairs seen during the run. A MemoryKeySet
	// is used when nil.
	KeySet KeySet
	// MaxRetries is how many times a failed rating batch is retried.
	MaxRetries int
	// RetryDelay is multiplied by the attempt number between retries.
	RetryDelay time.Duration
	// DeadLetter receives rating batches that failed every attempt.
	DeadLetter DeadLetter
}

// Loader runs the ingestion phases against a Store.
type Loader struct {
	store  Store
	logger *jsonlog.Logger
	opts   Options
}

// New returns a Loader writing to store.
func New(store Store, logger *jsonlog.Logger, opts Options) *Loader {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.KeySet == nil {
		opts.KeySet = NewMemoryKeySet()
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &Loader{store: store, logger: logger, opts: opts}
}

// EditionSet is the set of edition IDs retained by a books phase. Later
// phases use it to skip rows that reference editions never created.
type EditionSet struct {
	ids map[int64]struct{}
}

// NewEditionSet returns a set holding ids.
func NewEditionSet(ids ...int64) *EditionSet {
	s := &EditionSet{ids: make(map[int64]struct{}, len(ids))}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s *EditionSet) Add(id int64) {
	s.ids[id] = struct{}{}
}

// Contains reports whether id is in the set. A nil set contains everything.
func (s *EditionSet) Contains(id int64) bool {
	if s == nil {
		return true
	}
	_, ok := s.ids[id]
	return ok
}

func (s *EditionSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ids)
}
