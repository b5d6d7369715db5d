package ingest

import (
	"context"
	"encoding/csv"
	"os"
	"strings"
	"testing"

	"github.com/emzola/bookrating/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRatingsDeduplicates(t *testing.T) {
	store := newFakeStore()
	store.addEditions(3)
	l := newTestLoader(t, store, Options{})

	src := "user_id,book_id,rating\n7,3,5\n7,3,4\n8,3,2\n"
	report, err := l.LoadRatings(context.Background(), strings.NewReader(src), nil)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Rows)
	assert.Equal(t, 1, report.Duplicates)
	assert.EqualValues(t, 2, report.Inserted)
	assert.Len(t, store.ratings, 2)
	assert.EqualValues(t, 5, store.ratings[[2]int64{7, 3}], "first occurrence wins")
}

func TestLoadRatingsScope(t *testing.T) {
	store := newFakeStore()
	store.addEditions(1, 2, 3, 4)
	l := newTestLoader(t, store, Options{})

	src := "user_id,book_id,rating\n1,1,5\n1,2,4\n1,4,3\n2,3,1\n2,4,5\n"
	report, err := l.LoadRatings(context.Background(), strings.NewReader(src), NewEditionSet(1, 2, 3))
	require.NoError(t, err)

	assert.Equal(t, 2, report.OutOfScope)
	assert.EqualValues(t, 3, report.Inserted)
	_, ok := store.ratings[[2]int64{1, 4}]
	assert.False(t, ok)
}

func TestLoadRatingsBatches(t *testing.T) {
	store := newFakeStore()
	store.addEditions(1)
	l := newTestLoader(t, store, Options{BatchSize: 2})

	src := "user_id,book_id,rating\n1,1,5\n2,1,4\n3,1,3\n4,1,2\n5,1,1\n"
	report, err := l.LoadRatings(context.Background(), strings.NewReader(src), nil)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Batches)
	assert.Equal(t, 3, store.insertCalls)
	assert.EqualValues(t, 5, report.Inserted)
}

func TestLoadRatingsConflictsWithStoredRows(t *testing.T) {
	store := newFakeStore()
	store.addEditions(1)
	store.ratings[[2]int64{1, 1}] = 2
	l := newTestLoader(t, store, Options{})

	src := "user_id,book_id,rating\n1,1,5\n2,1,4\n"
	report, err := l.LoadRatings(context.Background(), strings.NewReader(src), nil)
	require.NoError(t, err)

	assert.EqualValues(t, 1, report.Inserted)
	assert.EqualValues(t, 1, report.Conflicts)
	assert.Zero(t, report.FailedBatches)
	assert.EqualValues(t, 2, store.ratings[[2]int64{1, 1}])
}

func TestLoadRatingsMalformedRows(t *testing.T) {
	store := newFakeStore()
	store.addEditions(1)
	l := newTestLoader(t, store, Options{})

	src := "user_id,book_id,rating\nx,1,5\n2,,4\n3,1,4.5\n4,1,\n5,1,9\n6,1,3\n"
	report, err := l.LoadRatings(context.Background(), strings.NewReader(src), nil)
	require.NoError(t, err)

	assert.Equal(t, 6, report.Rows)
	assert.Equal(t, 4, report.Malformed)
	// Range is not checked on the bulk path.
	assert.EqualValues(t, 2, report.Inserted)
	assert.EqualValues(t, 9, store.ratings[[2]int64{5, 1}])
}

func TestLoadRatingsNegativeRatingDoesNotSinkBatch(t *testing.T) {
	store := newFakeStore()
	store.addEditions(1)
	sink, err := NewFileDeadLetter(t.TempDir(), "run1")
	require.NoError(t, err)
	defer sink.Close()
	l := newTestLoader(t, store, Options{BatchSize: 10, DeadLetter: sink})

	src := "user_id,book_id,rating\n1,1,4\n2,1,-1\n3,1,5\n"
	report, err := l.LoadRatings(context.Background(), strings.NewReader(src), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Malformed)
	assert.EqualValues(t, 2, report.Inserted)
	assert.Zero(t, report.FailedBatches)
	assert.Zero(t, report.DeadLettered)
	assert.Zero(t, sink.Rows())
	assert.Equal(t, 1, store.insertCalls)
	assert.NotContains(t, store.ratings, [2]int64{2, 1})
}

func TestLoadRatingsMissingColumn(t *testing.T) {
	l := newTestLoader(t, newFakeStore(), Options{})

	_, err := l.LoadRatings(context.Background(), strings.NewReader("user_id,book_id\n1,1\n"), nil)
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestLoadRatingsRetriesThenSucceeds(t *testing.T) {
	store := newFakeStore()
	store.addEditions(1)
	store.failInserts = 1
	l := newTestLoader(t, store, Options{MaxRetries: 2})

	report, err := l.LoadRatings(context.Background(), strings.NewReader("user_id,book_id,rating\n1,1,5\n"), nil)
	require.NoError(t, err)

	assert.Equal(t, 2, store.insertCalls)
	assert.Zero(t, report.FailedBatches)
	assert.EqualValues(t, 1, report.Inserted)
}

func TestLoadRatingsDeadLettersFailedBatch(t *testing.T) {
	store := newFakeStore()
	store.addEditions(1)
	// The first batch fails on every attempt; the second goes through.
	store.failInserts = 3
	dir := t.TempDir()
	sink, err := NewFileDeadLetter(dir, "run1")
	require.NoError(t, err)
	l := newTestLoader(t, store, Options{BatchSize: 2, MaxRetries: 2, DeadLetter: sink})

	src := "user_id,book_id,rating\n1,1,5\n2,1,4\n3,1,3\n4,1,2\n"
	report, err := l.LoadRatings(context.Background(), strings.NewReader(src), nil)
	require.NoError(t, err)
	require.NoError(t, sink.Close())

	assert.Equal(t, 4, store.insertCalls)
	assert.Equal(t, 2, report.Batches)
	assert.Equal(t, 1, report.FailedBatches)
	assert.Equal(t, 2, report.DeadLettered)
	assert.EqualValues(t, 2, report.Inserted)
	assert.Equal(t, 2, sink.Rows())

	f, err := os.Open(sink.Path())
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"user_id", "book_id", "rating", "error"}, records[0])
	assert.Equal(t, []string{"1", "1", "5", errTransient.Error()}, records[1])
	assert.Equal(t, []string{"2", "1", "4", errTransient.Error()}, records[2])
}

func TestLoadRatingsDoesNotRetryDanglingReference(t *testing.T) {
	store := newFakeStore()
	l := newTestLoader(t, store, Options{MaxRetries: 3})

	report, err := l.LoadRatings(context.Background(), strings.NewReader("user_id,book_id,rating\n1,99,5\n"), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, store.insertCalls)
	assert.Equal(t, 1, report.FailedBatches)
	assert.Zero(t, report.DeadLettered)
}

func TestLoadRatingsFailureWithoutDeadLetter(t *testing.T) {
	store := newFakeStore()
	store.addEditions(1)
	store.failInserts = 10
	store.insertErr = repository.ErrDuplicateRecord
	l := newTestLoader(t, store, Options{})

	report, err := l.LoadRatings(context.Background(), strings.NewReader("user_id,book_id,rating\n1,1,5\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.FailedBatches)
	assert.Equal(t, 1, store.insertCalls)
}

func TestLoadRatingsCancelled(t *testing.T) {
	store := newFakeStore()
	store.addEditions(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := newTestLoader(t, store, Options{})

	_, err := l.LoadRatings(ctx, strings.NewReader("user_id,book_id,rating\n1,1,5\n"), nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, store.insertCalls)
}
