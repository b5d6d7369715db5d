package ingest

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTags(t *testing.T) {
	store := newFakeStore()
	l := newTestLoader(t, store, Options{})

	src := "tag_id,tag_name\n0,-\n1, fantasy \n1,fantasy-dup\nabc,broken\n2,\n"
	report, err := l.LoadTags(context.Background(), strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, 5, report.Rows)
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 1, report.Existing)
	assert.Equal(t, 2, report.Malformed)
	assert.Equal(t, "fantasy", store.tags[1])
	assert.Equal(t, "-", store.tags[0])
}

func TestLoadTagsTruncatesLongName(t *testing.T) {
	store := newFakeStore()
	l := newTestLoader(t, store, Options{})

	src := "tag_id,tag_name\n7," + strings.Repeat("x", 140) + "\n"
	report, err := l.LoadTags(context.Background(), strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, strings.Repeat("x", 100), store.tags[7])
}

func TestLoadEditionTags(t *testing.T) {
	store := newFakeStore()
	store.addEditions(10, 11)
	store.tags[1] = "fantasy"
	l := newTestLoader(t, store, Options{})

	src := "goodreads_book_id,tag_id,count\n10,1,167697\n10,1,5\n11,1,-4\n10,99,3\n12,1,7\n"
	report, err := l.LoadEditionTags(context.Background(), strings.NewReader(src), NewEditionSet(10, 11))
	require.NoError(t, err)

	assert.Equal(t, 5, report.Rows)
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 1, report.Existing)
	assert.Equal(t, 1, report.Failed, "unknown tag")
	assert.Equal(t, 1, report.OutOfScope)
	assert.EqualValues(t, 167697, store.editionTags[[2]int64{10, 1}])
	assert.Zero(t, store.editionTags[[2]int64{11, 1}])
}

func TestLoadEditionTagsMissingColumn(t *testing.T) {
	l := newTestLoader(t, newFakeStore(), Options{})

	_, err := l.LoadEditionTags(context.Background(), strings.NewReader("book_id,tag_id,count\n"), nil)
	assert.ErrorIs(t, err, ErrMissingColumn)
}
