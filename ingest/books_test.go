package ingest

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const booksCSV = ` work_id , book_id ,title,original_title,original_publication_year,average_rating,ratings_count,work_ratings_count,isbn,isbn13,language_code,authors
1,10,The Left Hand of Darkness (Hainish #4),The Left Hand of Darkness,1969.0,4.087,1200,5400,0441478123,9780441478125,eng,"Ursula K. Le Guin, , Harold Bloom"
1,11,The Left Hand of Darkness,,1969.0,4.10,300,5400,,,en-US,Ursula K. Le Guin
abc,12,Broken,,,,,,,,,Nobody
2,20,  Dune  ,,unknown,4.456,oops,900,,,,Frank Herbert
`

func TestLoadBooks(t *testing.T) {
	store := newFakeStore()
	l := newTestLoader(t, store, Options{})

	report, err := l.LoadBooks(context.Background(), strings.NewReader(booksCSV))
	require.NoError(t, err)

	assert.Equal(t, 4, report.Rows)
	assert.Equal(t, 1, report.Malformed)
	assert.Equal(t, 2, report.WorksCreated)
	assert.Equal(t, 1, report.WorksExisting)
	assert.Equal(t, 3, report.EditionsCreated)
	assert.Equal(t, 3, report.AuthorLinks)
	assert.Equal(t, 3, report.Editions.Len())
	for _, id := range []int64{10, 11, 20} {
		assert.True(t, report.Editions.Contains(id), "edition %d", id)
	}
	assert.False(t, report.Editions.Contains(12))

	work := store.works[1]
	assert.Equal(t, "The Left Hand of Darkness", work.Title)
	require.NotNil(t, work.OriginalYear)
	assert.EqualValues(t, 1969, *work.OriginalYear)
	assert.Equal(t, 4.09, work.AvgRating)
	assert.EqualValues(t, 5400, work.RatingsCount)

	edition := store.editions[10]
	require.NotNil(t, edition.Isbn)
	assert.Equal(t, "0441478123", *edition.Isbn)
	assert.EqualValues(t, 1200, edition.RatingsCount)

	bare := store.editions[11]
	assert.Nil(t, bare.Isbn)
	assert.Nil(t, bare.Isbn13)
	require.NotNil(t, bare.LanguageCode)
	assert.Equal(t, "en-US", *bare.LanguageCode)

	dune := store.works[2]
	assert.Equal(t, "Dune", dune.Title)
	assert.Nil(t, dune.OriginalYear)
	assert.Equal(t, 4.46, dune.AvgRating)
	assert.Zero(t, store.editions[20].RatingsCount)

	assert.Len(t, store.authors, 3)
	assert.Contains(t, store.authors, "Harold Bloom")
	assert.NotContains(t, store.authors, "")
}

func TestLoadBooksIsIdempotent(t *testing.T) {
	store := newFakeStore()
	l := newTestLoader(t, store, Options{})
	_, err := l.LoadBooks(context.Background(), strings.NewReader(booksCSV))
	require.NoError(t, err)

	// A second run with changed figures must not touch stored rows.
	changed := strings.Replace(booksCSV, "4.087", "1.5", 1)
	report, err := l.LoadBooks(context.Background(), strings.NewReader(changed))
	require.NoError(t, err)

	assert.Zero(t, report.WorksCreated)
	assert.Zero(t, report.EditionsCreated)
	assert.Zero(t, report.AuthorLinks)
	assert.Equal(t, 3, report.WorksExisting)
	assert.Equal(t, 3, report.EditionsExisting)
	assert.Equal(t, 3, report.Editions.Len())
	assert.Len(t, store.works, 2)
	assert.Len(t, store.links, 3)
	assert.Equal(t, 4.09, store.works[1].AvgRating)
}

func TestLoadBooksMissingColumn(t *testing.T) {
	store := newFakeStore()
	l := newTestLoader(t, store, Options{})

	src := "work_id,book_id,title\n1,10,Dune\n"
	report, err := l.LoadBooks(context.Background(), strings.NewReader(src))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "original_title")
	assert.Zero(t, report.Rows)
	assert.Empty(t, store.works)
}

func TestLoadBooksEmptySource(t *testing.T) {
	store := newFakeStore()
	l := newTestLoader(t, store, Options{})

	report, err := l.LoadBooks(context.Background(), strings.NewReader(""))
	require.NoError(t, err)
	assert.Zero(t, report.Rows)
	assert.Zero(t, report.Editions.Len())

	header := strings.SplitN(booksCSV, "\n", 2)[0] + "\n"
	report, err = l.LoadBooks(context.Background(), strings.NewReader(header))
	require.NoError(t, err)
	assert.Zero(t, report.Rows)

	// Nothing was retained, so every rating is out of scope.
	store.addEditions(10)
	ratings, err := l.LoadRatings(context.Background(), strings.NewReader("user_id,book_id,rating\n1,10,5\n2,10,4\n"), report.Editions)
	require.NoError(t, err)
	assert.Equal(t, 2, ratings.OutOfScope)
	assert.Zero(t, ratings.Inserted)
	assert.Zero(t, store.insertCalls)
}

func TestLoadBooksLimit(t *testing.T) {
	store := newFakeStore()
	l := newTestLoader(t, store, Options{LimitBooks: 1})

	report, err := l.LoadBooks(context.Background(), strings.NewReader(booksCSV))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Rows)
	assert.Equal(t, 1, report.Editions.Len())
	assert.True(t, report.Editions.Contains(10))
	assert.Len(t, store.editions, 1)
}

func TestLoadBooksWorkCountFallback(t *testing.T) {
	store := newFakeStore()
	l := newTestLoader(t, store, Options{})

	src := "work_id,book_id,title,original_title,original_publication_year,average_rating,ratings_count,isbn,isbn13,language_code,authors\n" +
		"3,30,Emma,,1815,3.9,77,,,,Jane Austen\n"
	_, err := l.LoadBooks(context.Background(), strings.NewReader(src))
	require.NoError(t, err)
	assert.EqualValues(t, 77, store.works[3].RatingsCount)
	assert.EqualValues(t, 77, store.editions[30].RatingsCount)
}

func TestLoadBooksCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := newTestLoader(t, newFakeStore(), Options{})

	_, err := l.LoadBooks(ctx, strings.NewReader(booksCSV))
	assert.ErrorIs(t, err, context.Canceled)
}

const goodbooksCSV = `book_id,goodreads_book_id,best_book_id,work_id,books_count,isbn,isbn13,authors,original_publication_year,original_title,title,language_code,average_rating,ratings_count,work_ratings_count,work_text_reviews_count,ratings_1,ratings_2,ratings_3,ratings_4,ratings_5,image_url,small_image_url
1,2767052,2767052,2792775,272,439023483,9.78043902348e+12,Suzanne Collins,2008.0,The Hunger Games,"The Hunger Games (The Hunger Games, #1)",eng,4.34,4780653,4942365,155254,66715,127936,560092,1481305,2706317,https://images.gr-assets.com/books/1447303603m/2767052.jpg,https://images.gr-assets.com/books/1447303603s/2767052.jpg
`

func TestLoadBooksGoodbooksRow(t *testing.T) {
	store := newFakeStore()
	l := newTestLoader(t, store, Options{})

	report, err := l.LoadBooks(context.Background(), strings.NewReader(goodbooksCSV))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Rows)
	assert.Zero(t, report.Malformed)
	assert.Zero(t, report.DroppedFields)
	assert.Equal(t, 1, report.EditionsCreated)

	work := store.works[2792775]
	assert.Equal(t, "The Hunger Games", work.Title)
	assert.EqualValues(t, 4942365, work.RatingsCount)

	edition := store.editions[1]
	require.NotNil(t, edition.Isbn)
	assert.Equal(t, "439023483", *edition.Isbn)
	require.NotNil(t, edition.Isbn13)
	assert.Equal(t, "9780439023480", *edition.Isbn13)
	require.NotNil(t, edition.LanguageCode)
	assert.Equal(t, "eng", *edition.LanguageCode)
	assert.Contains(t, store.authors, "Suzanne Collins")
}

func TestLoadBooksDropsOversizedFields(t *testing.T) {
	store := newFakeStore()
	l := newTestLoader(t, store, Options{})

	longName := strings.Repeat("ä", 256)
	src := "work_id,book_id,title,original_title,original_publication_year,average_rating,ratings_count,isbn,isbn13,language_code,authors\n" +
		"2,20,Dune,,1965,4.2,10,ISBN 0-441-17271-7,9780441172719,english-united-states,\"Frank Herbert, " + longName + "\"\n"
	report, err := l.LoadBooks(context.Background(), strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, 1, report.Rows)
	assert.Zero(t, report.Malformed)
	assert.Equal(t, 3, report.DroppedFields)
	assert.True(t, report.Editions.Contains(20))

	edition := store.editions[20]
	assert.Nil(t, edition.Isbn)
	assert.Nil(t, edition.LanguageCode)
	require.NotNil(t, edition.Isbn13)
	assert.Equal(t, "9780441172719", *edition.Isbn13)

	assert.Len(t, store.authors, 1)
	assert.Contains(t, store.authors, "Frank Herbert")
	assert.Equal(t, 1, report.AuthorLinks)
}

func TestLoadBooksTruncatesLongTitle(t *testing.T) {
	store := newFakeStore()
	l := newTestLoader(t, store, Options{})

	title := strings.Repeat("é", 200)
	src := "work_id,book_id,title,original_title,original_publication_year,average_rating,ratings_count,isbn,isbn13,language_code,authors\n" +
		"4,40," + title + ",,,,,,,,Anon\n"
	_, err := l.LoadBooks(context.Background(), strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("é", 127), store.works[4].Title)
}

func TestNormalizeIsbn(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"9.78043902348e+12", "9780439023480"},
		{"9.780316015844E12", "9780316015844"},
		{"439023483.0", "439023483"},
		{"9780441478125", "9780441478125"},
		{"043902348X", "043902348X"},
		{"1.5", "1.5"},
		{"-9.7e+12", "-9.7e+12"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeIsbn(tt.in))
		})
	}
}
