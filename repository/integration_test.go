//go:build integration

package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/emzola/bookrating/config"
	"github.com/emzola/bookrating/data"
	"github.com/emzola/bookrating/repository/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("bookrating"),
		tcpostgres.WithUsername("bookrating"),
		tcpostgres.WithPassword("bookrating"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})
	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	var cfg config.Config
	cfg.Database.DSN = dsn
	cfg.Database.MaxOpenConns = 5
	cfg.Database.MaxIdleConns = 5
	cfg.Database.MaxIdleTime = "1m"
	db, err := postgres.OpenDBConn(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, postgres.Migrate(db))
	// A second run must be a no-op.
	require.NoError(t, postgres.Migrate(db))
	return db
}

func seedCatalogue(t *testing.T, r *repository) {
	t.Helper()
	ctx := context.Background()
	for _, w := range []*data.Work{
		{ID: 10, Title: "Target", AvgRating: 4.1, RatingsCount: 3},
		{ID: 20, Title: "Other A", AvgRating: 3.9, RatingsCount: 2},
		{ID: 30, Title: "Other B", AvgRating: 4.5, RatingsCount: 1},
	} {
		_, err := r.CreateWorkIfAbsent(ctx, w)
		require.NoError(t, err)
	}
	for _, e := range []*data.Edition{
		{ID: 1, WorkID: 10},
		{ID: 2, WorkID: 20},
		{ID: 3, WorkID: 30},
	} {
		_, err := r.CreateEditionIfAbsent(ctx, e)
		require.NoError(t, err)
	}
}

func TestIntegration_IdempotentWrites(t *testing.T) {
	r := New(setupTestDB(t))
	ctx := context.Background()

	inserted, err := r.CreateWorkIfAbsent(ctx, &data.Work{ID: 1, Title: "Dune", AvgRating: 4.25, RatingsCount: 10})
	require.NoError(t, err)
	assert.True(t, inserted)
	inserted, err = r.CreateWorkIfAbsent(ctx, &data.Work{ID: 1, Title: "Changed", AvgRating: 1})
	require.NoError(t, err)
	assert.False(t, inserted)

	work, err := r.GetWork(1)
	require.NoError(t, err)
	assert.Equal(t, "Dune", work.Title)
	assert.Equal(t, 4.25, work.AvgRating)

	first, err := r.GetOrCreateAuthor(ctx, "Frank Herbert")
	require.NoError(t, err)
	second, err := r.GetOrCreateAuthor(ctx, "Frank Herbert")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	linked, err := r.LinkWorkAuthor(ctx, 1, first.ID)
	require.NoError(t, err)
	assert.True(t, linked)
	linked, err = r.LinkWorkAuthor(ctx, 1, first.ID)
	require.NoError(t, err)
	assert.False(t, linked)

	err = r.CreateWorkAuthor(&data.WorkAuthor{WorkID: 1, AuthorID: first.ID})
	assert.ErrorIs(t, err, ErrDuplicateRecord)
	err = r.CreateWorkAuthor(&data.WorkAuthor{WorkID: 999, AuthorID: first.ID})
	assert.ErrorIs(t, err, ErrInvalidReference)
}

func TestIntegration_BulkInsertRatings(t *testing.T) {
	r := New(setupTestDB(t))
	ctx := context.Background()
	seedCatalogue(t, r)

	n, err := r.BulkInsertRatings(ctx, []data.Rating{
		{UserID: 7, EditionID: 1, Rating: 5},
		{UserID: 8, EditionID: 1, Rating: 4},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	// The (7, 1) pair already exists and is skipped.
	n, err = r.BulkInsertRatings(ctx, []data.Rating{
		{UserID: 7, EditionID: 1, Rating: 1},
		{UserID: 9, EditionID: 1, Rating: 3},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = r.BulkInsertRatings(ctx, []data.Rating{{UserID: 1, EditionID: 404, Rating: 3}})
	assert.ErrorIs(t, err, ErrInvalidReference)

	err = r.CreateRating(&data.Rating{UserID: 7, EditionID: 1, Rating: 2})
	assert.ErrorIs(t, err, ErrDuplicateRecord)

	ratings, err := r.GetAllRatings(7, 0)
	require.NoError(t, err)
	require.Len(t, ratings, 1)
	assert.EqualValues(t, 5, ratings[0].Rating)
}

func TestIntegration_Aggregates(t *testing.T) {
	r := New(setupTestDB(t))
	ctx := context.Background()
	seedCatalogue(t, r)

	_, err := r.BulkInsertRatings(ctx, []data.Rating{
		{UserID: 1, EditionID: 1, Rating: 5},
		{UserID: 2, EditionID: 1, Rating: 5},
		{UserID: 3, EditionID: 1, Rating: 3},
		{UserID: 1, EditionID: 2, Rating: 5},
		{UserID: 2, EditionID: 2, Rating: 5},
		{UserID: 1, EditionID: 3, Rating: 5},
		{UserID: 2, EditionID: 3, Rating: 4},
		{UserID: 3, EditionID: 3, Rating: 5},
	})
	require.NoError(t, err)

	counts, err := r.GetFanOverlapCounts(10)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{20: 2, 30: 1}, counts)

	buckets, err := r.GetRatingBuckets(10)
	require.NoError(t, err)
	assert.Equal(t, []data.RatingBucket{{Rating: 3, Count: 1}, {Rating: 5, Count: 2}}, buckets)

	works, err := r.GetWorksByIDs([]int64{30, 20, 404})
	require.NoError(t, err)
	assert.Len(t, works, 2)

	minRating := 4.0
	works, err = r.GetAllWorks(&minRating, "")
	require.NoError(t, err)
	require.Len(t, works, 2)
	assert.EqualValues(t, 10, works[0].ID)

	top, err := r.GetTopRatedWorks(0, "")
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.EqualValues(t, 30, top[0].ID)
}

func TestIntegration_AuthorFilter(t *testing.T) {
	r := New(setupTestDB(t))
	ctx := context.Background()
	seedCatalogue(t, r)

	author, err := r.GetOrCreateAuthor(ctx, "Ursula K. Le Guin")
	require.NoError(t, err)
	_, err = r.LinkWorkAuthor(ctx, 20, author.ID)
	require.NoError(t, err)

	works, err := r.GetAllWorks(nil, "le guin")
	require.NoError(t, err)
	require.Len(t, works, 1)
	assert.EqualValues(t, 20, works[0].ID)

	authored, err := r.GetWorksForAuthor(author.ID)
	require.NoError(t, err)
	require.Len(t, authored, 1)

	require.NoError(t, r.DeleteWork(20))
	_, err = r.GetEdition(2)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}
