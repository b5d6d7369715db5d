package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/emzola/bookrating/data"
	"github.com/lib/pq"
)

// loader holds the idempotent writes used by bulk ingestion. They take the
// caller's context so that a cancelled load stops promptly.
type loader interface {
	CreateWorkIfAbsent(ctx context.Context, work *data.Work) (bool, error)
	CreateEditionIfAbsent(ctx context.Context, edition *data.Edition) (bool, error)
	GetOrCreateAuthor(ctx context.Context, name string) (*data.Author, error)
	LinkWorkAuthor(ctx context.Context, workID, authorID int64) (bool, error)
	BulkInsertRatings(ctx context.Context, ratings []data.Rating) (int64, error)
	CreateTagIfAbsent(ctx context.Context, tag *data.Tag) (bool, error)
	CreateEditionTagIfAbsent(ctx context.Context, et *data.EditionTag) (bool, error)
}

// CreateWorkIfAbsent inserts a work unless one with the same ID exists.
// The existing row is left untouched. It reports whether a row was inserted.
func (r *repository) CreateWorkIfAbsent(ctx context.Context, work *data.Work) (bool, error) {
	query := `
		INSERT INTO works (id, title, original_year, avg_rating, ratings_count)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`
	args := []interface{}{work.ID, work.Title, work.OriginalYear, work.AvgRating, work.RatingsCount}
	return r.execInserted(ctx, query, args...)
}

// CreateEditionIfAbsent inserts an edition unless one with the same ID exists.
func (r *repository) CreateEditionIfAbsent(ctx context.Context, edition *data.Edition) (bool, error) {
	query := `
		INSERT INTO editions (` + editionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING`
	args := []interface{}{
		edition.ID,
		edition.WorkID,
		edition.Isbn,
		edition.Isbn13,
		edition.LanguageCode,
		edition.RatingsCount,
		edition.AvgRating,
	}
	return r.execInserted(ctx, query, args...)
}

// GetOrCreateAuthor returns the author with exactly this name, creating it
// when missing. Concurrent callers converge on the same row.
func (r *repository) GetOrCreateAuthor(ctx context.Context, name string) (*data.Author, error) {
	author := data.Author{Name: name}
	selectQuery := `SELECT id FROM authors WHERE name = $1`
	err := r.db.QueryRowContext(ctx, selectQuery, name).Scan(&author.ID)
	if err == nil {
		return &author, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	insertQuery := `
		INSERT INTO authors (name) VALUES ($1)
		ON CONFLICT (name) DO NOTHING
		RETURNING id`
	err = r.db.QueryRowContext(ctx, insertQuery, name).Scan(&author.ID)
	switch {
	case err == nil:
		return &author, nil
	case errors.Is(err, sql.ErrNoRows):
		// Lost a race with another writer; the row exists now.
		if err := r.db.QueryRowContext(ctx, selectQuery, name).Scan(&author.ID); err != nil {
			return nil, err
		}
		return &author, nil
	default:
		return nil, err
	}
}

// LinkWorkAuthor creates the (work, author) link unless it already exists.
func (r *repository) LinkWorkAuthor(ctx context.Context, workID, authorID int64) (bool, error) {
	query := `
		INSERT INTO work_authors (work_id, author_id)
		VALUES ($1, $2)
		ON CONFLICT ON CONSTRAINT unique_work_author DO NOTHING`
	return r.execInserted(ctx, query, workID, authorID)
}

// BulkInsertRatings inserts a batch of ratings in a single statement. Rows
// clashing with an existing (user, edition) rating are skipped. It returns
// the number of rows actually inserted.
func (r *repository) BulkInsertRatings(ctx context.Context, ratings []data.Rating) (int64, error) {
	if len(ratings) == 0 {
		return 0, nil
	}
	userIDs := make([]int64, len(ratings))
	editionIDs := make([]int64, len(ratings))
	values := make([]int64, len(ratings))
	for i, rating := range ratings {
		userIDs[i] = rating.UserID
		editionIDs[i] = rating.EditionID
		values[i] = int64(rating.Rating)
	}
	query := `
		INSERT INTO ratings (user_id, edition_id, rating)
		SELECT * FROM unnest($1::bigint[], $2::bigint[], $3::smallint[])
		ON CONFLICT ON CONSTRAINT unique_user_edition_rating DO NOTHING`
	result, err := r.db.ExecContext(ctx, query, pq.Array(userIDs), pq.Array(editionIDs), pq.Array(values))
	if err != nil {
		return 0, translate(err)
	}
	return result.RowsAffected()
}

// CreateTagIfAbsent inserts a tag unless one with the same ID or name exists.
func (r *repository) CreateTagIfAbsent(ctx context.Context, tag *data.Tag) (bool, error) {
	query := `
		INSERT INTO tags (id, name) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`
	return r.execInserted(ctx, query, tag.ID, tag.Name)
}

// CreateEditionTagIfAbsent inserts an edition tag count unless the pair
// already exists.
func (r *repository) CreateEditionTagIfAbsent(ctx context.Context, et *data.EditionTag) (bool, error) {
	query := `
		INSERT INTO edition_tags (edition_id, tag_id, count)
		VALUES ($1, $2, $3)
		ON CONFLICT ON CONSTRAINT unique_edition_tag DO NOTHING`
	return r.execInserted(ctx, query, et.EditionID, et.TagID, et.Count)
}

func (r *repository) execInserted(ctx context.Context, query string, args ...interface{}) (bool, error) {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, translate(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}
