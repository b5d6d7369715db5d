package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/emzola/bookrating/data"
	"github.com/lib/pq"
)

type works interface {
	CreateWork(work *data.Work) error
	GetWork(ID int64) (*data.Work, error)
	GetAllWorks(minRating *float64, author string) ([]*data.Work, error)
	GetTopRatedWorks(minRating float64, author string) ([]*data.Work, error)
	GetWorksByIDs(IDs []int64) ([]*data.Work, error)
	UpdateWork(work *data.Work) error
	DeleteWork(ID int64) error
}

const workColumns = `w.id, w.title, w.original_year, w.avg_rating, w.ratings_count`

// workFilter matches works at or above an optional average rating and,
// when author is non-empty, credited to an author whose name contains it
// (case-insensitive).
const workFilter = `
		WHERE ($1::numeric IS NULL OR w.avg_rating >= $1)
		AND ($2 = '' OR EXISTS (
			SELECT 1 FROM work_authors wa
			INNER JOIN authors a ON a.id = wa.author_id
			WHERE wa.work_id = w.id AND strpos(lower(a.name), lower($2)) > 0
		))`

// CreateWork creates a new work record with a caller supplied ID.
func (r *repository) CreateWork(work *data.Work) error {
	query := `
		INSERT INTO works (id, title, original_year, avg_rating, ratings_count)
		VALUES ($1, $2, $3, $4, $5)`
	args := []interface{}{work.ID, work.Title, work.OriginalYear, work.AvgRating, work.RatingsCount}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_, err := r.db.ExecContext(ctx, query, args...)
	return translate(err)
}

// GetWork retrieves a work record by its ID.
func (r *repository) GetWork(ID int64) (*data.Work, error) {
	if ID < 1 {
		return nil, ErrRecordNotFound
	}
	query := `SELECT ` + workColumns + ` FROM works w WHERE w.id = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	work, err := scanWork(r.db.QueryRowContext(ctx, query, ID))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return work, nil
}

// GetAllWorks retrieves all work records ordered by ID.
func (r *repository) GetAllWorks(minRating *float64, author string) ([]*data.Work, error) {
	query := `SELECT ` + workColumns + ` FROM works w` + workFilter + `
		ORDER BY w.id ASC`
	return r.queryWorks(query, minRating, author)
}

// GetTopRatedWorks retrieves works with an average of at least minRating,
// best rated first.
func (r *repository) GetTopRatedWorks(minRating float64, author string) ([]*data.Work, error) {
	query := `SELECT ` + workColumns + ` FROM works w` + workFilter + `
		ORDER BY w.avg_rating DESC, w.ratings_count DESC, w.id ASC`
	return r.queryWorks(query, minRating, author)
}

// GetWorksByIDs retrieves the works whose IDs are listed. Unknown IDs are
// ignored and no ordering is guaranteed.
func (r *repository) GetWorksByIDs(IDs []int64) ([]*data.Work, error) {
	if len(IDs) == 0 {
		return []*data.Work{}, nil
	}
	query := `SELECT ` + workColumns + ` FROM works w WHERE w.id = ANY($1)`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query, pq.Array(IDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectWorks(rows)
}

// UpdateWork updates a specific work record.
func (r *repository) UpdateWork(work *data.Work) error {
	query := `
		UPDATE works
		SET title = $1, original_year = $2, avg_rating = $3, ratings_count = $4
		WHERE id = $5`
	args := []interface{}{work.Title, work.OriginalYear, work.AvgRating, work.RatingsCount, work.ID}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return translate(err)
	}
	return expectAffected(result)
}

// DeleteWork deletes a specific work record together with its editions,
// ratings and author links.
func (r *repository) DeleteWork(ID int64) error {
	if ID < 1 {
		return ErrRecordNotFound
	}
	query := `DELETE FROM works WHERE id = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	result, err := r.db.ExecContext(ctx, query, ID)
	if err != nil {
		return err
	}
	return expectAffected(result)
}

func (r *repository) queryWorks(query string, minRating any, author string) ([]*data.Work, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query, minRating, author)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectWorks(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWork(row rowScanner) (*data.Work, error) {
	var work data.Work
	err := row.Scan(&work.ID, &work.Title, &work.OriginalYear, &work.AvgRating, &work.RatingsCount)
	if err != nil {
		return nil, err
	}
	return &work, nil
}

func collectWorks(rows *sql.Rows) ([]*data.Work, error) {
	works := []*data.Work{}
	for rows.Next() {
		work, err := scanWork(rows)
		if err != nil {
			return nil, err
		}
		works = append(works, work)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return works, nil
}

func expectAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
