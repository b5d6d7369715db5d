package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/emzola/bookrating/data"
)

type editions interface {
	CreateEdition(edition *data.Edition) error
	GetEdition(ID int64) (*data.Edition, error)
	GetAllEditions() ([]*data.Edition, error)
	GetEditionsForWork(workID int64) ([]*data.Edition, error)
	UpdateEdition(edition *data.Edition) error
	DeleteEdition(ID int64) error
}

const editionColumns = `id, work_id, isbn, isbn13, language_code, ratings_count, avg_rating`

// CreateEdition creates a new edition record with a caller supplied ID.
func (r *repository) CreateEdition(edition *data.Edition) error {
	query := `
		INSERT INTO editions (` + editionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	args := []interface{}{
		edition.ID,
		edition.WorkID,
		edition.Isbn,
		edition.Isbn13,
		edition.LanguageCode,
		edition.RatingsCount,
		edition.AvgRating,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_, err := r.db.ExecContext(ctx, query, args...)
	return translate(err)
}

// GetEdition retrieves an edition record by its ID.
func (r *repository) GetEdition(ID int64) (*data.Edition, error) {
	if ID < 1 {
		return nil, ErrRecordNotFound
	}
	query := `SELECT ` + editionColumns + ` FROM editions WHERE id = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	edition, err := scanEdition(r.db.QueryRowContext(ctx, query, ID))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return edition, nil
}

// GetAllEditions retrieves all edition records.
func (r *repository) GetAllEditions() ([]*data.Edition, error) {
	query := `SELECT ` + editionColumns + ` FROM editions ORDER BY id ASC`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEditions(rows)
}

// GetEditionsForWork retrieves the editions of a work.
func (r *repository) GetEditionsForWork(workID int64) ([]*data.Edition, error) {
	query := `SELECT ` + editionColumns + ` FROM editions WHERE work_id = $1 ORDER BY id ASC`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query, workID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEditions(rows)
}

// UpdateEdition updates a specific edition record.
func (r *repository) UpdateEdition(edition *data.Edition) error {
	query := `
		UPDATE editions
		SET work_id = $1, isbn = $2, isbn13 = $3, language_code = $4, ratings_count = $5, avg_rating = $6
		WHERE id = $7`
	args := []interface{}{
		edition.WorkID,
		edition.Isbn,
		edition.Isbn13,
		edition.LanguageCode,
		edition.RatingsCount,
		edition.AvgRating,
		edition.ID,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return translate(err)
	}
	return expectAffected(result)
}

// DeleteEdition deletes a specific edition record and its ratings.
func (r *repository) DeleteEdition(ID int64) error {
	if ID < 1 {
		return ErrRecordNotFound
	}
	query := `DELETE FROM editions WHERE id = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	result, err := r.db.ExecContext(ctx, query, ID)
	if err != nil {
		return err
	}
	return expectAffected(result)
}

func scanEdition(row rowScanner) (*data.Edition, error) {
	var edition data.Edition
	err := row.Scan(
		&edition.ID,
		&edition.WorkID,
		&edition.Isbn,
		&edition.Isbn13,
		&edition.LanguageCode,
		&edition.RatingsCount,
		&edition.AvgRating,
	)
	if err != nil {
		return nil, err
	}
	return &edition, nil
}

func collectEditions(rows *sql.Rows) ([]*data.Edition, error) {
	editions := []*data.Edition{}
	for rows.Next() {
		edition, err := scanEdition(rows)
		if err != nil {
			return nil, err
		}
		editions = append(editions, edition)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return editions, nil
}
