package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/emzola/bookrating/data"
)

type ratings interface {
	CreateRating(rating *data.Rating) error
	GetRating(ID int64) (*data.Rating, error)
	GetAllRatings(userID, editionID int64) ([]*data.Rating, error)
	GetRatingsForWork(workID int64) ([]*data.Rating, error)
	UpdateRating(rating *data.Rating) error
	DeleteRating(ID int64) error
}

// CreateRating creates a new rating record. A second rating by the same user
// for the same edition fails with ErrDuplicateRecord.
func (r *repository) CreateRating(rating *data.Rating) error {
	query := `
		INSERT INTO ratings (user_id, edition_id, rating)
		VALUES ($1, $2, $3)
		RETURNING id`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, rating.UserID, rating.EditionID, rating.Rating).Scan(&rating.ID)
	return translate(err)
}

// GetRating retrieves a rating record by its ID.
func (r *repository) GetRating(ID int64) (*data.Rating, error) {
	if ID < 1 {
		return nil, ErrRecordNotFound
	}
	query := `SELECT id, user_id, edition_id, rating FROM ratings WHERE id = $1`
	var rating data.Rating
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, ID).Scan(&rating.ID, &rating.UserID, &rating.EditionID, &rating.Rating)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &rating, nil
}

// GetAllRatings retrieves rating records, optionally restricted to a user
// and/or an edition. A zero ID disables that filter.
func (r *repository) GetAllRatings(userID, editionID int64) ([]*data.Rating, error) {
	query := `
		SELECT id, user_id, edition_id, rating
		FROM ratings
		WHERE ($1::bigint = 0 OR user_id = $1)
		AND ($2::bigint = 0 OR edition_id = $2)
		ORDER BY id ASC`
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query, userID, editionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRatings(rows)
}

// GetRatingsForWork retrieves the ratings of every edition of a work.
func (r *repository) GetRatingsForWork(workID int64) ([]*data.Rating, error) {
	query := `
		SELECT r.id, r.user_id, r.edition_id, r.rating
		FROM ratings r
		INNER JOIN editions e ON e.id = r.edition_id
		WHERE e.work_id = $1
		ORDER BY r.id ASC`
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query, workID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRatings(rows)
}

// UpdateRating updates a specific rating record.
func (r *repository) UpdateRating(rating *data.Rating) error {
	query := `UPDATE ratings SET edition_id = $1, rating = $2 WHERE id = $3`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	result, err := r.db.ExecContext(ctx, query, rating.EditionID, rating.Rating, rating.ID)
	if err != nil {
		return translate(err)
	}
	return expectAffected(result)
}

// DeleteRating deletes a specific rating record.
func (r *repository) DeleteRating(ID int64) error {
	if ID < 1 {
		return ErrRecordNotFound
	}
	query := `DELETE FROM ratings WHERE id = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	result, err := r.db.ExecContext(ctx, query, ID)
	if err != nil {
		return err
	}
	return expectAffected(result)
}

func collectRatings(rows *sql.Rows) ([]*data.Rating, error) {
	ratings := []*data.Rating{}
	for rows.Next() {
		var rating data.Rating
		if err := rows.Scan(&rating.ID, &rating.UserID, &rating.EditionID, &rating.Rating); err != nil {
			return nil, err
		}
		ratings = append(ratings, &rating)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ratings, nil
}
