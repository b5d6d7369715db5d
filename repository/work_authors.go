package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/emzola/bookrating/data"
)

type workAuthors interface {
	CreateWorkAuthor(link *data.WorkAuthor) error
	GetWorkAuthor(ID int64) (*data.WorkAuthor, error)
	GetAllWorkAuthors() ([]*data.WorkAuthor, error)
	DeleteWorkAuthor(ID int64) error
}

// CreateWorkAuthor links an existing work to an existing author.
func (r *repository) CreateWorkAuthor(link *data.WorkAuthor) error {
	query := `INSERT INTO work_authors (work_id, author_id) VALUES ($1, $2) RETURNING id`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, link.WorkID, link.AuthorID).Scan(&link.ID)
	return translate(err)
}

// GetWorkAuthor retrieves a work-author link by its ID.
func (r *repository) GetWorkAuthor(ID int64) (*data.WorkAuthor, error) {
	if ID < 1 {
		return nil, ErrRecordNotFound
	}
	query := `SELECT id, work_id, author_id FROM work_authors WHERE id = $1`
	var link data.WorkAuthor
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, ID).Scan(&link.ID, &link.WorkID, &link.AuthorID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &link, nil
}

// GetAllWorkAuthors retrieves every work-author link.
func (r *repository) GetAllWorkAuthors() ([]*data.WorkAuthor, error) {
	query := `SELECT id, work_id, author_id FROM work_authors ORDER BY id ASC`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	links := []*data.WorkAuthor{}
	for rows.Next() {
		var link data.WorkAuthor
		if err := rows.Scan(&link.ID, &link.WorkID, &link.AuthorID); err != nil {
			return nil, err
		}
		links = append(links, &link)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return links, nil
}

// DeleteWorkAuthor removes a work-author link.
func (r *repository) DeleteWorkAuthor(ID int64) error {
	if ID < 1 {
		return ErrRecordNotFound
	}
	query := `DELETE FROM work_authors WHERE id = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	result, err := r.db.ExecContext(ctx, query, ID)
	if err != nil {
		return err
	}
	return expectAffected(result)
}
