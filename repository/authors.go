package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/emzola/bookrating/data"
)

type authors interface {
	CreateAuthor(author *data.Author) error
	GetAuthor(ID int64) (*data.Author, error)
	GetAllAuthors() ([]*data.Author, error)
	GetAuthorsForWork(workID int64) ([]*data.Author, error)
	GetWorksForAuthor(authorID int64) ([]*data.Work, error)
	UpdateAuthor(author *data.Author) error
	DeleteAuthor(ID int64) error
}

// CreateAuthor creates a new author record.
func (r *repository) CreateAuthor(author *data.Author) error {
	query := `INSERT INTO authors (name) VALUES ($1) RETURNING id`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, author.Name).Scan(&author.ID)
	return translate(err)
}

// GetAuthor retrieves an author record by its ID.
func (r *repository) GetAuthor(ID int64) (*data.Author, error) {
	if ID < 1 {
		return nil, ErrRecordNotFound
	}
	query := `SELECT id, name FROM authors WHERE id = $1`
	var author data.Author
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, ID).Scan(&author.ID, &author.Name)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &author, nil
}

// GetAllAuthors retrieves all author records ordered by name.
func (r *repository) GetAllAuthors() ([]*data.Author, error) {
	query := `SELECT id, name FROM authors ORDER BY name ASC, id ASC`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAuthors(rows)
}

// GetAuthorsForWork retrieves the authors credited on a work.
func (r *repository) GetAuthorsForWork(workID int64) ([]*data.Author, error) {
	query := `
		SELECT a.id, a.name
		FROM authors a
		INNER JOIN work_authors wa ON wa.author_id = a.id
		WHERE wa.work_id = $1
		ORDER BY wa.id ASC`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query, workID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAuthors(rows)
}

// GetWorksForAuthor retrieves an author's works, best rated first.
func (r *repository) GetWorksForAuthor(authorID int64) ([]*data.Work, error) {
	query := `
		SELECT ` + workColumns + `
		FROM works w
		INNER JOIN work_authors wa ON wa.work_id = w.id
		WHERE wa.author_id = $1
		ORDER BY w.avg_rating DESC, w.id ASC`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectWorks(rows)
}

// UpdateAuthor renames a specific author record.
func (r *repository) UpdateAuthor(author *data.Author) error {
	query := `UPDATE authors SET name = $1 WHERE id = $2`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	result, err := r.db.ExecContext(ctx, query, author.Name, author.ID)
	if err != nil {
		return translate(err)
	}
	return expectAffected(result)
}

// DeleteAuthor deletes a specific author record and its work links.
func (r *repository) DeleteAuthor(ID int64) error {
	if ID < 1 {
		return ErrRecordNotFound
	}
	query := `DELETE FROM authors WHERE id = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	result, err := r.db.ExecContext(ctx, query, ID)
	if err != nil {
		return err
	}
	return expectAffected(result)
}

func collectAuthors(rows *sql.Rows) ([]*data.Author, error) {
	authors := []*data.Author{}
	for rows.Next() {
		var author data.Author
		if err := rows.Scan(&author.ID, &author.Name); err != nil {
			return nil, err
		}
		authors = append(authors, &author)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return authors, nil
}
