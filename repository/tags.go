package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/emzola/bookrating/data"
)

type tags interface {
	GetTag(ID int64) (*data.Tag, error)
	GetAllTags() ([]*data.Tag, error)
	GetTagsForEdition(editionID int64) ([]*data.EditionTag, error)
}

// GetTag retrieves a tag record by its ID.
func (r *repository) GetTag(ID int64) (*data.Tag, error) {
	if ID < 1 {
		return nil, ErrRecordNotFound
	}
	query := `SELECT id, name FROM tags WHERE id = $1`
	var tag data.Tag
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, ID).Scan(&tag.ID, &tag.Name)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &tag, nil
}

// GetAllTags retrieves every tag ordered by name.
func (r *repository) GetAllTags() ([]*data.Tag, error) {
	query := `SELECT id, name FROM tags ORDER BY name ASC`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tags := []*data.Tag{}
	for rows.Next() {
		var tag data.Tag
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, err
		}
		tags = append(tags, &tag)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tags, nil
}

// GetTagsForEdition retrieves the tag counts of an edition, most applied first.
func (r *repository) GetTagsForEdition(editionID int64) ([]*data.EditionTag, error) {
	query := `
		SELECT id, edition_id, tag_id, count
		FROM edition_tags
		WHERE edition_id = $1
		ORDER BY count DESC, tag_id ASC`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query, editionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	editionTags := []*data.EditionTag{}
	for rows.Next() {
		var et data.EditionTag
		if err := rows.Scan(&et.ID, &et.EditionID, &et.TagID, &et.Count); err != nil {
			return nil, err
		}
		editionTags = append(editionTags, &et)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return editionTags, nil
}
