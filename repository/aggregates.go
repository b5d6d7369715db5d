package repository

import (
	"context"
	"time"

	"github.com/emzola/bookrating/data"
)

type aggregates interface {
	GetFanOverlapCounts(workID int64) (map[int64]int64, error)
	GetRatingBuckets(workID int64) ([]data.RatingBucket, error)
}

// GetFanOverlapCounts returns, for every other work, how many distinct fans
// of workID also rated one of its editions five stars. A fan is a user who
// rated any edition of workID five stars. Works without overlap are absent.
func (r *repository) GetFanOverlapCounts(workID int64) (map[int64]int64, error) {
	query := `
		SELECT e.work_id, COUNT(DISTINCT r.user_id)
		FROM ratings r
		INNER JOIN editions e ON e.id = r.edition_id
		WHERE r.rating = $2
		AND e.work_id <> $1
		AND r.user_id IN (
			SELECT fr.user_id
			FROM ratings fr
			INNER JOIN editions fe ON fe.id = fr.edition_id
			WHERE fe.work_id = $1 AND fr.rating = $2
		)
		GROUP BY e.work_id`
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query, workID, data.FanRating)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[int64]int64)
	for rows.Next() {
		var id, count int64
		if err := rows.Scan(&id, &count); err != nil {
			return nil, err
		}
		counts[id] = count
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

// GetRatingBuckets counts the ratings on all editions of a work grouped by
// rating value, in ascending order.
func (r *repository) GetRatingBuckets(workID int64) ([]data.RatingBucket, error) {
	query := `
		SELECT r.rating, COUNT(*)
		FROM ratings r
		INNER JOIN editions e ON e.id = r.edition_id
		WHERE e.work_id = $1
		GROUP BY r.rating
		ORDER BY r.rating ASC`
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query, workID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	buckets := []data.RatingBucket{}
	for rows.Next() {
		var bucket data.RatingBucket
		if err := rows.Scan(&bucket.Rating, &bucket.Count); err != nil {
			return nil, err
		}
		buckets = append(buckets, bucket)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return buckets, nil
}
