package data

import (
	"math"
	"time"

	"github.com/emzola/bookrating/internal/validator"
)

// Work defines a book independent of any particular edition. Its ID is the
// natural key from the source dataset and is never generated.
type Work struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	OriginalYear *int32     `json:"original_year"`
	AvgRating    float64    `json:"avg_rating"`
	RatingsCount int64      `json:"ratings_count"`
	Authors      []*Author  `json:"authors,omitempty"`
	Editions     []*Edition `json:"editions,omitempty"`
}

// WorkWithFanCount is a work annotated with the number of distinct users who
// rated both it and a target work five stars. FiveStarCount is derived and
// never stored.
type WorkWithFanCount struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	AvgRating     float64 `json:"avg_rating"`
	FiveStarCount int64   `json:"five_star_count"`
}

func ValidateWork(v *validator.Validator, work *Work) {
	v.Check(work.ID > 0, "id", "must be a positive integer")
	v.Check(work.Title != "", "title", "must be provided")
	v.Check(len(work.Title) <= 255, "title", "must not be more than 255 bytes long")
	if work.OriginalYear != nil {
		v.Check(*work.OriginalYear <= int32(time.Now().Year()), "original_year", "must not be in the future")
	}
	ValidateAvgRating(v, "avg_rating", work.AvgRating)
	v.Check(work.RatingsCount >= 0, "ratings_count", "must not be negative")
}

// ValidateAvgRating checks an aggregate average fits NUMERIC(3,2) on the 0-5 scale.
func ValidateAvgRating(v *validator.Validator, key string, avg float64) {
	v.Check(avg >= 0, key, "must not be negative")
	v.Check(avg <= MaxRating, key, "must not be greater than five")
}

// RoundRating rounds an average to two decimal places.
func RoundRating(f float64) float64 {
	return math.Round(f*100) / 100
}
