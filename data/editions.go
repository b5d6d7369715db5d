package data

import "github.com/emzola/bookrating/internal/validator"

// Edition defines one published version of a Work. RatingsCount and AvgRating
// are supplied summary statistics and are not derived from Rating rows.
type Edition struct {
	ID           int64   `json:"id"`
	WorkID       int64   `json:"work"`
	Isbn         *string `json:"isbn"`
	Isbn13       *string `json:"isbn13"`
	LanguageCode *string `json:"language_code"`
	RatingsCount int64   `json:"ratings_count"`
	AvgRating    float64 `json:"avg_rating"`
}

func ValidateEdition(v *validator.Validator, edition *Edition) {
	v.Check(edition.ID > 0, "id", "must be a positive integer")
	v.Check(edition.WorkID > 0, "work", "must be provided")
	if edition.Isbn != nil {
		v.Check(len(*edition.Isbn) <= 13, "isbn", "must not be more than 13 characters")
	}
	if edition.Isbn13 != nil {
		v.Check(len(*edition.Isbn13) <= 13, "isbn13", "must not be more than 13 characters")
	}
	if edition.LanguageCode != nil {
		v.Check(len(*edition.LanguageCode) <= 10, "language_code", "must not be more than 10 characters")
	}
	v.Check(edition.RatingsCount >= 0, "ratings_count", "must not be negative")
	ValidateAvgRating(v, "avg_rating", edition.AvgRating)
}
