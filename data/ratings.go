package data

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/emzola/bookrating/internal/validator"
)

const (
	MinRating = 0
	MaxRating = 5
	// FanRating is the score that makes a user a fan of a work.
	FanRating = MaxRating
)

// Rating defines one user's score for one edition. UserID refers to an
// external user and is not validated against any table.
type Rating struct {
	ID        int64 `json:"id"`
	UserID    int64 `json:"user_id"`
	EditionID int64 `json:"edition"`
	Rating    int16 `json:"rating"`
}

// ParseRatingValue converts a raw JSON rating into an integer. JSON integers
// and integer strings are accepted, as are integral decimals such as 3.0 or
// "3.00". Fractions and other values are not.
func ParseRatingValue(raw json.RawMessage) (int16, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}
	s := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
	}
	if i := strings.IndexByte(s, '.'); i >= 0 && strings.Trim(s[i+1:], "0") == "" {
		s = s[:i]
	}
	n, err := strconv.ParseInt(s, 10, 16)
	if err != nil {
		return 0, false
	}
	return int16(n), true
}

func ValidateRating(v *validator.Validator, rating *Rating) {
	v.Check(rating.UserID > 0, "user_id", "must be provided")
	v.Check(rating.EditionID > 0, "edition", "must be provided")
	v.Check(rating.Rating >= MinRating && rating.Rating <= MaxRating, "rating", "must be between 0 and 5")
}

// RatingBucket is one histogram entry.
type RatingBucket struct {
	Rating int16 `json:"rating"`
	Count  int64 `json:"count"`
}

// RatingHistogram lists buckets in ascending rating order and marshals to a
// JSON object keyed by rating, preserving that order.
type RatingHistogram []RatingBucket

func (h RatingHistogram) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, b := range h {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(strconv.Itoa(int(b.Rating))))
		buf.WriteByte(':')
		buf.WriteString(strconv.FormatInt(b.Count, 10))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// RatingDistribution summarises every rating across all editions of a work.
// Average is nil when the work has no ratings.
type RatingDistribution struct {
	WorkID    int64           `json:"work"`
	Average   *float64        `json:"average"`
	Total     int64           `json:"total"`
	Histogram RatingHistogram `json:"histogram"`
}

// NewRatingDistribution builds a distribution from buckets sorted by rating.
func NewRatingDistribution(workID int64, buckets []RatingBucket) *RatingDistribution {
	dist := &RatingDistribution{WorkID: workID, Histogram: RatingHistogram{}}
	var sum int64
	for _, b := range buckets {
		if b.Count == 0 {
			continue
		}
		dist.Histogram = append(dist.Histogram, b)
		dist.Total += b.Count
		sum += int64(b.Rating) * b.Count
	}
	if dist.Total > 0 {
		avg := RoundRating(float64(sum) / float64(dist.Total))
		dist.Average = &avg
	}
	return dist
}
