package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckKeepsFirstMessage(t *testing.T) {
	v := New()
	v.Check(false, "rating", "must be an integer")
	v.Check(false, "rating", "must be between 0 and 5")
	v.Check(true, "title", "must be provided")

	assert.False(t, v.Valid())
	assert.Equal(t, map[string]string{"rating": "must be an integer"}, v.Errors)
}

func TestStructUsesJSONNames(t *testing.T) {
	type body struct {
		Title        string  `json:"title" validate:"required,max=255"`
		AvgRating    float64 `json:"avg_rating" validate:"gte=0,lte=5"`
		RatingsCount int64   `json:"ratings_count,omitempty" validate:"gte=0"`
	}

	v := New()
	v.Struct(body{AvgRating: 7, RatingsCount: -1})

	assert.Equal(t, "must be provided", v.Errors["title"])
	assert.Equal(t, "must be less than or equal to 5", v.Errors["avg_rating"])
	assert.Equal(t, "must be greater than or equal to 0", v.Errors["ratings_count"])

	v = New()
	v.Struct(body{Title: "Dune", AvgRating: 4.25})
	assert.True(t, v.Valid())
}

func TestHelpers(t *testing.T) {
	assert.True(t, In("eng", "en", "eng"))
	assert.False(t, In(6, 0, 1, 2, 3, 4, 5))
	assert.True(t, Unique([]string{"a", "b"}))
	assert.False(t, Unique([]int64{1, 1}))
	assert.True(t, Matches("en-US", LanguageCodeRX))
	assert.False(t, Matches("english!", LanguageCodeRX))
}
