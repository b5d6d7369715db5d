package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseYear(t *testing.T) {
	tests := []struct {
		in   string
		want *int32
	}{
		{"1997", int32Ptr(1997)},
		{"1997.0", int32Ptr(1997)},
		{"-750.0", int32Ptr(-750)},
		{"2001.9", int32Ptr(2001)},
		{"", nil},
		{"unknown", nil},
		{"NaN", nil},
		{"1e12", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseYear(tt.in))
		})
	}
}

func TestParseAverage(t *testing.T) {
	assert.Equal(t, 4.46, parseAverage("4.456"))
	assert.Equal(t, 5.0, parseAverage("7"))
	assert.Equal(t, 0.0, parseAverage("-1"))
	assert.Equal(t, 0.0, parseAverage(""))
	assert.Equal(t, 0.0, parseAverage("n/a"))
}

func TestParseID(t *testing.T) {
	id, err := parseID("12")
	require.NoError(t, err)
	assert.EqualValues(t, 12, id)

	id, err = parseID("12.0")
	require.NoError(t, err)
	assert.EqualValues(t, 12, id)

	for _, in := range []string{"", "0", "-3", "1.5", "x"} {
		_, err := parseID(in)
		assert.Error(t, err, in)
	}
}

func TestParseCount(t *testing.T) {
	assert.EqualValues(t, 42, parseCount("42"))
	assert.EqualValues(t, 42, parseCount("42.0"))
	assert.Zero(t, parseCount("-1"))
	assert.Zero(t, parseCount(""))
	assert.Zero(t, parseCount("many"))
}

func TestNewTableTrimsHeader(t *testing.T) {
	tbl, err := newTable(strings.NewReader("\ufeff user_id ,book_id,\trating\n 1 ,2,3\n"), ratingColumns)
	require.NoError(t, err)
	rec, err := tbl.next()
	require.NoError(t, err)
	assert.Equal(t, "1", rec.get("user_id"))
	assert.Equal(t, "3", rec.get("rating"))
	assert.Equal(t, "", rec.get("missing"))
	assert.Equal(t, 2, rec.line())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab", truncate("abc", 2))
	assert.Equal(t, "a", truncate("aé", 2))
}

func int32Ptr(v int32) *int32 {
	return &v
}
