package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/emzola/bookrating/data"
)

var (
	errEmptyIdentifier = errors.New("must be a positive integer")
	errNegativeRating  = errors.New("must not be negative")
)

// table streams a CSV source row by row, addressing fields by header name.
type table struct {
	r       *csv.Reader
	columns map[string]int
	line    int
}

// newTable reads the header row and checks that every required column is
// present. Header names are trimmed of surrounding whitespace and a leading
// UTF-8 byte order mark. An empty source yields a table with no rows.
func newTable(src io.Reader, required []string) (*table, error) {
	r := csv.NewReader(src)
	r.FieldsPerRecord = -1
	r.ReuseRecord = true
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return &table{r: r, line: 1}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	t := &table{r: r, columns: make(map[string]int, len(header)), line: 1}
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		t.columns[strings.TrimSpace(name)] = i
	}
	for _, name := range required {
		if !t.has(name) {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}
	return t, nil
}

func (t *table) has(name string) bool {
	_, ok := t.columns[name]
	return ok
}

// next returns the following record. It returns io.EOF at the end of input.
func (t *table) next() (row, error) {
	if t.columns == nil {
		return row{}, io.EOF
	}
	record, err := t.r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return row{}, io.EOF
		}
		return row{}, fmt.Errorf("line %d: %w", t.line+1, err)
	}
	t.line++
	return row{t: t, record: record}, nil
}

type row struct {
	t      *table
	record []string
}

// get returns the trimmed value of the named field, or "" when the record is
// shorter than the header.
func (r row) get(name string) string {
	i, ok := r.t.columns[name]
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

func (r row) line() int {
	return r.t.line
}

// parseID parses an entity identifier. Identifiers cannot be defaulted, so
// anything other than a positive integer is an error.
func parseID(s string) (int64, error) {
	if s == "" {
		return 0, errEmptyIdentifier
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// Some exports write integer columns as floats ("123.0").
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != math.Trunc(f) || f > math.MaxInt64 {
			return 0, err
		}
		id = int64(f)
	}
	if id <= 0 {
		return 0, errEmptyIdentifier
	}
	return id, nil
}

// parseCount parses a non-negative counter, defaulting to 0.
func parseCount(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		n = int64(f)
	}
	if n < 0 {
		return 0
	}
	return n
}

// parseYear parses a year that may carry float formatting ("1997.0"). The
// fraction is truncated. Anything unparseable yields nil.
func parseYear(s string) *int32 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	f = math.Trunc(f)
	if f < math.MinInt32 || f > math.MaxInt32 {
		return nil
	}
	year := int32(f)
	return &year
}

// parseAverage parses an average rating rounded to two places and clamped
// into the rating scale. Anything unparseable yields 0.
func parseAverage(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0
	}
	f = math.Max(data.MinRating, math.Min(data.MaxRating, f))
	return data.RoundRating(f)
}

// parseRating parses a raw rating value. Negative values violate the column
// check and are rejected; the upper bound is not checked on the bulk path.
func parseRating(s string) (int16, error) {
	n, err := strconv.ParseInt(s, 10, 16)
	if err != nil {
		return 0, err
	}
	if n < data.MinRating {
		return 0, errNegativeRating
	}
	return int16(n), nil
}

// optional maps an empty field to nil.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
