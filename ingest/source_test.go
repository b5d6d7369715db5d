package ingest

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ratingsCSV = "user_id,book_id,rating\n1,1,5\n2,1,4\n"

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func readAll(t *testing.T, location string, remote Remote) string {
	t.Helper()
	rc, err := Open(context.Background(), location, remote)
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(b)
}

func TestOpenLocal(t *testing.T) {
	path := writeFile(t, "ratings.csv", []byte(ratingsCSV))
	assert.Equal(t, ratingsCSV, readAll(t, path, Remote{}))
	assert.Equal(t, ratingsCSV, readAll(t, "file://"+path, Remote{}))
}

func TestOpenGzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(ratingsCSV))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := writeFile(t, "ratings.csv.gz", buf.Bytes())
	assert.Equal(t, ratingsCSV, readAll(t, path, Remote{}))
}

func TestOpenEmpty(t *testing.T) {
	path := writeFile(t, "empty.csv", nil)
	assert.Equal(t, "", readAll(t, path, Remote{}))
}

func TestOpenErrors(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	tests := []struct {
		name     string
		location string
		want     error
	}{
		{"missing file", filepath.Join(t.TempDir(), "nope.csv"), ErrSourceNotFound},
		{"directory", t.TempDir(), ErrUnsupportedSource},
		{"binary", writeFile(t, "cover.png", png), ErrUnsupportedSource},
		{"unknown scheme", "ftp://example.com/ratings.csv", ErrUnsupportedSource},
		{"s3 without client", "s3://bucket/ratings.csv", ErrUnsupportedSource},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(context.Background(), tt.location, Remote{})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestOpenHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ratings.csv":
			io.WriteString(w, ratingsCSV)
		case "/broken.csv":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	remote := Remote{HTTP: srv.Client()}

	assert.Equal(t, ratingsCSV, readAll(t, srv.URL+"/ratings.csv", remote))

	_, err := Open(context.Background(), srv.URL+"/missing.csv", remote)
	assert.ErrorIs(t, err, ErrSourceNotFound)

	_, err = Open(context.Background(), srv.URL+"/broken.csv", remote)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")

	_, err = Open(context.Background(), srv.URL+"/ratings.csv", Remote{})
	assert.ErrorIs(t, err, ErrUnsupportedSource)
}
