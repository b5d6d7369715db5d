package jsonlog

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEntries(t *testing.T, buf *bytes.Buffer) []entry {
	t.Helper()
	var entries []entry
	dec := json.NewDecoder(buf)
	for dec.More() {
		var e entry
		require.NoError(t, dec.Decode(&e))
		entries = append(entries, e)
	}
	return entries
}

func TestLogger_MinLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, LevelError)

	logger.PrintInfo("books phase complete", map[string]string{"rows": "3"})
	logger.PrintError(errors.New("batch failed"), map[string]string{"batch": "2"})

	entries := decodeEntries(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "ERROR", entries[0].Level)
	assert.Equal(t, "batch failed", entries[0].Message)
	assert.Equal(t, map[string]string{"batch": "2"}, entries[0].Properties)
	assert.Empty(t, entries[0].Trace)
}

func TestLogger_Fatal(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, LevelInfo)
	var code int
	logger.exit = func(c int) { code = c }

	logger.PrintFatal(errors.New("cannot open database"), nil)

	entries := decodeEntries(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "FATAL", entries[0].Level)
	assert.NotEmpty(t, entries[0].Trace)
	assert.Equal(t, 1, code)
}

func TestLogger_Write(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, LevelInfo)

	_, err := logger.Write([]byte("http: TLS handshake error\n"))
	require.NoError(t, err)

	entries := decodeEntries(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "http: TLS handshake error", entries[0].Message)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{in: "", want: LevelInfo},
		{in: "info", want: LevelInfo},
		{in: " Error ", want: LevelError},
		{in: "OFF", want: LevelOff},
		{in: "verbose", want: LevelInfo, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
