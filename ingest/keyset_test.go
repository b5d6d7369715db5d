package ingest

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeySets(t *testing.T) {
	dir := t.TempDir()
	disk, err := OpenBadgerKeySet(dir, nil)
	require.NoError(t, err)
	inMemory, err := OpenBadgerKeySet("", nil)
	require.NoError(t, err)

	sets := map[string]KeySet{
		"memory":          NewMemoryKeySet(),
		"badger":          disk,
		"badger-inmemory": inMemory,
	}
	pairs := [][2]int64{{7, 3}, {3, 7}, {7, 3}, {1 << 40, 2}, {3, 7}, {1 << 40, 3}}
	want := []bool{true, true, false, true, false, true}

	for name, set := range sets {
		t.Run(name, func(t *testing.T) {
			for i, p := range pairs {
				added, err := set.Add(p[0], p[1])
				require.NoError(t, err)
				assert.Equal(t, want[i], added, "pair %v", p)
			}
			assert.Equal(t, 4, set.Len())
			require.NoError(t, set.Close())
		})
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "scratch directory should be removed on close")
}

func TestLoadRatingsWithBadgerKeySet(t *testing.T) {
	store := newFakeStore()
	store.addEditions(3)
	set, err := OpenBadgerKeySet(t.TempDir(), nil)
	require.NoError(t, err)
	defer set.Close()
	l := newTestLoader(t, store, Options{KeySet: set})

	src := "user_id,book_id,rating\n7,3,5\n7,3,4\n8,3,2\n"
	report, err := l.LoadRatings(context.Background(), strings.NewReader(src), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Duplicates)
	assert.EqualValues(t, 2, report.Inserted)
}

func TestEncodeKey(t *testing.T) {
	key := encodeKey(1, 258)
	assert.Len(t, key, 16)
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 1, 2}, key)
}
