package leveldb_test

import (
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/levelbridge/internal/testutils"
	"github.com/eigerco/levelbridge/pkg/leveldb"
	"github.com/eigerco/levelbridge/pkg/native"
)

func TestRandomKeys(t *testing.T) {
	eachEngine(t, func(t *testing.T, lib *native.Lib) {
		db, err := leveldb.Open(filepath.Join(t.TempDir(), "db"), leveldb.BytesKey, options(lib))
		require.NoError(t, err)
		defer db.Close() //nolint:errcheck

		keys := testutils.RandomKeys(t, 200, 16)
		values := make(map[string][]byte, len(keys))

		// Insert in reverse so order comes from the engine
		b := db.NewWriteBatch()
		for _, k := range slices.Backward(keys) {
			v := testutils.RandomBytes(t, 8)
			values[string(k)] = v
			require.NoError(t, b.Put(k, v))
		}
		require.NoError(t, db.Write(nil, b))
		require.NoError(t, b.Close())

		it, err := db.NewIterator(nil)
		require.NoError(t, err)
		defer it.Close() //nolint:errcheck

		var got []string
		for k, v := range it.All() {
			got = append(got, string(k))
			assert.Equal(t, values[string(k)], v)
		}
		require.NoError(t, it.Err())

		want := make([]string, len(keys))
		for i, k := range keys {
			want[i] = string(k)
		}
		assert.Equal(t, want, got)
	})
}
