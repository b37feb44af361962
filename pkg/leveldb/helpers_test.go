package leveldb_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/levelbridge/pkg/engine/goleveldb"
	"github.com/eigerco/levelbridge/pkg/engine/pebble"
	"github.com/eigerco/levelbridge/pkg/leveldb"
	"github.com/eigerco/levelbridge/pkg/native"
	"github.com/eigerco/levelbridge/pkg/native/host"
)

var engines = []struct {
	name string
	new  func() *host.Host
}{
	{name: goleveldb.Name, new: goleveldb.New},
	{name: pebble.Name, new: pebble.New},
}

// eachEngine runs fn against a fresh host of every engine and checks that
// every engine buffer and object was handed back once fn returns.
func eachEngine(t *testing.T, fn func(t *testing.T, lib *native.Lib)) {
	t.Helper()
	for _, e := range engines {
		t.Run(e.name, func(t *testing.T) {
			h := e.new()
			boxed := native.Boxed()

			fn(t, h.Lib())

			assert.Zero(t, h.Outstanding(), "engine buffers not freed")
			assert.Zero(t, h.Handles(), "engine objects not destroyed")
			assert.Equal(t, boxed, native.Boxed(), "callback state not released")
		})
	}
}

func options(lib *native.Lib) *leveldb.Options {
	return &leveldb.Options{CreateIfMissing: true, Lib: lib}
}

func openInt32(t *testing.T, lib *native.Lib) *leveldb.Database[int32] {
	t.Helper()
	db, err := leveldb.Open(filepath.Join(t.TempDir(), "db"), leveldb.Int32Key, options(lib))
	require.NoError(t, err)
	return db
}

func putAll(t *testing.T, db *leveldb.Database[int32], keys ...int32) {
	t.Helper()
	for _, k := range keys {
		require.NoError(t, db.Put(nil, k, []byte{byte(k)}))
	}
}

func collect(t *testing.T, it *leveldb.Iterator[int32]) []int32 {
	t.Helper()
	var keys []int32
	for k := range it.Keys() {
		keys = append(keys, k)
	}
	require.NoError(t, it.Err())
	return keys
}
