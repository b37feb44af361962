package leveldb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/levelbridge/pkg/db"
	"github.com/eigerco/levelbridge/pkg/engine/goleveldb"
	client "github.com/eigerco/levelbridge/pkg/leveldb"
)

var _ db.KVStore = (*KVStore)(nil)

func newKVStore(t *testing.T) *KVStore {
	t.Helper()
	store, err := NewKVStore(filepath.Join(t.TempDir(), "db"), &client.Options{
		CreateIfMissing: true,
		Lib:             goleveldb.New().Lib(),
	}, false)
	require.NoError(t, err)
	return store
}

func TestKVStore(t *testing.T) {
	tests := []struct {
		name string
		fn   func(t *testing.T, store db.KVStore)
	}{
		{
			name: "basic_put_get",
			fn:   testBasicPutGet,
		},
		{
			name: "delete_operations",
			fn:   testDelete,
		},
		{
			name: "store_closure",
			fn:   testStoreClosure,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := newKVStore(t)
			defer store.Close() //nolint:errcheck

			tc.fn(t, store)
		})
	}
}

func testBasicPutGet(t *testing.T, store db.KVStore) {
	key := []byte("test-key")
	value := []byte("test-value")

	err := store.Put(key, value)
	require.NoError(t, err)

	retrieved, err := store.Get(key)
	require.NoError(t, err)
	assert.Equal(t, value, retrieved)

	_, err = store.Get([]byte("non-existent"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func testDelete(t *testing.T, store db.KVStore) {
	key := []byte("delete-test")

	err := store.Put(key, []byte("to-be-deleted"))
	require.NoError(t, err)

	err = store.Delete(key)
	require.NoError(t, err)

	_, err = store.Get(key)
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing key is not an error
	err = store.Delete([]byte("non-existent"))
	assert.NoError(t, err)
}

func testStoreClosure(t *testing.T, store db.KVStore) {
	err := store.Close()
	require.NoError(t, err)

	_, err = store.Get([]byte("key"))
	assert.ErrorIs(t, err, ErrClosed)

	err = store.Put([]byte("key"), []byte("value"))
	assert.ErrorIs(t, err, ErrClosed)

	err = store.Delete([]byte("key"))
	assert.ErrorIs(t, err, ErrClosed)

	_, err = store.NewIterator(nil, nil)
	assert.ErrorIs(t, err, ErrClosed)

	err = store.Close()
	assert.NoError(t, err)
}

func TestSyncWrites(t *testing.T) {
	store, err := NewKVStore(filepath.Join(t.TempDir(), "db"), &client.Options{CreateIfMissing: true}, true)
	require.NoError(t, err)
	defer store.Close() //nolint:errcheck

	require.NoError(t, store.Put([]byte("k"), []byte("v")))
	v, err := store.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
	assert.Equal(t, goleveldb.Name, store.Database().Engine())
}
