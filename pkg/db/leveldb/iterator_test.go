package leveldb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/levelbridge/pkg/db"
)

func TestIterator(t *testing.T) {
	tests := []struct {
		name string
		fn   func(t *testing.T, store db.KVStore)
	}{
		{
			name: "full_range_iteration",
			fn:   testFullRangeIteration,
		},
		{
			name: "bounded_range_iteration",
			fn:   testBoundedRangeIteration,
		},
		{
			name: "iterator_validity",
			fn:   testIteratorValidity,
		},
		{
			name: "store_closed_mid_iteration",
			fn:   testStoreClosedMidIteration,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := newKVStore(t)
			defer store.Close() //nolint:errcheck

			for _, k := range []string{"a", "b", "c", "d"} {
				require.NoError(t, store.Put([]byte(k), []byte("value-"+k)))
			}
			tc.fn(t, store)
		})
	}
}

func drain(t *testing.T, iter db.Iterator) []string {
	t.Helper()
	var keys []string
	for iter.Next() {
		value, err := iter.Value()
		require.NoError(t, err)
		assert.Equal(t, "value-"+string(iter.Key()), string(value))
		keys = append(keys, string(iter.Key()))
	}
	require.NoError(t, iter.Err())
	return keys
}

func testFullRangeIteration(t *testing.T, store db.KVStore) {
	iter, err := store.NewIterator(nil, nil)
	require.NoError(t, err)
	defer iter.Close() //nolint:errcheck

	assert.Equal(t, []string{"a", "b", "c", "d"}, drain(t, iter))
}

func testBoundedRangeIteration(t *testing.T, store db.KVStore) {
	tests := []struct {
		name       string
		start, end []byte
		want       []string
	}{
		{name: "start_inclusive_end_exclusive", start: []byte("b"), end: []byte("d"), want: []string{"b", "c"}},
		{name: "open_end", start: []byte("c"), want: []string{"c", "d"}},
		{name: "open_start", end: []byte("b"), want: []string{"a"}},
		{name: "between_keys", start: []byte("bb"), end: []byte("cc"), want: []string{"c"}},
		{name: "empty", start: []byte("c"), end: []byte("c")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			iter, err := store.NewIterator(tc.start, tc.end)
			require.NoError(t, err)
			defer iter.Close() //nolint:errcheck

			assert.Equal(t, tc.want, drain(t, iter))
		})
	}
}

func testIteratorValidity(t *testing.T, store db.KVStore) {
	iter, err := store.NewIterator([]byte("d"), nil)
	require.NoError(t, err)

	// Not positioned before the first Next
	assert.False(t, iter.Valid())
	_, err = iter.Value()
	assert.ErrorIs(t, err, ErrIteratorInvalid)

	require.True(t, iter.Next())
	assert.True(t, iter.Valid())
	assert.Equal(t, []byte("d"), iter.Key())

	assert.False(t, iter.Next())
	assert.False(t, iter.Valid())
	assert.Nil(t, iter.Key())
	_, err = iter.Value()
	assert.ErrorIs(t, err, ErrIteratorInvalid)

	require.NoError(t, iter.Close())
	require.NoError(t, iter.Close())
}

func testStoreClosedMidIteration(t *testing.T, store db.KVStore) {
	iter, err := store.NewIterator(nil, nil)
	require.NoError(t, err)

	require.True(t, iter.Next())
	assert.NoError(t, iter.Err())

	require.NoError(t, store.Close())

	assert.False(t, iter.Next())
	assert.False(t, iter.Valid())
	assert.ErrorIs(t, iter.Err(), ErrClosed)
	require.NoError(t, iter.Close())
}
