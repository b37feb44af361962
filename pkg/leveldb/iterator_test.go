package leveldb_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/levelbridge/pkg/leveldb"
	"github.com/eigerco/levelbridge/pkg/native"
)

func TestIteratorOrder(t *testing.T) {
	eachEngine(t, func(t *testing.T, lib *native.Lib) {
		db := openInt32(t, lib)
		defer db.Close() //nolint:errcheck
		putAll(t, db, 2, 1)

		it, err := db.NewIterator(nil)
		require.NoError(t, err)
		defer it.Close() //nolint:errcheck

		require.True(t, it.Next())
		assert.Equal(t, int32(1), it.Key())
		assert.Equal(t, []byte{1}, it.Value())

		require.True(t, it.Next())
		assert.Equal(t, int32(2), it.Key())
		assert.Equal(t, []byte{2}, it.Value())

		assert.False(t, it.Next())
		// Exhaustion is final.
		assert.False(t, it.Next())
		assert.False(t, it.Next())
		assert.NoError(t, it.Err())
	})
}

func TestIteratorBounds(t *testing.T) {
	tests := []struct {
		name    string
		from    *int32
		to      *int32
		reverse bool
		want    []int32
	}{
		{name: "all", want: []int32{-5, 0, 10, 20, 30}},
		{name: "all_reverse", reverse: true, want: []int32{30, 20, 10, 0, -5}},
		{name: "from", from: ptr(10), want: []int32{10, 20, 30}},
		{name: "from_between", from: ptr(15), want: []int32{20, 30}},
		{name: "to", to: ptr(10), want: []int32{-5, 0, 10}},
		{name: "to_between", to: ptr(15), want: []int32{-5, 0, 10}},
		{name: "from_to", from: ptr(0), to: ptr(20), want: []int32{0, 10, 20}},
		{name: "from_to_reverse", from: ptr(0), to: ptr(20), reverse: true, want: []int32{20, 10, 0}},
		{name: "to_between_reverse", to: ptr(25), reverse: true, want: []int32{20, 10, 0, -5}},
		{name: "to_past_end_reverse", to: ptr(99), reverse: true, want: []int32{30, 20, 10, 0, -5}},
		{name: "from_past_end", from: ptr(31), want: nil},
		{name: "to_before_start_reverse", to: ptr(-6), reverse: true, want: nil},
		{name: "empty_range", from: ptr(11), to: ptr(19), want: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			eachEngine(t, func(t *testing.T, lib *native.Lib) {
				db := openInt32(t, lib)
				defer db.Close() //nolint:errcheck
				putAll(t, db, 30, -5, 10, 0, 20)

				it, err := db.NewIterator(nil)
				require.NoError(t, err)
				defer it.Close() //nolint:errcheck
				if tc.from != nil {
					it.From(*tc.from)
				}
				if tc.to != nil {
					it.To(*tc.to)
				}
				if tc.reverse {
					it.Reverse()
				}
				assert.Equal(t, tc.want, collect(t, it))
			})
		})
	}
}

func ptr(v int32) *int32 {
	return &v
}

func TestIteratorReverseInPlace(t *testing.T) {
	eachEngine(t, func(t *testing.T, lib *native.Lib) {
		db := openInt32(t, lib)
		defer db.Close() //nolint:errcheck
		putAll(t, db, 1, 2, 3, 4)

		it, err := db.NewIterator(nil)
		require.NoError(t, err)
		defer it.Close() //nolint:errcheck

		require.True(t, it.Next())
		require.True(t, it.Next())
		require.True(t, it.Next())
		assert.Equal(t, int32(3), it.Key())

		assert.True(t, it.Reverse().Reversed())
		assert.Equal(t, []int32{2, 1}, collect(t, it))
	})
}

func TestIteratorSequences(t *testing.T) {
	eachEngine(t, func(t *testing.T, lib *native.Lib) {
		db := openInt32(t, lib)
		defer db.Close() //nolint:errcheck
		putAll(t, db, 1, 2, 3)

		t.Run("all", func(t *testing.T) {
			it, err := db.NewIterator(nil)
			require.NoError(t, err)
			defer it.Close() //nolint:errcheck

			got := map[int32][]byte{}
			for k, v := range it.All() {
				got[k] = v
			}
			assert.Equal(t, map[int32][]byte{1: {1}, 2: {2}, 3: {3}}, got)
		})

		t.Run("values", func(t *testing.T) {
			it, err := db.NewIterator(nil)
			require.NoError(t, err)
			defer it.Close() //nolint:errcheck

			var got [][]byte
			for v := range it.Values() {
				got = append(got, v)
			}
			assert.Equal(t, [][]byte{{1}, {2}, {3}}, got)
		})

		t.Run("break", func(t *testing.T) {
			it, err := db.NewIterator(nil)
			require.NoError(t, err)
			defer it.Close() //nolint:errcheck

			for k := range it.Keys() {
				assert.Equal(t, int32(1), k)
				break
			}
			// The sequence resumes where it stopped.
			assert.Equal(t, []int32{2, 3}, collect(t, it))
		})
	})
}

func TestIteratorLast(t *testing.T) {
	eachEngine(t, func(t *testing.T, lib *native.Lib) {
		db := openInt32(t, lib)
		defer db.Close() //nolint:errcheck

		empty, err := db.NewIterator(nil)
		require.NoError(t, err)
		_, _, ok := empty.Last()
		assert.False(t, ok)
		require.NoError(t, empty.Close())

		putAll(t, db, 1, 2, 3, 4)

		tests := []struct {
			name    string
			setup   func(it *leveldb.Iterator[int32])
			wantKey int32
		}{
			{name: "forward", setup: func(*leveldb.Iterator[int32]) {}, wantKey: 4},
			{name: "forward_to", setup: func(it *leveldb.Iterator[int32]) { it.To(3) }, wantKey: 3},
			{name: "reverse", setup: func(it *leveldb.Iterator[int32]) { it.Reverse() }, wantKey: 1},
			{name: "reverse_from", setup: func(it *leveldb.Iterator[int32]) { it.From(2).Reverse() }, wantKey: 2},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				it, err := db.NewIterator(nil)
				require.NoError(t, err)
				defer it.Close() //nolint:errcheck
				tc.setup(it)

				k, v, ok := it.Last()
				require.True(t, ok)
				assert.Equal(t, tc.wantKey, k)
				assert.Equal(t, []byte{byte(tc.wantKey)}, v)
				assert.False(t, it.Next())
			})
		}
	})
}

func TestIteratorClosedWithDatabase(t *testing.T) {
	eachEngine(t, func(t *testing.T, lib *native.Lib) {
		db := openInt32(t, lib)
		putAll(t, db, 1, 2)

		it, err := db.NewIterator(nil)
		require.NoError(t, err)
		require.True(t, it.Next())

		require.NoError(t, db.Close())
		assert.False(t, it.Next())
		assert.ErrorIs(t, it.Err(), leveldb.ErrClosed)
		assert.NoError(t, it.Close())
	})
}

func TestIteratorDoubleClose(t *testing.T) {
	eachEngine(t, func(t *testing.T, lib *native.Lib) {
		db := openInt32(t, lib)
		defer db.Close() //nolint:errcheck

		it, err := db.NewIterator(nil)
		require.NoError(t, err)
		assert.NoError(t, it.Close())
		assert.NoError(t, it.Close())
		assert.False(t, it.Next())
		assert.ErrorIs(t, it.Err(), leveldb.ErrClosed)
	})
}
