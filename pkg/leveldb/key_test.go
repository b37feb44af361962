package leveldb_test

import (
	"bytes"
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/levelbridge/pkg/leveldb"
)

func roundTrip[K any](t *testing.T, codec leveldb.KeyCodec[K], keys ...K) {
	t.Helper()
	for _, k := range keys {
		got, err := codec.Decode(codec.Encode(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
}

func TestKeyCodecRoundTrip(t *testing.T) {
	t.Run("bytes", func(t *testing.T) {
		roundTrip(t, leveldb.BytesKey, []byte{}, []byte("key"), []byte{0, 0xff, 0})
	})
	t.Run("string", func(t *testing.T) {
		roundTrip(t, leveldb.StringKey, "", "key", "ключ")
	})
	t.Run("int32", func(t *testing.T) {
		roundTrip(t, leveldb.Int32Key, math.MinInt32, -1, 0, 1, math.MaxInt32)
	})
	t.Run("int64", func(t *testing.T) {
		roundTrip(t, leveldb.Int64Key, math.MinInt64, -1, 0, 1, math.MaxInt64)
	})
	t.Run("uint64", func(t *testing.T) {
		roundTrip(t, leveldb.Uint64Key, 0, 1, math.MaxUint64)
	})
}

func TestIntegerKeysSortBytewise(t *testing.T) {
	keys := []int64{5, -3, math.MaxInt64, 0, math.MinInt64, -1, 42}
	encoded := make([][]byte, len(keys))
	for i, k := range keys {
		encoded[i] = leveldb.Int64Key.Encode(k)
	}
	slices.SortFunc(encoded, bytes.Compare)

	decoded := make([]int64, len(encoded))
	for i, b := range encoded {
		k, err := leveldb.Int64Key.Decode(b)
		require.NoError(t, err)
		decoded[i] = k
	}
	assert.Equal(t, []int64{math.MinInt64, -3, -1, 0, 5, 42, math.MaxInt64}, decoded)

	assert.Negative(t, bytes.Compare(leveldb.Int32Key.Encode(-2), leveldb.Int32Key.Encode(1)))
}

func TestKeyDecodeErrors(t *testing.T) {
	_, err := leveldb.Int32Key.Decode([]byte{1, 2})
	assert.ErrorIs(t, err, leveldb.ErrKeyDecode)

	_, err = leveldb.Int64Key.Decode(nil)
	assert.ErrorIs(t, err, leveldb.ErrKeyDecode)

	_, err = leveldb.Uint64Key.Decode(make([]byte, 9))
	assert.ErrorIs(t, err, leveldb.ErrKeyDecode)
}

func TestBytesKeyDecodeCopies(t *testing.T) {
	src := []byte("abc")
	got, err := leveldb.BytesKey.Decode(src)
	require.NoError(t, err)
	src[0] = 'x'
	assert.Equal(t, []byte("abc"), got)
}
