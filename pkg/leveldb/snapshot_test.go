package leveldb_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/levelbridge/pkg/leveldb"
	"github.com/eigerco/levelbridge/pkg/native"
)

func TestSnapshotIsolation(t *testing.T) {
	eachEngine(t, func(t *testing.T, lib *native.Lib) {
		db := openInt32(t, lib)
		defer db.Close() //nolint:errcheck
		putAll(t, db, 1)

		snap, err := db.Snapshot()
		require.NoError(t, err)
		defer snap.Release() //nolint:errcheck

		require.NoError(t, db.Put(nil, 2, []byte{2}))
		require.NoError(t, db.Delete(nil, 1))

		_, ok, err := snap.Get(nil, 2)
		require.NoError(t, err)
		assert.False(t, ok, "write after snapshot is visible")

		value, ok, err := snap.Get(nil, 1)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte{1}, value)

		value, ok, err = db.Get(nil, 2)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte{2}, value)

		// The same view through read options.
		has, err := db.Has(&leveldb.ReadOptions{Snapshot: snap}, 2)
		require.NoError(t, err)
		assert.False(t, has)

		nb, ok, err := snap.GetBytes(nil, 1)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, []byte{1}, nb.Bytes())
		require.NoError(t, nb.Release())
	})
}

func TestSnapshotIterator(t *testing.T) {
	eachEngine(t, func(t *testing.T, lib *native.Lib) {
		db := openInt32(t, lib)
		defer db.Close() //nolint:errcheck
		putAll(t, db, 1, 2)

		snap, err := db.Snapshot()
		require.NoError(t, err)
		putAll(t, db, 3)

		it, err := snap.NewIterator(nil)
		require.NoError(t, err)
		defer it.Close() //nolint:errcheck
		assert.Equal(t, []int32{1, 2}, collect(t, it))

		viaOptions, err := db.NewIterator(&leveldb.ReadOptions{Snapshot: snap})
		require.NoError(t, err)
		require.True(t, viaOptions.Next())

		// Releasing the snapshot closes the iterators pinned to it.
		require.NoError(t, snap.Release())
		assert.False(t, viaOptions.Next())
		assert.ErrorIs(t, viaOptions.Err(), leveldb.ErrClosed)
	})
}

func TestSnapshotRelease(t *testing.T) {
	eachEngine(t, func(t *testing.T, lib *native.Lib) {
		db := openInt32(t, lib)
		defer db.Close() //nolint:errcheck

		snap, err := db.Snapshot()
		require.NoError(t, err)
		require.NoError(t, snap.Release())
		assert.ErrorIs(t, snap.Release(), leveldb.ErrReleased)

		_, _, err = snap.Get(nil, 1)
		assert.ErrorIs(t, err, leveldb.ErrReleased)
		_, err = snap.NewIterator(nil)
		assert.ErrorIs(t, err, leveldb.ErrReleased)
	})
}

func TestSnapshotReleasedByClose(t *testing.T) {
	eachEngine(t, func(t *testing.T, lib *native.Lib) {
		db := openInt32(t, lib)
		snap, err := db.Snapshot()
		require.NoError(t, err)

		require.NoError(t, db.Close())
		assert.ErrorIs(t, snap.Release(), leveldb.ErrReleased)
		_, _, err = snap.Get(nil, 1)
		assert.ErrorIs(t, err, leveldb.ErrClosed)
	})
}

func TestSnapshotForeignDatabase(t *testing.T) {
	eachEngine(t, func(t *testing.T, lib *native.Lib) {
		a := openInt32(t, lib)
		defer a.Close() //nolint:errcheck
		b := openInt32(t, lib)
		defer b.Close() //nolint:errcheck

		snap, err := a.Snapshot()
		require.NoError(t, err)
		defer snap.Release() //nolint:errcheck

		_, _, err = b.Get(&leveldb.ReadOptions{Snapshot: snap}, 1)
		assert.ErrorIs(t, err, leveldb.ErrForeignSnapshot)
	})
}
