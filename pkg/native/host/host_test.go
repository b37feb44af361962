package host_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/levelbridge/pkg/engine/goleveldb"
	"github.com/eigerco/levelbridge/pkg/native"
	"github.com/eigerco/levelbridge/pkg/native/host"
)

type fixture struct {
	h   *host.Host
	lib *native.Lib
	db  uintptr
	ro  uintptr
	wo  uintptr
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	h := goleveldb.New()
	lib := h.Lib()

	opts := lib.OptionsCreate()
	lib.OptionsSetCreateIfMissing(opts, 1)
	var errptr *byte
	db := lib.Open(opts, filepath.Join(t.TempDir(), "db"), &errptr)
	lib.OptionsDestroy(opts)
	require.Nil(t, errptr)
	require.NotZero(t, db)

	f := &fixture{h: h, lib: lib, db: db, ro: lib.ReadOptionsCreate(), wo: lib.WriteOptionsCreate()}
	t.Cleanup(func() {
		lib.ReadOptionsDestroy(f.ro)
		lib.WriteOptionsDestroy(f.wo)
		lib.Close(f.db)
		assert.Zero(t, h.Handles())
		assert.Zero(t, h.Outstanding())
	})
	return f
}

func (f *fixture) put(t *testing.T, key, value string) {
	t.Helper()
	k, v := []byte(key), []byte(value)
	var errptr *byte
	f.lib.Put(f.db, f.wo, native.Ptr(k), uintptr(len(k)), native.Ptr(v), uintptr(len(v)), &errptr)
	require.Nil(t, errptr)
}

func TestAllocator(t *testing.T) {
	f := newFixture(t)
	f.put(t, "k", "value")

	k := []byte("k")
	var (
		n      uintptr
		errptr *byte
	)
	p := f.lib.Get(f.db, f.ro, native.Ptr(k), 1, &n, &errptr)
	require.NotNil(t, p)
	assert.Equal(t, "value", string(native.View(p, n)))
	assert.Equal(t, 1, f.h.Outstanding())

	f.lib.Free(p)
	assert.Zero(t, f.h.Outstanding())

	assert.Panics(t, func() { f.lib.Free(p) }, "double free")
	assert.Panics(t, func() { f.lib.Free(new(byte)) }, "unknown pointer")
	assert.NotPanics(t, func() { f.lib.Free(nil) })
}

func TestGetMissing(t *testing.T) {
	f := newFixture(t)

	k := []byte("absent")
	n := uintptr(42)
	var errptr *byte
	p := f.lib.Get(f.db, f.ro, native.Ptr(k), uintptr(len(k)), &n, &errptr)
	assert.Nil(t, p)
	assert.Nil(t, errptr)
	assert.Zero(t, n)
}

func TestErrorSlotReplaced(t *testing.T) {
	h := goleveldb.New()
	lib := h.Lib()
	opts := lib.OptionsCreate()
	defer lib.OptionsDestroy(opts)

	missing := filepath.Join(t.TempDir(), "missing")
	var errptr *byte
	lib.Open(opts, missing, &errptr)
	require.NotNil(t, errptr)
	lib.Open(opts, missing, &errptr)
	require.NotNil(t, errptr)

	// The first message was freed when the second one was stored.
	assert.Equal(t, 1, h.Outstanding())
	assert.NotEmpty(t, native.GoString(errptr))
	lib.Free(errptr)
	assert.Zero(t, h.Outstanding())
}

func TestHandles(t *testing.T) {
	h := goleveldb.New()
	lib := h.Lib()

	opts := lib.OptionsCreate()
	cache := lib.CacheCreateLRU(1 << 20)
	policy := lib.FilterPolicyCreateBloom(10)
	assert.Equal(t, 3, h.Handles())

	lib.OptionsSetCache(opts, cache)
	lib.OptionsSetFilterPolicy(opts, policy)
	lib.CacheDestroy(cache)
	lib.FilterPolicyDestroy(policy)
	lib.OptionsDestroy(opts)
	assert.Zero(t, h.Handles())

	assert.Panics(t, func() { lib.OptionsDestroy(opts) }, "destroyed twice")
	assert.Panics(t, func() { lib.OptionsSetCreateIfMissing(opts, 1) }, "stale handle")
	assert.Panics(t, func() { lib.ReadOptionsSetFillCache(0, 1) }, "zero handle")
}

func TestComparatorDestructor(t *testing.T) {
	h := goleveldb.New()
	lib := h.Lib()

	name := native.CString("test.bytewise")
	destroyed := 0
	cmp := lib.ComparatorCreate(7,
		func(state uintptr) {
			assert.Equal(t, uintptr(7), state)
			destroyed++
		},
		func(_ uintptr, a *byte, alen uintptr, b *byte, blen uintptr) int32 {
			return int32(bytes.Compare(native.View(a, alen), native.View(b, blen)))
		},
		func(uintptr) *byte { return &name[0] },
	)

	opts := lib.OptionsCreate()
	lib.OptionsSetCreateIfMissing(opts, 1)
	lib.OptionsSetComparator(opts, cmp)
	var errptr *byte
	db := lib.Open(opts, filepath.Join(t.TempDir(), "db"), &errptr)
	require.Nil(t, errptr)
	lib.OptionsDestroy(opts)
	lib.Close(db)
	assert.Zero(t, destroyed)

	lib.ComparatorDestroy(cmp)
	assert.Equal(t, 1, destroyed)
	assert.Panics(t, func() { lib.ComparatorDestroy(cmp) })
	assert.Equal(t, 1, destroyed)
}

func TestIteratorBuffers(t *testing.T) {
	f := newFixture(t)
	f.put(t, "a", "1")
	f.put(t, "b", "2")

	it := f.lib.CreateIterator(f.db, f.ro)
	defer f.lib.IterDestroy(it)

	f.lib.IterSeekToFirst(it)
	require.Equal(t, uint8(1), f.lib.IterValid(it))
	var n uintptr
	key := native.View(f.lib.IterKey(it, &n), n)
	assert.Equal(t, "a", string(key))

	// Writes after creation are not visible to the iterator.
	f.put(t, "c", "3")

	f.lib.IterNext(it)
	key = native.View(f.lib.IterKey(it, &n), n)
	assert.Equal(t, "b", string(key))
	value := native.View(f.lib.IterValue(it, &n), n)
	assert.Equal(t, "2", string(value))

	f.lib.IterNext(it)
	assert.Zero(t, f.lib.IterValid(it))

	var errptr *byte
	f.lib.IterGetError(it, &errptr)
	assert.Nil(t, errptr)

	seek := []byte("b")
	f.lib.IterSeek(it, native.Ptr(seek), 1)
	require.Equal(t, uint8(1), f.lib.IterValid(it))
	f.lib.IterSeekToLast(it)
	key = native.View(f.lib.IterKey(it, &n), n)
	assert.Equal(t, "b", string(key))
	f.lib.IterPrev(it)
	key = native.View(f.lib.IterKey(it, &n), n)
	assert.Equal(t, "a", string(key))
}

func TestWriteBatchReplay(t *testing.T) {
	f := newFixture(t)
	b := f.lib.WriteBatchCreate()
	defer f.lib.WriteBatchDestroy(b)

	k1, v1, k2 := []byte("k1"), []byte("v1"), []byte("k2")
	f.lib.WriteBatchPut(b, native.Ptr(k1), 2, native.Ptr(v1), 2)
	f.lib.WriteBatchDelete(b, native.Ptr(k2), 2)

	var ops []string
	f.lib.WriteBatchIterate(b, 9,
		func(state uintptr, key *byte, klen uintptr, val *byte, vlen uintptr) {
			assert.Equal(t, uintptr(9), state)
			ops = append(ops, "put "+string(native.View(key, klen))+"="+string(native.View(val, vlen)))
		},
		func(state uintptr, key *byte, klen uintptr) {
			ops = append(ops, "delete "+string(native.View(key, klen)))
		},
	)
	assert.Equal(t, []string{"put k1=v1", "delete k2"}, ops)

	var errptr *byte
	f.lib.Write(f.db, f.wo, b, &errptr)
	require.Nil(t, errptr)

	f.lib.WriteBatchClear(b)
	ops = ops[:0]
	f.lib.WriteBatchIterate(b, 0,
		func(uintptr, *byte, uintptr, *byte, uintptr) { ops = append(ops, "put") },
		func(uintptr, *byte, uintptr) { ops = append(ops, "delete") },
	)
	assert.Empty(t, ops)
}

func TestSnapshotReadOptions(t *testing.T) {
	f := newFixture(t)
	f.put(t, "k", "old")

	snap := f.lib.CreateSnapshot(f.db)
	require.NotZero(t, snap)
	f.put(t, "k", "new")

	ro := f.lib.ReadOptionsCreate()
	defer f.lib.ReadOptionsDestroy(ro)
	f.lib.ReadOptionsSetSnapshot(ro, snap)

	k := []byte("k")
	var (
		n      uintptr
		errptr *byte
	)
	p := f.lib.Get(f.db, ro, native.Ptr(k), 1, &n, &errptr)
	require.NotNil(t, p)
	assert.Equal(t, "old", string(native.View(p, n)))
	f.lib.Free(p)

	assert.Panics(t, func() { f.lib.ReleaseSnapshot(f.db+16, snap) }, "wrong database")
	f.lib.ReleaseSnapshot(f.db, snap)
	f.lib.ReadOptionsSetSnapshot(ro, 0)
}

func TestApproximateSizes(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 100; i++ {
		f.put(t, string(rune('a'+i%26))+string(rune('a'+i/26)), "value")
	}

	starts := [][]byte{[]byte("a"), []byte("m")}
	limits := [][]byte{[]byte("m"), []byte("z")}
	startPtrs := []*byte{native.Ptr(starts[0]), native.Ptr(starts[1])}
	limitPtrs := []*byte{native.Ptr(limits[0]), native.Ptr(limits[1])}
	lens := []uintptr{1, 1}
	sizes := make([]uint64, 2)
	assert.NotPanics(t, func() {
		f.lib.ApproximateSizes(f.db, 2, &startPtrs[0], &lens[0], &limitPtrs[0], &lens[0], &sizes[0])
	})

	f.lib.CompactRange(f.db, nil, 0, nil, 0)
	p := f.lib.PropertyValue(f.db, "leveldb.stats")
	require.NotNil(t, p)
	assert.NotEmpty(t, native.GoString(p))
	f.lib.Free(p)
	assert.Nil(t, f.lib.PropertyValue(f.db, "leveldb.unknown"))
}

func TestPathLock(t *testing.T) {
	h := goleveldb.New()
	lib := h.Lib()
	path := filepath.Join(t.TempDir(), "db")

	opts := lib.OptionsCreate()
	defer lib.OptionsDestroy(opts)
	lib.OptionsSetCreateIfMissing(opts, 1)

	var errptr *byte
	db := lib.Open(opts, path, &errptr)
	require.Nil(t, errptr)

	second := lib.Open(opts, path+string(os.PathSeparator), &errptr)
	assert.Zero(t, second)
	require.NotNil(t, errptr)
	assert.Contains(t, native.GoString(errptr), "already held by process")
	lib.Free(errptr)
	errptr = nil

	lib.DestroyDB(opts, path, &errptr)
	require.NotNil(t, errptr)
	lib.Free(errptr)
	errptr = nil

	lib.Close(db)
	lib.DestroyDB(opts, path, &errptr)
	assert.Nil(t, errptr)
	_, err := os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestVersion(t *testing.T) {
	lib := goleveldb.New().Lib()
	assert.Equal(t, int32(1), lib.MajorVersion())
	assert.Equal(t, int32(23), lib.MinorVersion())
	assert.Equal(t, goleveldb.Name, lib.Name)
}

func TestRemoveFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "CURRENT"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0o644))

	match := func(name string) bool { return name == "CURRENT" }
	require.NoError(t, host.RemoveFiles(dir, match))

	// Unknown files keep the directory.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "notes.txt", entries[0].Name())

	assert.NoError(t, host.RemoveFiles(filepath.Join(t.TempDir(), "absent"), match))
}
