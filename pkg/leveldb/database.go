package leveldb

import (
	"bytes"
	"fmt"
	"runtime"
	"sync"

	"github.com/eigerco/levelbridge/pkg/log"
	"github.com/eigerco/levelbridge/pkg/native"
)

// Database is an open engine database keyed by K.
type Database[K any] struct {
	lib   *native.Lib
	codec KeyCodec[K]
	path  string
	order func(a, b []byte) int

	// mu is held for reading around every native call and for writing by
	// Close.
	mu         sync.RWMutex
	closed     bool
	handle     uintptr
	comparator uintptr
	shared     *engineOptions

	cmu       sync.Mutex
	iterators map[*Iterator[K]]struct{}
	snapshots map[*Snapshot[K]]struct{}
}

// Open opens the database at path with the bytewise order of encoded keys.
func Open[K any](path string, codec KeyCodec[K], opts *Options) (*Database[K], error) {
	return open(path, codec, opts, nil)
}

// OpenWithComparator opens the database at path ordered by c. The comparator
// is registered with the engine before opening and destroyed right after the
// database is closed.
func OpenWithComparator[K any](path string, codec KeyCodec[K], opts *Options, c Comparator[K]) (*Database[K], error) {
	return open(path, codec, opts, c)
}

func open[K any](path string, codec KeyCodec[K], opts *Options, c Comparator[K]) (*Database[K], error) {
	lib := opts.engine()
	db := &Database[K]{
		lib:       lib,
		codec:     codec,
		path:      path,
		order:     bytes.Compare,
		iterators: make(map[*Iterator[K]]struct{}),
		snapshots: make(map[*Snapshot[K]]struct{}),
	}
	if c != nil {
		b := newBridge(c, codec)
		db.order = b.compareBytes
		db.comparator = registerComparator(lib, b)
	}

	eo := buildOptions(lib, opts, db.comparator)
	defer eo.release()

	var errptr *byte
	handle := lib.Open(eo.handle, path, &errptr)
	if err := translate(lib, errptr, KindOpen, "open "+path); err != nil {
		if handle != 0 {
			lib.Close(handle)
		}
		db.destroyOwned(eo)
		return nil, err
	}
	if handle == 0 {
		db.destroyOwned(eo)
		return nil, &Error{Kind: KindOpen, Op: "open " + path, Message: "engine returned no database"}
	}
	db.handle = handle
	db.shared = eo

	log.Client.Debug().Str("engine", lib.Name).Str("path", path).Bool("comparator", c != nil).Msg("database opened")
	return db, nil
}

// destroyOwned releases the comparator, cache and filter policy.
func (db *Database[K]) destroyOwned(eo *engineOptions) {
	if db.comparator != 0 {
		db.lib.ComparatorDestroy(db.comparator)
		db.comparator = 0
	}
	if eo != nil {
		eo.destroyShared()
	}
}

// Path returns the directory the database was opened at.
func (db *Database[K]) Path() string {
	return db.path
}

// Engine returns the name of the engine serving the database.
func (db *Database[K]) Engine() string {
	return db.lib.Name
}

// Get returns the value stored under key. A missing key is reported with
// ok set to false and a nil error.
func (db *Database[K]) Get(ro *ReadOptions, key K) (value []byte, ok bool, err error) {
	return db.get(ro, key, nil)
}

// GetBytes is Get without copying: the value stays in engine memory until
// Release is called on the result.
func (db *Database[K]) GetBytes(ro *ReadOptions, key K) (*NativeBytes, bool, error) {
	return db.getNative(ro, key, nil)
}

// Has reports whether key is present.
func (db *Database[K]) Has(ro *ReadOptions, key K) (bool, error) {
	_, ok, err := db.get(ro, key, nil)
	return ok, err
}

func (db *Database[K]) get(ro *ReadOptions, key K, snap *Snapshot[K]) ([]byte, bool, error) {
	nb, ok, err := db.getNative(ro, key, snap)
	if err != nil || !ok {
		return nil, ok, err
	}
	value := native.Copy(nb.ptr, nb.n)
	if err := nb.Release(); err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (db *Database[K]) getNative(ro *ReadOptions, key K, snap *Snapshot[K]) (*NativeBytes, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.closed {
		return nil, false, ErrClosed
	}

	roh, err := db.readOptions(ro, snap)
	if err != nil {
		return nil, false, err
	}
	defer db.lib.ReadOptionsDestroy(roh)

	k := db.codec.Encode(key)
	var (
		vallen uintptr
		errptr *byte
	)
	p := db.lib.Get(db.handle, roh, native.Ptr(k), uintptr(len(k)), &vallen, &errptr)
	runtime.KeepAlive(k)
	if err := translate(db.lib, errptr, KindIO, "get"); err != nil {
		db.lib.Free(p)
		return nil, false, err
	}
	if p == nil {
		return nil, false, nil
	}
	return &NativeBytes{lib: db.lib, ptr: p, n: vallen}, true, nil
}

// readOptions builds a native read options object. snap takes precedence over
// the snapshot carried by ro.
func (db *Database[K]) readOptions(ro *ReadOptions, snap *Snapshot[K]) (uintptr, error) {
	var pinned uintptr
	switch {
	case snap != nil:
		h, err := snap.pin(db)
		if err != nil {
			return 0, err
		}
		pinned = h
	case ro != nil && ro.Snapshot != nil:
		h, err := ro.Snapshot.pin(db)
		if err != nil {
			return 0, err
		}
		pinned = h
	}

	h := db.lib.ReadOptionsCreate()
	if ro != nil {
		db.lib.ReadOptionsSetVerifyChecksums(h, native.Bool(ro.VerifyChecksums))
		db.lib.ReadOptionsSetFillCache(h, native.Bool(!ro.DontFillCache))
	}
	if pinned != 0 {
		db.lib.ReadOptionsSetSnapshot(h, pinned)
	}
	return h, nil
}

// Put stores value under key, replacing any previous value.
func (db *Database[K]) Put(wo *WriteOptions, key K, value []byte) error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.closed {
		return ErrClosed
	}

	woh := buildWriteOptions(db.lib, wo)
	defer db.lib.WriteOptionsDestroy(woh)

	k := db.codec.Encode(key)
	var errptr *byte
	db.lib.Put(db.handle, woh, native.Ptr(k), uintptr(len(k)), native.Ptr(value), uintptr(len(value)), &errptr)
	runtime.KeepAlive(k)
	runtime.KeepAlive(value)
	return translate(db.lib, errptr, KindIO, "put")
}

// Delete removes key. Deleting a missing key is not an error.
func (db *Database[K]) Delete(wo *WriteOptions, key K) error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.closed {
		return ErrClosed
	}

	woh := buildWriteOptions(db.lib, wo)
	defer db.lib.WriteOptionsDestroy(woh)

	k := db.codec.Encode(key)
	var errptr *byte
	db.lib.Delete(db.handle, woh, native.Ptr(k), uintptr(len(k)), &errptr)
	runtime.KeepAlive(k)
	return translate(db.lib, errptr, KindIO, "delete")
}

// Write applies every operation of b atomically. On failure nothing is
// applied and b keeps its operations.
func (db *Database[K]) Write(wo *WriteOptions, b *WriteBatch[K]) error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.closed {
		return ErrClosed
	}
	if b.lib != db.lib {
		return ErrForeignBatch
	}
	if b.closed.Load() {
		return ErrReleased
	}

	woh := buildWriteOptions(db.lib, wo)
	defer db.lib.WriteOptionsDestroy(woh)

	var errptr *byte
	db.lib.Write(db.handle, woh, b.handle, &errptr)
	return translate(db.lib, errptr, KindCommit, "write")
}

// CompactRange compacts the key range [start, limit].
func (db *Database[K]) CompactRange(start, limit K) error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.closed {
		return ErrClosed
	}

	s, l := db.codec.Encode(start), db.codec.Encode(limit)
	db.lib.CompactRange(db.handle, native.Ptr(s), uintptr(len(s)), native.Ptr(l), uintptr(len(l)))
	runtime.KeepAlive(s)
	runtime.KeepAlive(l)
	return nil
}

// CompactAll compacts the whole key space.
func (db *Database[K]) CompactAll() error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.closed {
		return ErrClosed
	}
	db.lib.CompactRange(db.handle, nil, 0, nil, 0)
	return nil
}

// ApproximateSize estimates the file system space used by keys in
// [start, limit).
func (db *Database[K]) ApproximateSize(start, limit K) (uint64, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.closed {
		return 0, ErrClosed
	}

	s, l := db.codec.Encode(start), db.codec.Encode(limit)
	starts := []*byte{native.Ptr(s)}
	startLens := []uintptr{uintptr(len(s))}
	limits := []*byte{native.Ptr(l)}
	limitLens := []uintptr{uintptr(len(l))}
	sizes := make([]uint64, 1)
	db.lib.ApproximateSizes(db.handle, 1, &starts[0], &startLens[0], &limits[0], &limitLens[0], &sizes[0])
	runtime.KeepAlive(s)
	runtime.KeepAlive(l)
	return sizes[0], nil
}

// Property returns an engine property such as "leveldb.stats". Unknown
// properties report false.
func (db *Database[K]) Property(name string) (string, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.closed {
		return "", false, ErrClosed
	}

	p := db.lib.PropertyValue(db.handle, name)
	if p == nil {
		return "", false, nil
	}
	defer db.lib.Free(p)
	return native.GoString(p), true, nil
}

// Close closes live iterators and snapshots, then the database, then the
// comparator, cache and filter policy. Closing twice is a no-op.
func (db *Database[K]) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return nil
	}
	db.closed = true

	db.cmu.Lock()
	iterators := make([]*Iterator[K], 0, len(db.iterators))
	for it := range db.iterators {
		iterators = append(iterators, it)
	}
	snapshots := make([]*Snapshot[K], 0, len(db.snapshots))
	for s := range db.snapshots {
		snapshots = append(snapshots, s)
	}
	db.cmu.Unlock()

	for _, it := range iterators {
		it.destroy()
	}
	for _, s := range snapshots {
		s.destroy()
	}

	db.lib.Close(db.handle)
	db.handle = 0
	db.destroyOwned(db.shared)

	log.Client.Debug().Str("engine", db.lib.Name).Str("path", db.path).
		Int("iterators", len(iterators)).Int("snapshots", len(snapshots)).
		Msg("database closed")
	return nil
}

func (db *Database[K]) track(it *Iterator[K]) {
	db.cmu.Lock()
	db.iterators[it] = struct{}{}
	db.cmu.Unlock()
}

func (db *Database[K]) untrack(it *Iterator[K]) {
	db.cmu.Lock()
	delete(db.iterators, it)
	db.cmu.Unlock()
}

// String implements fmt.Stringer.
func (db *Database[K]) String() string {
	return fmt.Sprintf("leveldb.Database(%s, %s)", db.lib.Name, db.path)
}
