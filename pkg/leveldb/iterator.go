package leveldb

import (
	"fmt"
	"iter"
	"runtime"
	"sync/atomic"

	"github.com/eigerco/levelbridge/pkg/native"
)

type iterState uint8

const (
	notStarted iterState = iota
	positioned
	exhausted
)

// Iterator walks the database in key order, forward by default. Bounds set
// with From and To are inclusive. Once Next returns false the iterator stays
// exhausted; a new Iterator is needed to start over.
type Iterator[K any] struct {
	db     *Database[K]
	snap   *Snapshot[K]
	handle uintptr
	closed atomic.Bool

	state   iterState
	reverse bool
	from    []byte
	to      []byte

	key   K
	value []byte
	err   error
}

// NewIterator creates an iterator over the live database.
func (db *Database[K]) NewIterator(ro *ReadOptions) (*Iterator[K], error) {
	return db.newIterator(ro, nil)
}

func (db *Database[K]) newIterator(ro *ReadOptions, snap *Snapshot[K]) (*Iterator[K], error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.closed {
		return nil, ErrClosed
	}

	roh, err := db.readOptions(ro, snap)
	if err != nil {
		return nil, err
	}
	defer db.lib.ReadOptionsDestroy(roh)

	if snap == nil && ro != nil && ro.Snapshot != nil {
		snap, _ = ro.Snapshot.(*Snapshot[K])
	}
	it := &Iterator[K]{
		db:     db,
		snap:   snap,
		handle: db.lib.CreateIterator(db.handle, roh),
	}
	db.track(it)
	return it, nil
}

// From sets the inclusive lower bound. It must be called before the first
// call to Next.
func (it *Iterator[K]) From(key K) *Iterator[K] {
	it.from = it.db.codec.Encode(key)
	return it
}

// To sets the inclusive upper bound. It must be called before the first call
// to Next.
func (it *Iterator[K]) To(key K) *Iterator[K] {
	it.to = it.db.codec.Encode(key)
	return it
}

// Reverse flips the direction of the iterator. The native cursor keeps its
// position, so after a call to Next the iterator continues from the current
// key in the opposite direction. An iterator that has not started yet will
// start from the bound at the other end.
func (it *Iterator[K]) Reverse() *Iterator[K] {
	it.reverse = !it.reverse
	return it
}

// Reversed reports whether the iterator moves backwards.
func (it *Iterator[K]) Reversed() bool {
	return it.reverse
}

// Next advances the iterator and reports whether it is positioned on a key.
func (it *Iterator[K]) Next() bool {
	if it.state == exhausted {
		return false
	}

	db := it.db
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.closed || it.closed.Load() {
		it.finish(ErrClosed)
		return false
	}
	lib := db.lib

	switch it.state {
	case notStarted:
		it.state = positioned
		if it.reverse {
			it.seekLast(it.to)
		} else {
			it.seekFirst(it.from)
		}
	case positioned:
		if it.reverse {
			lib.IterPrev(it.handle)
		} else {
			lib.IterNext(it.handle)
		}
	}

	if lib.IterValid(it.handle) == 0 {
		it.finish(it.nativeErr())
		return false
	}
	k := it.rawKey()
	if !it.inRange(k) {
		it.finish(nil)
		return false
	}
	key, err := db.codec.Decode(k)
	if err != nil {
		it.finish(fmt.Errorf("iterator: %w", err))
		return false
	}
	it.key = key
	var vlen uintptr
	it.value = native.Copy(lib.IterValue(it.handle, &vlen), vlen)
	return true
}

// seekFirst positions on the first key not before from.
func (it *Iterator[K]) seekFirst(from []byte) {
	lib := it.db.lib
	if from == nil {
		lib.IterSeekToFirst(it.handle)
		return
	}
	lib.IterSeek(it.handle, native.Ptr(from), uintptr(len(from)))
	runtime.KeepAlive(from)
}

// seekLast positions on the last key not after to.
func (it *Iterator[K]) seekLast(to []byte) {
	lib := it.db.lib
	if to == nil {
		lib.IterSeekToLast(it.handle)
		return
	}
	lib.IterSeek(it.handle, native.Ptr(to), uintptr(len(to)))
	runtime.KeepAlive(to)
	if lib.IterValid(it.handle) == 0 {
		lib.IterSeekToLast(it.handle)
		return
	}
	if it.db.order(it.rawKey(), to) > 0 {
		lib.IterPrev(it.handle)
	}
}

// rawKey returns the current key in engine memory. It is only valid until the
// cursor moves.
func (it *Iterator[K]) rawKey() []byte {
	var klen uintptr
	return native.View(it.db.lib.IterKey(it.handle, &klen), klen)
}

func (it *Iterator[K]) inRange(k []byte) bool {
	if it.from != nil && it.db.order(k, it.from) < 0 {
		return false
	}
	if it.to != nil && it.db.order(k, it.to) > 0 {
		return false
	}
	return true
}

func (it *Iterator[K]) nativeErr() error {
	var errptr *byte
	it.db.lib.IterGetError(it.handle, &errptr)
	return translate(it.db.lib, errptr, KindIO, "iterate")
}

func (it *Iterator[K]) finish(err error) {
	it.state = exhausted
	it.value = nil
	if it.err == nil {
		it.err = err
	}
}

// Key returns the key at the current position.
func (it *Iterator[K]) Key() K {
	return it.key
}

// Value returns the value at the current position. The slice is owned by the
// caller.
func (it *Iterator[K]) Value() []byte {
	return it.value
}

// Err returns the error that ended the iteration, if any.
func (it *Iterator[K]) Err() error {
	return it.err
}

// Last positions on the final key in the iteration direction, honouring the
// bounds, and exhausts the iterator.
func (it *Iterator[K]) Last() (key K, value []byte, ok bool) {
	if it.state == exhausted {
		return key, nil, false
	}

	db := it.db
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.closed || it.closed.Load() {
		it.finish(ErrClosed)
		return key, nil, false
	}
	lib := db.lib

	if it.reverse {
		it.seekFirst(it.from)
	} else {
		it.seekLast(it.to)
	}
	defer it.finish(nil)

	if lib.IterValid(it.handle) == 0 {
		it.err = it.nativeErr()
		return key, nil, false
	}
	k := it.rawKey()
	if !it.inRange(k) {
		return key, nil, false
	}
	key, err := db.codec.Decode(k)
	if err != nil {
		it.err = fmt.Errorf("iterator: %w", err)
		return key, nil, false
	}
	var vlen uintptr
	return key, native.Copy(lib.IterValue(it.handle, &vlen), vlen), true
}

// All yields the remaining pairs.
func (it *Iterator[K]) All() iter.Seq2[K, []byte] {
	return func(yield func(K, []byte) bool) {
		for it.Next() {
			if !yield(it.key, it.value) {
				return
			}
		}
	}
}

// Keys yields the remaining keys.
func (it *Iterator[K]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for it.Next() {
			if !yield(it.key) {
				return
			}
		}
	}
}

// Values yields the remaining values.
func (it *Iterator[K]) Values() iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		for it.Next() {
			if !yield(it.value) {
				return
			}
		}
	}
}

// Close destroys the native cursor. Closing twice is a no-op.
func (it *Iterator[K]) Close() error {
	it.db.mu.RLock()
	defer it.db.mu.RUnlock()
	it.destroy()
	return nil
}

// destroy releases the native cursor once. The caller holds db.mu.
func (it *Iterator[K]) destroy() {
	if !it.closed.CompareAndSwap(false, true) {
		return
	}
	it.db.untrack(it)
	it.db.lib.IterDestroy(it.handle)
}
