package leveldb

import (
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/eigerco/levelbridge/pkg/log"
	"github.com/eigerco/levelbridge/pkg/native"
)

// BatchVisitor receives the operations of a WriteBatch in insertion order.
type BatchVisitor[K any] interface {
	OnPut(key K, value []byte)
	OnDeleted(key K)
}

// WriteBatch records puts and deletes that Database.Write applies atomically.
// A batch can be written any number of times and reused after Clear.
type WriteBatch[K any] struct {
	lib    *native.Lib
	codec  KeyCodec[K]
	handle uintptr
	closed atomic.Bool
	n      int
}

// NewWriteBatch returns an empty batch for the engine of db.
func (db *Database[K]) NewWriteBatch() *WriteBatch[K] {
	return NewWriteBatch(db.lib, db.codec)
}

// NewWriteBatch returns an empty batch for lib. A nil lib selects DefaultLib.
func NewWriteBatch[K any](lib *native.Lib, codec KeyCodec[K]) *WriteBatch[K] {
	if lib == nil {
		lib = DefaultLib()
	}
	return &WriteBatch[K]{lib: lib, codec: codec, handle: lib.WriteBatchCreate()}
}

// Put records a put of value under key.
func (b *WriteBatch[K]) Put(key K, value []byte) error {
	if b.closed.Load() {
		return ErrReleased
	}
	k := b.codec.Encode(key)
	b.lib.WriteBatchPut(b.handle, native.Ptr(k), uintptr(len(k)), native.Ptr(value), uintptr(len(value)))
	runtime.KeepAlive(k)
	runtime.KeepAlive(value)
	b.n++
	return nil
}

// Delete records a delete of key.
func (b *WriteBatch[K]) Delete(key K) error {
	if b.closed.Load() {
		return ErrReleased
	}
	k := b.codec.Encode(key)
	b.lib.WriteBatchDelete(b.handle, native.Ptr(k), uintptr(len(k)))
	runtime.KeepAlive(k)
	b.n++
	return nil
}

// Clear drops every recorded operation.
func (b *WriteBatch[K]) Clear() error {
	if b.closed.Load() {
		return ErrReleased
	}
	b.lib.WriteBatchClear(b.handle)
	b.n = 0
	return nil
}

// Len returns the number of recorded operations.
func (b *WriteBatch[K]) Len() int {
	return b.n
}

// Iterate replays the recorded operations through v. Keys that cannot be
// decoded are skipped and reported in the returned error.
func (b *WriteBatch[K]) Iterate(v BatchVisitor[K]) error {
	if b.closed.Load() {
		return ErrReleased
	}
	r := &replay[K]{codec: b.codec, visitor: v}
	state := native.Box(r)
	defer native.Release(state)

	b.lib.WriteBatchIterate(b.handle, state, batchPut, batchDeleted)
	return errors.Join(r.errs...)
}

// Close destroys the native batch. Closing twice is a no-op.
func (b *WriteBatch[K]) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}
	b.lib.WriteBatchDestroy(b.handle)
	return nil
}

// replayer is the typeless view of a replay used by the callbacks.
type replayer interface {
	put(key, value []byte)
	deleted(key []byte)
}

type replay[K any] struct {
	codec   KeyCodec[K]
	visitor BatchVisitor[K]
	errs    []error
}

func (r *replay[K]) put(key, value []byte) {
	defer r.catch()
	k, err := r.codec.Decode(key)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("batch put: %w", err))
		return
	}
	r.visitor.OnPut(k, value)
}

func (r *replay[K]) deleted(key []byte) {
	defer r.catch()
	k, err := r.codec.Decode(key)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("batch delete: %w", err))
		return
	}
	r.visitor.OnDeleted(k)
}

// catch stops a visitor panic at the callback boundary.
func (r *replay[K]) catch() {
	if p := recover(); p != nil {
		log.Client.Warn().Interface("panic", p).Msg("batch visitor panicked")
		r.errs = append(r.errs, fmt.Errorf("batch visitor panicked: %v", p))
	}
}

func batchPut(state uintptr, key *byte, klen uintptr, val *byte, vlen uintptr) {
	native.Unbox(state).(replayer).put(native.View(key, klen), native.Copy(val, vlen))
}

func batchDeleted(state uintptr, key *byte, klen uintptr) {
	native.Unbox(state).(replayer).deleted(native.View(key, klen))
}
