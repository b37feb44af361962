package leveldb

import (
	"sync/atomic"

	"github.com/eigerco/levelbridge/pkg/native"
)

// NativeBytes is a value held in engine memory. It must be released exactly
// once; Bytes must not be used afterwards.
type NativeBytes struct {
	lib      *native.Lib
	ptr      *byte
	n        uintptr
	released atomic.Bool
}

// Bytes returns the value without copying. It returns nil once released.
func (b *NativeBytes) Bytes() []byte {
	if b.released.Load() {
		return nil
	}
	if b.n == 0 {
		return []byte{}
	}
	return native.View(b.ptr, b.n)
}

// Len returns the length of the value.
func (b *NativeBytes) Len() int {
	return int(b.n)
}

// Release hands the buffer back to the engine.
func (b *NativeBytes) Release() error {
	if !b.released.CompareAndSwap(false, true) {
		return ErrReleased
	}
	b.lib.Free(b.ptr)
	return nil
}
