package native

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Boxes carry Go values across the surface as opaque state pointers. The
// engine only ever sees the handle; the value stays reachable in the registry
// until the owner of the handle unboxes it for the last time with Release.
var (
	boxes    sync.Map
	boxSeq   atomic.Uintptr
	boxCount atomic.Int64
)

// Box registers v and returns a non-zero handle for it.
func Box(v any) uintptr {
	h := boxSeq.Add(1)
	boxes.Store(h, v)
	boxCount.Add(1)
	return h
}

// Unbox returns the value registered under h. It panics on an unknown handle,
// which is always a lifetime bug in the caller.
func Unbox(h uintptr) any {
	v, ok := boxes.Load(h)
	if !ok {
		panic(fmt.Sprintf("native: unknown box handle %#x", h))
	}
	return v
}

// Release removes h from the registry and returns its value. A second Release
// of the same handle panics.
func Release(h uintptr) any {
	v, ok := boxes.LoadAndDelete(h)
	if !ok {
		panic(fmt.Sprintf("native: box handle %#x released twice", h))
	}
	boxCount.Add(-1)
	return v
}

// Boxed reports how many values are currently registered.
func Boxed() int {
	return int(boxCount.Load())
}
