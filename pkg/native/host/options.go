package host

import (
	"sync"

	"github.com/eigerco/levelbridge/pkg/native"
)

type readOptions struct {
	verifyChecksums bool
	fillCache       bool
	snapshot        uintptr
}

type cache struct {
	capacity int
}

type filterPolicy struct {
	bitsPerKey int
}

// comparator drives the callbacks registered through ComparatorCreate. The
// engine may call Compare from any goroutine.
type comparator struct {
	state      uintptr
	destructor native.DestructorFunc
	compare    native.CompareFunc
	name       native.NameFunc

	once sync.Once
}

func (c *comparator) Name() string {
	return native.GoString(c.name(c.state))
}

func (c *comparator) Compare(a, b []byte) int {
	return int(c.compare(c.state, native.Ptr(a), uintptr(len(a)), native.Ptr(b), uintptr(len(b))))
}

func (c *comparator) destroy() {
	c.once.Do(func() { c.destructor(c.state) })
}

func (h *Host) optionsCreate() uintptr {
	return h.register(&Options{})
}

func (h *Host) options(handle uintptr) *Options {
	return lookupAs[*Options](h, handle)
}

func (h *Host) optionsSetComparator(o, cmp uintptr) {
	if cmp == 0 {
		h.options(o).Comparer = nil
		return
	}
	h.options(o).Comparer = lookupAs[*comparator](h, cmp)
}

func (h *Host) optionsSetFilterPolicy(o, policy uintptr) {
	if policy == 0 {
		h.options(o).BloomBitsPerKey = 0
		return
	}
	h.options(o).BloomBitsPerKey = lookupAs[*filterPolicy](h, policy).bitsPerKey
}

func (h *Host) optionsSetCache(o, c uintptr) {
	if c == 0 {
		h.options(o).CacheCapacity = 0
		return
	}
	h.options(o).CacheCapacity = lookupAs[*cache](h, c).capacity
}

func (h *Host) comparatorCreate(state uintptr, destructor native.DestructorFunc, compare native.CompareFunc, name native.NameFunc) uintptr {
	return h.register(&comparator{
		state:      state,
		destructor: destructor,
		compare:    compare,
		name:       name,
	})
}

func (h *Host) comparatorDestroy(handle uintptr) {
	c, ok := h.unregister(handle).(*comparator)
	if !ok {
		panic("host: ComparatorDestroy on a non-comparator handle")
	}
	c.destroy()
}

// readOptions resolves a read options handle, including its snapshot.
func (h *Host) readOptions(handle uintptr) *ReadOptions {
	ro := lookupAs[*readOptions](h, handle)
	out := &ReadOptions{
		VerifyChecksums: ro.verifyChecksums,
		FillCache:       ro.fillCache,
	}
	if ro.snapshot != 0 {
		out.Snapshot = lookupAs[*snapshot](h, ro.snapshot).view
	}
	return out
}

func (h *Host) writeOptions(handle uintptr) *WriteOptions {
	return lookupAs[*WriteOptions](h, handle)
}
