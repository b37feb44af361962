// Package host implements the native entry-point surface in process.
//
// A Host owns handle tables for every opaque object of the C API and an
// allocator for the buffers it returns through error slots, Get and
// PropertyValue. Those buffers stay live until they are handed back through
// Free, exactly like malloc'd memory returned by libleveldb; freeing an
// unknown pointer or freeing twice panics. Storage itself is delegated to a
// Backend.
package host

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/eigerco/levelbridge/pkg/log"
	"github.com/eigerco/levelbridge/pkg/native"
)

const (
	majorVersion = 1
	minorVersion = 23
)

// Host is an in-process engine.
type Host struct {
	backend Backend

	mu      sync.Mutex
	seq     uintptr
	handles map[uintptr]any
	allocs  map[*byte][]byte
	// paths held open by this process, like the LOCK file of libleveldb.
	open map[string]bool

	lib *native.Lib
}

// New returns a Host storing data through b.
func New(b Backend) *Host {
	h := &Host{
		backend: b,
		handles: make(map[uintptr]any),
		allocs:  make(map[*byte][]byte),
		open:    make(map[string]bool),
	}
	h.lib = h.table()
	return h
}

// Lib returns the function table of the host.
func (h *Host) Lib() *native.Lib {
	return h.lib
}

// Outstanding reports how many allocated buffers have not been freed yet.
func (h *Host) Outstanding() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.allocs)
}

// Handles reports how many engine objects are alive.
func (h *Host) Handles() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handles)
}

func (h *Host) register(v any) uintptr {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seq++
	// Keep handles away from small integers so a stray index is never valid.
	handle := h.seq<<4 | 0x1
	h.handles[handle] = v
	return handle
}

func (h *Host) lookup(handle uintptr) any {
	h.mu.Lock()
	v, ok := h.handles[handle]
	h.mu.Unlock()
	if !ok {
		panic(fmt.Sprintf("host: invalid handle %#x", handle))
	}
	return v
}

func (h *Host) unregister(handle uintptr) any {
	h.mu.Lock()
	defer h.mu.Unlock()
	v, ok := h.handles[handle]
	if !ok {
		panic(fmt.Sprintf("host: handle %#x destroyed twice", handle))
	}
	delete(h.handles, handle)
	return v
}

func lookupAs[T any](h *Host, handle uintptr) T {
	v, ok := h.lookup(handle).(T)
	if !ok {
		var zero T
		panic(fmt.Sprintf("host: handle %#x is not a %T", handle, zero))
	}
	return v
}

// alloc copies b into a NUL-terminated engine buffer.
func (h *Host) alloc(b []byte) *byte {
	buf := make([]byte, len(b)+1)
	copy(buf, b)
	p := &buf[0]
	h.mu.Lock()
	h.allocs[p] = buf
	h.mu.Unlock()
	return p
}

func (h *Host) free(p *byte) {
	if p == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.allocs[p]; !ok {
		panic(fmt.Sprintf("host: free of unknown pointer %p", p))
	}
	delete(h.allocs, p)
}

// saveError stores err in the error slot, replacing a previous message the
// same way libleveldb does.
func (h *Host) saveError(errptr **byte, err error) {
	if err == nil || errptr == nil {
		return
	}
	if *errptr != nil {
		h.free(*errptr)
	}
	*errptr = h.alloc([]byte(err.Error()))
}

func (h *Host) lockPath(path string) error {
	key := filepath.Clean(path)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.open[key] {
		return fmt.Errorf("IO error: lock %s: already held by process", filepath.Join(key, "LOCK"))
	}
	h.open[key] = true
	return nil
}

func (h *Host) unlockPath(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.open, filepath.Clean(path))
}

func (h *Host) table() *native.Lib {
	return &native.Lib{
		Name: h.backend.Name(),

		Open:             h.openDB,
		Close:            h.closeDB,
		Put:              h.put,
		Delete:           h.delete,
		Write:            h.write,
		Get:              h.get,
		CreateIterator:   h.createIterator,
		CreateSnapshot:   h.createSnapshot,
		ReleaseSnapshot:  h.releaseSnapshot,
		PropertyValue:    h.propertyValue,
		ApproximateSizes: h.approximateSizes,
		CompactRange:     h.compactRange,
		DestroyDB:        h.destroyDB,
		RepairDB:         h.repairDB,

		IterDestroy:     h.iterDestroy,
		IterValid:       h.iterValid,
		IterSeekToFirst: h.iterSeekToFirst,
		IterSeekToLast:  h.iterSeekToLast,
		IterSeek:        h.iterSeek,
		IterNext:        h.iterNext,
		IterPrev:        h.iterPrev,
		IterKey:         h.iterKey,
		IterValue:       h.iterValue,
		IterGetError:    h.iterGetError,

		WriteBatchCreate:  h.writeBatchCreate,
		WriteBatchDestroy: h.writeBatchDestroy,
		WriteBatchClear:   h.writeBatchClear,
		WriteBatchPut:     h.writeBatchPut,
		WriteBatchDelete:  h.writeBatchDelete,
		WriteBatchIterate: h.writeBatchIterate,

		OptionsCreate:                  h.optionsCreate,
		OptionsDestroy:                 h.destroyer("options"),
		OptionsSetComparator:           h.optionsSetComparator,
		OptionsSetFilterPolicy:         h.optionsSetFilterPolicy,
		OptionsSetCreateIfMissing:      func(o uintptr, v uint8) { h.options(o).CreateIfMissing = v != 0 },
		OptionsSetErrorIfExists:        func(o uintptr, v uint8) { h.options(o).ErrorIfExists = v != 0 },
		OptionsSetParanoidChecks:       func(o uintptr, v uint8) { h.options(o).ParanoidChecks = v != 0 },
		OptionsSetWriteBufferSize:      func(o, n uintptr) { h.options(o).WriteBufferSize = int(n) },
		OptionsSetMaxOpenFiles:         func(o uintptr, n int32) { h.options(o).MaxOpenFiles = int(n) },
		OptionsSetCache:                h.optionsSetCache,
		OptionsSetBlockSize:            func(o, n uintptr) { h.options(o).BlockSize = int(n) },
		OptionsSetBlockRestartInterval: func(o uintptr, n int32) { h.options(o).BlockRestartInterval = int(n) },
		OptionsSetMaxFileSize:          func(o, n uintptr) { h.options(o).MaxFileSize = int(n) },
		OptionsSetCompression:          func(o uintptr, c int32) { h.options(o).Compression = c },

		ComparatorCreate:  h.comparatorCreate,
		ComparatorDestroy: h.comparatorDestroy,

		FilterPolicyCreateBloom: func(bits int32) uintptr { return h.register(&filterPolicy{bitsPerKey: int(bits)}) },
		FilterPolicyDestroy:     h.destroyer("filter policy"),

		ReadOptionsCreate:             func() uintptr { return h.register(&readOptions{fillCache: true}) },
		ReadOptionsDestroy:            h.destroyer("read options"),
		ReadOptionsSetVerifyChecksums: func(o uintptr, v uint8) { lookupAs[*readOptions](h, o).verifyChecksums = v != 0 },
		ReadOptionsSetFillCache:       func(o uintptr, v uint8) { lookupAs[*readOptions](h, o).fillCache = v != 0 },
		ReadOptionsSetSnapshot:        func(o, s uintptr) { lookupAs[*readOptions](h, o).snapshot = s },

		WriteOptionsCreate:  func() uintptr { return h.register(&WriteOptions{}) },
		WriteOptionsDestroy: h.destroyer("write options"),
		WriteOptionsSetSync: func(o uintptr, v uint8) { lookupAs[*WriteOptions](h, o).Sync = v != 0 },

		CacheCreateLRU: func(capacity uintptr) uintptr { return h.register(&cache{capacity: int(capacity)}) },
		CacheDestroy:   h.destroyer("cache"),

		Free:         h.free,
		MajorVersion: func() int32 { return majorVersion },
		MinorVersion: func() int32 { return minorVersion },
	}
}

func (h *Host) destroyer(kind string) func(uintptr) {
	return func(handle uintptr) {
		h.unregister(handle)
		log.Engine.Trace().Str("engine", h.backend.Name()).Str("kind", kind).Msg("destroyed")
	}
}
