// Package native describes the C entry-point surface of a LevelDB-compatible
// storage engine.
//
// The surface mirrors leveldb/c.h. Opaque engine objects (databases, options,
// iterators, snapshots, write batches, comparators, caches, filter policies)
// are uintptr handles that only the engine can interpret. Byte spans are passed
// as a pointer to the first byte plus a length, error slots are **byte and
// length results are *uintptr. Every buffer the engine hands out through an
// error slot, Get or PropertyValue must be returned through Free and never
// through the Go allocator.
//
// A Lib is produced by a loader (see package libleveldb) or by an in-process
// implementation (see package host). Callers never need to know which.
package native

// Compression values accepted by OptionsSetCompression.
const (
	NoCompression     int32 = 0
	SnappyCompression int32 = 1
)

// CompareFunc is the compare callback of a comparator. It returns a negative
// number when a orders before b, zero when they are equal and a positive
// number otherwise.
type CompareFunc func(state uintptr, a *byte, alen uintptr, b *byte, blen uintptr) int32

// NameFunc returns a NUL-terminated comparator name that stays valid until
// the comparator is destroyed.
type NameFunc func(state uintptr) *byte

// DestructorFunc is invoked exactly once when the comparator is destroyed.
type DestructorFunc func(state uintptr)

// BatchPutFunc receives a recorded put during WriteBatchIterate.
type BatchPutFunc func(state uintptr, key *byte, klen uintptr, val *byte, vlen uintptr)

// BatchDeleteFunc receives a recorded delete during WriteBatchIterate.
type BatchDeleteFunc func(state uintptr, key *byte, klen uintptr)

// Lib is the function table of an engine.
type Lib struct {
	// Name identifies the implementation, e.g. "goleveldb" or "libleveldb".
	Name string

	Open             func(options uintptr, name string, errptr **byte) uintptr
	Close            func(db uintptr)
	Put              func(db, options uintptr, key *byte, keylen uintptr, val *byte, vallen uintptr, errptr **byte)
	Delete           func(db, options uintptr, key *byte, keylen uintptr, errptr **byte)
	Write            func(db, options, batch uintptr, errptr **byte)
	Get              func(db, options uintptr, key *byte, keylen uintptr, vallen *uintptr, errptr **byte) *byte
	CreateIterator   func(db, options uintptr) uintptr
	CreateSnapshot   func(db uintptr) uintptr
	ReleaseSnapshot  func(db, snapshot uintptr)
	PropertyValue    func(db uintptr, propname string) *byte
	ApproximateSizes func(db uintptr, numRanges int32, startKeys **byte, startLens *uintptr, limitKeys **byte, limitLens *uintptr, sizes *uint64)
	CompactRange     func(db uintptr, start *byte, startLen uintptr, limit *byte, limitLen uintptr)
	DestroyDB        func(options uintptr, name string, errptr **byte)
	RepairDB         func(options uintptr, name string, errptr **byte)

	IterDestroy     func(it uintptr)
	IterValid       func(it uintptr) uint8
	IterSeekToFirst func(it uintptr)
	IterSeekToLast  func(it uintptr)
	IterSeek        func(it uintptr, key *byte, keylen uintptr)
	IterNext        func(it uintptr)
	IterPrev        func(it uintptr)
	IterKey         func(it uintptr, klen *uintptr) *byte
	IterValue       func(it uintptr, vlen *uintptr) *byte
	IterGetError    func(it uintptr, errptr **byte)

	WriteBatchCreate  func() uintptr
	WriteBatchDestroy func(batch uintptr)
	WriteBatchClear   func(batch uintptr)
	WriteBatchPut     func(batch uintptr, key *byte, klen uintptr, val *byte, vlen uintptr)
	WriteBatchDelete  func(batch uintptr, key *byte, klen uintptr)
	WriteBatchIterate func(batch, state uintptr, put BatchPutFunc, deleted BatchDeleteFunc)

	OptionsCreate                  func() uintptr
	OptionsDestroy                 func(options uintptr)
	OptionsSetComparator           func(options, comparator uintptr)
	OptionsSetFilterPolicy         func(options, policy uintptr)
	OptionsSetCreateIfMissing      func(options uintptr, v uint8)
	OptionsSetErrorIfExists        func(options uintptr, v uint8)
	OptionsSetParanoidChecks       func(options uintptr, v uint8)
	OptionsSetWriteBufferSize      func(options, size uintptr)
	OptionsSetMaxOpenFiles         func(options uintptr, n int32)
	OptionsSetCache                func(options, cache uintptr)
	OptionsSetBlockSize            func(options, size uintptr)
	OptionsSetBlockRestartInterval func(options uintptr, n int32)
	OptionsSetMaxFileSize          func(options, size uintptr)
	OptionsSetCompression          func(options uintptr, c int32)

	ComparatorCreate  func(state uintptr, destructor DestructorFunc, compare CompareFunc, name NameFunc) uintptr
	ComparatorDestroy func(comparator uintptr)

	FilterPolicyCreateBloom func(bitsPerKey int32) uintptr
	FilterPolicyDestroy     func(policy uintptr)

	ReadOptionsCreate             func() uintptr
	ReadOptionsDestroy            func(options uintptr)
	ReadOptionsSetVerifyChecksums func(options uintptr, v uint8)
	ReadOptionsSetFillCache       func(options uintptr, v uint8)
	ReadOptionsSetSnapshot        func(options, snapshot uintptr)

	WriteOptionsCreate  func() uintptr
	WriteOptionsDestroy func(options uintptr)
	WriteOptionsSetSync func(options uintptr, v uint8)

	CacheCreateLRU func(capacity uintptr) uintptr
	CacheDestroy   func(cache uintptr)

	Free         func(ptr *byte)
	MajorVersion func() int32
	MinorVersion func() int32
}

// Bool converts a Go bool to the unsigned char flags used by the surface.
func Bool(v bool) uint8 {
	if v {
		return 1
	}
	return 0
}
