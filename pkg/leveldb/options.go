package leveldb

import (
	"sync"

	"github.com/eigerco/levelbridge/pkg/engine/goleveldb"
	"github.com/eigerco/levelbridge/pkg/native"
)

// Compression selects the block compression of new tables.
type Compression int

const (
	NoCompression Compression = iota
	SnappyCompression
)

// Options configures Open. Zero numeric fields keep the engine default.
type Options struct {
	CreateIfMissing bool
	ErrorIfExists   bool
	ParanoidChecks  bool

	WriteBufferSize      int
	MaxOpenFiles         int
	BlockSize            int
	BlockRestartInterval int
	MaxFileSize          int
	Compression          Compression

	// CacheCapacity is the size in bytes of an LRU block cache owned by the
	// database.
	CacheCapacity int
	// BloomBitsPerKey installs a bloom filter policy when positive.
	BloomBitsPerKey int

	// Lib is the engine to use. Nil selects DefaultLib.
	Lib *native.Lib
}

// ReadOptions configures a read. A nil *ReadOptions uses the defaults.
type ReadOptions struct {
	VerifyChecksums bool
	DontFillCache   bool
	// Snapshot pins the read to a point in time.
	Snapshot SnapshotRef
}

// WriteOptions configures a write. A nil *WriteOptions does not sync.
type WriteOptions struct {
	Sync bool
}

// SnapshotRef is implemented by *Snapshot.
type SnapshotRef interface {
	pin(owner any) (uintptr, error)
}

var defaultLib = sync.OnceValue(func() *native.Lib {
	return goleveldb.New().Lib()
})

// DefaultLib returns the in-process goleveldb engine shared by the process.
func DefaultLib() *native.Lib {
	return defaultLib()
}

func (o *Options) engine() *native.Lib {
	if o != nil && o.Lib != nil {
		return o.Lib
	}
	return DefaultLib()
}

// engineOptions is a native options object together with the objects it
// references. Cache and filter must outlive the database opened with them.
type engineOptions struct {
	lib    *native.Lib
	handle uintptr
	cache  uintptr
	filter uintptr
}

func buildOptions(lib *native.Lib, o *Options, comparator uintptr) *engineOptions {
	if o == nil {
		o = &Options{}
	}
	e := &engineOptions{lib: lib, handle: lib.OptionsCreate()}
	h := e.handle

	lib.OptionsSetCreateIfMissing(h, native.Bool(o.CreateIfMissing))
	lib.OptionsSetErrorIfExists(h, native.Bool(o.ErrorIfExists))
	lib.OptionsSetParanoidChecks(h, native.Bool(o.ParanoidChecks))
	if o.WriteBufferSize > 0 {
		lib.OptionsSetWriteBufferSize(h, uintptr(o.WriteBufferSize))
	}
	if o.MaxOpenFiles > 0 {
		lib.OptionsSetMaxOpenFiles(h, int32(o.MaxOpenFiles))
	}
	if o.BlockSize > 0 {
		lib.OptionsSetBlockSize(h, uintptr(o.BlockSize))
	}
	if o.BlockRestartInterval > 0 {
		lib.OptionsSetBlockRestartInterval(h, int32(o.BlockRestartInterval))
	}
	if o.MaxFileSize > 0 {
		lib.OptionsSetMaxFileSize(h, uintptr(o.MaxFileSize))
	}
	switch o.Compression {
	case SnappyCompression:
		lib.OptionsSetCompression(h, native.SnappyCompression)
	default:
		lib.OptionsSetCompression(h, native.NoCompression)
	}
	if o.CacheCapacity > 0 {
		e.cache = lib.CacheCreateLRU(uintptr(o.CacheCapacity))
		lib.OptionsSetCache(h, e.cache)
	}
	if o.BloomBitsPerKey > 0 {
		e.filter = lib.FilterPolicyCreateBloom(int32(o.BloomBitsPerKey))
		lib.OptionsSetFilterPolicy(h, e.filter)
	}
	if comparator != 0 {
		lib.OptionsSetComparator(h, comparator)
	}
	return e
}

// release destroys the options object only.
func (e *engineOptions) release() {
	if e.handle != 0 {
		e.lib.OptionsDestroy(e.handle)
		e.handle = 0
	}
}

// destroyShared destroys the cache and filter policy.
func (e *engineOptions) destroyShared() {
	if e.cache != 0 {
		e.lib.CacheDestroy(e.cache)
		e.cache = 0
	}
	if e.filter != 0 {
		e.lib.FilterPolicyDestroy(e.filter)
		e.filter = 0
	}
}

func buildWriteOptions(lib *native.Lib, wo *WriteOptions) uintptr {
	h := lib.WriteOptionsCreate()
	if wo != nil {
		lib.WriteOptionsSetSync(h, native.Bool(wo.Sync))
	}
	return h
}
