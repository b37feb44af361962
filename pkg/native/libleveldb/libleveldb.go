//go:build darwin || freebsd || linux

// Package libleveldb loads the C library of LevelDB at run time without cgo.
//
// The library is located through the LEVELDB_LIBRARY environment variable or
// the usual shared object names of the platform.
package libleveldb

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/eigerco/levelbridge/pkg/log"
	"github.com/eigerco/levelbridge/pkg/native"
)

// Name is the engine name reported by the function table.
const Name = "libleveldb"

// EnvLibrary names the environment variable holding an explicit library path.
const EnvLibrary = "LEVELDB_LIBRARY"

// ErrNotFound is returned when no library could be loaded.
var ErrNotFound = errors.New("libleveldb: shared library not found")

var (
	loadOnce sync.Once
	loaded   *native.Lib
	loadErr  error
)

// Open loads the library once per process and returns its function table.
func Open() (*native.Lib, error) {
	loadOnce.Do(func() {
		loaded, loadErr = open()
	})
	return loaded, loadErr
}

func open() (*native.Lib, error) {
	var errs []error
	for _, path := range candidates() {
		lib, err := Load(path)
		if err == nil {
			return lib, nil
		}
		errs = append(errs, err)
	}
	return nil, fmt.Errorf("%w: %w", ErrNotFound, errors.Join(errs...))
}

func candidates() []string {
	if path := os.Getenv(EnvLibrary); path != "" {
		return []string{path}
	}
	if runtime.GOOS == "darwin" {
		return []string{
			"libleveldb.1.dylib",
			"libleveldb.dylib",
			"/opt/homebrew/lib/libleveldb.dylib",
			"/usr/local/lib/libleveldb.dylib",
		}
	}
	return []string{"libleveldb.so.1", "libleveldb.so"}
}

// Load binds the library at path. Every call opens the library again but the
// callback trampolines are shared.
func Load(path string) (*native.Lib, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("libleveldb: open %s: %w", path, err)
	}

	lib := &native.Lib{Name: Name}
	var r raw
	for _, s := range symbols(lib, &r) {
		if _, err := purego.Dlsym(handle, s.name); err != nil {
			_ = purego.Dlclose(handle)
			return nil, fmt.Errorf("libleveldb: %s: missing symbol %s: %w", path, s.name, err)
		}
		purego.RegisterLibFunc(s.fptr, handle, s.name)
	}
	r.wrap(lib)

	log.Engine.Debug().Str("path", path).
		Int32("major", lib.MajorVersion()).Int32("minor", lib.MinorVersion()).
		Msg("libleveldb loaded")
	return lib, nil
}

// raw holds the entry points whose C signature cannot be expressed by the
// function table directly: pointer results and callback arguments.
type raw struct {
	get               func(db, options uintptr, key *byte, keylen uintptr, vallen *uintptr, errptr **byte) uintptr
	propertyValue     func(db uintptr, propname string) uintptr
	iterKey           func(it uintptr, klen *uintptr) uintptr
	iterValue         func(it uintptr, vlen *uintptr) uintptr
	comparatorCreate  func(state, destructor, compare, name uintptr) uintptr
	writeBatchIterate func(batch, state, put, deleted uintptr)
}

type symbol struct {
	fptr any
	name string
}

func symbols(l *native.Lib, r *raw) []symbol {
	return []symbol{
		{&l.Open, "leveldb_open"},
		{&l.Close, "leveldb_close"},
		{&l.Put, "leveldb_put"},
		{&l.Delete, "leveldb_delete"},
		{&l.Write, "leveldb_write"},
		{&r.get, "leveldb_get"},
		{&l.CreateIterator, "leveldb_create_iterator"},
		{&l.CreateSnapshot, "leveldb_create_snapshot"},
		{&l.ReleaseSnapshot, "leveldb_release_snapshot"},
		{&r.propertyValue, "leveldb_property_value"},
		{&l.ApproximateSizes, "leveldb_approximate_sizes"},
		{&l.CompactRange, "leveldb_compact_range"},
		{&l.DestroyDB, "leveldb_destroy_db"},
		{&l.RepairDB, "leveldb_repair_db"},

		{&l.IterDestroy, "leveldb_iter_destroy"},
		{&l.IterValid, "leveldb_iter_valid"},
		{&l.IterSeekToFirst, "leveldb_iter_seek_to_first"},
		{&l.IterSeekToLast, "leveldb_iter_seek_to_last"},
		{&l.IterSeek, "leveldb_iter_seek"},
		{&l.IterNext, "leveldb_iter_next"},
		{&l.IterPrev, "leveldb_iter_prev"},
		{&r.iterKey, "leveldb_iter_key"},
		{&r.iterValue, "leveldb_iter_value"},
		{&l.IterGetError, "leveldb_iter_get_error"},

		{&l.WriteBatchCreate, "leveldb_writebatch_create"},
		{&l.WriteBatchDestroy, "leveldb_writebatch_destroy"},
		{&l.WriteBatchClear, "leveldb_writebatch_clear"},
		{&l.WriteBatchPut, "leveldb_writebatch_put"},
		{&l.WriteBatchDelete, "leveldb_writebatch_delete"},
		{&r.writeBatchIterate, "leveldb_writebatch_iterate"},

		{&l.OptionsCreate, "leveldb_options_create"},
		{&l.OptionsDestroy, "leveldb_options_destroy"},
		{&l.OptionsSetComparator, "leveldb_options_set_comparator"},
		{&l.OptionsSetFilterPolicy, "leveldb_options_set_filter_policy"},
		{&l.OptionsSetCreateIfMissing, "leveldb_options_set_create_if_missing"},
		{&l.OptionsSetErrorIfExists, "leveldb_options_set_error_if_exists"},
		{&l.OptionsSetParanoidChecks, "leveldb_options_set_paranoid_checks"},
		{&l.OptionsSetWriteBufferSize, "leveldb_options_set_write_buffer_size"},
		{&l.OptionsSetMaxOpenFiles, "leveldb_options_set_max_open_files"},
		{&l.OptionsSetCache, "leveldb_options_set_cache"},
		{&l.OptionsSetBlockSize, "leveldb_options_set_block_size"},
		{&l.OptionsSetBlockRestartInterval, "leveldb_options_set_block_restart_interval"},
		{&l.OptionsSetMaxFileSize, "leveldb_options_set_max_file_size"},
		{&l.OptionsSetCompression, "leveldb_options_set_compression"},

		{&r.comparatorCreate, "leveldb_comparator_create"},
		{&l.ComparatorDestroy, "leveldb_comparator_destroy"},

		{&l.FilterPolicyCreateBloom, "leveldb_filterpolicy_create_bloom"},
		{&l.FilterPolicyDestroy, "leveldb_filterpolicy_destroy"},

		{&l.ReadOptionsCreate, "leveldb_readoptions_create"},
		{&l.ReadOptionsDestroy, "leveldb_readoptions_destroy"},
		{&l.ReadOptionsSetVerifyChecksums, "leveldb_readoptions_set_verify_checksums"},
		{&l.ReadOptionsSetFillCache, "leveldb_readoptions_set_fill_cache"},
		{&l.ReadOptionsSetSnapshot, "leveldb_readoptions_set_snapshot"},

		{&l.WriteOptionsCreate, "leveldb_writeoptions_create"},
		{&l.WriteOptionsDestroy, "leveldb_writeoptions_destroy"},
		{&l.WriteOptionsSetSync, "leveldb_writeoptions_set_sync"},

		{&l.CacheCreateLRU, "leveldb_cache_create_lru"},
		{&l.CacheDestroy, "leveldb_cache_destroy"},

		{&l.Free, "leveldb_free"},
		{&l.MajorVersion, "leveldb_major_version"},
		{&l.MinorVersion, "leveldb_minor_version"},
	}
}

func (r *raw) wrap(l *native.Lib) {
	l.Get = func(db, options uintptr, key *byte, keylen uintptr, vallen *uintptr, errptr **byte) *byte {
		return bytePtr(r.get(db, options, key, keylen, vallen, errptr))
	}
	l.PropertyValue = func(db uintptr, propname string) *byte {
		return bytePtr(r.propertyValue(db, propname))
	}
	l.IterKey = func(it uintptr, klen *uintptr) *byte {
		return bytePtr(r.iterKey(it, klen))
	}
	l.IterValue = func(it uintptr, vlen *uintptr) *byte {
		return bytePtr(r.iterValue(it, vlen))
	}
	l.ComparatorCreate = func(state uintptr, destructor native.DestructorFunc, compare native.CompareFunc, name native.NameFunc) uintptr {
		t := callbacks()
		rec := native.Box(&comparatorRecord{state: state, destructor: destructor, compare: compare, name: name})
		return r.comparatorCreate(rec, t.destructor, t.compare, t.name)
	}
	l.WriteBatchIterate = func(batch, state uintptr, put native.BatchPutFunc, deleted native.BatchDeleteFunc) {
		t := callbacks()
		rec := native.Box(&batchRecord{state: state, put: put, deleted: deleted})
		defer native.Release(rec)
		r.writeBatchIterate(batch, rec, t.put, t.deleted)
	}
}

// bytePtr converts a pointer returned by the library. The memory belongs to
// the C heap and is invisible to the garbage collector.
func bytePtr(p uintptr) *byte {
	return *(**byte)(unsafe.Pointer(&p))
}

// uintptrOf hands a pinned Go pointer back to the library.
func uintptrOf(p *byte) uintptr {
	return uintptr(unsafe.Pointer(p))
}
