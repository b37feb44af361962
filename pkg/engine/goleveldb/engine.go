// Package goleveldb backs the in-process engine with syndtr/goleveldb.
package goleveldb

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/comparer"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/eigerco/levelbridge/pkg/native"
	"github.com/eigerco/levelbridge/pkg/native/host"
)

// Name is the engine name reported by the function table.
const Name = "goleveldb"

// New returns a host engine storing data with goleveldb.
func New() *host.Host {
	return host.New(Backend())
}

// Backend returns the goleveldb storage backend for callers that wrap it.
func Backend() host.Backend {
	return backend{}
}

type backend struct{}

func (backend) Name() string {
	return Name
}

func (backend) NewBatch() host.Batch {
	return &batch{b: new(leveldb.Batch)}
}

func (backend) Open(path string, o *host.Options) (host.Store, error) {
	db, err := leveldb.OpenFile(path, options(o))
	if err != nil {
		return nil, err
	}
	return &store{db: db}, nil
}

func (backend) Repair(path string, o *host.Options) error {
	opts := options(o)
	opts.ErrorIfMissing = false
	opts.ErrorIfExist = false
	db, err := leveldb.RecoverFile(path, opts)
	if err != nil {
		return err
	}
	return db.Close()
}

func (backend) Destroy(path string, _ *host.Options) error {
	return host.RemoveFiles(path, isDBFile)
}

func isDBFile(name string) bool {
	switch name {
	case "CURRENT", "CURRENT.bak", "LOCK", "LOG", "LOG.old":
		return true
	}
	if strings.HasPrefix(name, "MANIFEST-") {
		return true
	}
	switch filepath.Ext(name) {
	case ".ldb", ".log", ".sst", ".tmp":
		return true
	}
	return false
}

func options(o *host.Options) *opt.Options {
	out := &opt.Options{
		ErrorIfMissing:         !o.CreateIfMissing,
		ErrorIfExist:           o.ErrorIfExists,
		WriteBuffer:            o.WriteBufferSize,
		BlockSize:              o.BlockSize,
		BlockRestartInterval:   o.BlockRestartInterval,
		OpenFilesCacheCapacity: o.MaxOpenFiles,
		BlockCacheCapacity:     o.CacheCapacity,
		CompactionTableSize:    o.MaxFileSize,
		Compression:            opt.NoCompression,
	}
	if o.Compression == native.SnappyCompression {
		out.Compression = opt.SnappyCompression
	}
	if o.ParanoidChecks {
		out.Strict = opt.StrictAll
	}
	if o.BloomBitsPerKey > 0 {
		out.Filter = filter.NewBloomFilter(o.BloomBitsPerKey)
	}
	if o.Comparer != nil {
		out.Comparer = userComparer{o.Comparer}
	}
	return out
}

func readOptions(ro *host.ReadOptions) *opt.ReadOptions {
	out := &opt.ReadOptions{DontFillCache: !ro.FillCache}
	if ro.VerifyChecksums {
		out.Strict = opt.StrictBlockChecksum
	}
	return out
}

func writeOptions(wo *host.WriteOptions) *opt.WriteOptions {
	return &opt.WriteOptions{Sync: wo.Sync}
}

// userComparer exposes a registered comparator to goleveldb. Keys are never
// shortened since only the registered order is known.
type userComparer struct {
	host.Comparer
}

var _ comparer.Comparer = userComparer{}

func (userComparer) Separator(dst, a, b []byte) []byte {
	return nil
}

func (userComparer) Successor(dst, b []byte) []byte {
	return nil
}

type store struct {
	db *leveldb.DB
}

func (s *store) Get(key []byte, ro *host.ReadOptions) ([]byte, error) {
	return get(s.db.Get(key, readOptions(ro)))
}

func (s *store) NewCursor(ro *host.ReadOptions) (host.Cursor, error) {
	return &cursor{it: s.db.NewIterator(nil, readOptions(ro))}, nil
}

func (s *store) Put(key, value []byte, wo *host.WriteOptions) error {
	return s.db.Put(key, value, writeOptions(wo))
}

func (s *store) Delete(key []byte, wo *host.WriteOptions) error {
	return s.db.Delete(key, writeOptions(wo))
}

func (s *store) Write(b host.Batch, wo *host.WriteOptions) error {
	lb, ok := b.(*batch)
	if !ok {
		return errors.New("Invalid argument: batch belongs to another engine")
	}
	return s.db.Write(lb.b, writeOptions(wo))
}

func (s *store) Snapshot() (host.View, error) {
	snap, err := s.db.GetSnapshot()
	if err != nil {
		return nil, err
	}
	return &view{snap: snap}, nil
}

func (s *store) Property(name string) (string, bool) {
	v, err := s.db.GetProperty(name)
	if err != nil {
		return "", false
	}
	return v, true
}

func (s *store) ApproximateSize(start, limit []byte) (uint64, error) {
	sizes, err := s.db.SizeOf([]util.Range{{Start: start, Limit: limit}})
	if err != nil {
		return 0, err
	}
	return uint64(sizes.Sum()), nil
}

func (s *store) CompactRange(start, limit []byte) error {
	return s.db.CompactRange(util.Range{Start: start, Limit: limit})
}

func (s *store) Close() error {
	return s.db.Close()
}

type view struct {
	snap *leveldb.Snapshot
}

func (v *view) Get(key []byte, ro *host.ReadOptions) ([]byte, error) {
	return get(v.snap.Get(key, readOptions(ro)))
}

func (v *view) NewCursor(ro *host.ReadOptions) (host.Cursor, error) {
	return &cursor{it: v.snap.NewIterator(nil, readOptions(ro))}, nil
}

func (v *view) Release() {
	v.snap.Release()
}

func get(value []byte, err error) ([]byte, error) {
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, host.ErrNotFound
	}
	return value, err
}
