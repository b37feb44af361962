// Package pebble backs the in-process engine with cockroachdb/pebble.
package pebble

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/bloom"

	"github.com/eigerco/levelbridge/pkg/native"
	"github.com/eigerco/levelbridge/pkg/native/host"
)

// Name is the engine name reported by the function table.
const Name = "pebble"

const numLevels = 7

// ErrRepairUnsupported is reported by RepairDB.
var ErrRepairUnsupported = errors.New("IO error: repair is not supported by the pebble engine")

// New returns a host engine storing data with pebble.
func New() *host.Host {
	return host.New(Backend())
}

// Backend returns the pebble storage backend for callers that wrap it.
func Backend() host.Backend {
	return backend{}
}

type backend struct{}

func (backend) Name() string {
	return Name
}

func (backend) NewBatch() host.Batch {
	return &batch{}
}

func (backend) Open(path string, o *host.Options) (host.Store, error) {
	opts := options(o)
	db, err := pebble.Open(path, opts)
	if opts.Cache != nil {
		// The database holds its own reference.
		opts.Cache.Unref()
	}
	if err != nil {
		return nil, err
	}
	return &store{db: db, cmp: opts.Comparer}, nil
}

func (backend) Repair(string, *host.Options) error {
	return ErrRepairUnsupported
}

func (backend) Destroy(path string, _ *host.Options) error {
	return host.RemoveFiles(path, isDBFile)
}

func isDBFile(name string) bool {
	switch name {
	case "CURRENT", "LOCK":
		return true
	}
	for _, prefix := range []string{"MANIFEST-", "OPTIONS-", "marker."} {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	switch filepath.Ext(name) {
	case ".log", ".sst", ".tmp", ".dbtmp":
		return true
	}
	return false
}

func setSize[T ~int | ~int64 | ~uint64](dst *T, n int) {
	if n > 0 {
		*dst = T(n)
	}
}

func options(o *host.Options) *pebble.Options {
	opts := &pebble.Options{
		ErrorIfExists:    o.ErrorIfExists,
		ErrorIfNotExists: !o.CreateIfMissing,
		MaxOpenFiles:     o.MaxOpenFiles,
		Levels:           make([]pebble.LevelOptions, numLevels),
		Logger:           logger{},
		Comparer:         comparer(o.Comparer),
	}
	setSize(&opts.MemTableSize, o.WriteBufferSize)
	if o.CacheCapacity > 0 {
		opts.Cache = pebble.NewCache(int64(o.CacheCapacity))
	}

	compression := pebble.NoCompression
	if o.Compression == native.SnappyCompression {
		compression = pebble.SnappyCompression
	}
	for i := range opts.Levels {
		l := pebble.LevelOptions{
			BlockSize:            o.BlockSize,
			BlockRestartInterval: o.BlockRestartInterval,
			Compression:          compression,
		}
		if o.MaxFileSize > 0 {
			l.TargetFileSize = int64(o.MaxFileSize)
		}
		if o.BloomBitsPerKey > 0 {
			l.FilterPolicy = bloom.FilterPolicy(o.BloomBitsPerKey)
			l.FilterType = pebble.TableFilter
		}
		opts.Levels[i] = l
	}
	return opts
}

func syncOption(wo *host.WriteOptions) *pebble.WriteOptions {
	if wo.Sync {
		return pebble.Sync
	}
	return pebble.NoSync
}

type store struct {
	db  *pebble.DB
	cmp *pebble.Comparer
}

func (s *store) Get(key []byte, _ *host.ReadOptions) ([]byte, error) {
	return get(s.db.Get(key))
}

func (s *store) NewCursor(_ *host.ReadOptions) (host.Cursor, error) {
	it, err := s.db.NewIter(nil)
	if err != nil {
		return nil, err
	}
	return &cursor{it: it}, nil
}

func (s *store) Put(key, value []byte, wo *host.WriteOptions) error {
	return s.db.Set(key, value, syncOption(wo))
}

func (s *store) Delete(key []byte, wo *host.WriteOptions) error {
	return s.db.Delete(key, syncOption(wo))
}

func (s *store) Write(b host.Batch, wo *host.WriteOptions) error {
	pb, ok := b.(*batch)
	if !ok {
		return errors.New("Invalid argument: batch belongs to another engine")
	}
	wb := s.db.NewBatch()
	defer wb.Close() //nolint:errcheck
	for _, op := range pb.ops {
		var err error
		if op.deleted {
			err = wb.Delete(op.key, nil)
		} else {
			err = wb.Set(op.key, op.value, nil)
		}
		if err != nil {
			return err
		}
	}
	return wb.Commit(syncOption(wo))
}

func (s *store) Snapshot() (host.View, error) {
	return &view{snap: s.db.NewSnapshot()}, nil
}

func (s *store) Property(name string) (string, bool) {
	switch {
	case name == "leveldb.stats":
		return s.db.Metrics().String(), true
	case strings.HasPrefix(name, "leveldb.num-files-at-level"):
		level, err := strconv.Atoi(strings.TrimPrefix(name, "leveldb.num-files-at-level"))
		if err != nil || level < 0 || level >= numLevels {
			return "", false
		}
		return strconv.FormatInt(s.db.Metrics().Levels[level].NumFiles, 10), true
	}
	return "", false
}

func (s *store) ApproximateSize(start, limit []byte) (uint64, error) {
	if s.cmp.Compare(start, limit) >= 0 {
		return 0, nil
	}
	return s.db.EstimateDiskUsage(start, limit)
}

func (s *store) CompactRange(start, limit []byte) error {
	if start == nil || limit == nil {
		first, last, ok, err := s.bounds()
		if err != nil || !ok {
			return err
		}
		if start == nil {
			start = first
		}
		if limit == nil {
			limit = last
		}
	}
	if s.cmp.Compare(start, limit) >= 0 {
		return nil
	}
	if err := s.db.Compact(start, limit, true); err != nil {
		return fmt.Errorf("IO error: compaction: %w", err)
	}
	return nil
}

// bounds returns the smallest and largest keys stored.
func (s *store) bounds() (first, last []byte, ok bool, err error) {
	it, err := s.db.NewIter(nil)
	if err != nil {
		return nil, nil, false, err
	}
	defer it.Close() //nolint:errcheck
	if !it.First() {
		return nil, nil, false, it.Error()
	}
	first = append([]byte(nil), it.Key()...)
	it.Last()
	last = append([]byte(nil), it.Key()...)
	return first, last, true, it.Error()
}

func (s *store) Close() error {
	return s.db.Close()
}

type view struct {
	snap *pebble.Snapshot
}

func (v *view) Get(key []byte, _ *host.ReadOptions) ([]byte, error) {
	return get(v.snap.Get(key))
}

func (v *view) NewCursor(_ *host.ReadOptions) (host.Cursor, error) {
	it, err := v.snap.NewIter(nil)
	if err != nil {
		return nil, err
	}
	return &cursor{it: it}, nil
}

func (v *view) Release() {
	if err := v.snap.Close(); err != nil {
		logger{}.Errorf("snapshot release: %v", err)
	}
}

type closer interface {
	Close() error
}

func get(value []byte, c closer, err error) ([]byte, error) {
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, host.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer c.Close() //nolint:errcheck

	result := make([]byte, len(value))
	copy(result, value)
	return result, nil
}
