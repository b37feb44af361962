package host

import "errors"

// ErrNotFound is returned by Reader.Get when the key is absent.
var ErrNotFound = errors.New("host: not found")

// Backend is a Go storage engine driven through the emulated C surface.
type Backend interface {
	Name() string
	Open(path string, opts *Options) (Store, error)
	Repair(path string, opts *Options) error
	Destroy(path string, opts *Options) error
	NewBatch() Batch
}

// Reader is implemented by open stores and by their snapshots.
type Reader interface {
	Get(key []byte, ro *ReadOptions) ([]byte, error)
	NewCursor(ro *ReadOptions) (Cursor, error)
}

// Store is an open database.
type Store interface {
	Reader
	Put(key, value []byte, wo *WriteOptions) error
	Delete(key []byte, wo *WriteOptions) error
	Write(b Batch, wo *WriteOptions) error
	Snapshot() (View, error)
	// Property reports false for unknown property names.
	Property(name string) (string, bool)
	ApproximateSize(start, limit []byte) (uint64, error)
	// CompactRange treats nil bounds as unbounded.
	CompactRange(start, limit []byte) error
	Close() error
}

// View is a point-in-time reader.
type View interface {
	Reader
	Release()
}

// Batch records puts and deletes in order.
type Batch interface {
	Put(key, value []byte)
	Delete(key []byte)
	Reset()
	Len() int
	Replay(v BatchVisitor) error
}

// BatchVisitor receives the operations of a batch in insertion order.
type BatchVisitor interface {
	Put(key, value []byte)
	Delete(key []byte)
}

// Cursor is a bidirectional iterator. Key and Value are only valid until the
// next move.
type Cursor interface {
	First() bool
	Last() bool
	Seek(key []byte) bool
	Next() bool
	Prev() bool
	Valid() bool
	Key() []byte
	Value() []byte
	Error() error
	Close() error
}

// Comparer is the total order a store was opened with.
type Comparer interface {
	Name() string
	Compare(a, b []byte) int
}

// Options is the decoded form of a native options object. Zero numeric values
// leave the backend default in place.
type Options struct {
	CreateIfMissing      bool
	ErrorIfExists        bool
	ParanoidChecks       bool
	WriteBufferSize      int
	MaxOpenFiles         int
	BlockSize            int
	BlockRestartInterval int
	MaxFileSize          int
	Compression          int32
	CacheCapacity        int
	BloomBitsPerKey      int
	// Comparer is nil for the bytewise order.
	Comparer Comparer
}

// ReadOptions is the decoded form of a native read options object.
type ReadOptions struct {
	VerifyChecksums bool
	FillCache       bool
	// Snapshot pins the read when set. Backends only see their own views.
	Snapshot View
}

// WriteOptions is the decoded form of a native write options object.
type WriteOptions struct {
	Sync bool
}
