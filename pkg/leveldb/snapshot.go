package leveldb

import (
	"sync/atomic"

	"github.com/eigerco/levelbridge/pkg/log"
)

// Snapshot is a point-in-time view of a Database. Reads through it ignore
// writes made after it was taken.
type Snapshot[K any] struct {
	db       *Database[K]
	handle   uintptr
	released atomic.Bool
}

// Snapshot captures the current state of the database.
func (db *Database[K]) Snapshot() (*Snapshot[K], error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.closed {
		return nil, ErrClosed
	}

	h := db.lib.CreateSnapshot(db.handle)
	if h == 0 {
		return nil, &Error{Kind: KindIO, Op: "snapshot", Message: "engine returned no snapshot"}
	}
	s := &Snapshot[K]{db: db, handle: h}
	db.cmu.Lock()
	db.snapshots[s] = struct{}{}
	db.cmu.Unlock()
	return s, nil
}

// Get reads key as of the snapshot.
func (s *Snapshot[K]) Get(ro *ReadOptions, key K) ([]byte, bool, error) {
	return s.db.get(ro, key, s)
}

// GetBytes reads key as of the snapshot without copying the value.
func (s *Snapshot[K]) GetBytes(ro *ReadOptions, key K) (*NativeBytes, bool, error) {
	return s.db.getNative(ro, key, s)
}

// Has reports whether key was present when the snapshot was taken.
func (s *Snapshot[K]) Has(ro *ReadOptions, key K) (bool, error) {
	_, ok, err := s.db.get(ro, key, s)
	return ok, err
}

// NewIterator iterates the database as of the snapshot. Releasing the
// snapshot closes the iterator.
func (s *Snapshot[K]) NewIterator(ro *ReadOptions) (*Iterator[K], error) {
	return s.db.newIterator(ro, s)
}

// Release releases the snapshot and closes the iterators created from it. It
// returns ErrReleased if the snapshot was already released, including by
// Database.Close.
func (s *Snapshot[K]) Release() error {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if !s.destroy() {
		return ErrReleased
	}
	return nil
}

func (s *Snapshot[K]) pin(owner any) (uintptr, error) {
	if owner != any(s.db) {
		return 0, ErrForeignSnapshot
	}
	if s.released.Load() {
		return 0, ErrReleased
	}
	return s.handle, nil
}

// destroy releases the native snapshot once. The caller holds db.mu.
func (s *Snapshot[K]) destroy() bool {
	if !s.released.CompareAndSwap(false, true) {
		return false
	}
	db := s.db

	db.cmu.Lock()
	delete(db.snapshots, s)
	var pinned []*Iterator[K]
	for it := range db.iterators {
		if it.snap == s {
			pinned = append(pinned, it)
		}
	}
	db.cmu.Unlock()

	for _, it := range pinned {
		it.destroy()
	}
	db.lib.ReleaseSnapshot(db.handle, s.handle)
	log.Client.Trace().Int("iterators", len(pinned)).Msg("snapshot released")
	return true
}
