package host

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/eigerco/levelbridge/pkg/log"
	"github.com/eigerco/levelbridge/pkg/native"
)

type database struct {
	store Store
	path  string
}

type snapshot struct {
	view View
	db   uintptr
}

func (h *Host) db(handle uintptr) *database {
	return lookupAs[*database](h, handle)
}

func (h *Host) reader(db *database, ro *ReadOptions) Reader {
	if ro.Snapshot != nil {
		return ro.Snapshot
	}
	return db.store
}

func (h *Host) openDB(options uintptr, name string, errptr **byte) uintptr {
	opts := *h.options(options)
	if err := h.lockPath(name); err != nil {
		h.saveError(errptr, err)
		return 0
	}
	store, err := h.backend.Open(name, &opts)
	if err != nil {
		h.unlockPath(name)
		h.saveError(errptr, err)
		return 0
	}
	log.Engine.Debug().Str("engine", h.backend.Name()).Str("path", name).Msg("database opened")
	return h.register(&database{store: store, path: name})
}

func (h *Host) closeDB(handle uintptr) {
	db, ok := h.unregister(handle).(*database)
	if !ok {
		panic("host: Close on a non-database handle")
	}
	if err := db.store.Close(); err != nil {
		log.Engine.Warn().Err(err).Str("path", db.path).Msg("close failed")
	}
	h.unlockPath(db.path)
	log.Engine.Debug().Str("engine", h.backend.Name()).Str("path", db.path).Msg("database closed")
}

func (h *Host) put(handle, options uintptr, key *byte, keylen uintptr, val *byte, vallen uintptr, errptr **byte) {
	err := h.db(handle).store.Put(native.View(key, keylen), native.View(val, vallen), h.writeOptions(options))
	h.saveError(errptr, err)
}

func (h *Host) delete(handle, options uintptr, key *byte, keylen uintptr, errptr **byte) {
	err := h.db(handle).store.Delete(native.View(key, keylen), h.writeOptions(options))
	h.saveError(errptr, err)
}

func (h *Host) write(handle, options, batch uintptr, errptr **byte) {
	b := lookupAs[*writeBatch](h, batch)
	err := h.db(handle).store.Write(b.batch, h.writeOptions(options))
	h.saveError(errptr, err)
}

func (h *Host) get(handle, options uintptr, key *byte, keylen uintptr, vallen *uintptr, errptr **byte) *byte {
	db := h.db(handle)
	ro := h.readOptions(options)
	value, err := h.reader(db, ro).Get(native.View(key, keylen), ro)
	if errors.Is(err, ErrNotFound) {
		*vallen = 0
		return nil
	}
	if err != nil {
		*vallen = 0
		h.saveError(errptr, err)
		return nil
	}
	*vallen = uintptr(len(value))
	return h.alloc(value)
}

func (h *Host) createSnapshot(handle uintptr) uintptr {
	view, err := h.db(handle).store.Snapshot()
	if err != nil {
		log.Engine.Error().Err(err).Msg("snapshot failed")
		return 0
	}
	return h.register(&snapshot{view: view, db: handle})
}

func (h *Host) releaseSnapshot(handle, snap uintptr) {
	s := lookupAs[*snapshot](h, snap)
	if s.db != handle {
		panic(fmt.Sprintf("host: snapshot %#x released against database %#x", snap, handle))
	}
	h.unregister(snap)
	s.view.Release()
}

func (h *Host) propertyValue(handle uintptr, name string) *byte {
	v, ok := h.db(handle).store.Property(name)
	if !ok {
		return nil
	}
	return h.alloc([]byte(v))
}

func (h *Host) approximateSizes(handle uintptr, numRanges int32, startKeys **byte, startLens *uintptr,
	limitKeys **byte, limitLens *uintptr, sizes *uint64) {
	if numRanges <= 0 {
		return
	}
	n := int(numRanges)
	starts := unsafe.Slice(startKeys, n)
	slens := unsafe.Slice(startLens, n)
	limits := unsafe.Slice(limitKeys, n)
	llens := unsafe.Slice(limitLens, n)
	out := unsafe.Slice(sizes, n)

	store := h.db(handle).store
	for i := 0; i < n; i++ {
		size, err := store.ApproximateSize(native.View(starts[i], slens[i]), native.View(limits[i], llens[i]))
		if err != nil {
			log.Engine.Warn().Err(err).Msg("approximate size failed")
			size = 0
		}
		out[i] = size
	}
}

func (h *Host) compactRange(handle uintptr, start *byte, startLen uintptr, limit *byte, limitLen uintptr) {
	if err := h.db(handle).store.CompactRange(native.View(start, startLen), native.View(limit, limitLen)); err != nil {
		log.Engine.Warn().Err(err).Msg("compaction failed")
	}
}

func (h *Host) destroyDB(options uintptr, name string, errptr **byte) {
	opts := *h.options(options)
	if err := h.lockPath(name); err != nil {
		h.saveError(errptr, err)
		return
	}
	defer h.unlockPath(name)
	h.saveError(errptr, h.backend.Destroy(name, &opts))
}

func (h *Host) repairDB(options uintptr, name string, errptr **byte) {
	opts := *h.options(options)
	if err := h.lockPath(name); err != nil {
		h.saveError(errptr, err)
		return
	}
	defer h.unlockPath(name)
	h.saveError(errptr, h.backend.Repair(name, &opts))
}
