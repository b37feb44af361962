package host

import (
	"github.com/eigerco/levelbridge/pkg/native"
)

// iterator keeps copies of the current key and value so the pointers handed
// out by IterKey and IterValue stay valid until the next move.
type iterator struct {
	cursor Cursor
	err    error

	key   []byte
	value []byte
}

func (it *iterator) load() {
	if it.cursor == nil || !it.cursor.Valid() {
		it.key, it.value = it.key[:0], it.value[:0]
		return
	}
	it.key = append(it.key[:0], it.cursor.Key()...)
	it.value = append(it.value[:0], it.cursor.Value()...)
}

func (it *iterator) move(f func(Cursor) bool) {
	if it.cursor == nil {
		return
	}
	f(it.cursor)
	it.load()
}

func (h *Host) iter(handle uintptr) *iterator {
	return lookupAs[*iterator](h, handle)
}

func (h *Host) createIterator(handle, options uintptr) uintptr {
	db := h.db(handle)
	ro := h.readOptions(options)
	cursor, err := h.reader(db, ro).NewCursor(ro)
	return h.register(&iterator{cursor: cursor, err: err})
}

func (h *Host) iterDestroy(handle uintptr) {
	it, ok := h.unregister(handle).(*iterator)
	if !ok {
		panic("host: IterDestroy on a non-iterator handle")
	}
	if it.cursor != nil {
		_ = it.cursor.Close()
	}
}

func (h *Host) iterValid(handle uintptr) uint8 {
	it := h.iter(handle)
	return native.Bool(it.cursor != nil && it.cursor.Valid())
}

func (h *Host) iterSeekToFirst(handle uintptr) {
	h.iter(handle).move(Cursor.First)
}

func (h *Host) iterSeekToLast(handle uintptr) {
	h.iter(handle).move(Cursor.Last)
}

func (h *Host) iterSeek(handle uintptr, key *byte, keylen uintptr) {
	target := native.Copy(key, keylen)
	h.iter(handle).move(func(c Cursor) bool { return c.Seek(target) })
}

func (h *Host) iterNext(handle uintptr) {
	h.iter(handle).move(Cursor.Next)
}

func (h *Host) iterPrev(handle uintptr) {
	h.iter(handle).move(Cursor.Prev)
}

func (h *Host) iterKey(handle uintptr, klen *uintptr) *byte {
	it := h.iter(handle)
	*klen = uintptr(len(it.key))
	return native.Ptr(it.key)
}

func (h *Host) iterValue(handle uintptr, vlen *uintptr) *byte {
	it := h.iter(handle)
	*vlen = uintptr(len(it.value))
	return native.Ptr(it.value)
}

func (h *Host) iterGetError(handle uintptr, errptr **byte) {
	it := h.iter(handle)
	if it.err != nil {
		h.saveError(errptr, it.err)
		return
	}
	if it.cursor != nil {
		h.saveError(errptr, it.cursor.Error())
	}
}
