package host

import (
	"github.com/eigerco/levelbridge/pkg/native"
)

type writeBatch struct {
	batch Batch
}

// callbackVisitor forwards a batch replay to the callbacks given to
// WriteBatchIterate.
type callbackVisitor struct {
	state   uintptr
	put     native.BatchPutFunc
	deleted native.BatchDeleteFunc
}

func (v callbackVisitor) Put(key, value []byte) {
	v.put(v.state, native.Ptr(key), uintptr(len(key)), native.Ptr(value), uintptr(len(value)))
}

func (v callbackVisitor) Delete(key []byte) {
	v.deleted(v.state, native.Ptr(key), uintptr(len(key)))
}

func (h *Host) writeBatchCreate() uintptr {
	return h.register(&writeBatch{batch: h.backend.NewBatch()})
}

func (h *Host) writeBatchDestroy(handle uintptr) {
	if _, ok := h.unregister(handle).(*writeBatch); !ok {
		panic("host: WriteBatchDestroy on a non-batch handle")
	}
}

func (h *Host) writeBatchClear(handle uintptr) {
	lookupAs[*writeBatch](h, handle).batch.Reset()
}

func (h *Host) writeBatchPut(handle uintptr, key *byte, klen uintptr, val *byte, vlen uintptr) {
	lookupAs[*writeBatch](h, handle).batch.Put(native.Copy(key, klen), native.Copy(val, vlen))
}

func (h *Host) writeBatchDelete(handle uintptr, key *byte, klen uintptr) {
	lookupAs[*writeBatch](h, handle).batch.Delete(native.Copy(key, klen))
}

func (h *Host) writeBatchIterate(handle, state uintptr, put native.BatchPutFunc, deleted native.BatchDeleteFunc) {
	b := lookupAs[*writeBatch](h, handle)
	// The C signature has no error slot; a batch that cannot be decoded stops
	// the replay.
	_ = b.batch.Replay(callbackVisitor{state: state, put: put, deleted: deleted})
}
