//go:build darwin || freebsd || linux

package libleveldb

import (
	"sync"

	"github.com/ebitengine/purego"

	"github.com/eigerco/levelbridge/pkg/native"
)

// The process can only create a bounded number of callbacks, so one
// trampoline per entry point is created and the state argument selects the
// Go record to dispatch to.

type comparatorRecord struct {
	state      uintptr
	destructor native.DestructorFunc
	compare    native.CompareFunc
	name       native.NameFunc
}

type batchRecord struct {
	state   uintptr
	put     native.BatchPutFunc
	deleted native.BatchDeleteFunc
}

type trampolines struct {
	destructor uintptr
	compare    uintptr
	name       uintptr
	put        uintptr
	deleted    uintptr
}

var callbacks = sync.OnceValue(func() trampolines {
	return trampolines{
		destructor: purego.NewCallback(func(rec uintptr) {
			r := native.Release(rec).(*comparatorRecord)
			r.destructor(r.state)
		}),
		compare: purego.NewCallback(func(rec, a, alen, b, blen uintptr) uintptr {
			r := native.Unbox(rec).(*comparatorRecord)
			return uintptr(int64(r.compare(r.state, bytePtr(a), alen, bytePtr(b), blen)))
		}),
		name: purego.NewCallback(func(rec uintptr) uintptr {
			r := native.Unbox(rec).(*comparatorRecord)
			return uintptrOf(r.name(r.state))
		}),
		put: purego.NewCallback(func(rec, key, klen, val, vlen uintptr) {
			r := native.Unbox(rec).(*batchRecord)
			r.put(r.state, bytePtr(key), klen, bytePtr(val), vlen)
		}),
		deleted: purego.NewCallback(func(rec, key, klen uintptr) {
			r := native.Unbox(rec).(*batchRecord)
			r.deleted(r.state, bytePtr(key), klen)
		}),
	}
})
