package leveldb

import (
	"bytes"
	"cmp"

	"github.com/eigerco/levelbridge/pkg/log"
	"github.com/eigerco/levelbridge/pkg/native"
)

// Comparator is a total order over keys. The engine stores the name with the
// database and refuses to reopen it under a different name, so changing the
// order of an existing database requires a new name.
//
// Compare may be called concurrently from engine goroutines and must not
// mutate shared state.
type Comparator[K any] interface {
	Name() string
	Compare(a, b K) int
}

// OrdComparator orders keys by their natural order.
type OrdComparator[K cmp.Ordered] struct{}

func (OrdComparator[K]) Name() string {
	return "ord_comparator"
}

func (OrdComparator[K]) Compare(a, b K) int {
	return cmp.Compare(a, b)
}

// ComparatorFunc adapts an ordering function to a Comparator.
func ComparatorFunc[K any](name string, compare func(a, b K) int) Comparator[K] {
	return funcComparator[K]{name: name, compare: compare}
}

type funcComparator[K any] struct {
	name    string
	compare func(a, b K) int
}

func (c funcComparator[K]) Name() string       { return c.name }
func (c funcComparator[K]) Compare(a, b K) int { return c.compare(a, b) }

// Reverse returns the inverse order of c under the name "<name>.reverse".
func Reverse[K any](c Comparator[K]) Comparator[K] {
	return funcComparator[K]{
		name:    c.Name() + ".reverse",
		compare: func(a, b K) int { return c.Compare(b, a) },
	}
}

// keyOrder is the typeless view of a bridge used by the callbacks.
type keyOrder interface {
	compareBytes(a, b []byte) int
	cname() *byte
}

// bridge is the state boxed for the engine. It is released only by the
// destructor callback.
type bridge[K any] struct {
	cmp   Comparator[K]
	codec KeyCodec[K]
	name  []byte
}

func newBridge[K any](c Comparator[K], codec KeyCodec[K]) *bridge[K] {
	return &bridge[K]{cmp: c, codec: codec, name: native.CString(c.Name())}
}

func (b *bridge[K]) cname() *byte {
	return &b.name[0]
}

// compareBytes decodes both keys and applies the user order. Keys that fail to
// decode sort after every well formed key and bytewise among themselves. A
// panicking comparator falls back to bytewise order.
func (b *bridge[K]) compareBytes(x, y []byte) (r int) {
	defer func() {
		if p := recover(); p != nil {
			log.Client.Warn().Interface("panic", p).Str("comparator", b.cmp.Name()).Msg("comparator panicked")
			r = bytes.Compare(x, y)
		}
	}()

	kx, errx := b.codec.Decode(x)
	ky, erry := b.codec.Decode(y)
	switch {
	case errx != nil && erry != nil:
		return bytes.Compare(x, y)
	case errx != nil:
		return 1
	case erry != nil:
		return -1
	}
	return sign(b.cmp.Compare(kx, ky))
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

func comparatorCompare(state uintptr, a *byte, alen uintptr, b *byte, blen uintptr) int32 {
	o := native.Unbox(state).(keyOrder)
	return int32(o.compareBytes(native.View(a, alen), native.View(b, blen)))
}

func comparatorName(state uintptr) *byte {
	return native.Unbox(state).(keyOrder).cname()
}

func comparatorDestroy(state uintptr) {
	native.Release(state)
}

// registerComparator hands the bridge to the engine and returns the native
// comparator. Ownership of the boxed state moves to the engine.
func registerComparator[K any](lib *native.Lib, b *bridge[K]) uintptr {
	return lib.ComparatorCreate(native.Box(b), comparatorDestroy, comparatorCompare, comparatorName)
}
