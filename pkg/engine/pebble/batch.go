package pebble

import (
	"github.com/eigerco/levelbridge/pkg/native/host"
)

type op struct {
	deleted bool
	key     []byte
	value   []byte
}

// batch records operations until the batch is written, so it can be replayed
// and reused across databases.
type batch struct {
	ops []op
}

func (b *batch) Put(key, value []byte) {
	b.ops = append(b.ops, op{key: key, value: value})
}

func (b *batch) Delete(key []byte) {
	b.ops = append(b.ops, op{deleted: true, key: key})
}

func (b *batch) Reset() {
	b.ops = b.ops[:0]
}

func (b *batch) Len() int {
	return len(b.ops)
}

func (b *batch) Replay(v host.BatchVisitor) error {
	for _, o := range b.ops {
		if o.deleted {
			v.Delete(o.key)
		} else {
			v.Put(o.key, o.value)
		}
	}
	return nil
}
