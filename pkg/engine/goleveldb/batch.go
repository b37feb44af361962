package goleveldb

import (
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/eigerco/levelbridge/pkg/native/host"
)

type batch struct {
	b *leveldb.Batch
}

func (b *batch) Put(key, value []byte) {
	b.b.Put(key, value)
}

func (b *batch) Delete(key []byte) {
	b.b.Delete(key)
}

func (b *batch) Reset() {
	b.b.Reset()
}

func (b *batch) Len() int {
	return b.b.Len()
}

func (b *batch) Replay(v host.BatchVisitor) error {
	return b.b.Replay(v)
}
