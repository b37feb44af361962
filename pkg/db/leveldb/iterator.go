package leveldb

import (
	"bytes"
	"fmt"

	"github.com/eigerco/levelbridge/pkg/db"
	client "github.com/eigerco/levelbridge/pkg/leveldb"
)

// Iterator walks [start, end) in bytewise order.
type Iterator struct {
	iter  *client.Iterator[[]byte]
	end   []byte
	valid bool
}

func (p *KVStore) NewIterator(start, end []byte) (db.Iterator, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return nil, ErrClosed
	}

	iter, err := p.db.NewIterator(nil)
	if err != nil {
		return nil, fmt.Errorf("kv-store: create iterator: %w", translate(err))
	}
	if start != nil {
		iter.From(start)
	}
	return &Iterator{iter: iter, end: end}, nil
}

func (it *Iterator) Next() bool {
	it.valid = it.iter.Next()
	if it.valid && it.end != nil && bytes.Compare(it.iter.Key(), it.end) >= 0 {
		it.valid = false
	}
	return it.valid
}

func (it *Iterator) Key() []byte {
	if !it.valid {
		return nil
	}
	return it.iter.Key()
}

func (it *Iterator) Value() ([]byte, error) {
	if !it.valid {
		if err := it.iter.Err(); err != nil {
			return nil, fmt.Errorf("kv-store: iterator value: %w", translate(err))
		}
		return nil, ErrIteratorInvalid
	}
	return it.iter.Value(), nil
}

func (it *Iterator) Valid() bool {
	return it.valid
}

func (it *Iterator) Err() error {
	if err := it.iter.Err(); err != nil {
		return fmt.Errorf("kv-store: iterator: %w", translate(err))
	}
	return nil
}

func (it *Iterator) Close() error {
	return it.iter.Close()
}
