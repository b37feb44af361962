// Package leveldb implements db.KVStore over a byte-keyed leveldb.Database.
package leveldb

import (
	"errors"
	"sync"

	client "github.com/eigerco/levelbridge/pkg/leveldb"
)

type KVStore struct {
	db     *client.Database[[]byte]
	wo     *client.WriteOptions
	closed bool
	mu     sync.RWMutex
}

// NewKVStore opens the database at path. Writes are synced when syncWrites is
// set.
func NewKVStore(path string, opts *client.Options, syncWrites bool) (*KVStore, error) {
	db, err := client.Open(path, client.BytesKey, opts)
	if err != nil {
		return nil, err
	}
	return &KVStore{db: db, wo: &client.WriteOptions{Sync: syncWrites}}, nil
}

// Database exposes the underlying database for operations outside KVStore.
func (p *KVStore) Database() *client.Database[[]byte] {
	return p.db
}

func (p *KVStore) Get(key []byte) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return nil, ErrClosed
	}

	value, ok, err := p.db.Get(nil, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return value, nil
}

func (p *KVStore) Put(key, value []byte) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrClosed
	}

	return p.db.Put(p.wo, key, value)
}

func (p *KVStore) Delete(key []byte) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrClosed
	}

	return p.db.Delete(p.wo, key)
}

func (p *KVStore) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.db.Close()
}

func translate(err error) error {
	if errors.Is(err, client.ErrClosed) {
		return ErrClosed
	}
	return err
}
