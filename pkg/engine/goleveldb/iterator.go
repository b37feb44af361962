package goleveldb

import (
	"github.com/syndtr/goleveldb/leveldb/iterator"
)

type cursor struct {
	it iterator.Iterator
}

func (c *cursor) First() bool          { return c.it.First() }
func (c *cursor) Last() bool           { return c.it.Last() }
func (c *cursor) Seek(key []byte) bool { return c.it.Seek(key) }
func (c *cursor) Next() bool           { return c.it.Next() }
func (c *cursor) Prev() bool           { return c.it.Prev() }
func (c *cursor) Valid() bool          { return c.it.Valid() }
func (c *cursor) Key() []byte          { return c.it.Key() }
func (c *cursor) Value() []byte        { return c.it.Value() }
func (c *cursor) Error() error         { return c.it.Error() }

func (c *cursor) Close() error {
	c.it.Release()
	return nil
}
