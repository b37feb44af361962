// Package leveldb is a typed client for LevelDB-compatible engines.
//
// A Database is opened over a native function table (see package native) and
// a KeyCodec that turns keys of type K into the byte strings stored by the
// engine. Without a Comparator the engine orders keys by their encoded bytes,
// so codecs such as Int64Key encode numbers in an order preserving way.
//
//	db, err := leveldb.Open("/tmp/db", leveldb.Int64Key, &leveldb.Options{CreateIfMissing: true})
//	if err != nil {
//		return err
//	}
//	defer db.Close()
//
//	if err := db.Put(nil, 1, []byte("one")); err != nil {
//		return err
//	}
//	it, err := db.NewIterator(nil)
//	if err != nil {
//		return err
//	}
//	defer it.Close()
//	for k, v := range it.All() {
//		fmt.Println(k, string(v))
//	}
//
// Iterators and snapshots belong to the database that created them. Closing
// the database closes them too; any later use reports ErrClosed. A Database is
// safe for concurrent use, while iterators, snapshots and write batches must
// be used by one goroutine at a time.
package leveldb
