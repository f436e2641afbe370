package database

import (
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/EnsicoinDevs/arcd-sub000/internal/elog"
)

type levelDB struct {
	fn  string
	db  *leveldb.DB
	log *elog.Logger
}

func ldbOptions(cacheMB, numHandles int) *opt.Options {
	return &opt.Options{
		OpenFilesCacheCapacity: numHandles,
		BlockCacheCapacity:     cacheMB / 2 * opt.MiB,
		WriteBuffer:            cacheMB / 4 * opt.MiB,
		Filter:                 filter.NewBloomFilter(10),
	}
}

// newLevelDB opens (or recovers) a goleveldb-backed Database, mirroring
// storage/database/leveldb_database.go's NewLDBDatabase.
func newLevelDB(file string, cacheMB, numHandles int, log *elog.Logger) (Database, error) {
	if cacheMB < 16 {
		cacheMB = 16
	}
	if numHandles < 16 {
		numHandles = 16
	}

	db, err := leveldb.OpenFile(file, ldbOptions(cacheMB, numHandles))
	if _, corrupted := err.(*errors.ErrCorrupted); corrupted {
		db, err = leveldb.RecoverFile(file, nil)
	}
	if err != nil {
		return nil, err
	}
	log.Info("opened leveldb store", "writeBufferMB", cacheMB/4, "numHandles", numHandles)
	return &levelDB{fn: file, db: db, log: log}, nil
}

func (db *levelDB) Type() string { return LevelDBBackend }
func (db *levelDB) Path() string { return db.fn }

func (db *levelDB) Put(key, value []byte) error { return db.db.Put(key, value, nil) }
func (db *levelDB) Has(key []byte) (bool, error) { return db.db.Has(key, nil) }
func (db *levelDB) Get(key []byte) ([]byte, error) {
	v, err := db.db.Get(key, nil)
	if err != nil {
		return nil, err
	}
	return v, nil
}
func (db *levelDB) Delete(key []byte) error { return db.db.Delete(key, nil) }

func (db *levelDB) NewIterator() Iterator {
	return &ldbIterator{it: db.db.NewIterator(nil, nil)}
}

func (db *levelDB) NewIteratorWithPrefix(prefix []byte) Iterator {
	return &ldbIterator{it: db.db.NewIterator(util.BytesPrefix(prefix), nil)}
}

func (db *levelDB) NewBatch() Batch {
	return &ldbBatch{db: db.db, b: new(leveldb.Batch)}
}

func (db *levelDB) Close() {
	if err := db.db.Close(); err != nil {
		db.log.Error("failed to close leveldb store", "err", err)
		return
	}
	db.log.Info("closed leveldb store")
}

type ldbIterator struct{ it iterator.Iterator }

func (i *ldbIterator) Next() bool     { return i.it.Next() }
func (i *ldbIterator) Key() []byte    { return i.it.Key() }
func (i *ldbIterator) Value() []byte  { return i.it.Value() }
func (i *ldbIterator) Release()       { i.it.Release() }
func (i *ldbIterator) Error() error   { return i.it.Error() }

type ldbBatch struct {
	db   *leveldb.DB
	b    *leveldb.Batch
	size int
}

func (b *ldbBatch) Put(key, value []byte) error {
	b.b.Put(key, value)
	b.size += len(key) + len(value)
	return nil
}

func (b *ldbBatch) Delete(key []byte) error {
	b.b.Delete(key)
	b.size += len(key)
	return nil
}

func (b *ldbBatch) Write() error     { return b.db.Write(b.b, nil) }
func (b *ldbBatch) Reset()           { b.b.Reset(); b.size = 0 }
func (b *ldbBatch) ValueSize() int   { return b.size }
