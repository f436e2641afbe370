package database

import (
	"github.com/dgraph-io/badger"

	"github.com/EnsicoinDevs/arcd-sub000/internal/elog"
)

// badgerDB is the alternate KV backend selectable via config.DBBadger,
// mirroring storage/database/db_manager.go's BADGER case.
type badgerDB struct {
	fn  string
	db  *badger.DB
	log *elog.Logger
}

func newBadgerDB(dir string, log *elog.Logger) (Database, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	log.Info("opened badger store")
	return &badgerDB{fn: dir, db: db, log: log}, nil
}

func (db *badgerDB) Type() string { return BadgerBackend }
func (db *badgerDB) Path() string { return db.fn }

func (db *badgerDB) Put(key, value []byte) error {
	return db.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

func (db *badgerDB) Has(key []byte) (bool, error) {
	found := false
	err := db.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	return found, err
}

func (db *badgerDB) Get(key []byte) ([]byte, error) {
	var out []byte
	err := db.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			out = append([]byte(nil), val...)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (db *badgerDB) Delete(key []byte) error {
	return db.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

func (db *badgerDB) NewIterator() Iterator {
	txn := db.db.NewTransaction(false)
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	it.Rewind()
	return &badgerIterator{txn: txn, it: it, started: false}
}

func (db *badgerDB) NewIteratorWithPrefix(prefix []byte) Iterator {
	txn := db.db.NewTransaction(false)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	it.Seek(prefix)
	return &badgerIterator{txn: txn, it: it, started: false}
}

func (db *badgerDB) NewBatch() Batch {
	return &badgerBatch{wb: db.db.NewWriteBatch()}
}

func (db *badgerDB) Close() {
	if err := db.db.Close(); err != nil {
		db.log.Error("failed to close badger store", "err", err)
		return
	}
	db.log.Info("closed badger store")
}

type badgerIterator struct {
	txn     *badger.Txn
	it      *badger.Iterator
	started bool
	cur     []byte
}

func (i *badgerIterator) Next() bool {
	if !i.started {
		i.started = true
	} else {
		i.it.Next()
	}
	if !i.it.Valid() {
		return false
	}
	item := i.it.Item()
	val, err := item.ValueCopy(nil)
	if err != nil {
		return false
	}
	i.cur = val
	return true
}

func (i *badgerIterator) Key() []byte   { return i.it.Item().KeyCopy(nil) }
func (i *badgerIterator) Value() []byte { return i.cur }
func (i *badgerIterator) Release()      { i.it.Close(); i.txn.Discard() }
func (i *badgerIterator) Error() error  { return nil }

type badgerBatch struct {
	wb   *badger.WriteBatch
	size int
}

func (b *badgerBatch) Put(key, value []byte) error {
	b.size += len(key) + len(value)
	return b.wb.Set(key, value)
}

func (b *badgerBatch) Delete(key []byte) error {
	b.size += len(key)
	return b.wb.Delete(key)
}

func (b *badgerBatch) Write() error   { return b.wb.Flush() }
func (b *badgerBatch) Reset()         { b.size = 0 }
func (b *badgerBatch) ValueSize() int { return b.size }
