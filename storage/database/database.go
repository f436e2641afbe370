// Package database provides the keyed on-disk storage abstraction shared by
// the chain store, UTXO store and address book — one logical namespace per
// store, each backed by its own opened handle of a selectable KV engine.
package database

import (
	"github.com/EnsicoinDevs/arcd-sub000/internal/elog"
	"github.com/EnsicoinDevs/arcd-sub000/internal/xerrors"
)

// Batch accumulates writes to be committed atomically.
type Batch interface {
	Put(key, value []byte) error
	Delete(key []byte) error
	Write() error
	Reset()
	ValueSize() int
}

// Iterator walks a key range in lexicographic order.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Release()
	Error() error
}

// Database is one opened logical KV namespace.
type Database interface {
	Type() string
	Path() string

	Put(key, value []byte) error
	Has(key []byte) (bool, error)
	Get(key []byte) ([]byte, error)
	Delete(key []byte) error

	NewIterator() Iterator
	NewIteratorWithPrefix(prefix []byte) Iterator
	NewBatch() Batch

	Close()
}

const (
	LevelDBBackend = "leveldb"
	BadgerBackend = "badger"
)

// Open opens (creating if absent) the named logical namespace under dir
// using the requested backend, mirroring node/service.go's
// ServiceContext.OpenDatabase backend switch.
func Open(backend, dir string, cache, handles int) (Database, error) {
	log := elog.New("database", "dir", dir, "backend", backend)
	switch backend {
	case LevelDBBackend:
		return newLevelDB(dir, cache, handles, log)
	case BadgerBackend:
		return newBadgerDB(dir, log)
	case "memory", "":
		return NewMemDatabase(), nil
	default:
		return nil, xerrors.Wrapf(xerrors.KindDatabaseError, nil, "unknown database backend %q", backend)
	}
}
