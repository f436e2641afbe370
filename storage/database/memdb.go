package database

import (
	"bytes"
	"sort"
	"sync"
)

// memDatabase is the ephemeral in-memory Database used by tests and by
// nodes configured with the "memory" (or an empty) database backend.
type memDatabase struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemDatabase returns an ephemeral Database backed by a plain map.
func NewMemDatabase() Database {
	return &memDatabase{data: make(map[string][]byte)}
}

func (db *memDatabase) Type() string { return "memory" }
func (db *memDatabase) Path() string { return "" }

func (db *memDatabase) Put(key, value []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.data[string(key)] = append([]byte(nil), value...)
	return nil
}

func (db *memDatabase) Has(key []byte) (bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	_, ok := db.data[string(key)]
	return ok, nil
}

func (db *memDatabase) Get(key []byte) ([]byte, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	v, ok := db.data[string(key)]
	if !ok {
		return nil, errNotFound
	}
	return append([]byte(nil), v...), nil
}

func (db *memDatabase) Delete(key []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.data, string(key))
	return nil
}

func (db *memDatabase) snapshotKeys(prefix []byte) []string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	keys := make([]string, 0, len(db.data))
	for k := range db.data {
		if prefix == nil || bytes.HasPrefix([]byte(k), prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func (db *memDatabase) NewIterator() Iterator {
	return &memIterator{db: db, keys: db.snapshotKeys(nil), idx: -1}
}

func (db *memDatabase) NewIteratorWithPrefix(prefix []byte) Iterator {
	return &memIterator{db: db, keys: db.snapshotKeys(prefix), idx: -1}
}

func (db *memDatabase) NewBatch() Batch {
	return &memBatch{db: db}
}

func (db *memDatabase) Close() {}

type memIterator struct {
	db   *memDatabase
	keys []string
	idx  int
}

func (i *memIterator) Next() bool {
	i.idx++
	return i.idx < len(i.keys)
}

func (i *memIterator) Key() []byte { return []byte(i.keys[i.idx]) }
func (i *memIterator) Value() []byte {
	v, _ := i.db.Get([]byte(i.keys[i.idx]))
	return v
}
func (i *memIterator) Release()     {}
func (i *memIterator) Error() error { return nil }

type memOp struct {
	key    []byte
	value  []byte
	delete bool
}

type memBatch struct {
	db  *memDatabase
	ops []memOp
}

func (b *memBatch) Put(key, value []byte) error {
	b.ops = append(b.ops, memOp{key: key, value: value})
	return nil
}

func (b *memBatch) Delete(key []byte) error {
	b.ops = append(b.ops, memOp{key: key, delete: true})
	return nil
}

func (b *memBatch) Write() error {
	for _, op := range b.ops {
		if op.delete {
			if err := b.db.Delete(op.key); err != nil {
				return err
			}
			continue
		}
		if err := b.db.Put(op.key, op.value); err != nil {
			return err
		}
	}
	return nil
}

func (b *memBatch) Reset() { b.ops = b.ops[:0] }

func (b *memBatch) ValueSize() int {
	n := 0
	for _, op := range b.ops {
		n += len(op.key) + len(op.value)
	}
	return n
}

type notFoundErr struct{}

func (notFoundErr) Error() string { return "leveldb: not found" }

var errNotFound error = notFoundErr{}
