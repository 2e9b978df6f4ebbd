package memory

import (
	"slices"
	"time"

	"github.com/NethermindEth/rangekv/db"
)

var _ db.Batch = (*batch)(nil)

type batch struct {
	db *Database
	// Writes are kept in order and replayed on Write so that a put followed by a
	// delete of the same key behaves like the real store.
	writes []keyValue
	size   int
	closed bool
}

type keyValue struct {
	key    string
	value  []byte
	delete bool
}

func newBatch(db *Database) *batch {
	return &batch{db: db}
}

func (b *batch) Put(key, value []byte) error {
	if b.closed {
		return db.ErrBatchClosed
	}

	b.writes = append(b.writes, keyValue{key: string(key), value: slices.Clone(value)})
	b.size += len(key) + len(value)
	return nil
}

func (b *batch) Delete(key []byte) error {
	if b.closed {
		return db.ErrBatchClosed
	}

	b.writes = append(b.writes, keyValue{key: string(key), delete: true})
	b.size += len(key)
	return nil
}

func (b *batch) Len() int {
	return len(b.writes)
}

func (b *batch) Size() int {
	return b.size
}

// Write applies every recorded operation under a single write lock.
func (b *batch) Write() error {
	if b.closed {
		return db.ErrBatchClosed
	}
	defer b.db.listener.OnCommit(time.Now())

	b.db.lock.Lock()
	defer b.db.lock.Unlock()

	if b.db.db == nil {
		return errDBClosed
	}

	for _, write := range b.writes {
		if write.delete {
			delete(b.db.db, write.key)
		} else {
			b.db.db[write.key] = write.value
		}
	}
	return nil
}

func (b *batch) Close() error {
	b.closed = true
	b.writes = nil
	b.size = 0
	return nil
}
