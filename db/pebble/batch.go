package pebble

import (
	"time"

	"github.com/NethermindEth/rangekv/db"
	"github.com/cockroachdb/pebble"
)

var _ db.Batch = (*batch)(nil)

type batch struct {
	batch    *pebble.Batch
	db       *DB
	size     int // size of the batch in bytes
	listener db.EventListener
}

func newBatch(dbBatch *pebble.Batch, db *DB, listener db.EventListener) *batch {
	return &batch{
		batch:    dbBatch,
		db:       db,
		listener: listener,
	}
}

// Put : see db.Batch.Put
func (b *batch) Put(key, value []byte) error {
	if b.batch == nil {
		return db.ErrBatchClosed
	}

	if err := b.batch.Set(key, value, nil); err != nil {
		return classify("batch put", err)
	}
	b.size += len(key) + len(value)
	return nil
}

// Delete : see db.Batch.Delete
func (b *batch) Delete(key []byte) error {
	if b.batch == nil {
		return db.ErrBatchClosed
	}

	if err := b.batch.Delete(key, nil); err != nil {
		return classify("batch delete", err)
	}
	b.size += len(key)
	return nil
}

func (b *batch) Len() int {
	if b.batch == nil {
		return 0
	}
	return int(b.batch.Count())
}

func (b *batch) Size() int {
	return b.size
}

// Write : see db.Batch.Write
func (b *batch) Write() error {
	if b.batch == nil {
		return db.ErrBatchClosed
	}
	defer b.listener.OnCommit(time.Now())

	b.db.closeLock.RLock()
	defer b.db.closeLock.RUnlock()

	if b.db.closed {
		return errClosed("commit")
	}

	return classify("commit", b.batch.Commit(pebble.Sync))
}

// Close : see db.Batch.Close
func (b *batch) Close() error {
	if b.batch == nil {
		return nil
	}

	err := b.batch.Close()
	// Clear all the fields to prevent any further use of the batch.
	*b = batch{}
	return classify("close batch", err)
}
