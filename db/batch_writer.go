package db

import (
	"fmt"
	"os"

	"github.com/NethermindEth/rangekv/utils"
)

// BatchWriter accumulates puts and deletes and applies them to the store as one atomic write.
//
// Arguments are validated as operations are appended; the first invalid one poisons the batch
// so that Commit applies nothing. Exactly one terminal action, Commit or Discard, is allowed.
// A BatchWriter is not safe for concurrent use.
type BatchWriter struct {
	batch Batch
	err   error
	done  bool
}

func NewBatchWriter(b Batcher) *BatchWriter {
	return &BatchWriter{batch: b.NewBatch()}
}

// Update runs fn against a fresh batch and commits it when fn succeeds; otherwise the batch is discarded.
func Update(b Batcher, fn func(*BatchWriter) error) error {
	w := NewBatchWriter(b)
	defer discardBatchOnPanic(w)
	if err := fn(w); err != nil {
		return utils.RunAndWrapOnError(w.Discard, err)
	}
	return w.Commit()
}

func discardBatchOnPanic(w *BatchWriter) {
	p := recover()
	if p != nil {
		if err := w.Discard(); err != nil {
			fmt.Fprintf(os.Stderr, "failed discarding panicking batch: %s\n", err)
		}
		panic(p)
	}
}

func (w *BatchWriter) Put(key, value []byte) error {
	if w.done {
		return ErrBatchClosed
	}
	if err := CheckKey("batch put", key); err != nil {
		return w.poison(err)
	}
	if err := CheckValue("batch put", value); err != nil {
		return w.poison(err)
	}
	if err := w.batch.Put(key, value); err != nil {
		return w.poison(err)
	}
	return nil
}

func (w *BatchWriter) Delete(key []byte) error {
	if w.done {
		return ErrBatchClosed
	}
	if err := CheckKey("batch delete", key); err != nil {
		return w.poison(err)
	}
	if err := w.batch.Delete(key); err != nil {
		return w.poison(err)
	}
	return nil
}

// Len returns the number of operations accepted so far.
func (w *BatchWriter) Len() int {
	if w.done {
		return 0
	}
	return w.batch.Len()
}

func (w *BatchWriter) Size() int {
	if w.done {
		return 0
	}
	return w.batch.Size()
}

// Commit applies every accumulated operation atomically and releases the batch, on failure too.
// A failed batch cannot be retried.
func (w *BatchWriter) Commit() error {
	if w.done {
		return ErrBatchClosed
	}
	w.done = true

	if w.err != nil {
		return utils.RunAndWrapOnError(w.batch.Close, fmt.Errorf("batch rejected: %w", w.err))
	}
	return utils.RunAndWrapOnError(w.batch.Close, w.batch.Write())
}

// Discard releases the batch without applying anything.
func (w *BatchWriter) Discard() error {
	if w.done {
		return ErrBatchClosed
	}
	w.done = true
	return w.batch.Close()
}

func (w *BatchWriter) poison(err error) error {
	if w.err == nil {
		w.err = err
	}
	return err
}
