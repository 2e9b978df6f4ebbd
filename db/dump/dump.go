// Package dump streams key ranges in and out of a store as a sequence of CBOR items:
// a header followed by one item per entry, in scan order.
package dump

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/NethermindEth/rangekv/db"
	"github.com/fxamacker/cbor/v2"
)

const (
	formatName    = "rangekv-dump"
	formatVersion = 1

	// DefaultBatchSize is the number of entries Import commits at once.
	DefaultBatchSize = 1024
)

var ErrFormat = errors.New("not a rangekv dump")

type header struct {
	_       struct{} `cbor:",toarray"`
	Format  string
	Version uint
}

// Entry is a single key/value pair of a dump.
type Entry struct {
	_     struct{} `cbor:",toarray"`
	Key   []byte
	Value []byte
}

var (
	modesOnce sync.Once
	encMode   cbor.EncMode
	decMode   cbor.DecMode
)

func initModes() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	decMode, err = cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		panic(err)
	}
}

// Export writes every entry the cursor yields to w and returns how many were written.
// The cursor is closed when Export returns.
func Export(w io.Writer, c *db.RangeCursor) (int, error) {
	modesOnce.Do(initModes)
	enc := encMode.NewEncoder(w)

	if err := enc.Encode(header{Format: formatName, Version: formatVersion}); err != nil {
		return 0, errors.Join(fmt.Errorf("write header: %w", err), c.Close())
	}

	n := 0
	err := c.ForEach(func(key, value []byte) error {
		if err := enc.Encode(Entry{Key: key, Value: value}); err != nil {
			return fmt.Errorf("write entry %d: %w", n, err)
		}
		n++
		return nil
	})
	return n, err
}

// Import reads a dump from r and writes its entries to b, committing every batchSize entries.
// A non-positive batchSize uses DefaultBatchSize. On failure the entries of earlier batches stay written.
func Import(r io.Reader, b db.Batcher, batchSize int) (int, error) {
	modesOnce.Do(initModes)
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	dec := decMode.NewDecoder(r)

	var h header
	if err := dec.Decode(&h); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, ErrFormat
		}
		return 0, fmt.Errorf("read header: %w", err)
	}
	if h.Format != formatName {
		return 0, ErrFormat
	}
	if h.Version != formatVersion {
		return 0, fmt.Errorf("%w: unsupported version %d", ErrFormat, h.Version)
	}

	n := 0
	for done := false; !done; {
		var pending int
		err := db.Update(b, func(w *db.BatchWriter) error {
			for w.Len() < batchSize {
				var e Entry
				if err := dec.Decode(&e); err != nil {
					if errors.Is(err, io.EOF) {
						done = true
						break
					}
					return fmt.Errorf("read entry %d: %w", n+w.Len(), err)
				}
				if err := w.Put(nonNil(e.Key), nonNil(e.Value)); err != nil {
					return err
				}
			}
			pending = w.Len()
			return nil
		})
		if err != nil {
			return n, err
		}
		n += pending
	}
	return n, nil
}

func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
