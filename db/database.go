package db

import "io"

//go:generate mockgen -destination=../mocks/mock_db.go -package=mocks github.com/NethermindEth/rangekv/db Iterator,Iterable,Batch,Batcher

// Represents a data store that can read from the database
type KeyValueReader interface {
	// Checks if a key exists in the data store
	Has(key []byte) (bool, error)
	// Retrieves the value for a given key. A missing key is reported through found=false, not an error.
	Get(key []byte) (value []byte, found bool, err error)
}

// Represents a data store that can write to the database
type KeyValueWriter interface {
	// Inserts a given value into the data store
	Put(key []byte, value []byte) error
	// Deletes a given key from the data store
	Delete(key []byte) error
}

// Maintainer exposes the engine's housekeeping operations.
type Maintainer interface {
	// Flush forces in-memory state to durable storage. With wait unset the flush is only scheduled.
	Flush(wait bool) error
	// Compact compacts [from, to). Both nil compacts the whole key space; only one of them nil is rejected.
	Compact(from, to []byte) error
}

// Store is the ordered key-value engine the access layer is built on.
type Store interface {
	KeyValueReader
	KeyValueWriter
	Iterable
	Batcher
	Snapshotter
	Maintainer
	io.Closer
}
