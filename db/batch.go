package db

// A write-only store that gathers changes in-memory and writes them to disk in a single atomic operation
type Batch interface {
	KeyValueWriter
	// Number of operations gathered so far
	Len() int
	// Retrieves the size in bytes of the keys and values gathered for writing
	Size() int
	// Applies every gathered operation atomically. It does not release the batch.
	Write() error
	// Releases the batch. Operations that were not written are dropped.
	Close() error
}

// Produce a batch to write to the database
type Batcher interface {
	NewBatch() Batch
}
