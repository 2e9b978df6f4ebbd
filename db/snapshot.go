package db

import "io"

// Snapshot is a native read-only view of the database at a specific point in time.
type Snapshot interface {
	KeyValueReader
	Iterable
	io.Closer
}

// Produces a read-only snapshot of the database
type Snapshotter interface {
	NewSnapshot() (Snapshot, error)
}
