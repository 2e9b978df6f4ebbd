package db

import "io"

// Iterator is a native cursor over a store's key/value pairs, ordered by [Compare].
// It must be closed after use. A single iterator cannot be used concurrently. Multiple iterators can be used
// concurrently.
type Iterator interface {
	io.Closer

	// Valid returns true if the iterator is positioned at a valid key/value pair.
	Valid() bool

	// First moves the iterator to the first key/value pair.
	First() bool

	// Last moves the iterator to the last key/value pair.
	Last() bool

	// Seek moves the iterator to the smallest key greater than or equal to key.
	Seek(key []byte) bool

	// Next moves the iterator to the next key/value pair. It returns whether the
	// iterator is valid after the call.
	Next() bool

	// Prev moves the iterator to the previous key/value pair. It returns whether the
	// iterator is valid after the call.
	Prev() bool

	// Key returns the key at the current position. The slice is only valid until the next move.
	Key() []byte

	// Value returns the value at the current position. The slice is only valid until the next move.
	Value() ([]byte, error)

	// Error returns the failure that invalidated the iterator, if any.
	// Running off either end of the key space is not an error.
	Error() error
}

// Iterable is a read scope that can hand out native iterators: the live store or a pinned snapshot.
type Iterable interface {
	NewIterator() (Iterator, error)
}
