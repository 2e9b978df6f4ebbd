package db

import "bytes"

// Compare is the boundary comparator of every store: unsigned lexicographic byte order.
// It returns a negative number when a < b, zero when they are equal and a positive number when a > b.
func Compare(a, b []byte) int {
	return bytes.Compare(a, b)
}
