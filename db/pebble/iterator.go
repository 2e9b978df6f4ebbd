package pebble

import (
	"github.com/NethermindEth/rangekv/db"
	"github.com/cockroachdb/pebble"
)

var _ db.Iterator = (*iterator)(nil)

type iterator struct {
	iter       *pebble.Iterator
	positioned bool
}

// Valid : see db.Iterator.Valid
func (i *iterator) Valid() bool {
	return i.iter.Valid()
}

// First : see db.Iterator.First
func (i *iterator) First() bool {
	i.positioned = true
	return i.iter.First()
}

// Last : see db.Iterator.Last
func (i *iterator) Last() bool {
	i.positioned = true
	return i.iter.Last()
}

// Seek : see db.Iterator.Seek
func (i *iterator) Seek(key []byte) bool {
	i.positioned = true
	return i.iter.SeekGE(key)
}

// Next : see db.Iterator.Next
func (i *iterator) Next() bool {
	if !i.positioned {
		return i.First()
	}
	return i.iter.Next()
}

// Prev : see db.Iterator.Prev
func (i *iterator) Prev() bool {
	if !i.positioned {
		return i.Last()
	}
	return i.iter.Prev()
}

// Key : see db.Iterator.Key
func (i *iterator) Key() []byte {
	return i.iter.Key()
}

// Value : see db.Iterator.Value
func (i *iterator) Value() ([]byte, error) {
	val, err := i.iter.ValueAndErr()
	if err != nil {
		return nil, classify("iterator value", err)
	}
	return val, nil
}

// Error : see db.Iterator.Error
func (i *iterator) Error() error {
	return classify("iterate", i.iter.Error())
}

// Close : see db.Iterator.Close
func (i *iterator) Close() error {
	if i.iter == nil {
		return nil
	}
	err := i.iter.Close()
	i.iter = nil
	return classify("close iterator", err)
}
