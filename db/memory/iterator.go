package memory

import (
	"errors"
	"slices"
	"sort"

	"github.com/NethermindEth/rangekv/db"
)

var errInvalidIterator = errors.New("iterator is not valid")

var _ db.Iterator = (*iterator)(nil)

// iterator walks a sorted copy of the store. curInd is -1 before the first key and
// len(keys) past the last one.
type iterator struct {
	curInd     int
	positioned bool
	keys       []string
	values     [][]byte
}

func (i *iterator) Valid() bool {
	return i.curInd >= 0 && i.curInd < len(i.keys)
}

func (i *iterator) First() bool {
	i.positioned = true
	i.curInd = 0
	return i.Valid()
}

func (i *iterator) Last() bool {
	i.positioned = true
	i.curInd = len(i.keys) - 1
	return i.Valid()
}

func (i *iterator) Seek(key []byte) bool {
	i.positioned = true
	i.curInd = sort.SearchStrings(i.keys, string(key))
	return i.Valid()
}

func (i *iterator) Prev() bool {
	if !i.positioned {
		return i.Last()
	}
	if i.curInd >= 0 {
		i.curInd--
	}
	return i.Valid()
}

func (i *iterator) Next() bool {
	if !i.positioned {
		return i.First()
	}
	if i.curInd < len(i.keys) {
		i.curInd++
	}
	return i.Valid()
}

func (i *iterator) Key() []byte {
	if !i.Valid() {
		return nil
	}

	return []byte(i.keys[i.curInd])
}

func (i *iterator) Value() ([]byte, error) {
	if !i.Valid() {
		return nil, errInvalidIterator
	}

	return slices.Clone(i.values[i.curInd]), nil
}

func (i *iterator) Error() error {
	return nil
}

func (i *iterator) Close() error {
	i.curInd = -1
	i.keys = nil
	i.values = nil
	return nil
}
