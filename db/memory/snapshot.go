package memory

import (
	"errors"
	"slices"

	"github.com/NethermindEth/rangekv/db"
)

var errSnapshotClosed = errors.New("memory snapshot closed")

var _ db.Snapshot = (*snapshot)(nil)

// snapshot is a frozen copy of the store; nothing writes to it after creation.
type snapshot struct {
	db map[string][]byte
}

func (s *snapshot) Has(key []byte) (bool, error) {
	if s.db == nil {
		return false, errSnapshotClosed
	}
	_, ok := s.db[string(key)]
	return ok, nil
}

func (s *snapshot) Get(key []byte) ([]byte, bool, error) {
	if s.db == nil {
		return nil, false, errSnapshotClosed
	}
	val, ok := s.db[string(key)]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(val), true, nil
}

func (s *snapshot) NewIterator() (db.Iterator, error) {
	if s.db == nil {
		return nil, errSnapshotClosed
	}
	return newIterator(s.db), nil
}

func (s *snapshot) Close() error {
	s.db = nil
	return nil
}
