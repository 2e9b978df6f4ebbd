package pebble

import (
	"time"

	"github.com/NethermindEth/rangekv/db"
	"github.com/cockroachdb/pebble"
)

var _ db.Snapshot = (*snapshot)(nil)

type snapshot struct {
	snapshot *pebble.Snapshot
	listener db.EventListener
}

func newSnapshot(pDB *pebble.DB, listener db.EventListener) *snapshot {
	return &snapshot{snapshot: pDB.NewSnapshot(), listener: listener}
}

func (s *snapshot) Has(key []byte) (bool, error) {
	defer s.listener.OnIO(false, time.Now())
	return has(s.snapshot, "snapshot has", key)
}

func (s *snapshot) Get(key []byte) ([]byte, bool, error) {
	defer s.listener.OnIO(false, time.Now())
	return get(s.snapshot, "snapshot get", key)
}

func (s *snapshot) NewIterator() (db.Iterator, error) {
	it, err := s.snapshot.NewIter(nil)
	if err != nil {
		return nil, classify("snapshot iterator", err)
	}
	return &iterator{iter: it}, nil
}

func (s *snapshot) Close() error {
	return classify("release snapshot", s.snapshot.Close())
}
