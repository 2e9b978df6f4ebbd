package memory

import (
	"errors"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/NethermindEth/rangekv/db"
)

var errDBClosed = errors.New("memory database closed")

var _ db.Store = (*Database)(nil)

// Represents an in-memory key-value store.
// It is thread-safe.
type Database struct {
	db       map[string][]byte
	lock     sync.RWMutex
	listener db.EventListener
}

func New() *Database {
	return &Database{
		db:       make(map[string][]byte),
		listener: &db.SelectiveListener{},
	}
}

// WithListener registers an EventListener
func (d *Database) WithListener(listener db.EventListener) *Database {
	d.listener = listener
	return d
}

func (d *Database) Has(key []byte) (bool, error) {
	if err := db.CheckKey("has", key); err != nil {
		return false, err
	}
	defer d.listener.OnIO(false, time.Now())

	d.lock.RLock()
	defer d.lock.RUnlock()

	if d.db == nil {
		return false, errDBClosed
	}

	_, ok := d.db[string(key)]
	return ok, nil
}

func (d *Database) Get(key []byte) ([]byte, bool, error) {
	if err := db.CheckKey("get", key); err != nil {
		return nil, false, err
	}
	defer d.listener.OnIO(false, time.Now())

	d.lock.RLock()
	defer d.lock.RUnlock()

	if d.db == nil {
		return nil, false, errDBClosed
	}

	val, ok := d.db[string(key)]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(val), true, nil
}

func (d *Database) Put(key, value []byte) error {
	if err := db.CheckKey("put", key); err != nil {
		return err
	}
	if err := db.CheckValue("put", value); err != nil {
		return err
	}
	defer d.listener.OnIO(true, time.Now())

	d.lock.Lock()
	defer d.lock.Unlock()

	if d.db == nil {
		return errDBClosed
	}

	d.db[string(key)] = slices.Clone(value)
	return nil
}

func (d *Database) Delete(key []byte) error {
	if err := db.CheckKey("delete", key); err != nil {
		return err
	}
	defer d.listener.OnIO(true, time.Now())

	d.lock.Lock()
	defer d.lock.Unlock()

	if d.db == nil {
		return errDBClosed
	}

	delete(d.db, string(key))
	return nil
}

func (d *Database) Close() error {
	d.lock.Lock()
	defer d.lock.Unlock()

	d.db = nil
	return nil
}

func (d *Database) NewBatch() db.Batch { return newBatch(d) }

// NewIterator returns an iterator over a sorted copy of the current contents.
func (d *Database) NewIterator() (db.Iterator, error) {
	d.lock.RLock()
	defer d.lock.RUnlock()

	if d.db == nil {
		return nil, errDBClosed
	}
	return newIterator(d.db), nil
}

// NewSnapshot returns a deep copy of the store.
func (d *Database) NewSnapshot() (db.Snapshot, error) {
	d.lock.RLock()
	defer d.lock.RUnlock()

	if d.db == nil {
		return nil, errDBClosed
	}
	return &snapshot{db: d.copyLocked()}, nil
}

// Flush is a no-op: the store has no durable state.
func (d *Database) Flush(bool) error {
	d.lock.RLock()
	defer d.lock.RUnlock()

	if d.db == nil {
		return errDBClosed
	}
	return nil
}

// Compact validates the range; there is nothing to compact.
func (d *Database) Compact(from, to []byte) error {
	if err := db.CheckRange("compact", from, to); err != nil {
		return err
	}
	return d.Flush(true)
}

// Returns a deep Copy of the key-value store
func (d *Database) Copy() *Database {
	d.lock.RLock()
	defer d.lock.RUnlock()

	return &Database{db: d.copyLocked(), listener: &db.SelectiveListener{}}
}

func (d *Database) copyLocked() map[string][]byte {
	cp := make(map[string][]byte, len(d.db))
	for k, v := range d.db {
		cp[k] = slices.Clone(v)
	}
	return cp
}

func newIterator(data map[string][]byte) *iterator {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	vals := make([][]byte, 0, len(keys))
	for _, k := range keys {
		vals = append(vals, data[k])
	}

	return &iterator{
		curInd: -1,
		keys:   keys,
		values: vals,
	}
}
