package pebble

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/NethermindEth/rangekv/db"
	"github.com/NethermindEth/rangekv/utils"
	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
)

var _ db.Store = (*DB)(nil)

type DB struct {
	pebble    *pebble.DB
	listener  db.EventListener
	closeLock sync.RWMutex
	closed    bool
}

// OpenOptions are the store-open flags.
type OpenOptions struct {
	// Create the store when path holds none.
	CreateIfMissing bool
	// Refuse to open a store that already exists at path.
	ErrorIfExists bool
}

func DefaultOpenOptions() OpenOptions {
	return OpenOptions{CreateIfMissing: true}
}

// Open opens the database at the given path. Conflicting open flags are rejected with
// db.ErrInvalidArgument before pebble touches the directory.
func Open(path string, open OpenOptions, options ...Option) (*DB, error) {
	if err := checkOpen(vfs.Default, path, open); err != nil {
		return nil, err
	}

	opts := &pebble.Options{
		ErrorIfExists:    open.ErrorIfExists,
		ErrorIfNotExists: !open.CreateIfMissing,
	}
	for _, option := range options {
		if err := option(opts); err != nil {
			return nil, err
		}
	}
	return newPebble(path, opts)
}

// NewMem opens a new in-memory database
func NewMem(options ...Option) (*DB, error) {
	opts := &pebble.Options{FS: vfs.NewMem()}
	for _, option := range options {
		if err := option(opts); err != nil {
			return nil, err
		}
	}
	return newPebble("", opts)
}

// NewMemTest opens a new in-memory database that is closed when the test ends
func NewMemTest(t testing.TB) *DB {
	t.Helper()

	memDB, err := NewMem()
	if err != nil {
		t.Fatalf("create in-memory db: %v", err)
	}
	t.Cleanup(func() {
		if err := memDB.Close(); err != nil {
			t.Errorf("close in-memory db: %v", err)
		}
	})
	return memDB
}

func checkOpen(fsys vfs.FS, path string, open OpenOptions) error {
	if !open.CreateIfMissing && open.ErrorIfExists {
		return db.NewError(db.CodeInvalidArgument, "open", errors.New("create_if_missing=false conflicts with error_if_exists=true"))
	}

	_, err := fsys.Stat(path)
	switch {
	case err == nil:
		if open.ErrorIfExists {
			return db.NewError(db.CodeInvalidArgument, "open", fmt.Errorf("%s exists (error_if_exists is true)", path))
		}
	case errors.Is(err, fs.ErrNotExist):
		if !open.CreateIfMissing {
			return db.NewError(db.CodeInvalidArgument, "open", fmt.Errorf("%s does not exist (create_if_missing is false)", path))
		}
	default:
		return classify("open", err)
	}
	return nil
}

func newPebble(path string, options *pebble.Options) (*DB, error) {
	d := &DB{listener: &db.SelectiveListener{}}

	// hookup into events
	if options.EventListener == nil {
		options.EventListener = &pebble.EventListener{}
	}
	var stallStart time.Time
	var stallL0 bool
	options.EventListener.WriteStallBegin = func(info pebble.WriteStallBeginInfo) {
		stallStart = time.Now()
		stallL0 = strings.Contains(info.Reason, "L0")
	}
	options.EventListener.WriteStallEnd = func() {
		d.listener.OnWriteStall(stallL0, time.Since(stallStart))
	}

	pDB, err := pebble.Open(path, options)
	if err != nil {
		return nil, classify("open", err)
	}
	d.pebble = pDB
	return d, nil
}

// WithListener registers an EventListener
func (d *DB) WithListener(listener db.EventListener) *DB {
	d.listener = listener
	return d
}

// Has : see db.KeyValueReader.Has
func (d *DB) Has(key []byte) (bool, error) {
	if err := db.CheckKey("has", key); err != nil {
		return false, err
	}
	release, err := d.acquire("has")
	if err != nil {
		return false, err
	}
	defer release()
	defer d.listener.OnIO(false, time.Now())

	return has(d.pebble, "has", key)
}

// Get : see db.KeyValueReader.Get
func (d *DB) Get(key []byte) ([]byte, bool, error) {
	if err := db.CheckKey("get", key); err != nil {
		return nil, false, err
	}
	release, err := d.acquire("get")
	if err != nil {
		return nil, false, err
	}
	defer release()
	defer d.listener.OnIO(false, time.Now())

	return get(d.pebble, "get", key)
}

// Put : see db.KeyValueWriter.Put
func (d *DB) Put(key, value []byte) error {
	if err := db.CheckKey("put", key); err != nil {
		return err
	}
	if err := db.CheckValue("put", value); err != nil {
		return err
	}
	release, err := d.acquire("put")
	if err != nil {
		return err
	}
	defer release()
	defer d.listener.OnIO(true, time.Now())

	return classify("put", d.pebble.Set(key, value, pebble.Sync))
}

// Delete : see db.KeyValueWriter.Delete
func (d *DB) Delete(key []byte) error {
	if err := db.CheckKey("delete", key); err != nil {
		return err
	}
	release, err := d.acquire("delete")
	if err != nil {
		return err
	}
	defer release()
	defer d.listener.OnIO(true, time.Now())

	return classify("delete", d.pebble.Delete(key, pebble.Sync))
}

// NewIterator : see db.Iterable.NewIterator
func (d *DB) NewIterator() (db.Iterator, error) {
	release, err := d.acquire("new iterator")
	if err != nil {
		return nil, err
	}
	defer release()

	it, err := d.pebble.NewIter(nil)
	if err != nil {
		return nil, classify("new iterator", err)
	}
	return &iterator{iter: it}, nil
}

// NewSnapshot : see db.Snapshotter.NewSnapshot
func (d *DB) NewSnapshot() (db.Snapshot, error) {
	release, err := d.acquire("new snapshot")
	if err != nil {
		return nil, err
	}
	defer release()

	return newSnapshot(d.pebble, d.listener), nil
}

// NewBatch : see db.Batcher.NewBatch
func (d *DB) NewBatch() db.Batch {
	return newBatch(d.pebble.NewBatch(), d, d.listener)
}

// Flush : see db.Maintainer.Flush
func (d *DB) Flush(wait bool) error {
	release, err := d.acquire("flush")
	if err != nil {
		return err
	}
	defer release()

	if wait {
		return classify("flush", d.pebble.Flush())
	}
	_, err = d.pebble.AsyncFlush()
	return classify("flush", err)
}

// Compact : see db.Maintainer.Compact
func (d *DB) Compact(from, to []byte) error {
	if err := db.CheckRange("compact", from, to); err != nil {
		return err
	}
	release, err := d.acquire("compact")
	if err != nil {
		return err
	}
	defer release()

	if from == nil {
		var ok bool
		if from, to, ok, err = d.keySpan(); err != nil || !ok {
			return err
		}
	}
	return classify("compact", d.pebble.Compact(from, to, true))
}

// keySpan returns the [first, successor(last)) range covering every key in the store.
func (d *DB) keySpan() (from, to []byte, ok bool, err error) {
	it, err := d.pebble.NewIter(nil)
	if err != nil {
		return nil, nil, false, classify("compact", err)
	}
	defer func() {
		err = utils.RunAndWrapOnError(it.Close, err)
	}()

	if !it.First() {
		return nil, nil, false, classify("compact", it.Error())
	}
	from = slices.Clone(it.Key())
	if !it.Last() {
		return nil, nil, false, classify("compact", it.Error())
	}
	to = append(slices.Clone(it.Key()), 0)
	return from, to, true, nil
}

// Close : see io.Closer.Close
func (d *DB) Close() error {
	d.closeLock.Lock()
	defer d.closeLock.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true
	return d.pebble.Close()
}

// acquire holds the store open for the duration of an operation.
func (d *DB) acquire(op string) (func(), error) {
	d.closeLock.RLock()
	if d.closed {
		d.closeLock.RUnlock()
		return nil, errClosed(op)
	}
	return d.closeLock.RUnlock, nil
}

func errClosed(op string) error {
	return db.NewError(db.CodeStore, op, pebble.ErrClosed)
}

func get(r pebble.Reader, op string, key []byte) ([]byte, bool, error) {
	data, closer, err := r.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, classify(op, err)
	}

	value := slices.Clone(data)
	if value == nil {
		value = []byte{}
	}
	return value, true, classify(op, closer.Close())
}

func has(r pebble.Reader, op string, key []byte) (bool, error) {
	_, closer, err := r.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return false, nil
		}
		return false, classify(op, err)
	}

	return true, classify(op, closer.Close())
}
