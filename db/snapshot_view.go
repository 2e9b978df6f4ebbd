package db

import (
	"errors"
	"fmt"
	"os"

	"github.com/NethermindEth/rangekv/utils"
)

var _ Iterable = (*SnapshotView)(nil)

// SnapshotView pins the state of a store and serves point reads and range scans from it.
// Iterators handed out by the view are tracked and force-closed by Release, so a cursor that
// outlives its view fails with ErrSnapshotReleased instead of reading freed state.
// A SnapshotView is not safe for concurrent use.
type SnapshotView struct {
	snapshot Snapshot
	iters    map[*viewIterator]struct{}
	released bool
}

func NewSnapshotView(s Snapshotter) (*SnapshotView, error) {
	snapshot, err := s.NewSnapshot()
	if err != nil {
		return nil, err
	}
	return &SnapshotView{
		snapshot: snapshot,
		iters:    make(map[*viewIterator]struct{}),
	}, nil
}

// View pins a snapshot of s for the duration of fn and releases it afterwards.
func View(s Snapshotter, fn func(*SnapshotView) error) error {
	view, err := NewSnapshotView(s)
	if err != nil {
		return err
	}
	defer releaseViewOnPanic(view)
	return utils.RunAndWrapOnError(view.Release, fn(view))
}

func releaseViewOnPanic(view *SnapshotView) {
	p := recover()
	if p != nil {
		if err := view.Release(); err != nil {
			fmt.Fprintf(os.Stderr, "failed releasing snapshot of panicking view: %s\n", err)
		}
		panic(p)
	}
}

func (v *SnapshotView) Get(key []byte) ([]byte, bool, error) {
	if v.released {
		return nil, false, ErrSnapshotReleased
	}
	if err := CheckKey("snapshot get", key); err != nil {
		return nil, false, err
	}
	return v.snapshot.Get(key)
}

func (v *SnapshotView) Has(key []byte) (bool, error) {
	if v.released {
		return false, ErrSnapshotReleased
	}
	if err := CheckKey("snapshot has", key); err != nil {
		return false, err
	}
	return v.snapshot.Has(key)
}

// Scan returns a cursor reading from the pinned state.
func (v *SnapshotView) Scan(spec ScanSpec) (*RangeCursor, error) {
	if v.released {
		return nil, ErrSnapshotReleased
	}
	return NewRangeCursor(v, spec), nil
}

// NewIterator : see db.Iterable.NewIterator
func (v *SnapshotView) NewIterator() (Iterator, error) {
	if v.released {
		return nil, ErrSnapshotReleased
	}
	it, err := v.snapshot.NewIterator()
	if err != nil {
		return nil, err
	}
	tracked := &viewIterator{Iterator: it, view: v}
	v.iters[tracked] = struct{}{}
	return tracked, nil
}

// Release closes every iterator still open on the view, then the native snapshot.
// Only the first call releases; later calls return ErrSnapshotReleased.
func (v *SnapshotView) Release() error {
	if v.released {
		return ErrSnapshotReleased
	}
	v.released = true

	var err error
	for it := range v.iters {
		err = errors.Join(err, it.Close())
	}
	return errors.Join(err, v.snapshot.Close())
}

// viewIterator keeps answering after its view is released: invalid, with ErrSnapshotReleased as error.
type viewIterator struct {
	Iterator
	view   *SnapshotView
	closed bool
}

func (i *viewIterator) Valid() bool {
	return !i.closed && i.Iterator.Valid()
}

func (i *viewIterator) First() bool {
	return !i.closed && i.Iterator.First()
}

func (i *viewIterator) Last() bool {
	return !i.closed && i.Iterator.Last()
}

func (i *viewIterator) Seek(key []byte) bool {
	return !i.closed && i.Iterator.Seek(key)
}

func (i *viewIterator) Next() bool {
	return !i.closed && i.Iterator.Next()
}

func (i *viewIterator) Prev() bool {
	return !i.closed && i.Iterator.Prev()
}

func (i *viewIterator) Key() []byte {
	if i.closed {
		return nil
	}
	return i.Iterator.Key()
}

func (i *viewIterator) Value() ([]byte, error) {
	if i.closed {
		return nil, ErrSnapshotReleased
	}
	return i.Iterator.Value()
}

func (i *viewIterator) Error() error {
	if i.closed {
		return ErrSnapshotReleased
	}
	return i.Iterator.Error()
}

func (i *viewIterator) Close() error {
	if i.closed {
		return nil
	}
	i.closed = true
	delete(i.view.iters, i)
	return i.Iterator.Close()
}
