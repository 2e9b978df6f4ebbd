package db

import (
	"errors"
	"iter"
	"slices"

	"github.com/NethermindEth/rangekv/utils"
)

type cursorState uint8

const (
	unpositioned cursorState = iota
	positioned
	closed
)

// RangeCursor enumerates the entries of a read scope selected by a ScanSpec.
//
// The cursor owns a native iterator between Rewind and Close. ForEach, All and WithCursor
// release it on every exit path; callers driving HasNext/Next by hand must Close it themselves.
// A RangeCursor is not safe for concurrent use.
type RangeCursor struct {
	scope     Iterable
	spec      ScanSpec
	it        Iterator
	remaining int
	state     cursorState
	err       error
}

func NewRangeCursor(scope Iterable, spec ScanSpec) *RangeCursor {
	return &RangeCursor{scope: scope, spec: spec.clone()}
}

// WithCursor creates a cursor over scope, hands it to fn and closes it once fn returns.
func WithCursor(scope Iterable, spec ScanSpec, fn func(*RangeCursor) error) (err error) {
	c := NewRangeCursor(scope, spec)
	defer func() {
		err = utils.RunAndWrapOnError(c.Close, err)
	}()
	return fn(c)
}

// Err returns the last failure raised by the native iterator.
func (c *RangeCursor) Err() error {
	return c.err
}

// Rewind releases any held iterator and positions a fresh one on the first entry of the scan.
func (c *RangeCursor) Rewind() error {
	c.err = nil
	if err := c.release(); err != nil {
		c.state = unpositioned
		return c.fail(err)
	}
	c.state = unpositioned

	it, err := c.scope.NewIterator()
	if err != nil {
		return c.fail(err)
	}
	c.it = it
	c.state = positioned
	c.remaining = c.spec.budget()

	if err := c.seek(); err != nil {
		return c.fail(err)
	}
	return nil
}

func (c *RangeCursor) seek() error {
	from := c.spec.From
	if !c.spec.Reverse {
		if from == nil {
			c.it.First()
		} else {
			c.it.Seek(from)
		}
		return c.it.Error()
	}

	switch {
	case from == nil:
		c.it.Last()
	case c.it.Seek(from):
		if Compare(from, c.it.Key()) < 0 {
			c.it.Prev()
		}
	default:
		if err := c.it.Error(); err != nil {
			return err
		}
		// from is past every key
		c.it.Last()
	}
	return c.it.Error()
}

// HasNext reports whether Next would yield an entry. An unpositioned cursor is rewound first;
// a failure of that rewind makes HasNext false and is reported by Err.
func (c *RangeCursor) HasNext() bool {
	if c.state == unpositioned {
		if err := c.Rewind(); err != nil {
			return false
		}
	}
	return c.hasNext()
}

func (c *RangeCursor) hasNext() bool {
	if c.state != positioned || c.remaining <= 0 || !c.it.Valid() {
		return false
	}
	if c.spec.To == nil {
		return true
	}
	return c.spec.inBounds(c.it.Key())
}

// Next returns a copy of the current entry and advances. It fails with ErrExhausted once the
// scan has no more entries, and with ErrCursorClosed after Close.
func (c *RangeCursor) Next() ([]byte, []byte, error) {
	switch c.state {
	case closed:
		return nil, nil, ErrCursorClosed
	case unpositioned:
		if err := c.Rewind(); err != nil {
			return nil, nil, err
		}
	}

	if !c.hasNext() {
		if c.err != nil {
			return nil, nil, c.err
		}
		if err := c.it.Error(); err != nil {
			return nil, nil, c.fail(err)
		}
		return nil, nil, ErrExhausted
	}

	key, value, err := c.entry()
	if err != nil {
		return nil, nil, c.fail(err)
	}
	// an advance failure is reported by the following call, the current entry is intact
	if err := c.advance(); err != nil {
		c.fail(err)
	}
	return key, value, nil
}

// ForEach rewinds the cursor and calls visit for every entry in scan order. The cursor is closed
// when ForEach returns, whatever the outcome. A visitor returning ErrStopIteration ends the scan
// without an error; any other visitor error is returned as is.
func (c *RangeCursor) ForEach(visit func(key, value []byte) error) (err error) {
	defer func() {
		err = utils.RunAndWrapOnError(c.Close, err)
	}()

	if err := c.Rewind(); err != nil {
		return err
	}

	for c.hasNext() {
		key, value, err := c.entry()
		if err != nil {
			return c.fail(err)
		}
		if err := visit(key, value); err != nil {
			if errors.Is(err, ErrStopIteration) {
				return nil
			}
			return err
		}
		if c.state != positioned {
			return ErrCursorClosed
		}
		if err := c.advance(); err != nil {
			return c.fail(err)
		}
	}
	if err := c.it.Error(); err != nil {
		return c.fail(err)
	}
	return nil
}

// All is ForEach as a range-over-func sequence; breaking out of the loop closes the cursor.
// Failures are reported by Err once the loop ends.
func (c *RangeCursor) All() iter.Seq2[[]byte, []byte] {
	return func(yield func([]byte, []byte) bool) {
		err := c.ForEach(func(key, value []byte) error {
			if !yield(key, value) {
				return ErrStopIteration
			}
			return nil
		})
		c.err = err
	}
}

// Count consumes the scan and returns the number of entries it yields.
func (c *RangeCursor) Count() (int, error) {
	n := 0
	err := c.ForEach(func(_, _ []byte) error {
		n++
		return nil
	})
	return n, err
}

// Close releases the native iterator. It is safe to call more than once.
func (c *RangeCursor) Close() error {
	if c.state == closed {
		return nil
	}
	c.state = closed
	return c.release()
}

func (c *RangeCursor) advance() error {
	if c.spec.Reverse {
		c.it.Prev()
	} else {
		c.it.Next()
	}
	c.remaining--
	return c.it.Error()
}

func (c *RangeCursor) entry() ([]byte, []byte, error) {
	value, err := c.it.Value()
	if err != nil {
		return nil, nil, err
	}
	return slices.Clone(c.it.Key()), slices.Clone(value), nil
}

func (c *RangeCursor) release() error {
	if c.it == nil {
		return nil
	}
	err := c.it.Close()
	c.it = nil
	return err
}

func (c *RangeCursor) fail(err error) error {
	c.err = err
	return err
}
