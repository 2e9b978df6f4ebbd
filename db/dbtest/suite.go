// Package dbtest holds the behaviour every db.Store implementation must share.
package dbtest

import (
	"errors"
	"testing"

	"github.com/NethermindEth/rangekv/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NewStoreFunc opens an empty store that lives until the test ends.
type NewStoreFunc func(t *testing.T) db.Store

// TestStore runs the shared store behaviour against the backend produced by newStore.
func TestStore(t *testing.T, newStore NewStoreFunc) {
	t.Run("point operations", func(t *testing.T) { testPointOps(t, newStore(t)) })
	t.Run("argument validation", func(t *testing.T) { testValidation(t, newStore(t)) })
	t.Run("range bounds", func(t *testing.T) { testBounds(t, newStore(t)) })
	t.Run("nearest seek", func(t *testing.T) { testNearestSeek(t, newStore(t)) })
	t.Run("limit", func(t *testing.T) { testLimit(t, newStore(t)) })
	t.Run("empty store", func(t *testing.T) { testEmpty(t, newStore(t)) })
	t.Run("cursor lifecycle", func(t *testing.T) { testCursorLifecycle(t, newStore(t)) })
	t.Run("early exit", func(t *testing.T) { testEarlyExit(t, newStore(t)) })
	t.Run("batch", func(t *testing.T) { testBatch(t, newStore(t)) })
	t.Run("snapshot isolation", func(t *testing.T) { testSnapshotIsolation(t, newStore(t)) })
	t.Run("snapshot release", func(t *testing.T) { testSnapshotRelease(t, newStore(t)) })
	t.Run("maintenance", func(t *testing.T) { testMaintenance(t, newStore(t)) })
}

// Fill writes every key with the value "v"+key in a single batch.
func Fill(t testing.TB, store db.Store, keys ...string) {
	t.Helper()

	require.NoError(t, db.Update(store, func(w *db.BatchWriter) error {
		for _, k := range keys {
			if err := w.Put([]byte(k), []byte("v"+k)); err != nil {
				return err
			}
		}
		return nil
	}))
}

// Keys returns the keys a scan of scope yields, in order.
func Keys(t testing.TB, scope db.Iterable, spec db.ScanSpec) []string {
	t.Helper()

	keys := []string{}
	err := db.NewRangeCursor(scope, spec).ForEach(func(key, value []byte) error {
		assert.Equal(t, "v"+string(key), string(value))
		keys = append(keys, string(key))
		return nil
	})
	require.NoError(t, err)
	return keys
}

func testPointOps(t *testing.T, store db.Store) {
	val, found, err := store.Get([]byte("missing"))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, val)

	require.NoError(t, store.Put([]byte("k"), []byte("one")))
	require.NoError(t, store.Put([]byte("k"), []byte("two")))
	val, found, err = store.Get([]byte("k"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("two"), val)

	// returned values are copies
	val[0] = 'X'
	val, _, err = store.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), val)

	require.NoError(t, store.Put([]byte("empty"), []byte{}))
	val, found, err = store.Get([]byte("empty"))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, val)

	ok, err := store.Has([]byte("k"))
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Delete([]byte("k")))
	ok, err = store.Has([]byte("k"))
	require.NoError(t, err)
	assert.False(t, ok)

	// deleting a missing key is not an error
	require.NoError(t, store.Delete([]byte("k")))
}

func testValidation(t *testing.T, store db.Store) {
	_, _, err := store.Get(nil)
	assert.ErrorIs(t, err, db.ErrInvalidArgument)
	_, err = store.Has(nil)
	assert.ErrorIs(t, err, db.ErrInvalidArgument)
	assert.ErrorIs(t, store.Put(nil, []byte("v")), db.ErrInvalidArgument)
	assert.ErrorIs(t, store.Put([]byte("k"), nil), db.ErrInvalidArgument)
	assert.ErrorIs(t, store.Delete(nil), db.ErrInvalidArgument)

	ok, err := store.Has([]byte("k"))
	require.NoError(t, err)
	assert.False(t, ok, "rejected writes must not reach the store")
}

func testBounds(t *testing.T, store db.Store) {
	Fill(t, store, "A", "B", "C", "D", "E")

	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, Keys(t, store, db.NewScanSpec()))
	assert.Equal(t, []string{"E", "D", "C", "B", "A"}, Keys(t, store, db.NewScanSpec(db.Reversed())))
	assert.Equal(t, []string{"B", "C", "D"}, Keys(t, store, db.NewScanSpec(db.From([]byte("B")), db.To([]byte("D")))))
	assert.Equal(t, []string{"D", "C", "B"},
		Keys(t, store, db.NewScanSpec(db.From([]byte("D")), db.To([]byte("B")), db.Reversed())))
	assert.Equal(t, []string{"A", "B"}, Keys(t, store, db.NewScanSpec(db.To([]byte("B")))))
	assert.Equal(t, []string{"E", "D"}, Keys(t, store, db.NewScanSpec(db.To([]byte("D")), db.Reversed())))
	assert.Equal(t, []string{"C"}, Keys(t, store, db.NewScanSpec(db.From([]byte("C")), db.To([]byte("C")))))

	// inverted bounds select nothing
	assert.Empty(t, Keys(t, store, db.NewScanSpec(db.From([]byte("D")), db.To([]byte("B")))))
	assert.Empty(t, Keys(t, store, db.NewScanSpec(db.From([]byte("B")), db.To([]byte("D")), db.Reversed())))
}

func testNearestSeek(t *testing.T, store db.Store) {
	Fill(t, store, "A", "C", "E")

	assert.Equal(t, []string{"C", "E"}, Keys(t, store, db.NewScanSpec(db.From([]byte("B")))))
	assert.Equal(t, []string{"A"}, Keys(t, store, db.NewScanSpec(db.From([]byte("B")), db.Reversed())))
	assert.Equal(t, []string{"E", "C", "A"}, Keys(t, store, db.NewScanSpec(db.From([]byte("F")), db.Reversed())))
	assert.Empty(t, Keys(t, store, db.NewScanSpec(db.From([]byte("F")))))
	assert.Empty(t, Keys(t, store, db.NewScanSpec(db.From([]byte("0")), db.Reversed())))
}

func testLimit(t *testing.T, store db.Store) {
	Fill(t, store, "A", "B", "C", "D", "E")

	assert.Equal(t, []string{"A", "B"}, Keys(t, store, db.NewScanSpec(db.WithLimit(2))))
	assert.Equal(t, []string{"E", "D"}, Keys(t, store, db.NewScanSpec(db.WithLimit(2), db.Reversed())))
	assert.Equal(t, []string{"C", "D"}, Keys(t, store, db.NewScanSpec(db.From([]byte("C")), db.To([]byte("E")), db.WithLimit(2))))
	assert.Len(t, Keys(t, store, db.NewScanSpec(db.WithLimit(10))), 5)
	assert.Empty(t, Keys(t, store, db.NewScanSpec(db.WithLimit(0))))
	assert.Empty(t, Keys(t, store, db.ScanSpec{}))

	n, err := db.NewRangeCursor(store, db.NewScanSpec(db.WithLimit(3))).Count()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func testEmpty(t *testing.T, store db.Store) {
	c := db.NewRangeCursor(store, db.NewScanSpec())
	defer func() { require.NoError(t, c.Close()) }()

	assert.False(t, c.HasNext())
	_, _, err := c.Next()
	assert.ErrorIs(t, err, db.ErrExhausted)
	assert.Equal(t, db.CodeExhausted, db.CodeOf(err))

	n, err := db.NewRangeCursor(store, db.NewScanSpec(db.Reversed())).Count()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func testCursorLifecycle(t *testing.T, store db.Store) {
	Fill(t, store, "A", "B", "C")

	c := db.NewRangeCursor(store, db.NewScanSpec())
	for _, want := range []string{"A", "B"} {
		require.True(t, c.HasNext())
		key, value, err := c.Next()
		require.NoError(t, err)
		assert.Equal(t, want, string(key))
		assert.Equal(t, "v"+want, string(value))
	}

	require.NoError(t, store.Put([]byte("D"), []byte("vD")))

	require.NoError(t, c.Rewind())
	require.NoError(t, c.Rewind())
	var keys []string
	for c.HasNext() {
		key, _, err := c.Next()
		require.NoError(t, err)
		keys = append(keys, string(key))
	}
	assert.Equal(t, []string{"A", "B", "C", "D"}, keys, "rewind reads the current state")

	_, _, err := c.Next()
	assert.ErrorIs(t, err, db.ErrExhausted)
	_, _, err = c.Next()
	assert.ErrorIs(t, err, db.ErrExhausted)
	assert.NoError(t, c.Err())

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.False(t, c.HasNext())
	_, _, err = c.Next()
	assert.ErrorIs(t, err, db.ErrCursorClosed)
	assert.Equal(t, db.CodeInvalidArgument, db.CodeOf(err))

	// a closed cursor can be rewound
	require.NoError(t, c.Rewind())
	assert.True(t, c.HasNext())
	require.NoError(t, c.Close())
}

func testEarlyExit(t *testing.T, store db.Store) {
	Fill(t, store, "A", "B", "C", "D")

	c := db.NewRangeCursor(store, db.NewScanSpec())
	var seen []string
	for key := range c.All() {
		seen = append(seen, string(key))
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"A", "B"}, seen)
	require.NoError(t, c.Err())
	_, _, err := c.Next()
	assert.ErrorIs(t, err, db.ErrCursorClosed, "breaking out of All closes the cursor")

	c = db.NewRangeCursor(store, db.NewScanSpec(db.Reversed()))
	seen = nil
	require.NoError(t, c.ForEach(func(key, _ []byte) error {
		seen = append(seen, string(key))
		return db.ErrStopIteration
	}))
	assert.Equal(t, []string{"D"}, seen)

	boom := errors.New("boom")
	c = db.NewRangeCursor(store, db.NewScanSpec())
	require.ErrorIs(t, c.ForEach(func(_, _ []byte) error { return boom }), boom)
	_, _, err = c.Next()
	assert.ErrorIs(t, err, db.ErrCursorClosed)

	c = db.NewRangeCursor(store, db.NewScanSpec())
	assert.ErrorIs(t, c.ForEach(func(_, _ []byte) error { return c.Close() }), db.ErrCursorClosed)

	var inside *db.RangeCursor
	require.ErrorIs(t, db.WithCursor(store, db.NewScanSpec(), func(c *db.RangeCursor) error {
		inside = c
		require.True(t, c.HasNext())
		return boom
	}), boom)
	_, _, err = inside.Next()
	assert.ErrorIs(t, err, db.ErrCursorClosed)
}

func testBatch(t *testing.T, store db.Store) {
	Fill(t, store, "A", "B")

	w := db.NewBatchWriter(store)
	require.NoError(t, w.Put([]byte("C"), []byte("vC")))
	require.NoError(t, w.Delete([]byte("A")))
	assert.Equal(t, 2, w.Len())
	assert.Positive(t, w.Size())
	assert.Equal(t, []string{"A", "B"}, Keys(t, store, db.NewScanSpec()), "nothing is visible before commit")
	require.NoError(t, w.Commit())
	assert.Equal(t, []string{"B", "C"}, Keys(t, store, db.NewScanSpec()))

	assert.ErrorIs(t, w.Commit(), db.ErrBatchClosed)
	assert.ErrorIs(t, w.Put([]byte("D"), []byte("vD")), db.ErrBatchClosed)
	assert.ErrorIs(t, w.Discard(), db.ErrBatchClosed)
	assert.Zero(t, w.Len())

	// an invalid operation rejects the whole batch
	w = db.NewBatchWriter(store)
	require.NoError(t, w.Put([]byte("D"), []byte("vD")))
	require.ErrorIs(t, w.Put(nil, []byte("x")), db.ErrInvalidArgument)
	require.NoError(t, w.Delete([]byte("B")))
	require.ErrorIs(t, w.Commit(), db.ErrInvalidArgument)
	assert.Equal(t, []string{"B", "C"}, Keys(t, store, db.NewScanSpec()))

	boom := errors.New("boom")
	require.ErrorIs(t, db.Update(store, func(w *db.BatchWriter) error {
		if err := w.Delete([]byte("B")); err != nil {
			return err
		}
		return boom
	}), boom)
	assert.Equal(t, []string{"B", "C"}, Keys(t, store, db.NewScanSpec()))

	w = db.NewBatchWriter(store)
	require.NoError(t, w.Put([]byte("E"), []byte("vE")))
	require.NoError(t, w.Discard())
	ok, err := store.Has([]byte("E"))
	require.NoError(t, err)
	assert.False(t, ok)

	// last write to a key wins
	require.NoError(t, db.Update(store, func(w *db.BatchWriter) error {
		if err := w.Put([]byte("F"), []byte("old")); err != nil {
			return err
		}
		if err := w.Delete([]byte("F")); err != nil {
			return err
		}
		return w.Put([]byte("F"), []byte("vF"))
	}))
	assert.Equal(t, []string{"B", "C", "F"}, Keys(t, store, db.NewScanSpec()))
}

func testSnapshotIsolation(t *testing.T, store db.Store) {
	Fill(t, store, "A", "B", "C")

	require.NoError(t, db.View(store, func(view *db.SnapshotView) error {
		require.NoError(t, store.Delete([]byte("B")))
		Fill(t, store, "D")

		val, found, err := view.Get([]byte("B"))
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []byte("vB"), val)

		ok, err := view.Has([]byte("D"))
		require.NoError(t, err)
		assert.False(t, ok)

		c, err := view.Scan(db.NewScanSpec(db.Reversed()))
		require.NoError(t, err)
		keys := []string{}
		require.NoError(t, c.ForEach(func(key, _ []byte) error {
			keys = append(keys, string(key))
			return nil
		}))
		assert.Equal(t, []string{"C", "B", "A"}, keys)
		return nil
	}))

	assert.Equal(t, []string{"A", "C", "D"}, Keys(t, store, db.NewScanSpec()))
}

func testSnapshotRelease(t *testing.T, store db.Store) {
	Fill(t, store, "A", "B", "C")

	view, err := db.NewSnapshotView(store)
	require.NoError(t, err)

	c, err := view.Scan(db.NewScanSpec())
	require.NoError(t, err)
	key, _, err := c.Next()
	require.NoError(t, err)
	assert.Equal(t, "A", string(key))

	require.NoError(t, view.Release())
	assert.ErrorIs(t, view.Release(), db.ErrSnapshotReleased)

	assert.False(t, c.HasNext())
	_, _, err = c.Next()
	assert.ErrorIs(t, err, db.ErrSnapshotReleased)
	require.NoError(t, c.Close())

	_, _, err = view.Get([]byte("A"))
	assert.ErrorIs(t, err, db.ErrSnapshotReleased)
	_, err = view.Has([]byte("A"))
	assert.ErrorIs(t, err, db.ErrSnapshotReleased)
	_, err = view.Scan(db.NewScanSpec())
	assert.ErrorIs(t, err, db.ErrSnapshotReleased)
	assert.Equal(t, db.CodeInvalidArgument, db.CodeOf(err))
}

func testMaintenance(t *testing.T, store db.Store) {
	require.NoError(t, store.Compact(nil, nil), "compacting an empty store")

	Fill(t, store, "A", "B", "C")
	require.NoError(t, store.Flush(true))
	require.NoError(t, store.Flush(false))
	require.NoError(t, store.Compact(nil, nil))
	require.NoError(t, store.Compact([]byte("A"), []byte("Z")))

	assert.ErrorIs(t, store.Compact([]byte("A"), nil), db.ErrInvalidArgument)
	assert.ErrorIs(t, store.Compact(nil, []byte("A")), db.ErrInvalidArgument)
	assert.ErrorIs(t, store.Compact([]byte("B"), []byte("A")), db.ErrInvalidArgument)
	assert.ErrorIs(t, store.Compact([]byte("A"), []byte("A")), db.ErrInvalidArgument)

	assert.Equal(t, []string{"A", "B", "C"}, Keys(t, store, db.NewScanSpec()))
}
