package db_test

import (
	"errors"
	"testing"

	"github.com/NethermindEth/rangekv/db"
	"github.com/NethermindEth/rangekv/db/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotView(t *testing.T) {
	store := memory.New()
	require.NoError(t, store.Put([]byte("a"), []byte("1")))

	t.Run("validates keys", func(t *testing.T) {
		require.NoError(t, db.View(store, func(view *db.SnapshotView) error {
			_, _, err := view.Get(nil)
			assert.ErrorIs(t, err, db.ErrInvalidArgument)
			_, err = view.Has(nil)
			assert.ErrorIs(t, err, db.ErrInvalidArgument)
			return nil
		}))
	})

	t.Run("releases on error", func(t *testing.T) {
		boom := errors.New("boom")
		var leaked *db.SnapshotView
		err := db.View(store, func(view *db.SnapshotView) error {
			leaked = view
			return boom
		})
		require.ErrorIs(t, err, boom)
		assert.ErrorIs(t, leaked.Release(), db.ErrSnapshotReleased)
	})

	t.Run("release closes every open cursor", func(t *testing.T) {
		view, err := db.NewSnapshotView(store)
		require.NoError(t, err)

		cursors := make([]*db.RangeCursor, 3)
		for i := range cursors {
			cursors[i], err = view.Scan(db.NewScanSpec())
			require.NoError(t, err)
			require.True(t, cursors[i].HasNext())
		}
		require.NoError(t, view.Release())

		for _, c := range cursors {
			_, _, err := c.Next()
			assert.ErrorIs(t, err, db.ErrSnapshotReleased)
			require.NoError(t, c.Close())
		}

		// rewinding a cursor of a released view fails the same way
		assert.ErrorIs(t, cursors[0].Rewind(), db.ErrSnapshotReleased)
	})
}
