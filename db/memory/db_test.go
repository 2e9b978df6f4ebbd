package memory_test

import (
	"testing"
	"time"

	"github.com/NethermindEth/rangekv/db"
	"github.com/NethermindEth/rangekv/db/dbtest"
	"github.com/NethermindEth/rangekv/db/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	dbtest.TestStore(t, func(t *testing.T) db.Store {
		store := memory.New()
		t.Cleanup(func() {
			require.NoError(t, store.Close())
		})
		return store
	})
}

func TestCopy(t *testing.T) {
	store := memory.New()
	dbtest.Fill(t, store, "a", "b")

	cp := store.Copy()
	require.NoError(t, store.Delete([]byte("a")))

	assert.Equal(t, []string{"a", "b"}, dbtest.Keys(t, cp, db.NewScanSpec()))
	assert.Equal(t, []string{"b"}, dbtest.Keys(t, store, db.NewScanSpec()))
}

func TestClosed(t *testing.T) {
	store := memory.New()
	w := db.NewBatchWriter(store)
	require.NoError(t, w.Put([]byte("a"), []byte("1")))
	require.NoError(t, store.Close())

	require.Error(t, store.Put([]byte("a"), []byte("1")))
	_, _, err := store.Get([]byte("a"))
	require.Error(t, err)
	_, err = store.NewIterator()
	require.Error(t, err)
	_, err = store.NewSnapshot()
	require.Error(t, err)
	require.Error(t, w.Commit())
	assert.Equal(t, db.CodeStore, db.CodeOf(err))
}

func TestListener(t *testing.T) {
	var reads, writes, commits int
	store := memory.New().WithListener(&db.SelectiveListener{
		OnIOCb: func(write bool, _ time.Duration) {
			if write {
				writes++
			} else {
				reads++
			}
		},
		OnCommitCb: func(time.Duration) { commits++ },
	})

	require.NoError(t, store.Put([]byte("a"), []byte("1")))
	_, _, err := store.Get([]byte("a"))
	require.NoError(t, err)
	dbtest.Fill(t, store, "b")

	assert.Equal(t, 1, writes)
	assert.Equal(t, 1, reads)
	assert.Equal(t, 1, commits)
}
