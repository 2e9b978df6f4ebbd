package db_test

import (
	"testing"

	"github.com/NethermindEth/rangekv/db"
	"github.com/NethermindEth/rangekv/db/dbtest"
	"github.com/NethermindEth/rangekv/db/memory"
	"github.com/stretchr/testify/assert"
)

func TestNewScanSpec(t *testing.T) {
	assert.Equal(t, db.ScanSpec{Limit: db.NoLimit}, db.NewScanSpec())

	spec := db.NewScanSpec(db.From([]byte("a")), db.To([]byte("z")), db.WithLimit(3), db.Reversed())
	assert.Equal(t, db.ScanSpec{From: []byte("a"), To: []byte("z"), Limit: 3, Reverse: true}, spec)
}

func TestCursorCopiesSpec(t *testing.T) {
	store := memory.New()
	dbtest.Fill(t, store, "a", "b", "c")

	from, to := []byte("b"), []byte("c")
	c := db.NewRangeCursor(store, db.NewScanSpec(db.From(from), db.To(to)))
	from[0], to[0] = 'a', 'a'

	n, err := c.Count()
	assert.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCompare(t *testing.T) {
	assert.Negative(t, db.Compare([]byte{}, []byte{0}))
	assert.Negative(t, db.Compare([]byte("a"), []byte("ab")))
	assert.Positive(t, db.Compare([]byte{0xff}, []byte("zz")))
	assert.Zero(t, db.Compare(nil, []byte{}))
}
