package db_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/NethermindEth/rangekv/db"
	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	tests := map[string]struct {
		err  error
		code db.Code
	}{
		"nil":              {nil, db.CodeOK},
		"classified":       {db.NewError(db.CodeIO, "get", errors.New("disk")), db.CodeIO},
		"wrapped":          {fmt.Errorf("outer: %w", db.NewError(db.CodeStore, "put", nil)), db.CodeStore},
		"exhausted":        {db.ErrExhausted, db.CodeExhausted},
		"cursor closed":    {db.ErrCursorClosed, db.CodeInvalidArgument},
		"snapshot gone":    {fmt.Errorf("scan: %w", db.ErrSnapshotReleased), db.CodeInvalidArgument},
		"batch closed":     {db.ErrBatchClosed, db.CodeInvalidArgument},
		"bare sentinel io": {db.ErrIO, db.CodeIO},
		"unknown":          {errors.New("?"), db.CodeStore},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.code, db.CodeOf(test.err))
		})
	}
}

func TestError(t *testing.T) {
	cause := errors.New("checksum mismatch")
	err := db.NewError(db.CodeIO, "get", cause)

	assert.EqualError(t, err, "get: io error: checksum mismatch")
	assert.ErrorIs(t, err, db.ErrIO)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, db.ErrStore)

	assert.EqualError(t, db.NewError(db.CodeStore, "flush", nil), "flush: store error")
	assert.NotErrorIs(t, db.NewError(db.CodeOK, "noop", nil), db.ErrStore)
	assert.Equal(t, "code(9)", db.Code(9).String())
}

func TestCheck(t *testing.T) {
	assert.NoError(t, db.CheckKey("get", []byte{}))
	assert.ErrorIs(t, db.CheckKey("get", nil), db.ErrInvalidArgument)
	assert.NoError(t, db.CheckValue("put", []byte{}))
	assert.ErrorIs(t, db.CheckValue("put", nil), db.ErrInvalidArgument)

	assert.NoError(t, db.CheckRange("compact", nil, nil))
	assert.NoError(t, db.CheckRange("compact", []byte("a"), []byte("b")))
	assert.NoError(t, db.CheckRange("compact", []byte{}, []byte{0}))
	for _, r := range [][2][]byte{
		{[]byte("a"), nil},
		{nil, []byte("a")},
		{[]byte("b"), []byte("a")},
		{[]byte("a"), []byte("a")},
	} {
		assert.ErrorIs(t, db.CheckRange("compact", r[0], r[1]), db.ErrInvalidArgument, "%q", r)
	}
}
