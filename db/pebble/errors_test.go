package pebble

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
	"testing"

	"github.com/NethermindEth/rangekv/db"
	"github.com/cockroachdb/pebble"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	assert.NoError(t, classify("get", nil))

	tests := map[string]struct {
		err  error
		code db.Code
	}{
		"missing store": {
			err:  fmt.Errorf("open: %w", pebble.ErrDBDoesNotExist),
			code: db.CodeInvalidArgument,
		},
		"existing store": {
			err:  pebble.ErrDBAlreadyExists,
			code: db.CodeInvalidArgument,
		},
		"path error": {
			err:  &fs.PathError{Op: "open", Path: "/x", Err: fs.ErrPermission},
			code: db.CodeIO,
		},
		"errno": {
			err:  fmt.Errorf("write: %w", syscall.ENOSPC),
			code: db.CodeIO,
		},
		"corruption message": {
			err:  errors.New("pebble: Corruption: block checksum mismatch"),
			code: db.CodeIO,
		},
		"invalid argument message": {
			err:  errors.New("Invalid argument: bad key"),
			code: db.CodeInvalidArgument,
		},
		"anything else": {
			err:  pebble.ErrClosed,
			code: db.CodeStore,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			err := classify("op", test.err)
			assert.Equal(t, test.code, db.CodeOf(err))
			assert.ErrorIs(t, err, test.err)
			assert.Contains(t, err.Error(), "op: ")
		})
	}

	t.Run("classified errors pass through", func(t *testing.T) {
		orig := db.NewError(db.CodeIO, "inner", errors.New("disk"))
		assert.Same(t, orig, classify("outer", orig))
	})
}
