package pebble

import (
	"errors"
	"io/fs"
	"strings"
	"syscall"

	"github.com/NethermindEth/rangekv/db"
	"github.com/cockroachdb/pebble"
)

// messagePatterns is the last-resort, best-effort classification of pebble failures by message.
// The wording is an artifact of the engine version and is not part of any contract.
var messagePatterns = []struct {
	substring string
	code      db.Code
}{
	{"IO error", db.CodeIO},
	{"corruption", db.CodeIO},
	{"Corruption", db.CodeIO},
	{"no space left", db.CodeIO},
	{"Invalid argument", db.CodeInvalidArgument},
	{"invalid argument", db.CodeInvalidArgument},
}

// classify maps a pebble failure onto the db error taxonomy. Typed errors are matched first,
// message patterns only when nothing structural is known.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var classified *db.Error
	if errors.As(err, &classified) {
		return err
	}
	return db.NewError(codeOf(err), op, err)
}

func codeOf(err error) db.Code {
	var (
		pathErr *fs.PathError
		errno   syscall.Errno
	)
	switch {
	case errors.Is(err, pebble.ErrDBDoesNotExist),
		errors.Is(err, pebble.ErrDBAlreadyExists):
		return db.CodeInvalidArgument
	case pebble.IsCorruptionError(err),
		errors.As(err, &pathErr),
		errors.As(err, &errno):
		return db.CodeIO
	}

	msg := err.Error()
	for _, pattern := range messagePatterns {
		if strings.Contains(msg, pattern.substring) {
			return pattern.code
		}
	}
	return db.CodeStore
}
