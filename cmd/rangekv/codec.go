package main

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"unicode/utf8"
)

// codec translates command line keys and values to bytes and back.
type codec struct {
	hex bool
}

func (c codec) decode(s string) ([]byte, error) {
	if !c.hex {
		return []byte(s), nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode hex %q: %w", s, err)
	}
	return b, nil
}

func (c codec) encode(b []byte) string {
	if c.hex {
		return hex.EncodeToString(b)
	}
	if utf8.Valid(b) {
		return string(b)
	}
	// quote so binary data does not garble the terminal
	return strconv.Quote(string(b))
}
