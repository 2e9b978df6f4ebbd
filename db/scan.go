package db

import (
	"math"
	"slices"
)

// NoLimit disables the result-count limit of a scan.
const NoLimit = -1

// ScanSpec describes a range scan. It is copied when a cursor is created.
//
// From is the inclusive start position; nil starts at the beginning of the key space in scan direction.
// In reverse scans the first entry is the largest key <= From.
// To is the inclusive boundary opposite the start; nil leaves the scan unbounded.
// Limit caps the number of entries yielded; a negative Limit is unbounded, zero yields nothing.
type ScanSpec struct {
	From    []byte
	To      []byte
	Limit   int
	Reverse bool
}

type ScanOption func(*ScanSpec)

// NewScanSpec builds an unbounded, unlimited, ascending spec and applies opts.
func NewScanSpec(opts ...ScanOption) ScanSpec {
	spec := ScanSpec{Limit: NoLimit}
	for _, opt := range opts {
		opt(&spec)
	}
	return spec
}

func From(key []byte) ScanOption {
	return func(s *ScanSpec) {
		s.From = key
	}
}

func To(key []byte) ScanOption {
	return func(s *ScanSpec) {
		s.To = key
	}
}

func WithLimit(limit int) ScanOption {
	return func(s *ScanSpec) {
		s.Limit = limit
	}
}

func Reversed() ScanOption {
	return func(s *ScanSpec) {
		s.Reverse = true
	}
}

func (s ScanSpec) clone() ScanSpec {
	s.From = slices.Clone(s.From)
	s.To = slices.Clone(s.To)
	return s
}

func (s ScanSpec) budget() int {
	if s.Limit < 0 {
		return math.MaxInt
	}
	return s.Limit
}

// inBounds reports whether key has not yet crossed To in scan direction. To is inclusive both ways.
func (s ScanSpec) inBounds(key []byte) bool {
	if s.To == nil {
		return true
	}
	if s.Reverse {
		return Compare(s.To, key) <= 0
	}
	return Compare(s.To, key) >= 0
}
