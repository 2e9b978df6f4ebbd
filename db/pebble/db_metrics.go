package pebble

import (
	"github.com/cockroachdb/pebble"
)

// LevelMetrics is a per-level summary of the LSM tree.
type LevelMetrics struct {
	Level           int
	NumFiles        int64
	Size            int64
	Score           float64
	BytesIn         uint64
	BytesRead       uint64
	BytesCompacted  uint64
	BytesFlushed    uint64
	TablesCompacted uint64
	TablesFlushed   uint64
}

// StoreMetrics is the subset of pebble metrics reported by the stats command.
type StoreMetrics struct {
	Levels          []LevelMetrics
	MemtableSize    uint64
	MemtableCount   int64
	CompactionCount int64
	FlushCount      int64
	EstimatedDebt   uint64
	DiskSpaceUsage  uint64
	ActiveIterators int64
	ActiveSnapshots int
}

// Metrics collects a point-in-time view of pebble's internal counters.
func (d *DB) Metrics() StoreMetrics {
	return collect(d.pebble.Metrics())
}

func collect(stats *pebble.Metrics) StoreMetrics {
	out := StoreMetrics{
		Levels:          make([]LevelMetrics, 0, len(stats.Levels)),
		MemtableSize:    stats.MemTable.Size,
		MemtableCount:   stats.MemTable.Count,
		CompactionCount: stats.Compact.Count,
		FlushCount:      stats.Flush.Count,
		EstimatedDebt:   stats.Compact.EstimatedDebt,
		DiskSpaceUsage:  stats.DiskSpaceUsage(),
		ActiveIterators: stats.TableIters,
		ActiveSnapshots: stats.Snapshots.Count,
	}

	// pebble has only 7 lvls
	for i := range stats.Levels {
		lvl := stats.Levels[i]
		out.Levels = append(out.Levels, LevelMetrics{
			Level:           i,
			NumFiles:        lvl.NumFiles,
			Size:            lvl.Size,
			Score:           lvl.Score,
			BytesIn:         lvl.BytesIn,
			BytesRead:       lvl.BytesRead,
			BytesCompacted:  lvl.BytesCompacted,
			BytesFlushed:    lvl.BytesFlushed,
			TablesCompacted: lvl.TablesCompacted,
			TablesFlushed:   lvl.TablesFlushed,
		})
	}
	return out
}
