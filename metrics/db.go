package metrics

import (
	"math"
	"strconv"
	"time"

	"github.com/NethermindEth/rangekv/db"
	"github.com/NethermindEth/rangekv/db/pebble"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "db"

// NewDBListener registers the store latency metrics on reg and returns a listener feeding them.
// Latencies are recorded in microseconds.
func NewDBListener(reg prometheus.Registerer) db.EventListener {
	latencyBuckets := []float64{
		25,
		50,
		75,
		100,
		250,
		500,
		1000, // 1ms
		2000,
		3000,
		4000,
		5000,
		10000,
		50000,
		500000,
		math.Inf(0),
	}
	factory := promauto.With(reg)
	readLatencyHistogram := factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "read_latency",
		Buckets:   latencyBuckets,
	})
	writeLatencyHistogram := factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "write_latency",
		Buckets:   latencyBuckets,
	})
	commitLatency := factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "commit_latency",
		Buckets: []float64{
			5000,
			10000,
			20000,
			30000,
			40000,
			50000,
			100000, // 100ms
			200000,
			300000,
			500000,
			1000000,
			math.Inf(0),
		},
	})
	writeStalls := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "write_stall_duration_seconds",
	}, []string{"type"})

	return &db.SelectiveListener{
		OnIOCb: func(write bool, duration time.Duration) {
			if write {
				writeLatencyHistogram.Observe(float64(duration.Microseconds()))
			} else {
				readLatencyHistogram.Observe(float64(duration.Microseconds()))
			}
		},
		OnCommitCb: func(duration time.Duration) {
			commitLatency.Observe(float64(duration.Microseconds()))
		},
		OnWriteStallCb: func(isL0 bool, duration time.Duration) {
			stallType := "memtable"
			if isL0 {
				stallType = "l0"
			}
			writeStalls.WithLabelValues(stallType).Add(duration.Seconds())
		},
	}
}

// storeCollector exports pebble's LSM counters at scrape time.
type storeCollector struct {
	metrics func() pebble.StoreMetrics

	levelFiles      *prometheus.Desc
	levelSize       *prometheus.Desc
	levelScore      *prometheus.Desc
	memtableSize    *prometheus.Desc
	compactions     *prometheus.Desc
	flushes         *prometheus.Desc
	compactionDebt  *prometheus.Desc
	diskUsage       *prometheus.Desc
	activeIterators *prometheus.Desc
	activeSnapshots *prometheus.Desc
}

// NewStoreCollector returns a collector reading metrics on every scrape.
func NewStoreCollector(metrics func() pebble.StoreMetrics) prometheus.Collector {
	desc := func(name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, labels, nil)
	}
	return &storeCollector{
		metrics:         metrics,
		levelFiles:      desc("level_files", "Number of sstables per LSM level.", "level"),
		levelSize:       desc("level_size_bytes", "Size of the sstables per LSM level.", "level"),
		levelScore:      desc("level_score", "Compaction score per LSM level.", "level"),
		memtableSize:    desc("memtable_size_bytes", "Bytes allocated by memtables."),
		compactions:     desc("compactions_total", "Number of compactions."),
		flushes:         desc("flushes_total", "Number of memtable flushes."),
		compactionDebt:  desc("compaction_debt_bytes", "Estimated bytes to compact before the LSM is stable."),
		diskUsage:       desc("disk_usage_bytes", "Disk space used by the store."),
		activeIterators: desc("table_iterators", "Number of open sstable iterators."),
		activeSnapshots: desc("snapshots", "Number of open snapshots."),
	}
}

func (c *storeCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		c.levelFiles, c.levelSize, c.levelScore, c.memtableSize, c.compactions,
		c.flushes, c.compactionDebt, c.diskUsage, c.activeIterators, c.activeSnapshots,
	} {
		ch <- d
	}
}

func (c *storeCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.metrics()
	for _, lvl := range stats.Levels {
		level := strconv.Itoa(lvl.Level)
		ch <- prometheus.MustNewConstMetric(c.levelFiles, prometheus.GaugeValue, float64(lvl.NumFiles), level)
		ch <- prometheus.MustNewConstMetric(c.levelSize, prometheus.GaugeValue, float64(lvl.Size), level)
		ch <- prometheus.MustNewConstMetric(c.levelScore, prometheus.GaugeValue, lvl.Score, level)
	}
	ch <- prometheus.MustNewConstMetric(c.memtableSize, prometheus.GaugeValue, float64(stats.MemtableSize))
	ch <- prometheus.MustNewConstMetric(c.compactions, prometheus.CounterValue, float64(stats.CompactionCount))
	ch <- prometheus.MustNewConstMetric(c.flushes, prometheus.CounterValue, float64(stats.FlushCount))
	ch <- prometheus.MustNewConstMetric(c.compactionDebt, prometheus.GaugeValue, float64(stats.EstimatedDebt))
	ch <- prometheus.MustNewConstMetric(c.diskUsage, prometheus.GaugeValue, float64(stats.DiskSpaceUsage))
	ch <- prometheus.MustNewConstMetric(c.activeIterators, prometheus.GaugeValue, float64(stats.ActiveIterators))
	ch <- prometheus.MustNewConstMetric(c.activeSnapshots, prometheus.GaugeValue, float64(stats.ActiveSnapshots))
}
