package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/NethermindEth/rangekv/db/pebble"
	"github.com/NethermindEth/rangekv/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func histogramCount(t *testing.T, reg *prometheus.Registry, name string) uint64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() == name {
			require.Len(t, family.GetMetric(), 1)
			return family.GetMetric()[0].GetHistogram().GetSampleCount()
		}
	}
	require.Failf(t, "metric not found", "%q", name)
	return 0
}

func TestDBListener(t *testing.T) {
	reg := prometheus.NewRegistry()
	listener := metrics.NewDBListener(reg)

	listener.OnIO(false, time.Now())
	listener.OnIO(false, time.Now())
	listener.OnIO(true, time.Now())
	listener.OnCommit(time.Now())
	listener.OnWriteStall(true, 2*time.Second)
	listener.OnWriteStall(false, time.Second)

	assert.Equal(t, uint64(2), histogramCount(t, reg, "db_read_latency"))
	assert.Equal(t, uint64(1), histogramCount(t, reg, "db_write_latency"))
	assert.Equal(t, uint64(1), histogramCount(t, reg, "db_commit_latency"))
	assert.Equal(t, 2, testutil.CollectAndCount(reg, "db_write_stall_duration_seconds"))
}

func TestStoreCollector(t *testing.T) {
	store := pebble.NewMemTest(t)
	require.NoError(t, store.Put([]byte("a"), []byte("1")))
	require.NoError(t, store.Flush(true))

	reg := prometheus.NewRegistry()
	reg.MustRegister(metrics.NewStoreCollector(store.Metrics))

	assert.Equal(t, 7, testutil.CollectAndCount(reg, "db_level_files"))
	assert.Equal(t, 1, testutil.CollectAndCount(reg, "db_flushes_total"))
	assert.Equal(t, 1, testutil.CollectAndCount(reg, "db_snapshots"))
}

func TestPrometheusHandler(t *testing.T) {
	reg := metrics.PrometheusRegistry()
	metrics.NewDBListener(reg).OnIO(true, time.Now())

	rec := httptest.NewRecorder()
	metrics.PrometheusHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "db_write_latency_count 1")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
