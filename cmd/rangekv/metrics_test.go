package main

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/NethermindEth/rangekv/metrics"
	"github.com/NethermindEth/rangekv/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsService(t *testing.T) {
	registry := metrics.PrometheusRegistry()
	metrics.NewDBListener(registry).OnIO(false, time.Now())

	srv, err := newMetricsService("127.0.0.1:0", registry)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	stop := srv.Start(ctx, utils.NewNopLogger())

	resp, err := http.Get("http://" + srv.Addr() + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "db_read_latency_count 1")

	cancel()
	require.NoError(t, stop())
}

func TestCodec(t *testing.T) {
	plain := codec{}
	b, err := plain.decode("abc")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), b)
	assert.Equal(t, "abc", plain.encode(b))
	assert.Equal(t, `"\xff"`, plain.encode([]byte{0xff}))

	hexed := codec{hex: true}
	b, err = hexed.decode("0aff")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0a, 0xff}, b)
	assert.Equal(t, "0aff", hexed.encode(b))
	_, err = hexed.decode("xyz")
	require.Error(t, err)
}
