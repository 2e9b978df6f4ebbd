package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/NethermindEth/rangekv/metrics"
	"github.com/NethermindEth/rangekv/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sourcegraph/conc"
)

type metricsService struct {
	srv      *http.Server
	listener net.Listener
}

func newMetricsService(addr string, registry *prometheus.Registry) (*metricsService, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.PrometheusHandler(registry))
	return &metricsService{
		srv: &http.Server{
			Addr:    listener.Addr().String(),
			Handler: mux,
			// ReadTimeout also sets ReadHeaderTimeout and IdleTimeout.
			ReadTimeout: 30 * time.Second,
		},
		listener: listener,
	}, nil
}

func (m *metricsService) Addr() string {
	return m.listener.Addr().String()
}

// Start serves until ctx is done. The returned function blocks until the server has stopped.
func (m *metricsService) Start(ctx context.Context, log utils.SimpleLogger) func() error {
	var serveErr error
	var wg conc.WaitGroup
	wg.Go(func() {
		if err := m.srv.Serve(m.listener); !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("Metrics endpoint failed", "err", err)
			serveErr = err
		}
	})
	wg.Go(func() {
		<-ctx.Done()
		if err := m.srv.Shutdown(context.Background()); err != nil {
			log.Warnw("Metrics endpoint shutdown", "err", err)
		}
	})

	return func() error {
		wg.Wait()
		return serveErr
	}
}
