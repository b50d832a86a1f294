package server

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ordinate-io/sequencer/internal/health"
	"github.com/ordinate-io/sequencer/internal/metrics"
	"github.com/ordinate-io/sequencer/internal/util/workerpool"
)

// MetricsServer serves Prometheus metrics plus liveness/readiness probes
// over plain HTTP, separate from the gRPC port.
type MetricsServer struct {
	httpServer *http.Server
	metrics    *metrics.Metrics
	health     *health.HealthChecker
	workerPool *workerpool.WorkerPool
	logger     *zap.Logger
	stopChan   chan struct{}
}

// MetricsServerConfig holds configuration for the metrics server.
type MetricsServerConfig struct {
	Port int
	Path string
}

// NewMetricsServer creates a new metrics server. pool is the background
// worker pool whose queue/worker utilization is reported alongside the
// rest of the process metrics; it may be nil if the caller has none.
func NewMetricsServer(cfg *MetricsServerConfig, m *metrics.Metrics, hc *health.HealthChecker, pool *workerpool.WorkerPool, logger *zap.Logger) *MetricsServer {
	mux := http.NewServeMux()

	ms := &MetricsServer{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		metrics:    m,
		health:     hc,
		workerPool: pool,
		logger:     logger,
		stopChan:   make(chan struct{}),
	}

	path := cfg.Path
	if path == "" {
		path = "/metrics"
	}
	mux.Handle(path, promhttp.Handler())
	mux.HandleFunc("/health", hc.LivenessHandler)
	mux.HandleFunc("/ready", hc.ReadinessHandler)

	return ms
}

// Start starts the metrics server and the background system-stats collector.
func (s *MetricsServer) Start() error {
	s.logger.Info("starting metrics server", zap.String("addr", s.httpServer.Addr))

	go s.collectSystemMetrics()

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	return nil
}

// Stop gracefully stops the metrics server.
func (s *MetricsServer) Stop() error {
	s.logger.Info("stopping metrics server")

	close(s.stopChan)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("metrics server shutdown failed: %w", err)
	}
	return nil
}

// collectSystemMetrics periodically updates the goroutine gauge and, if a
// worker pool was supplied, its queue/worker utilization gauges.
func (s *MetricsServer) collectSystemMetrics() {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.metrics.GoroutinesTotal.Set(float64(runtime.NumGoroutine()))
			if s.workerPool != nil {
				stats := s.workerPool.Stats()
				s.metrics.WorkerPoolQueueUtilization.Set(stats.QueueUtilization())
				s.metrics.WorkerPoolWorkerUtilization.Set(stats.WorkerUtilization())
			}
		case <-s.stopChan:
			return
		}
	}
}
