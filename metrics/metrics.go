// Package metrics counts generated fixtures and node RPC traffic. A run is a
// short-lived batch job, so the collected values are pushed to a Prometheus
// Pushgateway at exit rather than scraped.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "misfit"

// Metrics holds the collectors for one run. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	generated   *prometheus.CounterVec
	broken      *prometheus.CounterVec
	rpcCalls    *prometheus.CounterVec
	rpcDuration *prometheus.HistogramVec
}

// New creates a Metrics with its own registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		generated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fixtures_generated_total",
			Help:      "Number of synthesized fixtures by kind.",
		}, []string{"kind"}),
		broken: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fixtures_broken_total",
			Help:      "Number of invalidated fixtures by kind.",
		}, []string{"kind"}),
		rpcCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_calls_total",
			Help:      "Node RPC calls by method and outcome.",
		}, []string{"method", "status"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "Node RPC latency by method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
	m.registry.MustRegister(m.generated, m.broken, m.rpcCalls, m.rpcDuration)
	return m
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Generated adds n synthesized fixtures of kind.
func (m *Metrics) Generated(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.generated.WithLabelValues(kind).Add(float64(n))
}

// Broken records one invalidated fixture of kind.
func (m *Metrics) Broken(kind string) {
	if m == nil {
		return
	}
	m.broken.WithLabelValues(kind).Inc()
}

// RPC records one node call.
func (m *Metrics) RPC(method string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.rpcCalls.WithLabelValues(method, status).Inc()
	m.rpcDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// Push sends every collected value to the Pushgateway at url under job.
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	if m == nil {
		return nil
	}
	if err := push.New(url, job).Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("metrics: push to %s: %w", url, err)
	}
	return nil
}
