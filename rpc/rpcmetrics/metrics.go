// Copyright 2025, 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package rpcmetrics exposes the calls made on an rpc.Conn as
// Prometheus metrics.
package rpcmetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/juju/xorpc/rpc"
)

const metricsNamespace = "xorpc"

// Collector is a prometheus.Collector that collects metrics about the
// calls made on a connection. It is used as the connection's
// rpc.Observer.
type Collector struct {
	calls     *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	pending   prometheus.Gauge
	unmatched prometheus.Counter
}

var (
	_ rpc.Observer         = (*Collector)(nil)
	_ prometheus.Collector = (*Collector)(nil)
)

// NewMetricsCollector returns a new Collector.
func NewMetricsCollector() *Collector {
	return &Collector{
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "calls_total",
				Help:      "The number of calls made, by method and outcome.",
			}, []string{"method", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "call_duration_seconds",
				Help:      "The time from sending a request to its call finishing.",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120},
			}, []string{"method"},
		),
		pending: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "calls_pending",
				Help:      "The number of calls waiting for a response.",
			},
		),
		unmatched: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "unmatched_responses_total",
				Help:      "The number of responses that matched no pending call.",
			},
		),
	}
}

// CallStarted is part of the rpc.Observer interface.
func (c *Collector) CallStarted(method string) {
	c.pending.Inc()
}

// CallFinished is part of the rpc.Observer interface.
func (c *Collector) CallFinished(method string, outcome rpc.Outcome, elapsed time.Duration) {
	c.pending.Dec()
	c.calls.WithLabelValues(method, string(outcome)).Inc()
	c.duration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// UnmatchedResponse is part of the rpc.Observer interface.
func (c *Collector) UnmatchedResponse(uint64) {
	c.unmatched.Inc()
}

// Describe is part of the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.calls.Describe(ch)
	c.duration.Describe(ch)
	c.pending.Describe(ch)
	c.unmatched.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.calls.Collect(ch)
	c.duration.Collect(ch)
	c.pending.Collect(ch)
	c.unmatched.Collect(ch)
}
