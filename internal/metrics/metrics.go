// Package metrics defines the process-wide Prometheus instruments updated
// by the probing engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProbesTotal counts probes by mode and outcome ("ok", "timeout" or
	// "transport").
	ProbesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pingslo_probes_total",
			Help: "Number of probes, by mode and outcome.",
		},
		[]string{"mode", "outcome"},
	)

	// ProbeLatency is the distribution of successful probe latencies.
	ProbeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pingslo_probe_latency_seconds",
			Help:    "Latency of successful probes, by mode.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		},
		[]string{"mode"},
	)

	// SamplersActive is the number of targets currently being sampled.
	SamplersActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pingslo_samplers_active",
			Help: "Number of targets currently being sampled.",
		},
	)

	// TargetsTotal counts sampled targets by mode.
	TargetsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pingslo_targets_total",
			Help: "Number of targets sampled, by mode.",
		},
		[]string{"mode"},
	)
)
