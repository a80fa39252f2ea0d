// SPDX-License-Identifier: MIT
//
// Package metrics exposes Prometheus instrumentation for the analysis
// engine. Registration happens on a private registry so tests can build as
// many instances as they like.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contains all Prometheus metrics for the visualization engine.
type Metrics struct {
	registry *prometheus.Registry

	// Analysis loop metrics
	FramesAnalyzed   *prometheus.CounterVec
	EmptyFrames      prometheus.Counter
	AnalysisDuration prometheus.Histogram
	SourceErrors     prometheus.Counter

	// Transport metrics
	ConnectedClients prometheus.Gauge
	TransportErrors  prometheus.Counter
}

// New creates and registers all engine metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		FramesAnalyzed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "viz_frames_analyzed_total",
			Help: "Total number of audio frames analyzed, by analysis method",
		}, []string{"method"}),
		EmptyFrames: factory.NewCounter(prometheus.CounterOpts{
			Name: "viz_empty_frames_total",
			Help: "Total number of frames skipped because the source delivered no samples",
		}),
		AnalysisDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "viz_analysis_duration_seconds",
			Help:    "Time spent analyzing a single frame",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10), // 1µs to ~260ms
		}),
		SourceErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "viz_source_errors_total",
			Help: "Total number of frame read errors from the audio source",
		}),
		ConnectedClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "viz_connected_clients",
			Help: "Current number of connected WebSocket rendering clients",
		}),
		TransportErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "viz_transport_errors_total",
			Help: "Total number of failed transport sends",
		}),
	}
}

// Handler returns an HTTP handler serving the registry in the Prometheus
// exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
