// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Neuromem Contributors

// Package metrics holds the Prometheus collectors for the embedding and
// search paths, plus calibration state gauges.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "neuromem",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests",
		},
		[]string{"backend", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "neuromem",
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding request duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"backend"},
	)

	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "neuromem",
			Name:      "search_duration_seconds",
			Help:      "End-to-end semantic search duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	SearchMismatchedNotes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "neuromem",
			Name:      "search_mismatched_notes_total",
			Help:      "Notes excluded from scoring due to fingerprint dimension mismatch",
		},
	)

	NotesTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "neuromem",
			Name:      "notes_total",
			Help:      "Current number of stored notes",
		},
	)

	CalibrationMinSimilarity = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "neuromem",
			Name:      "calibration_min_similarity",
			Help:      "Minimum probe-phrase cosine similarity from the last calibration pass",
		},
	)

	CalibrationDrifted = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "neuromem",
			Name:      "calibration_drift_detected",
			Help:      "1 when the last calibration pass detected drift, 0 otherwise",
		},
	)
)

var registered bool

// Register registers all collectors. Must be called once from main.
func Register() {
	if registered {
		return
	}
	prometheus.MustRegister(EmbeddingRequestsTotal)
	prometheus.MustRegister(EmbeddingRequestDuration)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchMismatchedNotes)
	prometheus.MustRegister(NotesTotal)
	prometheus.MustRegister(CalibrationMinSimilarity)
	prometheus.MustRegister(CalibrationDrifted)
	registered = true
}
