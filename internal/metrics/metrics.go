// Package metrics declares the Prometheus collectors of the service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FingerprintsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "acoustic_fingerprints_total",
			Help: "Total number of fingerprint curves generated",
		},
		[]string{"category"},
	)

	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "acoustic_recommendations_total",
			Help: "Total number of per-genre recommendation lists produced",
		},
		[]string{"outcome"}, // "full", "partial", "empty"
	)

	FilterRows = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "acoustic_filter_rows",
			Help:    "Number of rows retained by a catalogue filter",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
		[]string{"view"}, // "tracks", "genre_rows"
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "acoustic_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "acoustic_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"route"},
	)

	FeatureImportTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "acoustic_feature_import_total",
			Help: "Total number of feature import jobs by result",
		},
		[]string{"result"}, // "imported", "estimated", "unavailable", "failed", "dropped"
	)
)

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordFilter records the size of both filter views.
func RecordFilter(tracks, genreRows int) {
	FilterRows.WithLabelValues("tracks").Observe(float64(tracks))
	FilterRows.WithLabelValues("genre_rows").Observe(float64(genreRows))
}

// RecordRecommendation classifies a per-genre list against the requested k.
func RecordRecommendation(got, k int) {
	outcome := "full"
	switch {
	case got == 0:
		outcome = "empty"
	case got < k:
		outcome = "partial"
	}
	RecommendationsTotal.WithLabelValues(outcome).Inc()
}

// RecordFingerprint counts one generated curve family.
func RecordFingerprint(category string) {
	FingerprintsTotal.WithLabelValues(category).Inc()
}

// RecordImport counts one import job outcome.
func RecordImport(result string) {
	FeatureImportTotal.WithLabelValues(result).Inc()
}
