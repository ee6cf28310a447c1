// Package metrics exposes Prometheus collectors for the index, the
// recommendation endpoints and the poster client.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	IndexBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "popflix_index_build_duration_seconds",
			Help:    "Time to build the catalog index",
			Buckets: []float64{.1, .5, 1, 5, 10, 30, 60, 120},
		},
	)

	IndexMovies = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "popflix_index_movies",
			Help: "Movies in the current catalog index",
		},
	)

	IndexVocabulary = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "popflix_index_vocabulary_size",
			Help: "Vocabulary size of the current catalog index",
		},
	)

	IndexBuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "popflix_index_builds_total",
			Help: "Index builds by source and result",
		},
		[]string{"source", "result"},
	)

	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "popflix_recommendations_total",
			Help: "Recommendation requests by transport and outcome",
		},
		[]string{"transport", "outcome"},
	)

	PosterFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "popflix_poster_fetches_total",
			Help: "Poster lookups by result (found, missing, error, disabled, breaker_open, canceled)",
		},
		[]string{"result"},
	)
)

// RecordIndex updates the index gauges after a successful build or load.
func RecordIndex(source string, movies, vocab int, seconds float64) {
	IndexMovies.Set(float64(movies))
	IndexVocabulary.Set(float64(vocab))
	IndexBuildsTotal.WithLabelValues(source, "ok").Inc()
	if seconds > 0 {
		IndexBuildDuration.Observe(seconds)
	}
}
