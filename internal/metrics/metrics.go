// Package metrics exposes Prometheus instrumentation for the API, the
// recommender and the catalog scraper.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/shelfwise/shelfwise-core/internal/core/domain"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shelfwise_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shelfwise_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shelfwise_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Training Metrics
	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shelfwise_training_duration_seconds",
			Help:    "Duration of recommender training runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	TrainingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shelfwise_training_runs_total",
			Help: "Total number of training runs by outcome",
		},
		[]string{"outcome"}, // "trained", "no_data", "busy", "error"
	)

	TrainingCorpusRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shelfwise_training_corpus_rows",
			Help: "Number of rows in the artifact set currently in use",
		},
	)

	TrainingLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shelfwise_training_last_success_timestamp",
			Help: "Unix timestamp of the last successful training run",
		},
	)

	// Prediction Metrics
	PredictionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shelfwise_prediction_duration_seconds",
			Help:    "Duration of recommendation queries in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		},
	)

	Predictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shelfwise_predictions_total",
			Help: "Total number of recommendation queries by outcome",
		},
		[]string{"outcome"}, // "ok", "title_not_found", "artifacts_not_found", "artifact_mismatch", "error"
	)

	RecommendationCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shelfwise_recommendation_cache_hits_total",
			Help: "Total number of recommendation cache hits",
		},
	)

	RecommendationCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shelfwise_recommendation_cache_misses_total",
			Help: "Total number of recommendation cache misses",
		},
	)

	// Scrape Metrics
	ScrapeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shelfwise_scrape_duration_seconds",
			Help:    "Duration of catalog scrapes in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		},
	)

	ScrapeBooks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shelfwise_scrape_books_total",
			Help: "Total number of scraped books by result",
		},
		[]string{"result"}, // "inserted", "failed"
	)

	ScrapeErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shelfwise_scrape_errors_total",
			Help: "Total number of scrapes that failed outright",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "shelfwise_circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shelfwise_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordTraining records the outcome of a training run
func RecordTraining(duration time.Duration, rows int, err error) {
	TrainingDuration.Observe(duration.Seconds())
	switch {
	case err == nil && rows > 0:
		TrainingRuns.WithLabelValues("trained").Inc()
		TrainingCorpusRows.Set(float64(rows))
		TrainingLastSuccess.Set(float64(time.Now().Unix()))
	case err == nil:
		TrainingRuns.WithLabelValues("no_data").Inc()
	case errors.Is(err, domain.ErrTrainingInProgress):
		TrainingRuns.WithLabelValues("busy").Inc()
	default:
		TrainingRuns.WithLabelValues("error").Inc()
	}
}

// RecordPrediction records the outcome of a recommendation query
func RecordPrediction(duration time.Duration, err error) {
	PredictionDuration.Observe(duration.Seconds())
	Predictions.WithLabelValues(predictionOutcome(err)).Inc()
}

func predictionOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrTitleNotFound):
		return "title_not_found"
	case errors.Is(err, domain.ErrArtifactNotFound):
		return "artifacts_not_found"
	case errors.Is(err, domain.ErrArtifactMismatch):
		return "artifact_mismatch"
	default:
		return "error"
	}
}

// RecordCacheLookup records a recommendation cache hit or miss
func RecordCacheLookup(hit bool) {
	if hit {
		RecommendationCacheHits.Inc()
	} else {
		RecommendationCacheMisses.Inc()
	}
}

// RecordScrape records a finished catalog scrape
func RecordScrape(duration time.Duration, inserted, failed int, err error) {
	ScrapeDuration.Observe(duration.Seconds())
	if err != nil {
		ScrapeErrors.Inc()
		return
	}
	ScrapeBooks.WithLabelValues("inserted").Add(float64(inserted))
	ScrapeBooks.WithLabelValues("failed").Add(float64(failed))
}

// RecordBreakerTransition records a circuit breaker state change. States are
// passed as their gauge value (0=closed, 1=half-open, 2=open).
func RecordBreakerTransition(name, from, to string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
}
