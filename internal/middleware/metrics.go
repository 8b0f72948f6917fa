package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Backend metrics
	backendRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "personagen_backend_request_duration_seconds",
		Help:    "Duration of text-generation backend requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"backend", "status"})

	backendRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "personagen_backend_requests_total",
		Help: "Total number of text-generation backend requests",
	}, []string{"backend", "status"})

	backendFailovers = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "personagen_backend_failovers_total",
		Help: "Total number of switches to another backend after a failure",
	}, []string{"from", "to"})

	tokensUsed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "personagen_tokens_used_total",
		Help: "Total number of tokens reported by backends",
	}, []string{"backend"})

	// Cache metrics
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "personagen_cache_hits_total",
		Help: "Total number of cache hits",
	})

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "personagen_cache_misses_total",
		Help: "Total number of cache misses",
	})

	// Answer metrics
	answersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "personagen_answers_total",
		Help: "Total number of answers produced",
	}, []string{"outcome"})

	// Storage metrics
	storageOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "personagen_storage_operations_total",
		Help: "Total number of session store operations",
	}, []string{"operation", "status"})

	storageOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "personagen_storage_operation_duration_seconds",
		Help:    "Duration of session store operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// Pairs in flight
	pairsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "personagen_pairs_in_flight",
		Help: "Number of persona-question pairs currently being generated",
	})
)

// Answer outcomes
const (
	OutcomeGenerated = "generated"
	OutcomeCached    = "cached"
	OutcomeFailed    = "failed"
)

// Metrics provides methods to record metrics
type Metrics struct{}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordBackendRequest records one backend call
func (m *Metrics) RecordBackendRequest(backend, status string, duration time.Duration) {
	backendRequestDuration.WithLabelValues(backend, status).Observe(duration.Seconds())
	backendRequestsTotal.WithLabelValues(backend, status).Inc()
}

// RecordFailover records a switch between backends
func (m *Metrics) RecordFailover(from, to string) {
	backendFailovers.WithLabelValues(from, to).Inc()
}

// RecordTokens adds reported token usage
func (m *Metrics) RecordTokens(backend string, n int) {
	if n > 0 {
		tokensUsed.WithLabelValues(backend).Add(float64(n))
	}
}

// RecordCacheHit records a cache hit
func (m *Metrics) RecordCacheHit() {
	cacheHits.Inc()
}

// RecordCacheMiss records a cache miss
func (m *Metrics) RecordCacheMiss() {
	cacheMisses.Inc()
}

// RecordAnswer records the outcome of one pair
func (m *Metrics) RecordAnswer(outcome string) {
	answersTotal.WithLabelValues(outcome).Inc()
}

// RecordStorageOperation records a storage operation
func (m *Metrics) RecordStorageOperation(operation, status string, duration time.Duration) {
	storageOperations.WithLabelValues(operation, status).Inc()
	storageOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// PairStarted marks a pair as in flight
func (m *Metrics) PairStarted() {
	pairsInFlight.Inc()
}

// PairDone marks a pair as finished
func (m *Metrics) PairDone() {
	pairsInFlight.Dec()
}

// NewRouter returns the metrics and health routes
func NewRouter(path string) *mux.Router {
	router := mux.NewRouter()
	router.Handle(path, promhttp.Handler())

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	return router
}

// NewMetricsServer builds the metrics HTTP server; the caller runs ListenAndServe
// and shuts it down when the run ends
func NewMetricsServer(port int, path string) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      NewRouter(path),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}
