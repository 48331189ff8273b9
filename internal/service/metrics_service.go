package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API,
// including talent search latency and result-set sizes.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	searchDuration  prometheus.Histogram
	searchMatches   prometheus.Histogram
	decisionTotal   *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	searchDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "talent_search_duration_seconds",
		Help:    "Duration of talent search evaluations",
		Buckets: prometheus.DefBuckets,
	})

	searchMatches := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "talent_search_matches",
		Help:    "Number of profiles matched per search",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
	})

	decisionTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "review_decisions_total",
		Help: "Total review decisions applied",
	}, []string{"decision"})

	registry.MustRegister(requestDuration, requestTotal, searchDuration, searchMatches, decisionTotal)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		searchDuration:  searchDuration,
		searchMatches:   searchMatches,
		decisionTotal:   decisionTotal,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records one served request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := prometheus.Labels{"method": method, "path": path, "status": strconv.Itoa(status)}
	s.requestDuration.With(labels).Observe(duration.Seconds())
	s.requestTotal.With(labels).Inc()
}

// ObserveSearch implements the search observer contract.
func (s *MetricsService) ObserveSearch(duration time.Duration, matches int) {
	s.searchDuration.Observe(duration.Seconds())
	s.searchMatches.Observe(float64(matches))
}

// ObserveDecision records one applied review decision.
func (s *MetricsService) ObserveDecision(decision string) {
	s.decisionTotal.WithLabelValues(decision).Inc()
}
