package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// QueriesTotal counts processed tourism queries by outcome
	// (success, partial, place_not_found, internal_error).
	QueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tourism_queries_total",
		Help: "Processed tourism queries by outcome",
	}, []string{"outcome"})

	// UpstreamRequests counts outbound collaborator calls by provider and result.
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tourism_upstream_requests_total",
		Help: "Outbound requests to collaborators by provider and status",
	}, []string{"provider", "status"})

	// RequestDuration tracks end-to-end HTTP request latency.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tourism_http_request_duration_seconds",
		Help:    "HTTP request duration",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	// CacheEntries reports current cache entry counts.
	CacheEntries = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tourism_cache_entries",
		Help: "Cache entries by state",
	}, []string{"state"})
)

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveCache refreshes the cache entry gauges from a stats snapshot.
func ObserveCache(total, active int) {
	CacheEntries.WithLabelValues("total").Set(float64(total))
	CacheEntries.WithLabelValues("active").Set(float64(active))
	CacheEntries.WithLabelValues("expired").Set(float64(total - active))
}
